package http

import (
	"errors"
	"net/http"
	"time"

	"weatherman/internal/amqp"
	applog "weatherman/internal/log"
	"weatherman/internal/services"
)

type importAccepted struct {
	ID          string `json:"id"`
	DataDir     string `json:"data_dir"`
	RequestedAt string `json:"requested_at"`
	Status      string `json:"status"`
}

// handleCreateImport publishes a request to import the directory named by
// the data_dir form field. The worker performs the import.
func (s *Server) handleCreateImport(w http.ResponseWriter, r *http.Request) {
	asJSON := WantsJSON(r)
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if !s.importsEnabled() {
		ServiceUnavailableError("Imports are not configured on this server", asJSON).Write(w)
		return
	}
	if resp := ParseFormOrFail(r, asJSON); resp != nil {
		resp.Write(w)
		return
	}

	dir := sanitizeInput(r.Form.Get("data_dir"))
	if dir == "" {
		BadRequestError("data_dir is required", asJSON).Write(w)
		return
	}

	logger := applog.FromContext(r.Context()).WithComponent(applog.ComponentImport)
	msg, err := s.imports.RequestImport(r.Context(), dir)
	switch {
	case errors.Is(err, services.ErrOutsideRoot):
		logger.WarnContext(r.Context(), "Import directory rejected", applog.FieldDataDir, dir, applog.FieldError, err)
		BadRequestError(err.Error(), asJSON).Write(w)
		return
	case errors.Is(err, services.ErrImportsDisabled):
		ServiceUnavailableError("Imports are not configured on this server", asJSON).Write(w)
		return
	case errors.Is(err, amqp.ErrCircuitOpen):
		logger.WarnContext(r.Context(), "Message broker unavailable", applog.FieldError, err)
		ServiceUnavailableError("Message broker unavailable, try again later", asJSON).Write(w)
		return
	case err != nil:
		s.structured.LogError(r.Context(), "Failed to publish import request", err, applog.ComponentImport, applog.OpPublish,
			applog.NewFields().WithClientIP(s.detector.ClientIP(r)))
		InternalServerError("Failed to queue import", asJSON).Write(w)
		return
	}

	s.appMetrics.importsQueued.Add(1)
	logger.InfoContext(r.Context(), "Import request queued",
		applog.FieldMessageID, msg.ID,
		applog.FieldDataDir, msg.DataDir)

	accepted := importAccepted{
		ID:          msg.ID,
		DataDir:     msg.DataDir,
		RequestedAt: msg.RequestedAt.Format(time.RFC3339),
		Status:      "queued",
	}
	if asJSON {
		NewResponse().Status(http.StatusAccepted).JSON(accepted).Write(w)
		return
	}
	s.renderHTML(w, r, http.StatusAccepted, "import_queued.html", accepted)
}
