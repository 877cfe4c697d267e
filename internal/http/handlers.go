package http

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"weatherman/internal/core"
)

type indexData struct {
	Readings       int
	Backend        string
	ImportsEnabled bool
	Year           int
	Month          int
	Months         []monthOption
}

type monthOption struct {
	Number int
	Name   string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		NotFoundError("Page not found", WantsJSON(r)).Write(w)
		return
	}
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}

	data := indexData{
		Readings:       len(s.readings),
		Backend:        s.backend,
		ImportsEnabled: s.importsEnabled(),
		Year:           s.defaultYear(),
		Month:          1,
	}
	for m := 1; m <= 12; m++ {
		data.Months = append(data.Months, monthOption{Number: m, Name: core.MonthName(m)})
	}
	s.renderHTML(w, r, http.StatusOK, "index.html", data)
}

// defaultYear is the year of the latest reading, used to prefill forms.
func (s *Server) defaultYear() int {
	year := 0
	for _, rd := range s.readings {
		if y := rd.Date.Year(); y > year {
			year = y
		}
	}
	if year == 0 {
		year = time.Now().Year()
	}
	return year
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.appMetrics.uptime).Round(time.Second).String(),
	}).Write(w)
}

// handleReady checks templates, loaded data and the backend ping.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	code := http.StatusOK
	checks := make(map[string]any)

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status, code = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	checks["readings"] = len(s.readings)

	switch {
	case s.ready == nil:
		checks["backend"] = "ok"
	case ctx.Err() != nil:
		checks["backend"] = "timeout"
		status, code = "not_ready", http.StatusServiceUnavailable
	default:
		if err := s.ready(ctx); err != nil {
			checks["backend"] = fmt.Sprintf("failed: %v", err)
			status, code = "not_ready", http.StatusServiceUnavailable
		} else {
			checks["backend"] = "ok"
		}
	}

	checks["imports"] = "disabled"
	if s.importsEnabled() {
		checks["imports"] = "enabled"
	}
	checks["cache"] = map[string]any{"entries": s.views.Len()}
	checks["rate_limiter"] = map[string]any{"active_clients": s.rateLimiter.GetMetrics().ClientCount}

	NewResponse().Status(code).JSON(map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	}).Write(w)
}

// handleMetrics writes counters in the Prometheus text exposition format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	traceMetrics := s.traceMiddleware.GetMetrics()
	rateMetrics := s.rateLimiter.GetMetrics()
	cacheStats := s.views.Stats()

	var buf bytes.Buffer
	metric := func(name, kind, help string, value any) {
		fmt.Fprintf(&buf, "# HELP %s %s\n", name, help)
		fmt.Fprintf(&buf, "# TYPE %s %s\n", name, kind)
		fmt.Fprintf(&buf, "%s %v\n\n", name, value)
	}

	metric("http_requests_total", "counter", "Total number of HTTP requests", traceMetrics.TotalRequests)
	metric("http_server_errors_total", "counter", "Total number of 5xx responses", traceMetrics.ServerErrors)
	metric("http_response_time_avg_seconds", "gauge", "Average response time", traceMetrics.AverageResponseTime.Seconds())
	metric("weather_readings_loaded", "gauge", "Readings held in memory", len(s.readings))
	metric("reports_rendered_total", "counter", "Reports rendered successfully", s.appMetrics.reportsRendered.Load())
	metric("reports_no_data_total", "counter", "Report requests without matching readings", s.appMetrics.reportsNoData.Load())
	metric("imports_requested_total", "counter", "Import requests published", s.appMetrics.importsQueued.Load())
	metric("cache_hits_total", "counter", "View cache hits", cacheStats.Hits)
	metric("cache_misses_total", "counter", "View cache misses", cacheStats.Misses)
	metric("cache_entries", "gauge", "Views currently cached", cacheStats.Entries)
	metric("rate_limit_rejected_total", "counter", "Requests rejected by the rate limiter", rateMetrics.Rejected)
	metric("rate_limit_active_clients", "gauge", "Clients tracked by the rate limiter", rateMetrics.ClientCount)
	metric("security_suspicious_requests_total", "counter", "Requests that looked like probes", s.detector.SuspiciousRequests())
	metric("uptime_seconds", "gauge", "Seconds since the server started", int64(time.Since(s.appMetrics.uptime).Seconds()))

	NewResponse().Text(buf.String()).Write(w)
}
