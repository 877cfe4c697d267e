package trace

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	applog "weatherman/internal/log"
)

var requestIDPattern = regexp.MustCompile(`^req_[0-9a-f]{16}$`)

func TestGenerateRequestID(t *testing.T) {
	a, b := GenerateRequestID(), GenerateRequestID()
	if !requestIDPattern.MatchString(a) {
		t.Fatalf("unexpected request ID format %q", a)
	}
	if a == b {
		t.Fatal("request IDs should be unique")
	}
}

func TestMiddleware(t *testing.T) {
	m := NewMiddleware(applog.Discard(), func(*http.Request) string { return "10.0.0.1" })

	var seenID string
	var hasLogger bool
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = GetRequestID(r.Context())
		hasLogger = r.Context().Value(applog.LoggerContextKey) != nil
		if r.URL.Path == "/boom" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("ok"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/year-extremes?year=2011", nil))

	if !requestIDPattern.MatchString(seenID) {
		t.Fatalf("handler saw request ID %q", seenID)
	}
	if got := rec.Header().Get(RequestIDHeader); got != seenID {
		t.Fatalf("response header %q != context ID %q", got, seenID)
	}
	if !hasLogger {
		t.Fatal("expected request-scoped logger in context")
	}

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))

	metrics := m.GetMetrics()
	if metrics.TotalRequests != 2 || metrics.ServerErrors != 1 {
		t.Fatalf("unexpected metrics %+v", metrics)
	}
}

func TestGetRequestIDMissing(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if id := GetRequestID(r.Context()); id != "" {
		t.Fatalf("expected empty ID, got %q", id)
	}
}
