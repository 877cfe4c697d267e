// Package http serves the weather reports as HTML pages and JSON views.
package http

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"weatherman/internal/amqp"
	"weatherman/internal/cache"
	"weatherman/internal/core"
	applog "weatherman/internal/log"
	"weatherman/internal/middleware/ratelimit"
	"weatherman/internal/middleware/security"
	"weatherman/internal/middleware/trace"
	appweb "weatherman/web"
)

// ImportRequester publishes directory imports for the worker.
type ImportRequester interface {
	RequestImport(ctx context.Context, dir string) (*amqp.ImportRequestMessage, error)
	Enabled() bool
}

// Options configures optional server dependencies. Zero values pick
// defaults; a nil Imports disables POST /imports.
type Options struct {
	Logger             *applog.Logger
	Backend            string
	Imports            ImportRequester
	Ready              func(ctx context.Context) error
	CacheSize          int
	CacheTTL           time.Duration
	RateLimitPerMinute int
}

type Server struct {
	http.Server
	templates *template.Template
	readings  []core.Reading
	backend   string
	imports   ImportRequester
	ready     func(ctx context.Context) error

	logger     *applog.Logger
	structured *applog.StructuredLogger

	views        *cache.LRU[any]
	cacheManager *cache.Manager
	cacheSweep   time.Duration

	rateLimiter     *ratelimit.Limiter
	traceMiddleware *trace.Middleware
	detector        *security.Detector

	appMetrics appMetrics
}

type appMetrics struct {
	uptime          time.Time
	reportsRendered atomic.Int64
	reportsNoData   atomic.Int64
	importsQueued   atomic.Int64
}

// NewServer builds a server over rs. The slice is shared by every request
// and must not be modified afterwards.
func NewServer(addr string, rs []core.Reading, opts Options) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = applog.Discard()
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 256
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 10 * time.Minute
	}

	t, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	mux := http.NewServeMux()
	s := &Server{
		Server: http.Server{
			Addr:           addr,
			ReadTimeout:    10 * time.Second,
			WriteTimeout:   10 * time.Second,
			IdleTimeout:    60 * time.Second,
			MaxHeaderBytes: 1 << 16,
		},
		templates:    t,
		readings:     rs,
		backend:      opts.Backend,
		imports:      opts.Imports,
		ready:        opts.Ready,
		logger:       logger.WithComponent(applog.ComponentHTTP),
		structured:   applog.NewStructuredLogger(logger),
		views:        cache.NewLRU[any](opts.CacheSize, opts.CacheTTL),
		cacheManager: cache.NewManager(logger),
		cacheSweep:   opts.CacheTTL,
		rateLimiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		detector:     security.NewDetector(),
	}
	s.appMetrics.uptime = time.Now()
	s.cacheManager.Register(s.views)
	s.traceMiddleware = trace.NewMiddleware(logger, s.detector.ClientIP)

	static, err := fs.Sub(appweb.StaticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("mount static assets: %w", err)
	}
	mux.Handle("/static/", security.StaticAssetMiddleware(3600)(
		http.StripPrefix("/static/", http.FileServer(http.FS(static)))))

	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/metrics", s.handleMetrics)
	mux.HandleFunc("/year-extremes", s.handleYearExtremes)
	mux.HandleFunc("/monthly-averages", s.handleMonthlyAverages)
	mux.HandleFunc("/basic-chart", s.handleBasicChart)
	mux.HandleFunc("/net-chart", s.handleNetChart)
	mux.Handle("/imports", s.rateLimiter.Middleware(s.detector.ClientIP, s.handleRateLimited)(
		http.HandlerFunc(s.handleCreateImport)))

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	s.Handler = s.traceMiddleware.Middleware(headers.Middleware(s.withProbeDetection(mux)))

	s.logger.Info("HTTP server configured",
		applog.FieldReadings, len(rs),
		applog.FieldBackend, opts.Backend,
		"imports_enabled", s.importsEnabled())
	return s, nil
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", "addr", s.Addr)
		if err := s.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("listen and serve: %w", err)
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	s.logger.Info("Shutting down HTTP server", applog.FieldOperation, applog.OpShutdown)
	if err := s.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}

// RunCacheCleanup sweeps expired views until ctx is cancelled.
func (s *Server) RunCacheCleanup(ctx context.Context) error {
	return s.cacheManager.Run(ctx, s.cacheSweep)
}

// RunRateLimitCleanup forgets idle clients until ctx is cancelled.
func (s *Server) RunRateLimitCleanup(ctx context.Context) error {
	return s.rateLimiter.Run(ctx)
}

func (s *Server) importsEnabled() bool {
	return s.imports != nil && s.imports.Enabled()
}

// withProbeDetection logs requests that look like vulnerability scans. They
// are still served normally and mostly end in a 404.
func (s *Server) withProbeDetection(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.Suspicious(r) {
			applog.FromContext(r.Context()).WithComponent(applog.ComponentSecurity).WarnContext(r.Context(),
				"Suspicious request",
				applog.FieldPath, r.URL.Path,
				applog.FieldClientIP, s.detector.ClientIP(r))
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	applog.FromContext(r.Context()).WithComponent(applog.ComponentRateLimit).WarnContext(r.Context(),
		"Rate limit exceeded",
		applog.FieldClientIP, s.detector.ClientIP(r),
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.", WantsJSON(r)).Write(w)
}

var templateFuncs = template.FuncMap{
	"bar": func(n int) string {
		if n <= 0 {
			return ""
		}
		return strings.Repeat("+", n)
	},
	"dict": func(kv ...any) (map[string]any, error) {
		if len(kv)%2 != 0 {
			return nil, fmt.Errorf("dict needs key/value pairs, got %d arguments", len(kv))
		}
		m := make(map[string]any, len(kv)/2)
		for i := 0; i < len(kv); i += 2 {
			key, ok := kv[i].(string)
			if !ok {
				return nil, fmt.Errorf("dict key %v is not a string", kv[i])
			}
			m[key] = kv[i+1]
		}
		return m, nil
	},
	"measure": func(m core.Measurement) string {
		if !m.Valid {
			return "n/a"
		}
		return fmt.Sprintf("%.2f", m.Value)
	},
}
