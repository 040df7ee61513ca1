// Package web provides the HTTP server and handlers for the language
// detection service.
package web

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/langtools/langcodes/internal/audit"
	"github.com/langtools/langcodes/internal/config"
	"github.com/langtools/langcodes/internal/detect"
	"github.com/langtools/langcodes/internal/langdata"
	"github.com/langtools/langcodes/internal/metrics"
)

// Server is the HTTP server for the detection service.
type Server struct {
	cfg      *config.Config
	detector *detect.Detector
	auditLog *audit.Store // nil when the audit store is disabled
	router   *chi.Mux
	server   *http.Server

	mu    sync.RWMutex
	table *langdata.Table
}

// NewServer creates a Server around a loaded language table.
// auditLog may be nil.
func NewServer(table *langdata.Table, detector *detect.Detector, auditLog *audit.Store, cfg *config.Config) *Server {
	s := &Server{
		cfg:      cfg,
		detector: detector,
		auditLog: auditLog,
		router:   chi.NewRouter(),
		table:    table,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Table returns the current language table.
func (s *Server) Table() *langdata.Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table
}

// swapTable replaces the language table after a rebuild.
func (s *Server) swapTable(t *langdata.Table) {
	s.mu.Lock()
	s.table = t
	s.mu.Unlock()
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))

	s.router.Use(requestMetrics)
	s.router.Use(securityHeaders)

	if s.cfg.Rate.Enabled {
		limiter := newRateLimiter(s.cfg.Rate.RequestsPerMinute, time.Minute)
		s.router.Use(limiter.middleware)
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// The original augmentation surface: usage document and batch
	// detection at the root.
	s.router.Get("/", s.handleUsage)
	s.router.Post("/", s.handleDetect)

	s.router.Get("/healthz", s.handleHealth)
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Route("/api", func(r chi.Router) {
		// Language table
		r.Get("/languages", s.handleListLanguages)
		r.Get("/languages/{code}", s.handleGetLanguage)

		// Table rebuild from an uploaded source listing
		r.Post("/table/rebuild", s.handleRebuildTable)

		// Detection audit log
		r.Get("/audit-log", s.handleAuditLog)
	})

	s.router.NotFound(s.handleNotFound)
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// requestMetrics counts every request and accumulates wall time.
func requestMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		metrics.ObserveRequest(start)
	})
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Prevent MIME type sniffing
		w.Header().Set("X-Content-Type-Options", "nosniff")

		// Prevent clickjacking
		w.Header().Set("X-Frame-Options", "DENY")

		// Control referrer information
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		next.ServeHTTP(w, r)
	})
}
