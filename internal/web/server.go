// Package web provides the read-only HTTP API that publishes the ingestion registry.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"

	"github.com/JonMunkholm/bronze/internal/bronze"
	"github.com/JonMunkholm/bronze/internal/config"
	"github.com/JonMunkholm/bronze/internal/preflight"
	webmw "github.com/JonMunkholm/bronze/internal/web/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP server for the registry API.
type Server struct {
	registry *bronze.Registry
	checker  *preflight.Checker // nil disables /api/preflight
	cfg      config.ServerConfig
	router   *chi.Mux
	server   *http.Server
}

// NewServer creates a Server publishing registry.
// checker may be nil, in which case preflight requests return 503.
func NewServer(registry *bronze.Registry, checker *preflight.Checker, cfg config.ServerConfig) *Server {
	s := &Server{
		registry: registry,
		checker:  checker,
		cfg:      cfg,
		router:   chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(webmw.Logger)
	s.router.Use(middleware.Recoverer)
	if s.cfg.RequestTimeout > 0 {
		s.router.Use(middleware.Timeout(s.cfg.RequestTimeout))
	}
	s.router.Use(securityHeaders)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/registry", s.handleRegistry)
		r.Get("/mappings", s.handleListMappings)
		r.Get("/mappings/{table}", s.handleGetMapping)
		r.Get("/sources", s.handleListSources)
		r.Get("/preflight", s.handlePreflight)
	})
}

// Start begins listening for HTTP requests on the configured address.
// It returns http.ErrServerClosed once Shutdown begins, before in-flight
// requests have drained.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Serve accepts HTTP requests on ln. It behaves like Start otherwise.
func (s *Server) Serve(ln net.Listener) error {
	return s.server.Serve(ln)
}

// Shutdown gracefully stops the server, waiting for in-flight requests
// until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		w.Header().Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes v as JSON with the given status.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
