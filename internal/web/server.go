// Package web provides the HTTP API for bulk imports.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/rikuxxer/demo-GEO-admin-automation-ver1.0-sub002/internal/config"
	"github.com/rikuxxer/demo-GEO-admin-automation-ver1.0-sub002/internal/core"
	"github.com/rikuxxer/demo-GEO-admin-automation-ver1.0-sub002/internal/history"
	"github.com/rikuxxer/demo-GEO-admin-automation-ver1.0-sub002/internal/web/middleware"
)

// HistoryStore records and reads import runs. *history.Store implements it.
type HistoryStore interface {
	Record(ctx context.Context, id, filename string, result *core.ParseResult) (*history.Run, error)
	List(ctx context.Context, limit int) ([]history.Run, error)
	Get(ctx context.Context, id string) (*history.Run, error)
}

// ResultCache stores parse results by upload digest. *cache.ResultCache
// implements it.
type ResultCache interface {
	Get(ctx context.Context, digest string) (*core.ParseResult, bool, error)
	Set(ctx context.Context, digest string, result *core.ParseResult) error
}

// Deps are the optional collaborators of a Server. Nil History or Cache
// disables that feature; a nil Limiter is built from the import config.
type Deps struct {
	History HistoryStore
	Cache   ResultCache
	Limiter *ImportLimiter
}

// Server is the HTTP server for the import API.
type Server struct {
	cfg        *config.Config
	history    HistoryStore
	cache      ResultCache
	limiter    *ImportLimiter
	limiters   []*rateLimiter
	importRate func(http.Handler) http.Handler
	router     *chi.Mux
	server     *http.Server
}

// NewServer creates a new Server instance.
func NewServer(cfg *config.Config, deps Deps) *Server {
	s := &Server{
		cfg:     cfg,
		history: deps.History,
		cache:   deps.Cache,
		limiter: deps.Limiter,
		router:  chi.NewRouter(),
	}
	if s.limiter == nil {
		s.limiter = NewImportLimiter(cfg.Import.MaxConcurrent, cfg.Import.MaxWaitTime)
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(middleware.ParseTrustedProxies(s.cfg.Security.TrustedProxies)))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)

	if len(s.cfg.Security.AllowedOrigins) > 0 {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.cfg.Security.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "HX-Request", "HX-Target"},
			ExposedHeaders: []string{"X-Import-ID", "X-Import-Errors", "Content-Disposition"},
			MaxAge:         300,
		}))
	}

	s.router.Use(securityHeaders)
	if s.cfg.Server.RequestTimeout > 0 {
		s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))
	}

	s.importRate = func(next http.Handler) http.Handler { return next }
	if s.cfg.Rate.Enabled {
		general := newRateLimiter(s.cfg.Rate.RequestsPerMinute, time.Minute)
		imports := newRateLimiter(s.cfg.Rate.ImportLimit, time.Minute)
		s.limiters = append(s.limiters, general, imports)
		s.router.Use(s.rateLimit(general))
		s.importRate = s.rateLimit(imports)
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api/imports", func(r chi.Router) {
		r.Use(middleware.APIKeyAuth(s.cfg.Security))

		r.With(s.importRate).Post("/", s.handleImport)
		r.With(s.importRate).Post("/report", s.handleImportReport)
		r.Get("/history", s.handleImportHistory)
		r.Get("/{importID}", s.handleImportDetail)
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", addr)
	return s.server.ListenAndServe()
}

// Shutdown stops accepting imports, waits for in-flight parses, then
// gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Close()
	if err := s.limiter.WaitForDrain(ctx); err != nil {
		slog.Warn("imports still running at shutdown", "active", s.limiter.ActiveCount(), "error", err)
	}
	for _, rl := range s.limiters {
		rl.close()
	}
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Limiter returns the import limiter.
func (s *Server) Limiter() *ImportLimiter {
	return s.limiter
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string        `json:"status"`
	Imports LimiterStatus `json:"imports"`
	History bool          `json:"history"`
	Cache   bool          `json:"cache"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if s.limiter.Status().Closed {
		status = "draining"
	}
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  status,
		Imports: s.limiter.Status(),
		History: s.history != nil,
		Cache:   s.cache != nil,
	})
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes v as JSON with the given status.
// Encoding errors are only logged since headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
