// Package httpserver provides the HTTP REST API server for the professor
// search service.
package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/scholarscope/professor-search-service/internal/cache"
	"github.com/scholarscope/professor-search-service/internal/observability"
	"github.com/scholarscope/professor-search-service/internal/sources"
)

// Server is the HTTP REST API server.
type Server struct {
	router         chi.Router
	httpServer     *http.Server
	searcher       cache.Searcher
	resultCache    *cache.SearchCache
	registry       *sources.Registry
	validate       *validator.Validate
	metrics        *observability.Metrics
	logger         zerolog.Logger
	requestTimeout time.Duration
	metricsPath    string
}

// Config holds HTTP server configuration.
type Config struct {
	Address         string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration

	// MetricsPath exposes the Prometheus endpoint when non-empty.
	MetricsPath string
}

// NewServer creates a new HTTP server with all dependencies. resultCache may
// be nil when caching is disabled; the cache endpoints then report it as such.
func NewServer(
	cfg Config,
	searcher cache.Searcher,
	resultCache *cache.SearchCache,
	registry *sources.Registry,
	metrics *observability.Metrics,
	logger zerolog.Logger,
) *Server {
	s := &Server{
		searcher:       searcher,
		resultCache:    resultCache,
		registry:       registry,
		validate:       validator.New(),
		metrics:        metrics,
		logger:         logger.With().Str("component", "http-server").Logger(),
		requestTimeout: cfg.RequestTimeout,
		metricsPath:    cfg.MetricsPath,
	}

	s.router = s.buildRouter()

	s.httpServer = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// buildRouter creates the chi router with all middleware and routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.loggingMiddleware)
	r.Use(jsonContentTypeMiddleware)

	// Health endpoints
	r.Get("/healthz", s.healthHandler)
	r.Get("/readyz", s.readinessHandler)

	if s.metricsPath != "" {
		r.Method(http.MethodGet, s.metricsPath, promhttp.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/search", s.searchProfessors)
		r.Get("/sources", s.listSources)
		r.Get("/cache/stats", s.cacheStats)
		r.Delete("/cache", s.purgeCache)
	})

	return r
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info().Str("address", s.httpServer.Addr).Msg("HTTP server starting")
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on HTTP address: %w", err)
	}
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler returns the router, used by tests to serve requests in-process.
func (s *Server) Handler() http.Handler {
	return s.router
}

// healthHandler returns basic liveness status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// readinessHandler returns readiness status: the service is ready when at
// least one source is enabled.
func (s *Server) readinessHandler(w http.ResponseWriter, r *http.Request) {
	enabled := s.registry.EnabledSources()
	if len(enabled) == 0 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not_ready",
			"error":  "no sources enabled",
		})
		return
	}
	names := make([]string, 0, len(enabled))
	for _, src := range enabled {
		names = append(names, src.Name())
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ready",
		"sources": names,
	})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Best-effort log; headers already sent.
		_ = err
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{
		"error": message,
	})
}
