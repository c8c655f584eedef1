package httpserver

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/scholarscope/professor-search-service/internal/observability"
)

// loggingMiddleware logs one line per request and records HTTP metrics
// labeled by the chi route pattern rather than the raw path, keeping metric
// cardinality bounded.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		requestID := middleware.GetReqID(r.Context())
		ctx := observability.WithRequestID(r.Context(), requestID)

		next.ServeHTTP(ww, r.WithContext(ctx))

		elapsed := time.Since(start)
		pattern := chi.RouteContext(r.Context()).RoutePattern()
		if pattern == "" {
			pattern = "unmatched"
		}

		if s.metrics != nil {
			s.metrics.HTTPRequestsTotal.WithLabelValues(
				r.Method, pattern, strconv.Itoa(ww.Status())).Inc()
			s.metrics.HTTPRequestDuration.WithLabelValues(
				r.Method, pattern).Observe(elapsed.Seconds())
		}

		s.logger.Info().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("elapsed", elapsed).
			Msg("request handled")
	})
}

// jsonContentTypeMiddleware sets Content-Type: application/json for all responses.
func jsonContentTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}
