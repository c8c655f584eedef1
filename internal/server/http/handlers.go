package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/scholarscope/professor-search-service/internal/aggregate"
	"github.com/scholarscope/professor-search-service/internal/cache"
	"github.com/scholarscope/professor-search-service/internal/domain"
)

// maxRequestBodySize is the 1 MB limit for request bodies.
const maxRequestBodySize = 1 << 20

// searchRequest is the JSON request body for a professor search.
type searchRequest struct {
	Universities    []string `json:"universities" validate:"required,min=1,max=10,dive,min=2,max=200"`
	Topics          []string `json:"topics" validate:"required,min=1,max=10,dive,min=2,max=200"`
	IncludeStudents bool     `json:"include_students"`
	YearFrom        int      `json:"year_from" validate:"omitempty,min=1900,max=2100"`
	YearTo          int      `json:"year_to" validate:"omitempty,min=1900,max=2100"`
	MinCitations    int      `json:"min_citations" validate:"min=0"`
}

// searchProfessors handles POST /api/v1/search. It runs (or serves from
// cache) a full aggregation and returns professors, papers, and the
// completeness verdict.
func (s *Server) searchProfessors(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	var req searchRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON request body")
		return
	}

	if err := s.validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}
	if req.YearFrom > 0 && req.YearTo > 0 && req.YearTo < req.YearFrom {
		writeDomainError(w, &domain.ValidationError{Field: "year_to", Message: "must not be before year_from"})
		return
	}

	if s.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.requestTimeout)
		defer cancel()
	}

	result, err := s.searcher.Search(ctx, aggregate.Query{
		Universities:    req.Universities,
		Topics:          req.Topics,
		IncludeStudents: req.IncludeStudents,
		YearFrom:        req.YearFrom,
		YearTo:          req.YearTo,
		MinCitations:    req.MinCitations,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resultToResponse(result))
}

// listSources handles GET /api/v1/sources.
func (s *Server) listSources(w http.ResponseWriter, r *http.Request) {
	enabled := s.registry.EnabledSources()
	resp := make([]sourceResponse, 0, len(enabled))
	for _, src := range enabled {
		resp = append(resp, sourceResponse{
			Type:    string(src.SourceType()),
			Name:    src.Name(),
			Enabled: true,
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"sources": resp})
}

// cacheStats handles GET /api/v1/cache/stats.
func (s *Server) cacheStats(w http.ResponseWriter, r *http.Request) {
	if s.resultCache == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{"enabled": false})
		return
	}
	stats := s.resultCache.Stats()
	writeJSON(w, http.StatusOK, cacheStatsResponse{
		Enabled: true,
		Stats:   stats,
	})
}

// purgeCache handles DELETE /api/v1/cache.
func (s *Server) purgeCache(w http.ResponseWriter, r *http.Request) {
	if s.resultCache == nil {
		writeError(w, http.StatusConflict, "cache is disabled")
		return
	}
	s.resultCache.Purge()
	s.logger.Info().Msg("cache purged")
	writeJSON(w, http.StatusOK, map[string]string{"status": "purged"})
}

// cacheStatsResponse wraps cache statistics for JSON.
type cacheStatsResponse struct {
	Enabled bool        `json:"enabled"`
	Stats   cache.Stats `json:"stats"`
}

// sourceResponse describes one configured source.
type sourceResponse struct {
	Type    string `json:"type"`
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

// writeDomainError maps domain errors to HTTP status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrAllSourcesFailed):
		writeError(w, http.StatusBadGateway, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "search timed out")
	case errors.Is(err, context.Canceled):
		writeError(w, http.StatusBadRequest, "request cancelled")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// validationMessage flattens validator errors into a single readable message.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		parts := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			parts = append(parts, fmt.Sprintf("%s failed %s validation", strings.ToLower(fe.Field()), fe.Tag()))
		}
		return "invalid request: " + strings.Join(parts, "; ")
	}
	return "invalid request"
}
