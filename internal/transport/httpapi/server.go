package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ThiagoLira/bookgraph-revisited-sub000/internal/domain"
	logpkg "github.com/ThiagoLira/bookgraph-revisited-sub000/internal/logger"
	resolutionuc "github.com/ThiagoLira/bookgraph-revisited-sub000/internal/usecase/resolution"
)

const maxBatchSize = 100

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server exposes citation resolution over HTTP.
type Server struct {
	resolver *resolutionuc.Service
	pinger   Pinger
	logger   *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(resolver *resolutionuc.Service, pinger Pinger, logger *zap.Logger) *Server {
	return &Server{
		resolver: resolver,
		pinger:   pinger,
		logger:   logger,
	}
}

// Register mounts all routes on the given router.
func (s *Server) Register(r chi.Router) {
	r.Post("/v1/resolve", s.ResolveCitation)
	r.Post("/v1/resolve/batch", s.ResolveBatch)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// CitationRequest is the wire shape of a single citation.
type CitationRequest struct {
	Title           string `json:"title"`
	Author          string `json:"author"`
	CanonicalAuthor string `json:"canonical_author,omitempty"`
	Note            string `json:"note,omitempty"`
}

// BatchRequest is the wire shape of POST /v1/resolve/batch.
type BatchRequest struct {
	Citations []CitationRequest `json:"citations"`
}

// BatchResponse carries per-citation results in request order.
type BatchResponse struct {
	Results []domain.Result `json:"results"`
}

// ResolveCitation handles POST /v1/resolve.
func (s *Server) ResolveCitation(w http.ResponseWriter, r *http.Request) {
	var req CitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}
	if req.Title == "" && req.Author == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "citation requires a title or an author")
		return
	}

	result, err := s.resolver.Resolve(r.Context(), citationFromRequest(req))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ResolveBatch handles POST /v1/resolve/batch. Citations resolve
// concurrently; the resolver's own semaphore bounds parallelism.
func (s *Server) ResolveBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}
	if len(req.Citations) == 0 || len(req.Citations) > maxBatchSize {
		writeError(w, http.StatusBadRequest, "validation_failed",
			"citations count must be between 1 and 100")
		return
	}

	log := logpkg.FromContext(r.Context())
	results := make([]domain.Result, len(req.Citations))
	var wg sync.WaitGroup
	for i, c := range req.Citations {
		wg.Add(1)
		go func(i int, c CitationRequest) {
			defer wg.Done()
			res, err := s.resolver.Resolve(r.Context(), citationFromRequest(c))
			if err != nil {
				log.Warn("batch item failed", zap.Int("index", i), zap.Error(err))
				res = domain.NotFound(err.Error())
			}
			results[i] = res
		}(i, c)
	}
	wg.Wait()

	writeJSON(w, http.StatusOK, BatchResponse{Results: results})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"database": "up"}
	status := "healthy"
	httpStatus := http.StatusOK
	if err := s.pinger.Ping(r.Context()); err != nil {
		s.logger.Warn("health check failed", zap.Error(err))
		checks["database"] = "down"
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": status,
		"checks": checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func citationFromRequest(req CitationRequest) domain.Citation {
	return domain.Citation{
		Title:           req.Title,
		Author:          req.Author,
		CanonicalAuthor: req.CanonicalAuthor,
		Note:            req.Note,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{
		"code":    code,
		"message": message,
	})
}

// safeDomainMessage returns a sentinel error message without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidQuery,
		domain.ErrIndexUnavailable,
		domain.ErrArbiterFailure,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	switch {
	case errors.Is(err, domain.ErrInvalidQuery):
		writeError(w, http.StatusBadRequest, "invalid_query", msg)
	case errors.Is(err, domain.ErrIndexUnavailable):
		writeError(w, http.StatusBadGateway, "index_unavailable", msg)
	case errors.Is(err, domain.ErrArbiterFailure):
		writeError(w, http.StatusBadGateway, "arbiter_failure", msg)
	case errors.Is(err, context.Canceled):
		writeError(w, http.StatusBadRequest, "request_canceled", "request canceled")
	default:
		s.logger.Error("internal error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}
