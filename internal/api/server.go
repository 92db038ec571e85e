// Package api exposes the HTTP interface for the curation service.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/curatorhq/curator/internal/archive"
	"github.com/curatorhq/curator/internal/config"
	"github.com/curatorhq/curator/internal/curator"
	"github.com/curatorhq/curator/internal/metrics"
	"github.com/curatorhq/curator/internal/normalize"
	"github.com/curatorhq/curator/internal/workflow"
)

// ImageArchiver saves a record's images somewhere durable. The local
// archiver downloads them itself; in remote mode the backend does the
// saving.
type ImageArchiver interface {
	ArchiveImages(ctx context.Context, record curator.ProductRecord) (archive.Result, error)
}

// Server wires HTTP handlers to the workflow, builder, and archiver.
type Server struct {
	router   chi.Router
	flow     *workflow.Workflow
	builder  *normalize.Builder
	archiver ImageArchiver
	cfg      config.Config
	logger   *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(
	flow *workflow.Workflow,
	builder *normalize.Builder,
	archiver ImageArchiver,
	cfg config.Config,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		flow:     flow,
		builder:  builder,
		archiver: archiver,
		cfg:      cfg,
		logger:   logger,
	}
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger))
	r.Use(recoverMiddleware(logger))
	r.Use(metrics.Middleware)
	r.Use(timeoutMiddleware(60 * time.Second))
	if cfg.Auth.Enabled {
		r.Use(apiKeyMiddleware(cfg.Auth.APIKey))
	}

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", s.listProducts)
			r.Post("/", s.createProduct)
			r.Post("/preview", s.previewProduct)
			r.Delete("/", s.deleteAllProducts)
			r.Route("/{product_id}", func(r chi.Router) {
				r.Get("/", s.getProduct)
				r.Delete("/", s.deleteProduct)
				r.Put("/status", s.setStatus)
				r.Put("/season", s.setSeason)
				r.Post("/archive-images", s.archiveImages)
			})
		})
		r.Route("/seasons", func(r chi.Router) {
			r.Get("/", s.listSeasons)
			r.Post("/", s.createSeason)
			r.Put("/{season_name}", s.renameSeason)
			r.Delete("/{season_name}", s.deleteSeason)
		})
	})

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

type previewRequest struct {
	URL string `json:"url"`
}

type previewResponse struct {
	Draft    curator.Draft         `json:"draft"`
	Degraded normalize.Degradation `json:"degraded"`
}

func (s *Server) previewProduct(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}
	draft, deg, err := s.builder.BuildDraft(r.Context(), req.URL)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, previewResponse{Draft: draft, Degraded: deg})
}

type createProductResponse struct {
	Record   curator.ProductRecord `json:"record"`
	Degraded normalize.Degradation `json:"degraded"`
}

func (s *Server) createProduct(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}
	draft, deg, err := s.builder.BuildDraft(r.Context(), req.URL)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	record, err := s.flow.Add(r.Context(), draft)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, createProductResponse{Record: record, Degraded: deg})
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	filter := workflow.Filter(r.URL.Query().Get("filter"))
	if !filter.Valid() {
		writeError(w, http.StatusBadRequest, "unknown filter")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": s.flow.Records(filter)})
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	record, err := s.flow.Record(chi.URLParam(r, "product_id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"record": record})
}

type statusRequest struct {
	Status curator.Status `json:"status"`
}

func (s *Server) setStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	degraded, err := s.flow.SetStatus(r.Context(), chi.URLParam(r, "product_id"), req.Status)
	if err != nil {
		if errors.Is(err, curator.ErrNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   req.Status,
		"degraded": degraded,
	})
}

type seasonRequest struct {
	Season string `json:"season"`
}

func (s *Server) setSeason(w http.ResponseWriter, r *http.Request) {
	var req seasonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	err := s.flow.AssignSeason(r.Context(), chi.URLParam(r, "product_id"), req.Season)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"season": req.Season})
	case errors.Is(err, curator.ErrNotFound):
		writeError(w, http.StatusNotFound, "product not found")
	case errors.Is(err, curator.ErrSeasonNotFound):
		writeError(w, http.StatusNotFound, "season not found")
	default:
		writeError(w, http.StatusBadGateway, err.Error())
	}
}

func (s *Server) deleteProduct(w http.ResponseWriter, r *http.Request) {
	degraded, err := s.flow.Delete(r.Context(), chi.URLParam(r, "product_id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"degraded": degraded})
}

func (s *Server) deleteAllProducts(w http.ResponseWriter, r *http.Request) {
	degraded := s.flow.DeleteAll(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"degraded": degraded})
}

func (s *Server) archiveImages(w http.ResponseWriter, r *http.Request) {
	record, err := s.flow.Record(chi.URLParam(r, "product_id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	result, err := s.archiver.ArchiveImages(r.Context(), record)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) listSeasons(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"seasons": s.flow.Seasons()})
}

type seasonNameRequest struct {
	Name    string `json:"name"`
	NewName string `json:"new_name"`
}

func (s *Server) createSeason(w http.ResponseWriter, r *http.Request) {
	var req seasonNameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeError(w, http.StatusBadRequest, "season name is required")
		return
	}
	switch err := s.flow.CreateSeason(r.Context(), req.Name); {
	case err == nil:
		writeJSON(w, http.StatusCreated, map[string]string{"name": req.Name})
	case errors.Is(err, curator.ErrSeasonExists):
		writeError(w, http.StatusConflict, "season already exists")
	default:
		writeError(w, http.StatusBadGateway, err.Error())
	}
}

func (s *Server) renameSeason(w http.ResponseWriter, r *http.Request) {
	var req seasonNameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.NewName == "" {
		writeError(w, http.StatusBadRequest, "new season name is required")
		return
	}
	oldName := chi.URLParam(r, "season_name")
	switch err := s.flow.RenameSeason(r.Context(), oldName, req.NewName); {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"name": req.NewName})
	case errors.Is(err, curator.ErrSeasonNotFound):
		writeError(w, http.StatusNotFound, "season not found")
	case errors.Is(err, curator.ErrSeasonExists):
		writeError(w, http.StatusConflict, "season already exists")
	default:
		writeError(w, http.StatusBadGateway, err.Error())
	}
}

func (s *Server) deleteSeason(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "season_name")
	switch err := s.flow.DeleteSeason(r.Context(), name); {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"name": name})
	case errors.Is(err, curator.ErrSeasonNotFound):
		writeError(w, http.StatusNotFound, "season not found")
	default:
		writeError(w, http.StatusBadGateway, err.Error())
	}
}

type requestIDKey struct{}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func loggingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			logger.Info("request completed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.status),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			)
		})
	}
}

func recoverMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic recovered", zap.Any("error", rec))
					writeError(w, http.StatusInternalServerError, "internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func timeoutMiddleware(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, "request timed out")
	}
}

func apiKeyMiddleware(expected string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("X-API-Key")
			if key == "" {
				key = r.URL.Query().Get("api_key")
			}
			if key != expected {
				writeError(w, http.StatusForbidden, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
