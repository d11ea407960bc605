// Package api exposes the recommendation service over HTTP.
//
// Information Hiding:
// - Routing and middleware order hidden behind Router
// - Failure kinds mapped to status codes in one place
// - Request decoding limits encapsulated

package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/richinex/shopwise/catalog"
	"github.com/richinex/shopwise/recommend"
)

// maxBodyBytes bounds a recommendation request body.
const maxBodyBytes = 64 << 10

// Recommender is the pipeline the server fronts.
type Recommender interface {
	Recommend(ctx context.Context, req recommend.Request) (recommend.Result, error)
}

// Server serves the catalog and recommendations.
type Server struct {
	recommender Recommender
	logger      *zap.Logger
	timeout     time.Duration
}

// NewServer creates a server. A zero timeout leaves requests unbounded.
func NewServer(recommender Recommender, logger *zap.Logger, timeout time.Duration) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{recommender: recommender, logger: logger, timeout: timeout}
}

// Router returns the HTTP handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	if s.timeout > 0 {
		r.Use(middleware.Timeout(s.timeout))
	}

	r.Get("/health", s.health)
	r.Get("/categories", s.listCategories)
	r.Get("/categories/{name}", s.getCategory)
	r.Post("/recommendations", s.createRecommendation)

	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Duration("elapsed", time.Since(start)))
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSONStatus(w, map[string]string{"status": "ok"}, http.StatusOK)
}

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	writeJSONStatus(w, catalog.All(), http.StatusOK)
}

func (s *Server) getCategory(w http.ResponseWriter, r *http.Request) {
	category, err := catalog.Resolve(chi.URLParam(r, "name"))
	if err != nil {
		writeJSONStatus(w, errorBody{Error: err.Error(), Kind: "not_found"}, http.StatusNotFound)
		return
	}
	writeJSONStatus(w, category, http.StatusOK)
}

func (s *Server) createRecommendation(w http.ResponseWriter, r *http.Request) {
	var req recommend.Request
	if err := decodeJSON(r, &req); err != nil {
		writeJSONStatus(w, errorBody{
			Error: recommend.Message(err),
			Kind:  recommend.KindQueryFailure.String(),
		}, http.StatusBadRequest)
		return
	}

	result, err := s.recommender.Recommend(r.Context(), req)
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			s.logger.Warn("recommendation failed", zap.Error(err),
				zap.String("kind", recommend.KindOf(err).String()))
		}
		writeJSONStatus(w, errorBody{
			Error:  recommend.Message(err),
			Kind:   recommend.KindOf(err).String(),
			Query:  result.Query,
			TaskID: result.TaskID,
		}, status)
		return
	}
	writeJSONStatus(w, result, http.StatusOK)
}

type errorBody struct {
	Error  string `json:"error"`
	Kind   string `json:"kind"`
	Query  string `json:"query,omitempty"`
	TaskID string `json:"task_id,omitempty"`
}

func statusFor(err error) int {
	switch {
	case recommend.IsInvalidRequest(err):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: decode body: %w", recommend.ErrInvalidRequest, err)
	}
	return nil
}

func writeJSONStatus(w http.ResponseWriter, value any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(value)
}
