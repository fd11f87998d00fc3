// Package api exposes the prediction service over HTTP: prediction calls,
// per-subject history, artifact metadata and health. Pipeline failures
// surface as a single server-error response carrying a human-readable
// cause; no partial-success shape exists.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"heartpredict/internal/ml"
	"heartpredict/internal/predict"
	"heartpredict/internal/store"
)

// Service is the pipeline surface the API depends on. The concrete
// predict.Service satisfies it; handler tests substitute a fake.
type Service interface {
	Analyze(ctx context.Context, userID, recordID, collection string) (*predict.Result, error)
	History(collection, userID string) ([]store.Record, error)
	Models() []ml.ModelInfo
}

type PredictRequest struct {
	UserID         string `json:"user_id"`
	RecordID       string `json:"record_id"`
	CollectionName string `json:"collection_name,omitempty"`
}

type PredictResponse struct {
	Predictions []ml.Prediction `json:"predictions"`
	Timestamp   time.Time       `json:"timestamp"`
	UserID      string          `json:"user_id"`
	Saved       bool            `json:"saved"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

// Server serves the prediction API.
type Server struct {
	svc               Service
	defaultCollection string
	server            *http.Server
}

// NewServer builds the router and the underlying HTTP server.
func NewServer(svc Service, port int, defaultCollection string) *Server {
	s := &Server{
		svc:               svc,
		defaultCollection: defaultCollection,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Get("/models", s.handleModels)
	r.Post("/predict", s.handlePredict)
	r.Get("/predictions/{userID}", s.handleHistory)

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Handler returns the configured router, for tests.
func (s *Server) Handler() http.Handler { return s.server.Handler }

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	log.Info().Str("addr", s.server.Addr).Msg("starting prediction API server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "Health Prediction API",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Models())
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req PredictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}
	if req.UserID == "" || req.RecordID == "" {
		writeError(w, http.StatusBadRequest, "user_id and record_id are required")
		return
	}
	collection := req.CollectionName
	if collection == "" {
		collection = s.defaultCollection
	}

	result, err := s.svc.Analyze(r.Context(), req.UserID, req.RecordID, collection)
	if err != nil {
		log.Error().Err(err).Str("user_id", req.UserID).Msg("prediction failed")
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Prediction failed: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, PredictResponse{
		Predictions: result.Predictions,
		Timestamp:   result.Timestamp,
		UserID:      result.UserID,
		Saved:       result.Saved,
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	collection := r.URL.Query().Get("collection_name")
	if collection == "" {
		collection = s.defaultCollection
	}

	records, err := s.svc.History(collection, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("history query failed")
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve predictions: %v", err))
		return
	}
	if records == nil {
		records = []store.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}
