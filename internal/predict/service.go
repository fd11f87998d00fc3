// Package predict orchestrates the serving pipeline: ingest a subject's
// raw attributes, encode, align against the frozen feature registry,
// scale, query the model ensemble and record the result. The pipeline is a
// stateless request/response path; all shared state is the immutable
// artifact bundle loaded at process start.
package predict

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"heartpredict/internal/encoding"
	"heartpredict/internal/ml"
	"heartpredict/internal/schema"
	"heartpredict/internal/store"
)

// Ingestor assembles a raw feature record from upstream health data.
type Ingestor interface {
	FetchFeatureRecord(ctx context.Context, userID, recordID string) (*schema.FeatureRecord, error)
}

// Recorder persists prediction results with replace semantics.
type Recorder interface {
	Save(collection, userID string, predictions []ml.Prediction) (string, error)
	History(collection, userID string) ([]store.Record, error)
}

// Metrics is the narrow recording interface the service consumes.
type Metrics interface {
	PredictionsInc()
	PredictionFailuresInc()
	IngestionFailuresInc()
	EncodingFailuresInc()
	StoreWritesInc()
	StoreFailuresInc()
	HistoryQueriesInc()
	PipelineLatencyObserve(float64)
	ModelLatencyObserve(float64)
	IngestLatencyObserve(float64)
	PredictionScoreObserve(float64)
}

// Result is the outcome of one prediction call. Saved is false when the
// pipeline succeeded but the record could not be durably written; the
// predictions are still returned to the caller.
type Result struct {
	UserID      string
	Predictions []ml.Prediction
	Timestamp   time.Time
	Saved       bool
	RecordID    string
}

// Service runs the prediction pipeline against a shared artifact bundle.
type Service struct {
	bundle  *ml.Bundle
	ingest  Ingestor
	records Recorder
	metrics Metrics
}

func NewService(bundle *ml.Bundle, ingest Ingestor, records Recorder, metrics Metrics) *Service {
	return &Service{bundle: bundle, ingest: ingest, records: records, metrics: metrics}
}

// Models returns the artifact metadata for the loaded ensemble.
func (s *Service) Models() []ml.ModelInfo {
	return s.bundle.Info
}

// Analyze runs the full pipeline for one subject. Any stage failure before
// persistence aborts the call; the core never emits partial predictions
// for a failed request. A persistence failure degrades to Saved=false.
func (s *Service) Analyze(ctx context.Context, userID, recordID, collection string) (*Result, error) {
	start := time.Now()
	defer func() {
		s.metrics.PipelineLatencyObserve(time.Since(start).Seconds())
	}()

	ingestStart := time.Now()
	record, err := s.ingest.FetchFeatureRecord(ctx, userID, recordID)
	s.metrics.IngestLatencyObserve(time.Since(ingestStart).Seconds())
	if err != nil {
		s.metrics.IngestionFailuresInc()
		s.metrics.PredictionFailuresInc()
		return nil, fmt.Errorf("failed to fetch health data: %w", err)
	}

	encoded, err := s.bundle.Encoders.Encode(*record)
	if err != nil {
		var encErr *encoding.EncodingError
		if errors.As(err, &encErr) {
			s.metrics.EncodingFailuresInc()
		}
		s.metrics.PredictionFailuresInc()
		return nil, err
	}

	vec, err := ml.Align(encoded, s.bundle.Registry)
	if err != nil {
		s.metrics.PredictionFailuresInc()
		return nil, err
	}

	scaled, err := s.bundle.Scaler.Transform(vec)
	if err != nil {
		s.metrics.PredictionFailuresInc()
		return nil, err
	}

	modelStart := time.Now()
	predictions, err := s.bundle.Ensemble.Predict(scaled)
	s.metrics.ModelLatencyObserve(time.Since(modelStart).Seconds())
	if err != nil {
		s.metrics.PredictionFailuresInc()
		return nil, err
	}
	for _, p := range predictions {
		s.metrics.PredictionScoreObserve(p.Score)
	}
	s.metrics.PredictionsInc()

	result := &Result{
		UserID:      userID,
		Predictions: predictions,
		Timestamp:   time.Now().UTC(),
	}

	id, err := s.records.Save(collection, userID, predictions)
	if err != nil {
		s.metrics.StoreFailuresInc()
		log.Warn().Err(err).Str("user_id", userID).Str("collection", collection).
			Msg("prediction not durably saved")
		return result, nil
	}
	s.metrics.StoreWritesInc()
	result.Saved = true
	result.RecordID = id

	log.Info().
		Str("user_id", userID).
		Str("record_id", recordID).
		Str("collection", collection).
		Int("models", len(predictions)).
		Dur("elapsed", time.Since(start)).
		Msg("prediction completed")

	return result, nil
}

// History returns the stored prediction records for a subject.
func (s *Service) History(collection, userID string) ([]store.Record, error) {
	s.metrics.HistoryQueriesInc()
	return s.records.History(collection, userID)
}
