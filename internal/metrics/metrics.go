// Package metrics provides Prometheus metrics collection for the
// prediction service. It covers the serving pipeline end to end: ingestion,
// encoding, model inference and persistence, exposed via the Prometheus
// metrics endpoint for monitoring and alerting.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the prediction service.
type Metrics struct {
	// Pipeline metrics
	PredictionsTotal   prometheus.Counter   // Total number of completed prediction calls
	PredictionFailures prometheus.Counter   // Total number of failed prediction calls
	PipelineLatency    prometheus.Histogram // End-to-end prediction latency in seconds
	ModelLatency       prometheus.Histogram // Ensemble inference latency in seconds
	PredictionScores   prometheus.Histogram // Distribution of positive-class probabilities

	// Ingestion metrics
	IngestionFailures prometheus.Counter   // Total number of failed upstream fetches
	IngestLatency     prometheus.Histogram // Upstream fetch latency in seconds

	// Encoding metrics
	EncodingFailures prometheus.Counter // Total number of records rejected by the encoder

	// Persistence metrics
	StoreWrites    prometheus.Counter // Total number of prediction records written
	StoreFailures  prometheus.Counter // Total number of failed store writes
	HistoryQueries prometheus.Counter // Total number of history lookups
}

// New creates and registers all metrics using the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates metrics with a custom registry (useful for
// tests, which need isolated collection).
func NewWithRegistry(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		PredictionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "predictions_total",
			Help: "Total number of completed prediction calls",
		}),
		PredictionFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "prediction_failures_total",
			Help: "Total number of failed prediction calls",
		}),
		PipelineLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "pipeline_latency_seconds",
			Help:    "End-to-end prediction latency in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}),
		ModelLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "model_latency_seconds",
			Help:    "Ensemble inference latency in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		PredictionScores: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "prediction_scores",
			Help:    "Distribution of positive-class probabilities",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		}),
		IngestionFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "ingestion_failures_total",
			Help: "Total number of failed upstream fetches",
		}),
		IngestLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "ingest_latency_seconds",
			Help:    "Upstream fetch latency in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		EncodingFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "encoding_failures_total",
			Help: "Total number of records rejected by the encoder",
		}),
		StoreWrites: factory.NewCounter(prometheus.CounterOpts{
			Name: "store_writes_total",
			Help: "Total number of prediction records written",
		}),
		StoreFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "store_failures_total",
			Help: "Total number of failed store writes",
		}),
		HistoryQueries: factory.NewCounter(prometheus.CounterOpts{
			Name: "history_queries_total",
			Help: "Total number of history lookups",
		}),
	}
}
