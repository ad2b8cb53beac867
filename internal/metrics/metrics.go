package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hearthwatch_predictions_total",
			Help: "Predictions attempted, by outcome",
		},
		[]string{"status"},
	)

	InferenceLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hearthwatch_inference_seconds",
			Help:    "Model inference latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	HistoryAppends = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hearthwatch_history_appends_total",
			Help: "History rows written, by outcome",
		},
		[]string{"status"},
	)

	SimulatedReadings = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hearthwatch_simulated_readings_total",
			Help: "Synthetic readings fed through the pipeline",
		},
	)

	BackupRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hearthwatch_backup_runs_total",
			Help: "History backup attempts, by outcome",
		},
		[]string{"status"},
	)
)
