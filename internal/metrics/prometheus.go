package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the match board service

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchboard_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "matchboard_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Ingestion metrics
	IngestionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchboard_ingestions_total",
			Help: "Total number of CSV ingestions",
		},
		[]string{"status"},
	)

	IngestionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "matchboard_ingestion_duration_seconds",
			Help:    "Duration of CSV ingestions in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	GamesIngested = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "matchboard_games_ingested",
			Help: "Number of games stored by the last successful ingestion",
		},
	)

	// Selection metrics
	SelectionBatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchboard_selection_batches_total",
			Help: "Total number of selection update batches",
		},
		[]string{"status"},
	)

	SelectionUpdatesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matchboard_selection_updates_total",
			Help: "Total number of games updated by committed selection batches",
		},
	)

	SelectionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "matchboard_selection_duration_seconds",
			Help:    "Duration of selection update batches in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
	)

	// Method registry metrics
	MethodOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchboard_method_operations_total",
			Help: "Total number of method registry operations",
		},
		[]string{"operation", "status"},
	)

	// Query metrics
	GameQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchboard_game_queries_total",
			Help: "Total number of game list queries",
		},
		[]string{"selected_only", "status"},
	)

	// Error metrics
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchboard_errors_total",
			Help: "Total number of errors",
		},
		[]string{"operation", "code"},
	)

	// Header sidecar metrics
	HeaderSaveFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matchboard_header_save_failures_total",
			Help: "Total number of header saves that failed after games were committed",
		},
	)
)

// RecordHTTPRequest records a served HTTP request
func RecordHTTPRequest(method, route string, status int, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration)
}

// RecordIngestion records an ingestion attempt
func RecordIngestion(status string, inserted int, duration float64) {
	IngestionsTotal.WithLabelValues(status).Inc()
	IngestionDuration.Observe(duration)
	if status == StatusSuccess {
		GamesIngested.Set(float64(inserted))
	}
}

// RecordSelection records a selection batch
func RecordSelection(status string, updated int, duration float64) {
	SelectionBatchesTotal.WithLabelValues(status).Inc()
	SelectionDuration.Observe(duration)
	if status == StatusSuccess {
		SelectionUpdatesTotal.Add(float64(updated))
	}
}

// RecordMethodOperation records a method registry call
func RecordMethodOperation(operation, status string) {
	MethodOperationsTotal.WithLabelValues(operation, status).Inc()
}

// RecordGameQuery records a game list query
func RecordGameQuery(selectedOnly bool, status string) {
	label := "false"
	if selectedOnly {
		label = "true"
	}
	GameQueriesTotal.WithLabelValues(label, status).Inc()
}

// RecordError records a failed operation by error code
func RecordError(operation, code string) {
	ErrorsTotal.WithLabelValues(operation, code).Inc()
}

// Status label values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)
