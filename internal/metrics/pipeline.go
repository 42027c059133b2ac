package metrics

import "github.com/prometheus/client_golang/prometheus"

// Index synchronization metrics.
var (
	IndexSyncTasksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "index_sync_tasks_total",
			Help:      "Asynchronous vector index writes by operation and outcome",
		},
		[]string{"op", "status"}, // op: create/update/delete; status: ok/error/dropped
	)

	IndexSyncDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "index_sync_duration_seconds",
			Help:      "Duration of asynchronous vector index writes",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"op"},
	)

	IndexSyncQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "index_sync_queue_depth",
			Help:      "Pending asynchronous vector index writes",
		},
	)

	ResyncItemsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resync_items_total",
			Help:      "Products processed by full resync",
		},
		[]string{"status"},
	)
)

// Retrieval metrics.
var (
	SemanticDriftTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "semantic_drift_total",
			Help:      "Vector index hits that no longer resolve in the catalog",
		},
	)

	FilterDispatchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "filter_dispatch_total",
			Help:      "Filter searches by selected strategy",
		},
		[]string{"strategy"},
	)
)

// Generation metrics.
var (
	GenerationRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_requests_total",
			Help:      "Text generation requests by model and outcome",
		},
		[]string{"model", "status"},
	)

	GenerationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_request_duration_seconds",
			Help:      "Text generation request duration in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		},
		[]string{"model"},
	)

	GenerationTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_tokens_total",
			Help:      "Tokens consumed by text generation",
		},
		[]string{"model", "type"},
	)
)

func pipelineCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		IndexSyncTasksTotal,
		IndexSyncDuration,
		IndexSyncQueueDepth,
		ResyncItemsTotal,
		SemanticDriftTotal,
		FilterDispatchTotal,
		GenerationRequestsTotal,
		GenerationDuration,
		GenerationTokensTotal,
	}
}
