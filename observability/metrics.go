package observability

import "github.com/prometheus/client_golang/prometheus"

// Index Manager / registry metrics.
var (
	ReindexTasksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mu_search",
		Subsystem: "index_manager",
		Name:      "reindex_tasks_total",
		Help:      "Number of ensure/update/invalidate/remove calls handled by the index manager.",
	}, []string{"type", "reason"})

	ReindexDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "mu_search",
		Subsystem: "index_manager",
		Name:      "reindex_duration_seconds",
		Help:      "Duration of a full index rebuild, by type.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"type"})

	RegistryOpsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mu_search",
		Subsystem: "registry",
		Name:      "ops_total",
		Help:      "Search index metadata registry mutations, by type and operation.",
	}, []string{"type", "op"})
)

// Index Builder metrics.
var (
	DocumentsIndexedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mu_search",
		Subsystem: "index_builder",
		Name:      "documents_total",
		Help:      "Documents processed during bulk index builds, by type and outcome.",
	}, []string{"type", "outcome"})
)

// Delta Processor metrics.
var (
	DeltaEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mu_search",
		Subsystem: "delta",
		Name:      "events_total",
		Help:      "Delta batches received, by outcome (processed or rejected).",
	}, []string{"outcome"})

	DeltaProcessingDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "mu_search",
		Subsystem: "delta",
		Name:      "processing_duration_seconds",
		Help:      "Time spent resolving root subjects for one delta batch.",
		Buckets:   prometheus.DefBuckets,
	})
)

// Update Handler metrics.
var (
	UpdateHandlerQueueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "mu_search",
		Subsystem: "update_handler",
		Name:      "queue_depth",
		Help:      "Number of distinct (subject, type) update tasks currently in-flight.",
	})

	UpdateHandlerTasksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mu_search",
		Subsystem: "update_handler",
		Name:      "tasks_total",
		Help:      "Update handler tasks completed, by result.",
	}, []string{"result"})
)

// DocumentBuildFailuresTotal counts per-document Document Builder
// failures that were logged and skipped rather than aborting their
// batch or task.
var DocumentBuildFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "mu_search",
	Subsystem: "docbuilder",
	Name:      "build_failures_total",
	Help:      "Document Builder failures, by type.",
}, []string{"type"})

// Registry returns a prometheus.Registry with every collector above
// registered, ready to be served over HTTP.
func Registry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		ReindexTasksTotal,
		ReindexDurationSeconds,
		RegistryOpsTotal,
		DocumentsIndexedTotal,
		DeltaEventsTotal,
		DeltaProcessingDurationSeconds,
		UpdateHandlerQueueDepth,
		UpdateHandlerTasksTotal,
		DocumentBuildFailuresTotal,
	)
	return reg
}
