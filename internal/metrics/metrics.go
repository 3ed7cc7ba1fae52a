package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Selection set metrics
var (
	// RowSyncsTotal tracks row synchronization operations by link table and status
	RowSyncsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "selection_row_syncs_total",
			Help: "Total number of row synchronization operations by link table and status",
		},
		[]string{"link_table", "status"},
	)

	// RowSyncDuration tracks row synchronization duration
	RowSyncDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "selection_row_sync_duration_seconds",
			Help:    "Row synchronization duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"link_table"},
	)

	// RowSyncRejections tracks syncs rejected before any write
	RowSyncRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "selection_row_sync_rejections_total",
			Help: "Total number of row syncs rejected by scope or existence checks",
		},
		[]string{"link_table", "reason"},
	)

	// ClonesTotal tracks selection set clone operations by status
	ClonesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "selection_clones_total",
			Help: "Total number of selection set clone operations by status",
		},
		[]string{"status"},
	)

	// CloneDuration tracks selection set clone duration
	CloneDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "selection_clone_duration_seconds",
			Help:    "Selection set clone duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	// CloneRowsDropped tracks scoped rows dropped during clone re-scoping
	CloneRowsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "selection_clone_rows_dropped_total",
			Help: "Total number of scoped rows dropped during clone re-scoping",
		},
		[]string{"link_table"},
	)

	// GlobalBootstrapsTotal tracks global row bootstrap operations
	GlobalBootstrapsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "selection_global_bootstraps_total",
			Help: "Total number of global row bootstrap operations by status",
		},
		[]string{"status"},
	)

	// GlobalRowsInserted tracks rows inserted by the global bootstrapper
	GlobalRowsInserted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "selection_global_rows_inserted_total",
			Help: "Total number of missing global rows inserted by catalog",
		},
		[]string{"catalog"},
	)
)

// HTTP metrics
var (
	// HTTPRequestsTotal tracks HTTP requests by method, route and status code
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests by method, route and status code",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration tracks HTTP request duration by method and route
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)
)

// Visibility metrics
var (
	// VisibilityResolvesTotal tracks visibility resolutions by cache outcome
	VisibilityResolvesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "visibility_resolves_total",
			Help: "Total number of visibility resolutions by cache outcome",
		},
		[]string{"cache"},
	)

	// VisibilityResolveDuration tracks visibility resolution duration
	VisibilityResolveDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "visibility_resolve_duration_seconds",
			Help:    "Visibility resolution duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
		},
	)

	// VisibilityRulesEvaluated tracks rules evaluated per resolution
	VisibilityRulesEvaluated = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "visibility_rules_evaluated",
			Help:    "Number of rules evaluated per visibility resolution",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250},
		},
	)
)
