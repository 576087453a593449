package metrics

import "github.com/prometheus/client_golang/prometheus"

// Resolution Prometheus metrics.
var (
	ResolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bookgraph",
			Name:      "resolutions_total",
			Help:      "Total number of completed citation resolutions",
		},
		[]string{"mode", "match_type"},
	)

	ResolutionRetriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "bookgraph",
			Name:      "resolution_retries_total",
			Help:      "Total number of resolution retry attempts",
		},
	)

	ArbiterRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bookgraph",
			Name:      "arbiter_requests_total",
			Help:      "Total number of arbiter calls",
		},
		[]string{"model", "status"},
	)

	ArbiterRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "bookgraph",
			Name:      "arbiter_request_duration_seconds",
			Help:      "Arbiter call duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"model"},
	)

	CatalogSearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "bookgraph",
			Name:      "catalog_search_duration_seconds",
			Help:      "Catalog search duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"catalog"},
	)
)

// RegisterResolutionMetrics registers all resolution metrics explicitly
// (no init()).
func RegisterResolutionMetrics() {
	prometheus.MustRegister(ResolutionsTotal)
	prometheus.MustRegister(ResolutionRetriesTotal)
	prometheus.MustRegister(ArbiterRequestsTotal)
	prometheus.MustRegister(ArbiterRequestDuration)
	prometheus.MustRegister(CatalogSearchDuration)
}
