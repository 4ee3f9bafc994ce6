package metrics

import "github.com/prometheus/client_golang/prometheus"

// Resource Prometheus metrics.
var (
	ListCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "srdex",
			Name:      "list_cache_total",
			Help:      "List cache lookups by result",
		},
		[]string{"result"}, // "hit" / "miss" / "error"
	)

	StoreQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "srdex",
			Name:      "store_query_duration_seconds",
			Help:      "Document store query duration in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"op", "status"},
	)
)

var resourceMetricsRegistered bool

// RegisterResourceMetrics registers Prometheus resource metrics. Must be called once from main.
func RegisterResourceMetrics() {
	if resourceMetricsRegistered {
		return
	}
	prometheus.MustRegister(ListCacheTotal)
	prometheus.MustRegister(StoreQueryDuration)
	resourceMetricsRegistered = true
}
