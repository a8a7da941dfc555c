package metrics

import "github.com/prometheus/client_golang/prometheus"

// Recommendation pipeline metrics.
var (
	RetrievalAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "retrieval_attempts_total",
			Help:      "Retrieval attempts by stage and outcome",
		},
		[]string{"stage", "outcome"}, // outcome: "hit" / "empty" / "error"
	)

	RetrievalDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "retrieval_duration_seconds",
			Help:      "Layered retrieval duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"stage"}, // winning stage, "none" when nothing matched
	)

	ExpansionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "price_expansions_total",
			Help:      "Price window widenings by outcome",
		},
		[]string{"outcome"}, // "improved" / "empty"
	)

	RecommendationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "recommendations_total",
			Help:      "Recommendation runs by priority mode and result",
		},
		[]string{"priority", "result"}, // result: "full" / "partial" / "empty"
	)

	StoreBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "store_breaker_state",
			Help:      "Catalog store circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	StoreRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "store_requests_total",
			Help:      "Catalog store calls through the circuit breaker",
		},
		[]string{"op", "result"}, // result: "success" / "failure" / "rejected"
	)
)

var pipelineMetricsRegistered bool

// RegisterPipelineMetrics registers the pipeline metrics. Must be called once from main.
func RegisterPipelineMetrics() {
	if pipelineMetricsRegistered {
		return
	}
	prometheus.MustRegister(RetrievalAttemptsTotal)
	prometheus.MustRegister(RetrievalDuration)
	prometheus.MustRegister(ExpansionsTotal)
	prometheus.MustRegister(RecommendationsTotal)
	prometheus.MustRegister(StoreBreakerState)
	prometheus.MustRegister(StoreRequestsTotal)
	pipelineMetricsRegistered = true
}
