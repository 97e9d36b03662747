package recommend

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RecommendRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_requests_total",
			Help: "Count of recommendation calls by outcome.",
		},
		[]string{"outcome"},
	)

	RecommendLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommend_latency_seconds",
			Help:    "Time spent ranking one cart.",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
		},
	)

	CandidatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_candidates_total",
			Help: "Merged candidates by generator reason.",
		},
		[]string{"reason"},
	)

	EventLogFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_event_log_failures_total",
			Help: "Feedback events that could not be appended to the event log.",
		},
		[]string{"kind"},
	)

	ModelSwapsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "recommend_model_swaps_total",
			Help: "Number of times the scoring model was replaced at runtime.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RecommendRequestsTotal,
		RecommendLatency,
		CandidatesTotal,
		EventLogFailuresTotal,
		ModelSwapsTotal,
	)
}
