package bandit

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ImpressionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bandit_impressions_total",
			Help: "Number of recommendations shown and counted by the exploration layer.",
		},
	)
	AcceptsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bandit_accepts_total",
			Help: "Number of accepted recommendations counted by the exploration layer.",
		},
	)
)

func init() {
	prometheus.MustRegister(ImpressionsTotal, AcceptsTotal)
}
