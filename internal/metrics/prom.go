package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ExecutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "honeyeat_executions_total",
			Help: "Total number of engine executions",
		},
		[]string{"operation", "mode", "outcome"},
	)

	ExecutionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "honeyeat_execution_duration_seconds",
			Help:    "Duration of engine executions in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"operation"},
	)

	CandidatesConsidered = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "honeyeat_candidates",
			Help:    "Number of eligible candidates per execution",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
		},
		[]string{"operation"},
	)

	BotUpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "honeyeat_bot_updates_total",
			Help: "Total number of Telegram updates handled",
		},
		[]string{"kind"},
	)
)

func observe(m ExecutionMetric) {
	ExecutionsTotal.WithLabelValues(m.Operation, m.Mode, m.Outcome).Inc()
	ExecutionDuration.WithLabelValues(m.Operation).Observe(m.Latency.Seconds())
	CandidatesConsidered.WithLabelValues(m.Operation).Observe(float64(m.Candidates))
}
