package conversation

import "github.com/prometheus/client_golang/prometheus"

var (
	conversationsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "llmgate",
			Subsystem: "conversations",
			Name:      "active",
			Help:      "Conversations held in memory",
		},
	)

	turnsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "llmgate",
			Subsystem: "conversations",
			Name:      "turns_total",
			Help:      "Append-and-generate turns by outcome",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(conversationsActive, turnsTotal)
}
