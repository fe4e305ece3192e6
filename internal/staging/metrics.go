package staging

import "github.com/prometheus/client_golang/prometheus"

var (
	stagedFilesActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "llmgate",
			Subsystem: "staging",
			Name:      "files_active",
			Help:      "Uploads currently persisted in the staging directory",
		},
	)

	stagedUploadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "llmgate",
			Subsystem: "staging",
			Name:      "uploads_total",
			Help:      "Uploads processed by outcome",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(stagedFilesActive, stagedUploadsTotal)
}
