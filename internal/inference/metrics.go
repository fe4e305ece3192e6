package inference

import "github.com/prometheus/client_golang/prometheus"

var inferenceRequestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "llmgate",
		Subsystem: "inference",
		Name:      "requests_total",
		Help:      "Calls made to the inference server by operation and outcome",
	},
	[]string{"op", "outcome"},
)

func init() {
	prometheus.MustRegister(inferenceRequestsTotal)
}

func observe(op string, err error) {
	outcome := "ok"
	switch {
	case err == nil:
	case IsUnsupportedModel(err):
		outcome = "rejected"
	case IsBackendUnavailable(err):
		outcome = "unavailable"
	default:
		outcome = "error"
	}
	inferenceRequestsTotal.WithLabelValues(op, outcome).Inc()
}
