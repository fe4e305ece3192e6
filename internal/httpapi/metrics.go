package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"llmgate/internal/conversation"
	"llmgate/internal/inference"
	"llmgate/internal/staging"
)

var (
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "llmgate",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route, method and status code",
		},
		[]string{"route", "method", "code"},
	)

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "llmgate",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency; generation routes are dominated by the backend",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 15, 30},
		},
		[]string{"route", "method"},
	)

	responseBytes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "llmgate",
			Subsystem: "http",
			Name:      "response_bytes_total",
			Help:      "Response body bytes written by route",
		},
		[]string{"route"},
	)

	requestsInflight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "llmgate",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Requests currently being served",
		},
	)

	errorResponsesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "llmgate",
			Subsystem: "http",
			Name:      "error_responses_total",
			Help:      "Error responses by error kind",
		},
		[]string{"kind"},
	)
)

func init() {
	prometheus.MustRegister(requestsTotal, requestDuration, responseBytes, requestsInflight, errorResponsesTotal)
}

// MetricsMiddleware records request metrics labelled by the chi route
// pattern. The pattern is read after the handler returns, so the middleware
// works inside a router as well as wrapped around one.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if chi.RouteContext(r.Context()) == nil {
			r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, chi.NewRouteContext()))
		}
		requestsInflight.Inc()
		defer requestsInflight.Dec()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		code := ww.Status()
		if code == 0 {
			code = http.StatusOK
		}
		route := routeLabel(r)
		requestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(code)).Inc()
		requestDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
		responseBytes.WithLabelValues(route).Add(float64(ww.BytesWritten()))
	})
}

// routeLabel prefers the matched pattern; unmatched requests share one label
// so arbitrary paths cannot grow the series count.
func routeLabel(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

// IncrementErrorResponse counts an error response of the given kind.
func IncrementErrorResponse(kind string) {
	if kind == "" {
		kind = "unspecified"
	}
	errorResponsesTotal.WithLabelValues(kind).Inc()
}

func errorKind(err error) string {
	switch {
	case conversation.IsDuplicateSession(err):
		return "duplicate_session"
	case conversation.IsNotFound(err):
		return "not_found"
	case conversation.IsInvalidID(err):
		return "bad_request"
	case staging.IsUpload(err):
		return "upload"
	case inference.IsUnsupportedModel(err):
		return "unsupported_model"
	case inference.IsBackendUnavailable(err), errors.Is(err, context.DeadlineExceeded):
		return "backend_unavailable"
	default:
		return "internal"
	}
}
