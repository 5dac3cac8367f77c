package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ClientMetrics observes the controller's outbound traffic and workflow
// outcomes on a private registry.
type ClientMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	submissionsTotal *prometheus.CounterVec
	suggestDiscarded prometheus.Counter
	sessionTeardowns prometheus.Counter
	exportsTotal     *prometheus.CounterVec
}

func NewClientMetrics(service string) *ClientMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "aec",
			Subsystem: "backend",
			Name:      "requests_total",
			Help:      "Total outbound backend requests by operation and status.",
		},
		[]string{"service", "operation", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "aec",
			Subsystem: "backend",
			Name:      "request_duration_seconds",
			Help:      "Outbound backend request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "operation"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "aec",
			Subsystem: "backend",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight outbound backend requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	submissionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "aec",
			Subsystem: "workflow",
			Name:      "submissions_total",
			Help:      "Total analysis submissions by mode and outcome.",
		},
		[]string{"service", "mode", "outcome"},
	)
	suggestDiscarded := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "aec",
			Subsystem: "suggest",
			Name:      "responses_discarded_total",
			Help:      "Suggestion responses dropped by the stale-input guard.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	sessionTeardowns := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "aec",
			Subsystem: "session",
			Name:      "teardowns_total",
			Help:      "Sessions cleared after a failed identity check.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	exportsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "aec",
			Subsystem: "export",
			Name:      "artifacts_total",
			Help:      "Total exported case artifacts by format.",
		},
		[]string{"service", "format"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		submissionsTotal,
		suggestDiscarded,
		sessionTeardowns,
		exportsTotal,
	)

	return &ClientMetrics{
		registry:         registry,
		requestTotal:     requestTotal,
		requestDuration:  requestDuration,
		requestInFlight:  requestInFlight,
		submissionsTotal: submissionsTotal,
		suggestDiscarded: suggestDiscarded,
		sessionTeardowns: sessionTeardowns,
		exportsTotal:     exportsTotal,
	}
}

func (m *ClientMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *ClientMetrics) StartRequest() {
	m.requestInFlight.Inc()
}

func (m *ClientMetrics) FinishRequest(service, operation, status string, duration time.Duration) {
	m.requestInFlight.Dec()
	if status == "" {
		status = "unknown"
	}
	m.requestTotal.WithLabelValues(service, operation, status).Inc()
	m.requestDuration.WithLabelValues(service, operation).Observe(duration.Seconds())
}

func (m *ClientMetrics) RecordSubmission(service, mode, outcome string) {
	m.submissionsTotal.WithLabelValues(service, mode, outcome).Inc()
}

func (m *ClientMetrics) RecordSuggestDiscard() {
	m.suggestDiscarded.Inc()
}

func (m *ClientMetrics) RecordSessionTeardown() {
	m.sessionTeardowns.Inc()
}

func (m *ClientMetrics) RecordExport(service, format string) {
	m.exportsTotal.WithLabelValues(service, format).Inc()
}
