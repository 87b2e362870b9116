package analyzer

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for backend calls.
type Metrics struct {
	Registry        *prometheus.Registry
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	InFlight        prometheus.Gauge
	Submissions     *prometheus.CounterVec
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sem37_backend_requests_total",
			Help: "Backend API requests by endpoint and outcome.",
		},
		[]string{"endpoint", "outcome"},
	)
	duration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sem37_backend_request_duration_seconds",
			Help:    "Backend API request latency.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)
	inFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sem37_backend_requests_in_flight",
			Help: "Backend API requests currently awaiting a response.",
		},
	)

	submissions := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sem37_tool_submissions_total",
			Help: "Tool submissions by tool and outcome.",
		},
		[]string{"tool", "outcome"},
	)

	registry.MustRegister(requests, duration, inFlight, submissions)

	return &Metrics{
		Registry:        registry,
		RequestsTotal:   requests,
		RequestDuration: duration,
		InFlight:        inFlight,
		Submissions:     submissions,
	}
}

// Start marks a request as in flight.
func (m *Metrics) Start() {
	if m == nil {
		return
	}
	m.InFlight.Inc()
}

// Observe records a finished request.
func (m *Metrics) Observe(endpoint, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.InFlight.Dec()
	m.RequestsTotal.WithLabelValues(endpoint, outcome).Inc()
	m.RequestDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

// ToolObserver counts how tool submissions end.
type ToolObserver struct {
	m *Metrics
}

func (m *Metrics) Tools() ToolObserver {
	return ToolObserver{m: m}
}

func (o ToolObserver) Observe(tool, outcome string) {
	if o.m == nil {
		return
	}
	o.m.Submissions.WithLabelValues(tool, outcome).Inc()
}
