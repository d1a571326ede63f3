// Package metrics holds the prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the collectors for one registry. A nil *Metrics is valid
// and records nothing, which keeps callers free of nil checks.
type Metrics struct {
	registry *prometheus.Registry

	operations   *prometheus.CounterVec
	opDuration   *prometheus.HistogramVec
	gigsReturned *prometheus.HistogramVec
	httpRequests *prometheus.CounterVec
}

// New creates the collectors and registers them, plus the Go runtime and
// process collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}
	m.operations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gigs",
		Name:      "operations_total",
		Help:      "Gig operations by name and outcome.",
	}, []string{"operation", "outcome"})
	m.opDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "gigs",
		Name:      "operation_duration_seconds",
		Help:      "Latency of gig operations including the store round trip.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})
	m.gigsReturned = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "gigs",
		Name:      "list_size",
		Help:      "Number of gigs returned by list operations.",
		Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250},
	}, []string{"operation"})
	m.httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gigs",
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "code"})

	m.registry.MustRegister(
		m.operations,
		m.opDuration,
		m.gigsReturned,
		m.httpRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveOperation records one completed operation.
func (m *Metrics) ObserveOperation(op, outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(op, outcome).Inc()
	m.opDuration.WithLabelValues(op).Observe(took.Seconds())
}

// ObserveListSize records how many gigs a list operation returned.
func (m *Metrics) ObserveListSize(op string, n int) {
	if m == nil {
		return
	}
	m.gigsReturned.WithLabelValues(op).Observe(float64(n))
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(method, route, code string) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, code).Inc()
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
