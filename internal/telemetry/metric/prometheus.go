package metric

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "trakjobs"

// Registry holds all client metrics on a dedicated prometheus registry.
//
// All methods are safe on a nil *Registry, so components can be built
// without metrics.
type Registry struct {
	registry *prometheus.Registry

	// API request metrics
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge

	// Session metrics
	SessionInvalidations *prometheus.CounterVec

	// List controller metrics
	ListFetches *prometheus.CounterVec
}

var (
	globalOnce     sync.Once
	globalRegistry *Registry
)

// NewRegistry creates a registry with client metrics plus the Go runtime
// and process collectors.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total API requests sent, by method, route and response status.",
		}, []string{"method", "route", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "API request latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		RequestsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "requests_in_flight",
			Help:      "API requests awaiting a response.",
		}),
		SessionInvalidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "invalidations_total",
			Help:      "Sessions cleared after a token-problem 401, by error code.",
		}, []string{"code"}),
		ListFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "list",
			Name:      "fetches_total",
			Help:      "List controller fetches, by outcome (ok, error, dropped).",
		}, []string{"outcome"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.RequestsTotal,
		r.RequestDuration,
		r.RequestsInFlight,
		r.SessionInvalidations,
		r.ListFetches,
	)
	return r
}

// Global returns the process-wide registry.
func Global() *Registry {
	globalOnce.Do(func() {
		globalRegistry = NewRegistry()
	})
	return globalRegistry
}

// Handler returns an HTTP handler serving the global registry.
func Handler() http.Handler {
	return Global().Handler()
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (r *Registry) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Gatherer exposes the underlying registry for tests and custom exporters.
func (r *Registry) Gatherer() prometheus.Gatherer {
	if r == nil {
		return prometheus.NewRegistry()
	}
	return r.registry
}

// RecordRequest counts one completed request. status is the HTTP status
// code, or "error" when no response arrived.
func (r *Registry) RecordRequest(method, route, status string) {
	if r == nil {
		return
	}
	r.RequestsTotal.WithLabelValues(method, route, status).Inc()
}

// ObserveRequestDuration records the latency of one request.
func (r *Registry) ObserveRequestDuration(method, route string, seconds float64) {
	if r == nil {
		return
	}
	r.RequestDuration.WithLabelValues(method, route).Observe(seconds)
}

// IncInFlight marks a request as sent.
func (r *Registry) IncInFlight() {
	if r == nil {
		return
	}
	r.RequestsInFlight.Inc()
}

// DecInFlight marks a request as finished.
func (r *Registry) DecInFlight() {
	if r == nil {
		return
	}
	r.RequestsInFlight.Dec()
}

// RecordSessionInvalidation counts a session cleared for the given error code.
func (r *Registry) RecordSessionInvalidation(code string) {
	if r == nil {
		return
	}
	r.SessionInvalidations.WithLabelValues(code).Inc()
}

// RecordListFetch counts a list fetch outcome.
func (r *Registry) RecordListFetch(outcome string) {
	if r == nil {
		return
	}
	r.ListFetches.WithLabelValues(outcome).Inc()
}
