// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's collectors, registered on one registry.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal          *prometheus.CounterVec
	HTTPRequestDurationSeconds *prometheus.HistogramVec
	AuditEntriesTotal          *prometheus.CounterVec
	SinkFailuresTotal          *prometheus.CounterVec
}

// New creates the collectors and registers them, along with the Go runtime
// and process collectors, on a fresh registry labelled with serviceName.
func New(serviceName string) *Metrics {
	constLabels := prometheus.Labels{"service": serviceName}

	m := &Metrics{
		registry: prometheus.NewRegistry(),

		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "http_requests_total",
				Help:        "Total number of HTTP requests.",
				ConstLabels: constLabels,
			},
			[]string{"method", "path", "status"},
		),

		HTTPRequestDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:        "http_request_duration_seconds",
				Help:        "Duration of HTTP requests.",
				Buckets:     prometheus.DefBuckets,
				ConstLabels: constLabels,
			},
			[]string{"method", "path"},
		),

		AuditEntriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "gateway_audit_entries_total",
				Help:        "Total number of gateway audit entries recorded.",
				ConstLabels: constLabels,
			},
			[]string{"action"},
		),

		SinkFailuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "audit_sink_failures_total",
				Help:        "Total number of audit entries a sink failed to deliver.",
				ConstLabels: constLabels,
			},
			[]string{"sink"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequestsTotal,
		m.HTTPRequestDurationSeconds,
		m.AuditEntriesTotal,
		m.SinkFailuresTotal,
	)

	return m
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveHTTP records one finished request. path should be the route
// pattern, not the raw URL, to keep label cardinality bounded.
func (m *Metrics) ObserveHTTP(method, path string, status int, elapsed time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDurationSeconds.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

// IncAuditEntry counts one recorded audit entry.
func (m *Metrics) IncAuditEntry(action string) {
	m.AuditEntriesTotal.WithLabelValues(action).Inc()
}

// IncSinkFailure counts one failed delivery by the named sink.
func (m *Metrics) IncSinkFailure(sink string) {
	m.SinkFailuresTotal.WithLabelValues(sink).Inc()
}
