// Package metrics holds the Prometheus collectors of the catalog service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups every collector. Each instance owns its registry so tests
// can build as many as they like.
type Metrics struct {
	Registry *prometheus.Registry

	EventsPublished *prometheus.CounterVec
	Subscribers     prometheus.Gauge
	CacheRequests   *prometheus.CounterVec
	NotModified     prometheus.Counter
	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
}

// New registers all collectors on a fresh registry, along with the Go and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		EventsPublished: f.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_events_published_total",
			Help: "Change events published on the notification bus.",
		}, []string{"kind"}),
		Subscribers: f.NewGauge(prometheus.GaugeOpts{
			Name: "catalog_event_subscribers",
			Help: "Push connections currently attached to the notification bus.",
		}),
		CacheRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_cache_requests_total",
			Help: "Brand cache lookups by result (hit, miss, error).",
		}, []string{"result"}),
		NotModified: f.NewCounter(prometheus.CounterOpts{
			Name: "catalog_http_not_modified_total",
			Help: "Conditional requests answered with 304.",
		}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "catalog_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// CacheResult records one cache lookup. Safe on a nil receiver.
func (m *Metrics) CacheResult(result string) {
	if m == nil {
		return
	}
	m.CacheRequests.WithLabelValues(result).Inc()
}
