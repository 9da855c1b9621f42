// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the collectors of one registry so tests can use their own.
type Metrics struct {
	Registry *prometheus.Registry

	httpInFlight prometheus.Gauge
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	completions  prometheus.Counter
	datastoreUp  prometheus.Gauge
}

// New creates the collectors and registers them on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "habits",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "habits",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		}, []string{"method", "path", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "habits",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		}, []string{"method", "path"}),
		completions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "habits",
			Name:      "completions_total",
			Help:      "Total number of successful habit completions.",
		}),
		datastoreUp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "habits",
			Name:      "datastore_up",
			Help:      "1 if the last datastore heartbeat succeeded, 0 otherwise.",
		}),
	}

	m.Registry.MustRegister(
		m.httpInFlight,
		m.httpRequests,
		m.httpDuration,
		m.completions,
		m.datastoreUp,
	)
	return m
}

func (m *Metrics) IncrementInFlight() { m.httpInFlight.Inc() }
func (m *Metrics) DecrementInFlight() { m.httpInFlight.Dec() }

// RecordHTTPRequest counts one finished request.
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.httpRequests.WithLabelValues(method, path, status).Inc()
	m.httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordCompletion counts one habit marked complete.
func (m *Metrics) RecordCompletion() { m.completions.Inc() }

// SetDatastoreUp records the outcome of a datastore heartbeat.
func (m *Metrics) SetDatastoreUp(up bool) {
	if up {
		m.datastoreUp.Set(1)
		return
	}
	m.datastoreUp.Set(0)
}
