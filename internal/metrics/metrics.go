// Package metrics exposes Prometheus counters for authentication activity.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "esportlife"

// Result labels.
const (
	ResultSuccess   = "success"
	ResultFailure   = "failure"
	ResultDuplicate = "duplicate"
	ResultMismatch  = "mismatch"
	ResultInvalid   = "invalid"
	ResultError     = "error"
)

// Metrics holds the collectors registered for one server instance.
type Metrics struct {
	registry *prometheus.Registry

	Logins          *prometheus.CounterVec
	Registrations   *prometheus.CounterVec
	SessionsCreated prometheus.Counter
	Logouts         prometheus.Counter
}

// New creates a Metrics instance backed by its own registry, with the Go
// runtime and process collectors included.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		Logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Login attempts by result.",
		}, []string{"result"}),
		Registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_total",
			Help:      "Registration attempts by result.",
		}, []string{"result"}),
		SessionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_created_total",
			Help:      "Sessions issued after a successful login.",
		}),
		Logouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logouts_total",
			Help:      "Logout requests.",
		}),
	}
	reg.MustRegister(
		m.Logins,
		m.Registrations,
		m.SessionsCreated,
		m.Logouts,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Sizer is implemented by session stores that can report how many sessions
// they currently hold.
type Sizer interface {
	Len() int
}

// TrackActiveSessions registers a gauge reading the store's size at scrape time.
func (m *Metrics) TrackActiveSessions(s Sizer) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_sessions",
		Help:      "Sessions currently held by the in-memory store.",
	}, func() float64 { return float64(s.Len()) }))
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
