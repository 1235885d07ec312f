// Package metrics exposes page, session and event counters in the
// Prometheus text format.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Label values.
const (
	StatusOK    = "ok"
	StatusError = "error"
	OtherEvent  = "other"
)

// Metrics holds the docsite collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry
	events   map[string]bool

	PageRenders   *prometheus.CounterVec
	LiveSessions  prometheus.Gauge
	SessionsTotal prometheus.Counter
	Events        *prometheus.CounterVec
	EventDuration *prometheus.HistogramVec
}

// New creates and registers the collectors under namespace, plus the Go
// runtime and process collectors. Events lists the live event names
// labelled individually; with none given every name is kept.
func New(namespace string, events ...string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		events:   make(map[string]bool, len(events)),
		PageRenders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "page_renders_total",
			Help:      "Pages rendered over HTTP.",
		}, []string{"path", "status"}),
		LiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_sessions",
			Help:      "Open live sessions.",
		}),
		SessionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "live_sessions_total",
			Help:      "Live sessions opened.",
		}),
		Events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "live_events_total",
			Help:      "Live events handled.",
		}, []string{"event", "status"}),
		EventDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "live_event_duration_seconds",
			Help:      "Time spent in component event handlers.",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
		}, []string{"event"}),
	}
	m.registry.MustRegister(
		m.PageRenders,
		m.LiveSessions,
		m.SessionsTotal,
		m.Events,
		m.EventDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	for _, e := range events {
		m.events[e] = true
	}
	return m
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func status(err error) string {
	if err != nil {
		return StatusError
	}
	return StatusOK
}

// PageRendered counts an HTTP render of path.
func (m *Metrics) PageRendered(path string, err error) {
	m.PageRenders.WithLabelValues(path, status(err)).Inc()
}

// SessionOpened counts a new live session.
func (m *Metrics) SessionOpened() {
	m.SessionsTotal.Inc()
	m.LiveSessions.Inc()
}

// SessionClosed drops a live session from the open gauge.
func (m *Metrics) SessionClosed() {
	m.LiveSessions.Dec()
}

// EventHandled counts a live event and records its handler time. Names
// outside the configured set are counted as OtherEvent.
func (m *Metrics) EventHandled(event string, d time.Duration, err error) {
	if len(m.events) > 0 && !m.events[event] {
		event = OtherEvent
	}
	m.Events.WithLabelValues(event, status(err)).Inc()
	m.EventDuration.WithLabelValues(event).Observe(d.Seconds())
}
