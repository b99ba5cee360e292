package metrics

import (
	"database/sql"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics groups the collectors exported on /metrics.
type Metrics struct {
	Registry *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	Transitions  *prometheus.CounterVec
	Rollbacks    *prometheus.CounterVec

	WSConnections prometheus.Gauge
	WSEvents      *prometheus.CounterVec
}

// New registers collectors on a fresh registry under namespace.
func New(namespace string) *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_transitions_total",
			Help:      "Applied booking request transitions.",
		}, []string{"action", "from", "to"}),
		Rollbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "compensations_total",
			Help:      "Compensating rollbacks applied after a failed remote write.",
		}, []string{"operation"}),
		WSConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "websocket_connections",
			Help:      "Open websocket connections on this instance.",
		}),
		WSEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "websocket_events_total",
			Help:      "Realtime events by outcome (sent, dropped).",
		}, []string{"outcome"}),
	}

	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequests,
		m.HTTPDuration,
		m.Transitions,
		m.Rollbacks,
		m.WSConnections,
		m.WSEvents,
	)
	return m
}

// RegisterDB exposes connection pool statistics.
func (m *Metrics) RegisterDB(db *sql.DB, name string) {
	m.Registry.MustRegister(collectors.NewDBStatsCollector(db, name))
}

// ObserveRequest records one finished HTTP request.
func (m *Metrics) ObserveRequest(route, method string, status int, seconds float64) {
	m.HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(route, method).Observe(seconds)
}

// TransitionApplied counts an effective booking transition. Safe on nil.
func (m *Metrics) TransitionApplied(action, from, to string) {
	if m == nil {
		return
	}
	m.Transitions.WithLabelValues(action, from, to).Inc()
}

// RollbackApplied counts a compensation. Safe on nil.
func (m *Metrics) RollbackApplied(operation string) {
	if m == nil {
		return
	}
	m.Rollbacks.WithLabelValues(operation).Inc()
}

// ConnectionOpened adjusts the websocket gauge by delta. Safe on nil.
func (m *Metrics) ConnectionOpened(delta float64) {
	if m == nil {
		return
	}
	m.WSConnections.Add(delta)
}

// EventDelivered counts a realtime event as sent or dropped. Safe on nil.
func (m *Metrics) EventDelivered(sent bool) {
	if m == nil {
		return
	}
	outcome := "dropped"
	if sent {
		outcome = "sent"
	}
	m.WSEvents.WithLabelValues(outcome).Inc()
}
