// Package metrics holds the Prometheus collectors of the marketplace.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"marketplace/internal/core/ports"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	_ ports.TransitionObserver = (*Metrics)(nil)
	_ ports.DispatchObserver   = (*Metrics)(nil)
)

// Metrics holds the Prometheus collectors of the service on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	TransitionsTotal   *prometheus.CounterVec
	TransitionDuration *prometheus.HistogramVec
	DispatchTotal      *prometheus.CounterVec
	HTTPRequestsTotal  *prometheus.CounterVec
}

// New creates the collectors and registers them, together with the Go and
// process collectors, on a registry of their own.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		TransitionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "delivery_transitions_total",
				Help: "Total number of delivery transition requests by event and outcome",
			},
			[]string{"event", "outcome"},
		),
		TransitionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "delivery_transition_duration_seconds",
				Help:    "Duration of delivery transition requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"event"},
		),
		DispatchTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "side_effect_dispatch_total",
				Help: "Total number of side-effect dispatch attempts by kind and result",
			},
			[]string{"kind", "result"},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"handler", "method", "status"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.TransitionsTotal,
		m.TransitionDuration,
		m.DispatchTotal,
		m.HTTPRequestsTotal,
	)
	return m
}

// ObserveTransition counts a handled transition and records its latency.
func (m *Metrics) ObserveTransition(event, outcome string, elapsed time.Duration) {
	m.TransitionsTotal.WithLabelValues(event, outcome).Inc()
	m.TransitionDuration.WithLabelValues(event).Observe(elapsed.Seconds())
}

// ObserveDispatch counts one dispatch attempt of an outbox message.
func (m *Metrics) ObserveDispatch(kind, result string) {
	m.DispatchTotal.WithLabelValues(kind, result).Inc()
}

// ObserveHTTPRequest counts one served HTTP request.
func (m *Metrics) ObserveHTTPRequest(handler, method string, status int) {
	m.HTTPRequestsTotal.WithLabelValues(handler, method, strconv.Itoa(status)).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
