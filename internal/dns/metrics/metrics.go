// Package metrics exports resolver pipeline counters and gauges to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/haukened/rr-fwd/internal/dns/services/resolver"
)

const namespace = "rrfwd"

// Collector implements resolver.Metrics on a Prometheus registry.
type Collector struct {
	registry *prometheus.Registry

	datagrams     *prometheus.CounterVec
	pending       prometheus.Gauge
	cachedRecords prometheus.Gauge
}

// New creates a Collector with its own registry, so tests and multiple
// instances never collide on the default one.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		datagrams: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "datagrams_total",
				Help:      "Inbound datagrams by pipeline outcome",
			},
			[]string{"outcome"},
		),
		pending: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "pending_queries",
				Help:      "Forwarded queries awaiting an upstream reply",
			},
		),
		cachedRecords: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "cache_records",
				Help:      "Resource records currently held in the answer cache",
			},
		),
	}
	c.registry.MustRegister(c.datagrams, c.pending, c.cachedRecords)
	return c
}

// Observe counts one datagram outcome.
func (c *Collector) Observe(outcome resolver.Outcome) {
	c.datagrams.WithLabelValues(string(outcome)).Inc()
}

func (c *Collector) SetPending(n int) {
	c.pending.Set(float64(n))
}

func (c *Collector) SetCachedRecords(n int) {
	c.cachedRecords.Set(float64(n))
}

// Handler returns the HTTP handler exposing this collector's registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

var _ resolver.Metrics = (*Collector)(nil)
