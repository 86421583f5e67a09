// Package metrics exposes the server's Prometheus instrumentation.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	sessionsActive  prometheus.Gauge
	commandsTotal   *prometheus.CounterVec
	composeFailures prometheus.Counter

	registry *prometheus.Registry
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Collector{
		sessionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "robinsr_sessions_active",
			Help: "Currently connected sessions.",
		}),
		commandsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "robinsr_commands_total",
			Help: "Commands dispatched, by command id.",
		}, []string{"cmd"}),
		composeFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "robinsr_scene_compose_failures_total",
			Help: "Scene compositions degraded to a stub scene.",
		}),
		registry: reg,
	}
}

func (c *Collector) SessionOpened() { c.sessionsActive.Inc() }
func (c *Collector) SessionClosed() { c.sessionsActive.Dec() }

func (c *Collector) CommandHandled(cmd uint16) {
	c.commandsTotal.WithLabelValues(strconv.Itoa(int(cmd))).Inc()
}

func (c *Collector) ComposeFailed() { c.composeFailures.Inc() }

// Handler serves the /metrics endpoint for this collector's registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
