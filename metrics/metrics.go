// Package metrics collects and exposes Prometheus metrics for a signalmesh
// Provider: signals sent/handled/dropped/unhandled, handler latency, and
// live container/pool gauges.
package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector is a Prometheus metrics collector satisfying engine.MetricsSink
// structurally — engine never imports this package, avoiding an import
// cycle between the domain engine and its observability layer.
type Collector struct {
	signalsSent      *prometheus.CounterVec
	signalsHandled   *prometheus.CounterVec
	signalsUnhandled *prometheus.CounterVec
	signalsDropped   *prometheus.CounterVec

	handlerLatency *prometheus.HistogramVec

	modelsLive  prometheus.Gauge
	poolGoal    prometheus.Gauge
	poolActive  prometheus.Gauge
}

// NewCollector builds and registers a Collector against the default
// Prometheus registry.
func NewCollector() *Collector {
	c := newCollector()
	registerAll(prometheus.DefaultRegisterer, c)
	return c
}

// NewCollectorFor builds and registers a Collector against reg instead of
// the default registry, so tests (and anything embedding multiple
// collectors in one process) can avoid duplicate-registration panics.
func NewCollectorFor(reg prometheus.Registerer) *Collector {
	c := newCollector()
	registerAll(reg, c)
	return c
}

func newCollector() *Collector {
	c := &Collector{
		signalsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signalmesh_signals_sent_total",
			Help: "Total number of signals sent, labeled by signal name.",
		}, []string{"signal"}),
		signalsHandled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signalmesh_signals_handled_total",
			Help: "Total number of signals successfully handled, labeled by signal name.",
		}, []string{"signal"}),
		signalsUnhandled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signalmesh_signals_unhandled_total",
			Help: "Total number of signals delivered but never handled, labeled by signal name.",
		}, []string{"signal"}),
		signalsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signalmesh_signals_dropped_total",
			Help: "Total number of signals dropped (rejected send or expired before processing), labeled by signal name.",
		}, []string{"signal"}),
		handlerLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "signalmesh_handler_latency_seconds",
			Help:    "Signal handler processing latency in seconds, labeled by signal name.",
			Buckets: prometheus.DefBuckets,
		}, []string{"signal"}),
		modelsLive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "signalmesh_models_live",
			Help: "Current number of registered models.",
		}),
		poolGoal: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "signalmesh_pool_goal",
			Help: "Current worker-count goal computed by the pool supervisor.",
		}),
		poolActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "signalmesh_pool_active_workers",
			Help: "Current number of live pool worker goroutines.",
		}),
	}

	return c
}

func registerAll(reg prometheus.Registerer, c *Collector) {
	reg.MustRegister(c.signalsSent)
	reg.MustRegister(c.signalsHandled)
	reg.MustRegister(c.signalsUnhandled)
	reg.MustRegister(c.signalsDropped)
	reg.MustRegister(c.handlerLatency)
	reg.MustRegister(c.modelsLive)
	reg.MustRegister(c.poolGoal)
	reg.MustRegister(c.poolActive)
}

// SignalSent satisfies engine.MetricsSink.
func (c *Collector) SignalSent(signalName string) {
	c.signalsSent.WithLabelValues(signalName).Inc()
}

// SignalHandled satisfies engine.MetricsSink.
func (c *Collector) SignalHandled(signalName string, dur time.Duration) {
	c.signalsHandled.WithLabelValues(signalName).Inc()
	c.handlerLatency.WithLabelValues(signalName).Observe(dur.Seconds())
}

// SignalUnhandled satisfies engine.MetricsSink.
func (c *Collector) SignalUnhandled(signalName string) {
	c.signalsUnhandled.WithLabelValues(signalName).Inc()
}

// SignalDropped satisfies engine.MetricsSink.
func (c *Collector) SignalDropped(signalName string) {
	c.signalsDropped.WithLabelValues(signalName).Inc()
}

// ModelStarted satisfies engine.MetricsSink.
func (c *Collector) ModelStarted(_ string) {
	c.modelsLive.Inc()
}

// ModelStopped satisfies engine.MetricsSink.
func (c *Collector) ModelStopped(_ string) {
	c.modelsLive.Dec()
}

// UpdatePoolStats records the pool supervisor's current goal and live
// worker count; call periodically from whatever drives the supervisor loop.
func (c *Collector) UpdatePoolStats(goal, active int64) {
	c.poolGoal.Set(float64(goal))
	c.poolActive.Set(float64(active))
}

// StartServer serves the collected metrics at /metrics on addr.
func StartServer(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(addr, mux)
}

// Addr formats a host:port pair the way callers typically build addr for
// StartServer.
func Addr(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}
