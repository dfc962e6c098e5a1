// Package metrics provides Prometheus metrics collection for the
// management server.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/artpar/actuate/domain/payload"
	"github.com/artpar/actuate/ports"
)

const namespace = "actuate"

// Collector holds all Prometheus metrics for the management server.
type Collector struct {
	// Request metrics
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge

	// Enhancement metrics
	EnhancedTotal      *prometheus.CounterVec
	EnhanceErrorsTotal *prometheus.CounterVec

	// Endpoint metrics
	EndpointsRegistered prometheus.Gauge

	// Config metrics
	ConfigReloads      prometheus.Counter
	ConfigReloadErrors prometheus.Counter
	ConfigLastReload   prometheus.Gauge
}

// New creates a collector registered with the default registry.
func New() *Collector {
	return newCollector(promauto.With(prometheus.DefaultRegisterer))
}

// NewWithRegistry creates a collector with a custom registry.
// Useful for testing to avoid global state.
func NewWithRegistry(reg prometheus.Registerer) *Collector {
	return newCollector(promauto.With(reg))
}

// NewRegistry creates a registry carrying the Go runtime and process
// collectors, ready to be passed to NewWithRegistry.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func newCollector(factory promauto.Factory) *Collector {
	return &Collector{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Total number of management requests processed",
			},
			[]string{"method", "endpoint", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "request_duration_seconds",
				Help:      "Management request duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "endpoint", "status"},
		),
		RequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "requests_in_flight",
				Help:      "Number of management requests currently being processed",
			},
		),

		EnhancedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "enhanced_total",
				Help:      "Total number of enhanced responses by flattening outcome",
			},
			[]string{"endpoint", "outcome"},
		),
		EnhanceErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "enhance_errors_total",
				Help:      "Total number of responses that could not be enhanced",
			},
			[]string{"endpoint"},
		),

		EndpointsRegistered: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "endpoints_registered",
				Help:      "Number of endpoints in the current registry snapshot",
			},
		),

		ConfigReloads: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "config_reloads_total",
				Help:      "Total number of successful config reloads",
			},
		),
		ConfigReloadErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "config_reload_errors_total",
				Help:      "Total number of config reload errors",
			},
		),
		ConfigLastReload: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "config_last_reload_timestamp",
				Help:      "Unix timestamp of last successful config reload",
			},
		),
	}
}

// EnhanceSucceeded implements ports.EnhanceObserver.
func (c *Collector) EnhanceSucceeded(endpointType string, outcome payload.Outcome) {
	c.EnhancedTotal.WithLabelValues(endpointLabel(endpointType), outcome.String()).Inc()
}

// EnhanceFailed implements ports.EnhanceObserver.
func (c *Collector) EnhanceFailed(endpointType string) {
	c.EnhanceErrorsTotal.WithLabelValues(endpointLabel(endpointType)).Inc()
}

// ConfigReloaded records a reload attempt.
func (c *Collector) ConfigReloaded(err error, at time.Time) {
	if err != nil {
		c.ConfigReloadErrors.Inc()
		return
	}
	c.ConfigReloads.Inc()
	c.ConfigLastReload.Set(float64(at.Unix()))
}

func endpointLabel(t string) string {
	if t == "" {
		return "unknown"
	}
	return t
}

var _ ports.EnhanceObserver = (*Collector)(nil)
