package observability

import (
	"time"

	"github.com/aretw0/tend/pkg/observable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "tend"

// Status label values for repository operations.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Metrics holds the collectors exported by tend.
type Metrics struct {
	registry *prometheus.Registry

	serversOnline  *prometheus.GaugeVec
	repoOps        *prometheus.CounterVec
	repoLatency    *prometheus.HistogramVec
	observerPanics *prometheus.CounterVec
}

// MetricsOption configures Metrics.
type MetricsOption func(*metricsConfig)

type metricsConfig struct {
	buckets        []float64
	processMetrics bool
}

// WithBuckets sets the histogram buckets for repository latency.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *metricsConfig) {
		c.buckets = buckets
	}
}

// WithProcessMetrics also registers the Go runtime and process collectors.
func WithProcessMetrics() MetricsOption {
	return func(c *metricsConfig) {
		c.processMetrics = true
	}
}

// NewMetrics creates and registers all collectors on a fresh registry.
func NewMetrics(opts ...MetricsOption) *Metrics {
	cfg := metricsConfig{buckets: prometheus.DefBuckets}
	for _, opt := range opts {
		opt(&cfg)
	}

	reg := prometheus.NewRegistry()
	if cfg.processMetrics {
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		serversOnline: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "servers_online",
			Help:      "Number of online servers per region",
		}, []string{"region"}),

		repoOps: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "repository",
			Name:      "operations_total",
			Help:      "Total number of item repository operations",
		}, []string{"op", "status"}),

		repoLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "repository",
			Name:      "operation_duration_seconds",
			Help:      "Item repository operation duration in seconds",
			Buckets:   cfg.buckets,
		}, []string{"op"}),

		observerPanics: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "observer_panics_total",
			Help:      "Total number of observer callbacks that panicked",
		}, []string{"store"}),
	}
}

// Registry returns the registry holding every tend collector.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveOp records one repository call.
func (m *Metrics) ObserveOp(op string, err error, elapsed time.Duration) {
	status := StatusOK
	if err != nil {
		status = StatusError
	}
	m.repoOps.WithLabelValues(op, status).Inc()
	m.repoLatency.WithLabelValues(op).Observe(elapsed.Seconds())
}

// SetServersOnline sets the gauge for a region.
func (m *Metrics) SetServersOnline(region string, online int) {
	m.serversOnline.WithLabelValues(region).Set(float64(online))
}

// BindServers mirrors an online-servers store into the servers_online gauge for region.
// The returned token unsubscribes the binding.
func (m *Metrics) BindServers(store *observable.Store[int], region string) observable.Token {
	m.SetServersOnline(region, store.Get())
	return store.Subscribe(func() {
		m.SetServersOnline(region, store.Get())
	})
}

// PanicHandler returns an observable.PanicHandler that counts panics for the named store.
func (m *Metrics) PanicHandler(store string) observable.PanicHandler {
	counter := m.observerPanics.WithLabelValues(store)
	return func(observable.Token, any) {
		counter.Inc()
	}
}
