package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/canopy/pkg/render"
)

// MetricsConfig configures the Prometheus observer.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "canopy").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for drain duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus observer.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "canopy",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics is a render.Observer that records drains as Prometheus metrics.
//
// The collectors are registered when the observer is built. Building two
// observers against the same registry with the same namespace panics; give
// each renderer its own registry or subsystem.
type Metrics struct {
	drains        *prometheus.CounterVec
	drainDuration prometheus.Histogram
	invalidations prometheus.Counter
	renders       prometheus.Counter
	instructions  *prometheus.CounterVec
	instances     prometheus.Gauge
}

// NewMetrics builds and registers the drain metrics.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		drains: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "drains_total",
			Help:        "Total number of invalidation queue drains",
			ConstLabels: config.ConstLabels,
		}, []string{"mode"}),

		drainDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "drain_duration_seconds",
			Help:        "Drain duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		invalidations: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "invalidations_total",
			Help:        "Distinct instances taken from the invalidation queue",
			ConstLabels: config.ConstLabels,
		}),

		renders: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "renders_total",
			Help:        "Total number of component render calls",
			ConstLabels: config.ConstLabels,
		}),

		instructions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "instructions_total",
			Help:        "Applied instructions by operation",
			ConstLabels: config.ConstLabels,
		}, []string{"op"}),

		instances: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "instances",
			Help:        "Live component instances after the last drain",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// DrainStarted implements render.Observer.
func (m *Metrics) DrainStarted() {}

// DrainFinished implements render.Observer.
func (m *Metrics) DrainFinished(stats render.DrainStats) {
	m.drains.WithLabelValues(drainMode(stats)).Inc()
	m.drainDuration.Observe(stats.Duration.Seconds())
	m.invalidations.Add(float64(stats.Invalidations))
	m.renders.Add(float64(stats.Rendered))
	m.instructions.WithLabelValues("create").Add(float64(stats.Created))
	m.instructions.WithLabelValues("update").Add(float64(stats.Updated))
	m.instructions.WithLabelValues("move").Add(float64(stats.Moved))
	m.instructions.WithLabelValues("remove").Add(float64(stats.Removed))
	m.instances.Set(float64(stats.Instances))
}

func drainMode(stats render.DrainStats) string {
	if stats.Sync {
		return "sync"
	}
	return "frame"
}
