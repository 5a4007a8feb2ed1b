package middleware

import (
	"strconv"

	"github.com/IgniteUI/igniteui-angular-sub020/pkg/differ"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the Prometheus observer.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "iterdiff").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for check duration.
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

// WithBuckets sets the duration histogram buckets.
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
		Namespace: "iterdiff",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Change kinds used as the "kind" label.
const (
	KindAdded    = "added"
	KindMoved    = "moved"
	KindRemoved  = "removed"
	KindIdentity = "identity"
)

// Metrics is a differ.Observer that records Prometheus metrics. One
// Metrics may observe any number of differs.
type Metrics struct {
	checksTotal      *prometheus.CounterVec
	changesTotal     *prometheus.CounterVec
	checkDuration    prometheus.Histogram
	collectionLength prometheus.Histogram
}

var _ differ.Observer = (*Metrics)(nil)

// Prometheus registers the check metrics and returns an observer that
// records them. Registering twice on the same registry panics, as with
// promauto.
func Prometheus(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		checksTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "checks_total",
			Help:        "Total number of collection checks",
			ConstLabels: config.ConstLabels,
		}, []string{"dirty"}),

		changesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "changes_total",
			Help:        "Total number of detected changes by kind",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),

		checkDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "check_duration_seconds",
			Help:        "Check duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		collectionLength: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "collection_length",
			Help:        "Length of checked collections",
			ConstLabels: config.ConstLabels,
			Buckets:     prometheus.ExponentialBuckets(1, 4, 10), // 1 to 262144
		}),
	}
}

// ObserveCheck records s.
func (m *Metrics) ObserveCheck(s differ.Stats) {
	m.checksTotal.WithLabelValues(strconv.FormatBool(s.Dirty)).Inc()
	m.checkDuration.Observe(s.Duration.Seconds())
	m.collectionLength.Observe(float64(s.Length))
	if !s.Dirty {
		return
	}
	m.changesTotal.WithLabelValues(KindAdded).Add(float64(s.Added))
	m.changesTotal.WithLabelValues(KindMoved).Add(float64(s.Moved))
	m.changesTotal.WithLabelValues(KindRemoved).Add(float64(s.Removed))
	m.changesTotal.WithLabelValues(KindIdentity).Add(float64(s.IdentityChanged))
}
