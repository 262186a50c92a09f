package permalink

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the Prometheus metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "permalink").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics.
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

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

// Metrics counts control activity. A nil *Metrics records nothing, and one
// Metrics may be shared by several controls.
type Metrics struct {
	merges          prometheus.Counter
	writeBacks      *prometheus.CounterVec
	externalChanges *prometheus.CounterVec
	updates         prometheus.Counter
	rejected        *prometheus.CounterVec
	storageErrors   *prometheus.CounterVec
}

// NewMetrics creates and registers the metrics.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := MetricsConfig{
		Namespace: "permalink",
		Registry:  prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		merges: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "merges_total",
			Help:        "Total number of partial parameter updates merged",
			ConstLabels: config.ConstLabels,
		}),

		writeBacks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "write_backs_total",
			Help:        "Total number of parameter flushes per sink",
			ConstLabels: config.ConstLabels,
		}, []string{"sink"}),

		externalChanges: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "external_changes_total",
			Help:        "Total number of reloads from the URL or storage, by outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"result"}),

		updates: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "updates_total",
			Help:        "Total number of update notifications fired",
			ConstLabels: config.ConstLabels,
		}),

		rejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "rejected_values_total",
			Help:        "Total number of incoming view values rejected as invalid or out of range",
			ConstLabels: config.ConstLabels,
		}, []string{"field"}),

		storageErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "storage_errors_total",
			Help:        "Total number of failed storage operations",
			ConstLabels: config.ConstLabels,
		}, []string{"op"}),
	}
}

func (m *Metrics) merged() {
	if m == nil {
		return
	}
	m.merges.Inc()
}

func (m *Metrics) wroteBack(sink string) {
	if m == nil {
		return
	}
	m.writeBacks.WithLabelValues(sink).Inc()
}

func (m *Metrics) externalChange(applied bool) {
	if m == nil {
		return
	}
	result := "unchanged"
	if applied {
		result = "applied"
	}
	m.externalChanges.WithLabelValues(result).Inc()
}

func (m *Metrics) updated() {
	if m == nil {
		return
	}
	m.updates.Inc()
}

func (m *Metrics) rejectedValue(field string) {
	if m == nil {
		return
	}
	m.rejected.WithLabelValues(field).Inc()
}

func (m *Metrics) storageError(op string) {
	if m == nil {
		return
	}
	m.storageErrors.WithLabelValues(op).Inc()
}
