package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Config configures the store metrics.
type Config struct {
	// Namespace is the metrics namespace (default: "forum").
	Namespace string

	// Subsystem is the metrics subsystem (default: "store").
	Subsystem string

	// Buckets are the histogram buckets for request duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures Metrics.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "forum",
		Subsystem: "store",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics records store request activity. It satisfies store.Observer.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	inflight        prometheus.Gauge
	toastsTotal     prometheus.Counter
}

// New registers the store metrics.
//
// Metrics collected:
//   - forum_store_requests_total: Counter of requests by field and outcome
//   - forum_store_request_duration_seconds: Histogram of request duration by field
//   - forum_store_requests_in_flight: Gauge of requests in flight
//   - forum_store_toasts_total: Counter of failure toasts shown
func New(opts ...Option) *Metrics {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Subsystem: config.Subsystem,
			Name:      "requests_total",
			Help:      "Total number of store requests",
		}, []string{"field", "outcome"}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Subsystem: config.Subsystem,
			Name:      "request_duration_seconds",
			Help:      "Store request duration in seconds",
			Buckets:   config.Buckets,
		}, []string{"field"}),

		inflight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: config.Namespace,
			Subsystem: config.Subsystem,
			Name:      "requests_in_flight",
			Help:      "Number of store requests in flight",
		}),

		toastsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Subsystem: config.Subsystem,
			Name:      "toasts_total",
			Help:      "Total number of failure toasts shown",
		}),
	}
}

func (m *Metrics) RequestStarted(field string) {
	m.inflight.Inc()
}

func (m *Metrics) RequestFinished(field string, outcome string, elapsed time.Duration) {
	m.inflight.Dec()
	m.requestsTotal.WithLabelValues(field, outcome).Inc()
	m.requestDuration.WithLabelValues(field).Observe(elapsed.Seconds())
}

func (m *Metrics) ToastShown() {
	m.toastsTotal.Inc()
}
