// Package metrics provides Prometheus instrumentation for asyncwire components.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "asyncwire"

// Registry holds all metric instances for asyncwire components.
type Registry struct {
	// Writer Metrics
	WriterBytesAccepted    *prometheus.CounterVec
	WriterBytesDrained     *prometheus.CounterVec
	WriterDrains           *prometheus.CounterVec
	WriterBackpressure     *prometheus.CounterVec
	WriterBackpressureWait *prometheus.HistogramVec
	WriterBufferUsage      *prometheus.GaugeVec
	WriterBufferCapacity   *prometheus.GaugeVec
	WriterDisconnects      *prometheus.CounterVec

	// Transport Metrics
	TransportEvents    *prometheus.CounterVec
	TransportBytesSent *prometheus.CounterVec
}

// DefaultRegistry is the default metrics registry used by asyncwire components.
var DefaultRegistry *Registry

func init() {
	DefaultRegistry = NewRegistry(prometheus.DefaultRegisterer)
}

// NewRegistry creates a new metrics registry with the given Prometheus registerer.
// Each registerer accepts a given namespace only once; a second call panics.
func NewRegistry(reg prometheus.Registerer) *Registry {
	return NewRegistryWithConfig(Config{Enabled: true, Registry: reg})
}

// NewRegistryWithConfig creates a registry honoring the namespace and constant
// labels in config.
func NewRegistryWithConfig(config Config) *Registry {
	reg := config.Registry
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	ns := config.Namespace
	if ns == "" {
		ns = DefaultNamespace
	}
	factory := promauto.With(reg)
	labels := config.Labels

	return &Registry{
		WriterBytesAccepted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "writer",
				Name:        "bytes_accepted_total",
				Help:        "Total bytes accepted by Write",
				ConstLabels: labels,
			},
			[]string{"writer_name"},
		),

		WriterBytesDrained: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "writer",
				Name:        "bytes_drained_total",
				Help:        "Total bytes handed from the ring buffer to the transport",
				ConstLabels: labels,
			},
			[]string{"writer_name"},
		),

		WriterDrains: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "writer",
				Name:        "drains_total",
				Help:        "Total drain attempts that moved at least one byte",
				ConstLabels: labels,
			},
			[]string{"writer_name"},
		),

		WriterBackpressure: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "writer",
				Name:        "backpressure_waits_total",
				Help:        "Total times Write blocked on a full buffer",
				ConstLabels: labels,
			},
			[]string{"writer_name"},
		),

		WriterBackpressureWait: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace:   ns,
				Subsystem:   "writer",
				Name:        "backpressure_wait_seconds",
				Help:        "Time Write spent waiting for transport capacity",
				Buckets:     prometheus.DefBuckets,
				ConstLabels: labels,
			},
			[]string{"writer_name"},
		),

		WriterBufferUsage: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace:   ns,
				Subsystem:   "writer",
				Name:        "buffer_usage_bytes",
				Help:        "Bytes currently queued in the ring buffer",
				ConstLabels: labels,
			},
			[]string{"writer_name"},
		),

		WriterBufferCapacity: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace:   ns,
				Subsystem:   "writer",
				Name:        "buffer_capacity_bytes",
				Help:        "Ring buffer capacity of the current binding",
				ConstLabels: labels,
			},
			[]string{"writer_name"},
		),

		WriterDisconnects: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "writer",
				Name:        "disconnects_total",
				Help:        "Total teardowns of a live binding",
				ConstLabels: labels,
			},
			[]string{"writer_name"},
		),

		TransportEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "transport",
				Name:        "events_total",
				Help:        "Total transport events delivered to handlers",
				ConstLabels: labels,
			},
			[]string{"kind", "event"},
		),

		TransportBytesSent: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "transport",
				Name:        "bytes_sent_total",
				Help:        "Total bytes a transport put on the wire",
				ConstLabels: labels,
			},
			[]string{"kind"},
		),
	}
}
