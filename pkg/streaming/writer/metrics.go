package writer

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vnykmshr/asyncwire/pkg/metrics"
	"github.com/vnykmshr/asyncwire/pkg/transport"
)

// NewWithMetrics creates a Writer bound to t with metrics enabled.
func NewWithMetrics(t transport.Transport, bufferSize int, name string) (*Writer, error) {
	// Use a separate registry for each metrics-enabled component to avoid conflicts
	registry := prometheus.NewRegistry()
	config := DefaultConfig()
	config.Name = name
	config.Metrics = metrics.NewRegistry(registry)
	return NewWithTransport(t, bufferSize, config)
}

// EnableMetrics enables metrics collection with the given configuration.
func (w *Writer) EnableMetrics(config metrics.Config) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !config.Enabled {
		w.metricsOn = false
		return nil
	}
	w.registry = metrics.Resolve(config)
	w.metricsOn = true
	w.observeBufferLocked()
	return nil
}

// DisableMetrics disables metrics collection.
func (w *Writer) DisableMetrics() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.metricsOn = false
}

// MetricsEnabled returns true if metrics are currently enabled.
func (w *Writer) MetricsEnabled() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.metricsOn
}
