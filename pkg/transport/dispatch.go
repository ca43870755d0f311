package transport

import (
	"sync"
	"time"

	"github.com/vnykmshr/asyncwire/pkg/metrics"
)

// Dispatcher stores the registered Handler of a transport and delivers
// events to it. Disconnect is delivered at most once. Handlers are invoked
// without any Dispatcher lock held.
type Dispatcher struct {
	mu           sync.Mutex
	handler      Handler
	disconnected bool

	kind     string
	registry *metrics.Registry
}

// NewDispatcher creates a Dispatcher labeled with the transport kind for metrics.
func NewDispatcher(kind string) *Dispatcher {
	return &Dispatcher{kind: kind}
}

// SetMetrics enables event counting on registry. A nil registry disables it.
func (d *Dispatcher) SetMetrics(registry *metrics.Registry) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.registry = registry
}

// SetHandler replaces the registered handler.
func (d *Dispatcher) SetHandler(h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handler = h
}

// Disconnected reports whether Disconnect already fired.
func (d *Dispatcher) Disconnected() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.disconnected
}

func (d *Dispatcher) current(event string) Handler {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.disconnected {
		return nil
	}
	d.count(event)
	return d.handler
}

func (d *Dispatcher) count(event string) {
	if d.registry != nil && d.handler != nil {
		d.registry.TransportEvents.WithLabelValues(d.kind, event).Inc()
	}
}

// Poll delivers a poll event.
func (d *Dispatcher) Poll(t Transport) {
	if h := d.current("poll"); h != nil {
		h.HandlePoll(t)
	}
}

// Ack delivers an acknowledgment of n bytes.
func (d *Dispatcher) Ack(t Transport, n int, rtt time.Duration) {
	if h := d.current("ack"); h != nil {
		h.HandleAck(t, n, rtt)
	}
}

// Data delivers incoming bytes.
func (d *Dispatcher) Data(t Transport, p []byte) {
	if h := d.current("data"); h != nil {
		h.HandleData(t, p)
	}
}

// Disconnect delivers the disconnect event the first time it is called and
// reports whether this call was that first one.
func (d *Dispatcher) Disconnect(t Transport) bool {
	d.mu.Lock()
	if d.disconnected {
		d.mu.Unlock()
		return false
	}
	d.disconnected = true
	d.count("disconnect")
	h := d.handler
	d.mu.Unlock()

	if h != nil {
		h.HandleDisconnect(t)
	}
	return true
}

// CountSent adds n to the bytes-sent counter when metrics are enabled.
func (d *Dispatcher) CountSent(n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.registry != nil {
		d.registry.TransportBytesSent.WithLabelValues(d.kind).Add(float64(n))
	}
}
