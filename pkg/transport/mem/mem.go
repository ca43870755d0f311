// Package mem provides a scriptable in-memory transport.
//
// The test or program driving a Transport decides when send window appears
// (SetSpace, Ack), when poll ticks happen (Poll), what the peer sends
// (Deliver) and when the connection drops (Disconnect). Everything the owner
// writes is recorded in order and can be inspected with Sent and Chunks.
package mem

import (
	"bytes"
	"io"
	"sync"
	"time"

	"github.com/vnykmshr/asyncwire/pkg/metrics"
	"github.com/vnykmshr/asyncwire/pkg/transport"
)

// Unlimited disables the send window.
const Unlimited = -1

// unlimitedSpace is what Space reports when the window is disabled.
const unlimitedSpace = 1 << 30

// Option configures a Transport.
type Option func(*Transport)

// WithSpace sets the initial send window. Use Unlimited to disable it.
func WithSpace(n int) Option {
	return func(t *Transport) { t.space = n }
}

// WithRecorder copies every accepted byte to w as well.
func WithRecorder(w io.Writer) Option {
	return func(t *Transport) { t.recorder = w }
}

// WithMetrics counts events and sent bytes on registry.
func WithMetrics(registry *metrics.Registry) Option {
	return func(t *Transport) { t.events.SetMetrics(registry) }
}

// Transport is an in-memory transport.Transport. It is safe for concurrent use.
type Transport struct {
	mu        sync.Mutex
	connected bool
	aborted   bool
	closed    bool
	freed     int
	space     int
	autoAck   bool
	unacked   int
	sent      bytes.Buffer
	chunks    [][]byte
	recorder  io.Writer

	events *transport.Dispatcher
}

var _ transport.Transport = (*Transport)(nil)

// New creates a connected Transport with an unlimited window unless
// WithSpace says otherwise.
func New(opts ...Option) *Transport {
	t := &Transport{
		connected: true,
		space:     Unlimited,
		events:    transport.NewDispatcher("mem"),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Connected implements transport.Transport.
func (t *Transport) Connected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.connected
}

// CanSend implements transport.Transport.
func (t *Transport) CanSend() bool {
	return t.Space() > 0
}

// Space implements transport.Transport.
func (t *Transport) Space() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.spaceLocked()
}

func (t *Transport) spaceLocked() int {
	if !t.connected {
		return 0
	}
	if t.space == Unlimited {
		return unlimitedSpace
	}
	return t.space
}

// Write implements transport.Transport.
func (t *Transport) Write(p []byte) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := len(p)
	if space := t.spaceLocked(); n > space {
		n = space
	}
	if n == 0 {
		return 0
	}

	chunk := append([]byte(nil), p[:n]...)
	t.chunks = append(t.chunks, chunk)
	t.sent.Write(chunk)
	if t.recorder != nil {
		_, _ = t.recorder.Write(chunk)
	}
	if t.space != Unlimited {
		t.space -= n
	}
	if t.autoAck {
		t.unacked += n
	}
	t.events.CountSent(n)
	return n
}

// Abort implements transport.Transport. No event is fired.
func (t *Transport) Abort() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.aborted = true
	t.connected = false
}

// Close implements transport.Transport. The disconnect event fires
// synchronously on the first call.
func (t *Transport) Close() error {
	t.mu.Lock()
	t.closed = true
	t.connected = false
	t.mu.Unlock()

	t.events.Disconnect(t)
	return nil
}

// Free implements transport.Transport.
func (t *Transport) Free() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.freed++
}

// SetHandler implements transport.Transport.
func (t *Transport) SetHandler(h transport.Handler) {
	t.events.SetHandler(h)
}

// SetSpace sets the send window and fires poll if sending became possible.
func (t *Transport) SetSpace(n int) {
	t.mu.Lock()
	t.space = n
	ready := t.spaceLocked() > 0
	t.mu.Unlock()

	if ready {
		t.events.Poll(t)
	}
}

// Ack returns n bytes of window and fires the ack event.
func (t *Transport) Ack(n int) {
	t.mu.Lock()
	if !t.connected {
		t.mu.Unlock()
		return
	}
	if t.space != Unlimited {
		t.space += n
	}
	t.mu.Unlock()

	t.events.Ack(t, n, time.Millisecond)
}

// AutoAck makes every Poll first acknowledge the bytes written since the
// previous Poll.
func (t *Transport) AutoAck(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.autoAck = enabled
}

// Poll fires a poll event, preceded by an ack when AutoAck has pending bytes.
func (t *Transport) Poll() {
	t.mu.Lock()
	pending := t.unacked
	t.unacked = 0
	t.mu.Unlock()

	if pending > 0 {
		t.Ack(pending)
	}
	if t.Connected() {
		t.events.Poll(t)
	}
}

// Deliver hands p to the owner as incoming data.
func (t *Transport) Deliver(p []byte) {
	if t.Connected() {
		t.events.Data(t, p)
	}
}

// Disconnect simulates the peer dropping the connection.
func (t *Transport) Disconnect() {
	t.mu.Lock()
	t.connected = false
	t.mu.Unlock()

	t.events.Disconnect(t)
}

// Sent returns a copy of every byte accepted so far, in order.
func (t *Transport) Sent() []byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]byte(nil), t.sent.Bytes()...)
}

// Chunks returns the accepted writes as separate slices.
func (t *Transport) Chunks() [][]byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([][]byte, len(t.chunks))
	copy(out, t.chunks)
	return out
}

// Aborted reports whether Abort was called.
func (t *Transport) Aborted() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.aborted
}

// Closed reports whether Close was called.
func (t *Transport) Closed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

// Freed returns how many times Free was called.
func (t *Transport) Freed() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.freed
}
