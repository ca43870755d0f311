package transport

import (
	"fmt"
	"time"

	awerrors "github.com/vnykmshr/asyncwire/pkg/common/errors"
)

// ErrClosed is returned by transport operations after the connection ended.
// It matches errors.ErrClosed.
var ErrClosed = fmt.Errorf("transport: %w", awerrors.ErrClosed)

// Transport is a non-blocking, event-driven connection.
type Transport interface {
	// Connected reports whether the connection is established and not closed.
	Connected() bool

	// CanSend reports whether Write would currently accept at least one byte.
	CanSend() bool

	// Space returns the maximum number of bytes Write will currently accept.
	Space() int

	// Write queues up to Space() bytes of p for sending and returns the
	// number accepted. It never blocks.
	Write(p []byte) int

	// Abort drops the connection immediately, discarding unsent data.
	Abort()

	// Close starts a graceful close. Disconnect fires once it completes.
	Close() error

	// Free releases resources held on behalf of the owner. It is called by
	// the owner after disconnect and is safe to call more than once.
	Free()

	// SetHandler registers the single event receiver, replacing any
	// previous one. A nil handler detaches.
	SetHandler(h Handler)
}

// Handler receives transport events.
type Handler interface {
	HandlePoll(t Transport)
	HandleAck(t Transport, n int, rtt time.Duration)
	HandleData(t Transport, p []byte)
	HandleDisconnect(t Transport)
}

// HandlerFuncs adapts optional functions into a Handler. Nil fields ignore
// their event.
type HandlerFuncs struct {
	Poll       func(t Transport)
	Ack        func(t Transport, n int, rtt time.Duration)
	Data       func(t Transport, p []byte)
	Disconnect func(t Transport)
}

// HandlePoll implements Handler.
func (h HandlerFuncs) HandlePoll(t Transport) {
	if h.Poll != nil {
		h.Poll(t)
	}
}

// HandleAck implements Handler.
func (h HandlerFuncs) HandleAck(t Transport, n int, rtt time.Duration) {
	if h.Ack != nil {
		h.Ack(t, n, rtt)
	}
}

// HandleData implements Handler.
func (h HandlerFuncs) HandleData(t Transport, p []byte) {
	if h.Data != nil {
		h.Data(t, p)
	}
}

// HandleDisconnect implements Handler.
func (h HandlerFuncs) HandleDisconnect(t Transport) {
	if h.Disconnect != nil {
		h.Disconnect(t)
	}
}
