// Package pipe implements the send side shared by the socket-like
// transports: a bounded window of queued chunks, one flush goroutine that
// hands them to the wire in order and acks each one, and a once-only
// shutdown that fires the disconnect event.
package pipe

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/vnykmshr/asyncwire/pkg/metrics"
	"github.com/vnykmshr/asyncwire/pkg/transport"
	"github.com/vnykmshr/asyncwire/pkg/transport/poller"
)

// Config describes how a Pipe reaches the wire.
type Config struct {
	// Kind labels events in metrics, e.g. "tcp".
	Kind string

	// Window is the maximum number of accepted but unflushed bytes.
	Window int

	// Send writes one chunk. An error ends the connection.
	Send func(p []byte) error

	// Release closes the underlying resource. Called once on shutdown.
	Release func()

	Poller  *poller.Poller
	Logger  *zap.Logger
	Metrics *metrics.Registry
}

type chunk struct {
	data     []byte
	queuedAt time.Time
}

// Pipe implements transport.Transport. Owners embed it and add their
// receive side.
type Pipe struct {
	owner  transport.Transport
	config Config
	logger *zap.Logger
	events *transport.Dispatcher

	mu        sync.Mutex
	connected bool
	closing   bool
	inflight  int
	queue     []chunk

	wake      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	unpoll    func()
	wg        sync.WaitGroup
}

// New creates a connected Pipe and starts its flush goroutine. owner is
// the transport handed to event handlers.
func New(owner transport.Transport, config Config) *Pipe {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Pipe{
		owner:     owner,
		config:    config,
		logger:    logger,
		events:    transport.NewDispatcher(config.Kind),
		connected: true,
		wake:      make(chan struct{}, 1),
		done:      make(chan struct{}),
		unpoll:    func() {},
	}
	p.events.SetMetrics(config.Metrics)

	if config.Poller != nil {
		p.unpoll = config.Poller.Register(func() {
			if p.Connected() {
				p.events.Poll(owner)
			}
		})
	}

	p.Go(p.flushLoop)
	return p
}

// Connected implements transport.Transport.
func (p *Pipe) Connected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connected
}

// CanSend implements transport.Transport.
func (p *Pipe) CanSend() bool {
	return p.Space() > 0
}

// Space implements transport.Transport.
func (p *Pipe) Space() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.connected || p.closing {
		return 0
	}
	return p.config.Window - p.inflight
}

// Write implements transport.Transport. Each call becomes one chunk.
func (p *Pipe) Write(b []byte) int {
	p.mu.Lock()
	if !p.connected || p.closing {
		p.mu.Unlock()
		return 0
	}
	n := len(b)
	if space := p.config.Window - p.inflight; n > space {
		n = space
	}
	if n <= 0 {
		p.mu.Unlock()
		return 0
	}
	p.queue = append(p.queue, chunk{
		data:     append([]byte(nil), b[:n]...),
		queuedAt: time.Now(),
	})
	p.inflight += n
	p.mu.Unlock()

	p.signal()
	return n
}

// Abort implements transport.Transport. Queued data is discarded and
// disconnect fires before Abort returns.
func (p *Pipe) Abort() {
	p.Shutdown(nil)
}

// Close implements transport.Transport. Queued data is flushed first.
func (p *Pipe) Close() error {
	p.mu.Lock()
	if !p.connected {
		p.mu.Unlock()
		return transport.ErrClosed
	}
	p.closing = true
	p.mu.Unlock()

	p.signal()
	return nil
}

// Free implements transport.Transport. It aborts a live connection.
func (p *Pipe) Free() {
	p.unpoll()
	if p.Connected() {
		p.Shutdown(nil)
	}
}

// SetHandler implements transport.Transport.
func (p *Pipe) SetHandler(h transport.Handler) {
	p.events.SetHandler(h)
}

// Deliver hands incoming bytes to the registered handler.
func (p *Pipe) Deliver(b []byte) {
	p.events.Data(p.owner, b)
}

// Done is closed once the connection has ended.
func (p *Pipe) Done() <-chan struct{} {
	return p.done
}

// Go runs fn on a goroutine that Wait waits for.
func (p *Pipe) Go(fn func()) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		fn()
	}()
}

// Wait blocks until every goroutine started with Go has exited.
func (p *Pipe) Wait() {
	p.wg.Wait()
}

func (p *Pipe) signal() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

func (p *Pipe) flushLoop() {
	for {
		select {
		case <-p.wake:
		case <-p.done:
			return
		}

		for {
			p.mu.Lock()
			if len(p.queue) == 0 {
				closing := p.closing
				p.mu.Unlock()
				if closing {
					p.logger.Debug("graceful close complete")
					p.Shutdown(nil)
					return
				}
				break
			}
			c := p.queue[0]
			p.queue = p.queue[1:]
			p.mu.Unlock()

			if err := p.config.Send(c.data); err != nil {
				p.Shutdown(err)
				return
			}
			p.events.CountSent(len(c.data))

			p.mu.Lock()
			p.inflight -= len(c.data)
			p.mu.Unlock()
			p.events.Ack(p.owner, len(c.data), time.Since(c.queuedAt))
		}
	}
}

// Shutdown ends the connection and fires disconnect exactly once. A nil
// cause is an orderly end.
func (p *Pipe) Shutdown(cause error) {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.connected = false
		p.queue = nil
		p.inflight = 0
		p.mu.Unlock()

		if p.config.Release != nil {
			p.config.Release()
		}
		close(p.done)
		p.unpoll()

		if cause != nil {
			p.logger.Warn("connection lost", zap.Error(cause))
		} else {
			p.logger.Debug("connection closed")
		}
		p.events.Disconnect(p.owner)
	})
}
