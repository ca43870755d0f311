// Package tcp adapts a net.Conn into an event-driven transport.
//
// Writes are queued, never blocking, up to a fixed send window. A writer
// goroutine flushes queued chunks to the socket and fires an ack for each
// one, returning its bytes to the window. A reader goroutine delivers
// incoming bytes as data events. Any socket error ends the connection with a
// single disconnect event.
package tcp

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"

	awerrors "github.com/vnykmshr/asyncwire/pkg/common/errors"
	"github.com/vnykmshr/asyncwire/pkg/common/validation"
	"github.com/vnykmshr/asyncwire/pkg/metrics"
	"github.com/vnykmshr/asyncwire/pkg/transport"
	"github.com/vnykmshr/asyncwire/pkg/transport/internal/pipe"
	"github.com/vnykmshr/asyncwire/pkg/transport/poller"
)

// DefaultWindow is four 1436-byte segments, the usual lwIP send buffer.
const DefaultWindow = 4 * 1436

// Config holds configuration options for a TCP transport.
type Config struct {
	// Window is the maximum number of accepted but unflushed bytes.
	// Default: 5744
	Window int

	// ReadBufferSize is the size of each socket read.
	// Default: 2048
	ReadBufferSize int

	// DialTimeout bounds Dial. Zero means no timeout beyond the context.
	// Default: 10 seconds
	DialTimeout time.Duration

	// Poller, when set, delivers periodic poll events.
	Poller *poller.Poller

	// Logger receives connection lifecycle logs. Default: no-op.
	Logger *zap.Logger

	// Metrics, when set, counts events and bytes sent.
	Metrics *metrics.Registry
}

// DefaultConfig returns a default configuration.
func DefaultConfig() Config {
	return Config{
		Window:         DefaultWindow,
		ReadBufferSize: 2048,
		DialTimeout:    10 * time.Second,
	}
}

func (c Config) validate() error {
	if err := validation.ValidatePositive("tcp", "window", c.Window); err != nil {
		return err
	}
	if err := validation.ValidatePositive("tcp", "readBufferSize", c.ReadBufferSize); err != nil {
		return err
	}
	return validation.ValidateNonNegative("tcp", "dialTimeout", float64(c.DialTimeout))
}

// Transport is a transport.Transport over a net.Conn.
type Transport struct {
	*pipe.Pipe

	conn       net.Conn
	config     Config
	readerOnce sync.Once
}

var _ transport.Transport = (*Transport)(nil)

// Dial connects to addr and wraps the connection.
func Dial(ctx context.Context, addr string, config Config) (*Transport, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	d := net.Dialer{Timeout: config.DialTimeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, awerrors.NewOperationError("tcp", "Dial", err).WithContext(addr)
	}
	t, err := New(conn, config)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return t, nil
}

// New wraps an established connection. The reader goroutine starts when
// the first handler is registered, so no incoming data is lost before that.
func New(conn net.Conn, config Config) (*Transport, error) {
	if err := validation.ValidateNotNil("tcp", "conn", conn); err != nil {
		return nil, err
	}
	if err := config.validate(); err != nil {
		return nil, err
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("tcp").With(zap.Stringer("remote", conn.RemoteAddr()))

	t := &Transport{conn: conn, config: config}
	t.Pipe = pipe.New(t, pipe.Config{
		Kind:    "tcp",
		Window:  config.Window,
		Send:    t.send,
		Release: func() { _ = conn.Close() },
		Poller:  config.Poller,
		Logger:  logger,
		Metrics: config.Metrics,
	})
	logger.Debug("connection wrapped", zap.Int("window", config.Window))
	return t, nil
}

// SetHandler implements transport.Transport.
func (t *Transport) SetHandler(h transport.Handler) {
	t.Pipe.SetHandler(h)
	if h != nil {
		t.readerOnce.Do(func() { t.Go(t.readLoop) })
	}
}

func (t *Transport) send(p []byte) error {
	_, err := t.conn.Write(p)
	return err
}

func (t *Transport) readLoop() {
	buf := make([]byte, t.config.ReadBufferSize)
	for {
		n, err := t.conn.Read(buf)
		if n > 0 {
			t.Deliver(append([]byte(nil), buf[:n]...))
		}
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				err = nil
			}
			t.Shutdown(err)
			return
		}
	}
}
