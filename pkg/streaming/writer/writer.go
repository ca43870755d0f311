package writer

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	awcontext "github.com/vnykmshr/asyncwire/pkg/common/context"
	awerrors "github.com/vnykmshr/asyncwire/pkg/common/errors"
	"github.com/vnykmshr/asyncwire/pkg/common/validation"
	"github.com/vnykmshr/asyncwire/pkg/metrics"
	"github.com/vnykmshr/asyncwire/pkg/ringbuf"
	"github.com/vnykmshr/asyncwire/pkg/transport"
)

// DefaultBufferSize is one TCP segment on the lwIP stack.
const DefaultBufferSize = 1436

// DataFunc observes bytes arriving from the peer.
type DataFunc func(w *Writer, data []byte)

// CloseFunc observes the end of a binding.
type CloseFunc func(w *Writer)

// Stats holds statistics about writer activity.
type Stats struct {
	// BytesAccepted is the total number of bytes accepted by Write.
	BytesAccepted int64

	// BytesDrained is the total number of bytes handed to the transport.
	BytesDrained int64

	// DrainCount is the number of drains that moved at least one byte.
	DrainCount int64

	// BackpressureWaits is the number of times Write blocked on a full buffer.
	BackpressureWaits int64

	// TotalWaitTime is the total time Write spent blocked.
	TotalWaitTime time.Duration

	// Disconnects is the number of teardowns of a live binding.
	Disconnects int64

	// Buffered is the number of bytes currently queued.
	Buffered int

	// Capacity is the ring buffer capacity of the current binding.
	Capacity int

	// BufferUtilization is the current buffer utilization (0.0 to 1.0).
	BufferUtilization float64
}

// Config holds configuration options for a Writer.
type Config struct {
	// YieldInterval bounds how long a blocked Write sleeps before
	// re-checking transport capacity when no event wakes it.
	// Default: 5ms
	YieldInterval time.Duration

	// Name labels the writer in logs and metrics.
	// Default: "default"
	Name string

	// Logger receives lifecycle logs. Default: no-op.
	Logger *zap.Logger

	// Metrics enables Prometheus instrumentation when set.
	Metrics *metrics.Registry

	// OnBackpressure is called when Write starts blocking, with the number
	// of bytes it still has to place.
	OnBackpressure func(remaining int)

	// OnDrain is called after each drain that moved bytes to the transport.
	OnDrain func(n int)
}

// DefaultConfig returns a default configuration.
func DefaultConfig() Config {
	return Config{
		YieldInterval: 5 * time.Millisecond,
		Name:          "default",
	}
}

// binding ties one transport to the writer. Events carry their binding so
// that events from a transport the writer has since let go are ignored.
type binding struct {
	w *Writer
	t transport.Transport
}

func (b *binding) HandlePoll(transport.Transport) {
	b.w.drainEvent(b)
}

func (b *binding) HandleAck(transport.Transport, int, time.Duration) {
	b.w.drainEvent(b)
}

func (b *binding) HandleData(_ transport.Transport, p []byte) {
	b.w.dataEvent(b, p)
}

func (b *binding) HandleDisconnect(t transport.Transport) {
	b.w.teardown(b)
	t.Free()
}

// Writer exposes a blocking io.Writer on top of an event-driven transport.
// Bytes are staged in a bounded ring buffer and drained whenever the
// transport reports capacity. It is safe for concurrent use.
type Writer struct {
	config Config
	logger *zap.Logger

	// writeMu keeps the bytes of one Write contiguous.
	writeMu sync.Mutex

	mu        sync.Mutex
	binding   *binding
	buf       *ringbuf.Buffer
	capacity  int
	onData    DataFunc
	onClose   CloseFunc
	stats     Stats
	registry  *metrics.Registry
	metricsOn bool

	notify chan struct{}
}

var (
	_ io.Writer              = (*Writer)(nil)
	_ io.ByteWriter          = (*Writer)(nil)
	_ io.StringWriter        = (*Writer)(nil)
	_ metrics.Instrumentable = (*Writer)(nil)
	_ transport.Handler      = (*binding)(nil)
)

var stagingPool = sync.Pool{
	New: func() interface{} {
		b := make([]byte, 0, DefaultBufferSize)
		return &b
	},
}

// New creates an unbound Writer. Bind or Assign attaches a transport.
func New(config Config) *Writer {
	defaults := DefaultConfig()
	if config.YieldInterval <= 0 {
		config.YieldInterval = defaults.YieldInterval
	}
	if config.Name == "" {
		config.Name = defaults.Name
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Writer{
		config:    config,
		logger:    logger.Named("writer").With(zap.String("name", config.Name)),
		registry:  config.Metrics,
		metricsOn: config.Metrics != nil,
		notify:    make(chan struct{}, 1),
	}
}

// NewWithTransport creates a Writer bound to t with a ring buffer of
// bufferSize bytes.
func NewWithTransport(t transport.Transport, bufferSize int, config Config) (*Writer, error) {
	w := New(config)
	if err := w.Bind(t, bufferSize); err != nil {
		return nil, err
	}
	return w, nil
}

// OnData registers the incoming-data observer, replacing any previous one.
func (w *Writer) OnData(fn DataFunc) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onData = fn
}

// OnClose registers the close observer, replacing any previous one. It is
// called once each time a live binding ends.
func (w *Writer) OnClose(fn CloseFunc) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onClose = fn
}

// Connected reports whether the writer is bound to a connected transport.
func (w *Writer) Connected() bool {
	w.mu.Lock()
	b := w.binding
	w.mu.Unlock()
	return b != nil && b.t.Connected()
}

// Bind aborts and frees any transport the writer holds, discards its
// buffer, then attaches t with a fresh buffer of bufferSize bytes. If t
// turns out to be disconnected already, the new binding ends at once and
// the close observer runs.
func (w *Writer) Bind(t transport.Transport, bufferSize int) error {
	if err := validation.ValidateNotNil("writer", "transport", t); err != nil {
		return err
	}
	if err := validation.ValidatePositive("writer", "bufferSize", bufferSize); err != nil {
		return err
	}

	w.detach()

	b := &binding{w: w, t: t}
	w.mu.Lock()
	w.buf = ringbuf.New(bufferSize)
	w.capacity = bufferSize
	w.binding = b
	w.observeBufferLocked()
	w.mu.Unlock()

	t.SetHandler(b)
	w.logger.Debug("bound", zap.Int("bufferSize", bufferSize))

	// A disconnect that landed before SetHandler went to no one.
	if !t.Connected() && w.teardown(b) {
		t.Free()
	}
	return nil
}

// Assign moves src's transport into w, like Bind(src's transport, src's
// buffer size). src is left unbound without calling its close observer.
// Bytes still queued in src are discarded. Assigning from an unbound src
// leaves w unbound.
func (w *Writer) Assign(src *Writer) error {
	if src == nil {
		return validation.ValidateNotNil("writer", "source", nil)
	}
	if src == w {
		return nil
	}

	src.mu.Lock()
	b := src.binding
	size := src.capacity
	src.binding = nil
	src.buf = nil
	src.observeBufferLocked()
	src.mu.Unlock()
	src.signal()

	if b == nil {
		w.detach()
		return nil
	}
	return w.Bind(b.t, size)
}

// detach drops the current binding without notifying the close observer,
// then aborts and frees the transport.
func (w *Writer) detach() {
	w.mu.Lock()
	b := w.binding
	w.binding = nil
	w.buf = nil
	w.mu.Unlock()

	if b == nil {
		return
	}
	w.signal()
	b.t.SetHandler(nil)
	b.t.Abort()
	b.t.Free()
	w.logger.Debug("detached previous transport")
}

// Write implements io.Writer. It blocks while the ring buffer is full until
// the transport drains it. On an unbound or disconnected writer it returns
// 0 and ErrNotConnected. If the connection ends while Write is blocked it
// returns the number of bytes buffered so far and ErrDisconnected.
func (w *Writer) Write(p []byte) (int, error) {
	return w.WriteContext(context.Background(), p)
}

// WriteString implements io.StringWriter.
func (w *Writer) WriteString(s string) (int, error) {
	return w.WriteContext(context.Background(), []byte(s))
}

// WriteByte implements io.ByteWriter.
func (w *Writer) WriteByte(c byte) error {
	_, err := w.WriteContext(context.Background(), []byte{c})
	return err
}

// WriteContext is Write with a context that can cancel the wait for
// transport capacity. On cancellation it returns the bytes buffered so far
// and ctx.Err(). A passed deadline is reported as ErrTimeout, which also
// matches context.DeadlineExceeded.
func (w *Writer) WriteContext(ctx context.Context, p []byte) (int, error) {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()

	w.mu.Lock()
	b := w.binding
	if b == nil || w.buf == nil || !b.t.Connected() {
		w.mu.Unlock()
		return 0, awerrors.ErrNotConnected
	}
	if len(p) == 0 {
		w.mu.Unlock()
		return 0, nil
	}

	written := 0
	for w.buf.Free() < len(p)-written {
		n := w.buf.Write(p[written : written+w.buf.Free()])
		written += n
		w.acceptedLocked(n)
		w.mu.Unlock()

		if err := w.awaitSendable(ctx, b, len(p)-written); err != nil {
			return written, err
		}

		w.mu.Lock()
		if w.binding != b {
			w.mu.Unlock()
			return written, awerrors.ErrDisconnected
		}
		drained := w.drainLocked()
		w.mu.Unlock()
		w.drained(drained)
		w.mu.Lock()
		if w.binding != b {
			w.mu.Unlock()
			return written, awerrors.ErrDisconnected
		}
	}

	n := w.buf.Write(p[written:])
	written += n
	w.acceptedLocked(n)

	drained := 0
	if b.t.CanSend() {
		drained = w.drainLocked()
	}
	w.mu.Unlock()
	w.drained(drained)

	return written, nil
}

// awaitSendable yields until b's transport can accept data. It fails when
// the binding ends, the transport disconnects, or ctx is done.
func (w *Writer) awaitSendable(ctx context.Context, b *binding, remaining int) error {
	var start time.Time
	for {
		w.mu.Lock()
		live := w.binding == b
		w.mu.Unlock()
		if !live || !b.t.Connected() {
			return awerrors.ErrDisconnected
		}
		if b.t.CanSend() {
			break
		}

		if start.IsZero() {
			start = time.Now()
			w.backpressureStarted(remaining)
		}
		if err := awcontext.Wait(ctx, w.notify, w.config.YieldInterval); err != nil {
			if awcontext.IsTimedOut(ctx) {
				return fmt.Errorf("%w: %w", awerrors.ErrTimeout, err)
			}
			return err
		}
	}

	if !start.IsZero() {
		w.backpressureEnded(time.Since(start))
	}
	return nil
}

// drainLocked moves min(buffered, transport space) bytes to the transport.
// Only bytes the transport accepted leave the ring buffer.
func (w *Writer) drainLocked() int {
	b := w.binding
	if b == nil || w.buf == nil {
		return 0
	}
	t := b.t
	if !t.Connected() || !t.CanSend() {
		return 0
	}

	sendable := w.buf.Available()
	if space := t.Space(); space < sendable {
		sendable = space
	}
	if sendable <= 0 {
		return 0
	}

	staging := stagingPool.Get().(*[]byte)
	defer stagingPool.Put(staging)
	if cap(*staging) < sendable {
		*staging = make([]byte, sendable)
	}
	out := (*staging)[:sendable]

	w.buf.Peek(out)
	sent := t.Write(out)
	w.buf.Discard(sent)

	if sent > 0 {
		w.stats.BytesDrained += int64(sent)
		w.stats.DrainCount++
		if w.metricsOn {
			w.registry.WriterBytesDrained.WithLabelValues(w.config.Name).Add(float64(sent))
			w.registry.WriterDrains.WithLabelValues(w.config.Name).Inc()
		}
		w.observeBufferLocked()
	}
	return sent
}

func (w *Writer) drainEvent(b *binding) {
	w.mu.Lock()
	if w.binding != b {
		w.mu.Unlock()
		return
	}
	n := w.drainLocked()
	w.mu.Unlock()

	w.signal()
	w.drained(n)
}

func (w *Writer) dataEvent(b *binding, p []byte) {
	w.mu.Lock()
	if w.binding != b {
		w.mu.Unlock()
		return
	}
	fn := w.onData
	w.mu.Unlock()

	if fn != nil {
		fn(w, p)
	}
}

// teardown ends binding b, or the current binding when b is nil. The
// transport reference is cleared first, then the buffer, then the close
// observer runs. Returns false when there was nothing to tear down.
func (w *Writer) teardown(b *binding) bool {
	w.mu.Lock()
	if w.binding == nil || (b != nil && w.binding != b) {
		w.mu.Unlock()
		return false
	}
	w.binding = nil
	w.buf = nil
	w.stats.Disconnects++
	if w.metricsOn {
		w.registry.WriterDisconnects.WithLabelValues(w.config.Name).Inc()
	}
	w.observeBufferLocked()
	fn := w.onClose
	w.mu.Unlock()

	w.signal()
	w.logger.Debug("closed")
	if fn != nil {
		fn(w)
	}
	return true
}

// Close asks the transport to close the connection. Local state is released
// when the transport reports the disconnect.
func (w *Writer) Close() error {
	w.mu.Lock()
	b := w.binding
	w.mu.Unlock()

	if b == nil {
		return awerrors.ErrNotConnected
	}
	return b.t.Close()
}

// Release tears the writer down immediately, as if it were destroyed. The
// close observer runs if a binding was live. The transport is not closed;
// its later events are ignored.
func (w *Writer) Release() {
	w.mu.Lock()
	b := w.binding
	w.mu.Unlock()

	if b != nil && w.teardown(b) {
		b.t.SetHandler(nil)
	}
}

// Stats returns a snapshot of the writer's counters.
func (w *Writer) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()

	stats := w.stats
	if w.buf != nil {
		stats.Buffered = w.buf.Available()
		stats.Capacity = w.buf.Cap()
		stats.BufferUtilization = float64(stats.Buffered) / float64(w.buf.Cap())
	}
	return stats
}

// BufferSize returns the number of bytes currently queued.
func (w *Writer) BufferSize() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.buf == nil {
		return 0
	}
	return w.buf.Available()
}

// BufferCapacity returns the ring buffer capacity, or 0 when unbound.
func (w *Writer) BufferCapacity() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.buf == nil {
		return 0
	}
	return w.buf.Cap()
}

func (w *Writer) signal() {
	select {
	case w.notify <- struct{}{}:
	default:
	}
}

func (w *Writer) acceptedLocked(n int) {
	w.stats.BytesAccepted += int64(n)
	if w.metricsOn {
		w.registry.WriterBytesAccepted.WithLabelValues(w.config.Name).Add(float64(n))
	}
	w.observeBufferLocked()
}

func (w *Writer) drained(n int) {
	if n > 0 && w.config.OnDrain != nil {
		w.config.OnDrain(n)
	}
}

func (w *Writer) backpressureStarted(remaining int) {
	w.mu.Lock()
	w.stats.BackpressureWaits++
	if w.metricsOn {
		w.registry.WriterBackpressure.WithLabelValues(w.config.Name).Inc()
	}
	w.mu.Unlock()

	w.logger.Debug("waiting for transport capacity", zap.Int("remaining", remaining))
	if w.config.OnBackpressure != nil {
		w.config.OnBackpressure(remaining)
	}
}

func (w *Writer) backpressureEnded(waited time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stats.TotalWaitTime += waited
	if w.metricsOn {
		w.registry.WriterBackpressureWait.WithLabelValues(w.config.Name).Observe(waited.Seconds())
	}
}

func (w *Writer) observeBufferLocked() {
	if !w.metricsOn {
		return
	}
	usage, capacity := 0, 0
	if w.buf != nil {
		usage, capacity = w.buf.Available(), w.buf.Cap()
	}
	w.registry.WriterBufferUsage.WithLabelValues(w.config.Name).Set(float64(usage))
	w.registry.WriterBufferCapacity.WithLabelValues(w.config.Name).Set(float64(capacity))
}
