package writer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap/zaptest"

	"github.com/vnykmshr/asyncwire/internal/testutil"
	awerrors "github.com/vnykmshr/asyncwire/pkg/common/errors"
	"github.com/vnykmshr/asyncwire/pkg/metrics"
	"github.com/vnykmshr/asyncwire/pkg/transport/mem"
)

func testConfig(t *testing.T) Config {
	config := DefaultConfig()
	config.YieldInterval = time.Millisecond
	config.Logger = zaptest.NewLogger(t)
	return config
}

func newBound(t *testing.T, tr *mem.Transport, size int) *Writer {
	t.Helper()
	w, err := NewWithTransport(tr, size, testConfig(t))
	testutil.AssertNoError(t, err)
	return w
}

func TestNew(t *testing.T) {
	w := New(Config{})

	testutil.AssertEqual(t, w.Connected(), false)
	testutil.AssertEqual(t, w.BufferSize(), 0)
	testutil.AssertEqual(t, w.BufferCapacity(), 0)
	testutil.AssertEqual(t, w.config.Name, "default")
	testutil.AssertEqual(t, w.config.YieldInterval, 5*time.Millisecond)
}

func TestNewWithTransport(t *testing.T) {
	tr := mem.New()
	w := newBound(t, tr, 64)

	testutil.AssertEqual(t, w.Connected(), true)
	testutil.AssertEqual(t, w.BufferCapacity(), 64)
	testutil.AssertEqual(t, w.BufferSize(), 0)
}

func TestBindValidation(t *testing.T) {
	w := New(testConfig(t))

	err := w.Bind(nil, 16)
	testutil.AssertErrorIs(t, err, awerrors.ErrInvalidConfiguration)

	var typedNil *mem.Transport
	err = w.Bind(typedNil, 16)
	testutil.AssertErrorIs(t, err, awerrors.ErrInvalidConfiguration)

	err = w.Bind(mem.New(), 0)
	testutil.AssertErrorIs(t, err, awerrors.ErrInvalidConfiguration)
	testutil.AssertEqual(t, awerrors.IsValidationError(err), true)

	_, err = NewWithTransport(mem.New(), -1, DefaultConfig())
	testutil.AssertError(t, err)
}

func TestBasicWrite(t *testing.T) {
	tr := mem.New()
	w := newBound(t, tr, 16)

	n, err := w.Write([]byte("Hello, World!"))
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, n, 13)
	testutil.AssertEqual(t, string(tr.Sent()), "Hello, World!")
	testutil.AssertEqual(t, w.BufferSize(), 0)
}

func TestWriteStringAndByte(t *testing.T) {
	tr := mem.New()
	w := newBound(t, tr, 8)

	n, err := w.WriteString("abc")
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, n, 3)

	testutil.AssertNoError(t, w.WriteByte('d'))
	testutil.AssertEqual(t, string(tr.Sent()), "abcd")
}

func TestEmptyWrite(t *testing.T) {
	tr := mem.New()
	w := newBound(t, tr, 8)

	n, err := w.Write(nil)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, n, 0)
	testutil.AssertEqual(t, len(tr.Chunks()), 0)
}

func TestWriteBuffersWithoutSpace(t *testing.T) {
	tr := mem.New(mem.WithSpace(0))
	w := newBound(t, tr, 8)

	n, err := w.Write([]byte("abc"))
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, n, 3)
	testutil.AssertEqual(t, w.BufferSize(), 3)
	testutil.AssertEqual(t, len(tr.Sent()), 0)

	tr.SetSpace(mem.Unlimited)
	testutil.AssertEqual(t, string(tr.Sent()), "abc")
	testutil.AssertEqual(t, w.BufferSize(), 0)
}

func TestWriteUnbound(t *testing.T) {
	w := New(testConfig(t))

	n, err := w.Write([]byte("data"))
	testutil.AssertErrorIs(t, err, awerrors.ErrNotConnected)
	testutil.AssertEqual(t, n, 0)

	err = w.WriteByte('x')
	testutil.AssertErrorIs(t, err, awerrors.ErrNotConnected)
}

func TestWriteAfterTransportDropped(t *testing.T) {
	tr := mem.New(mem.WithSpace(0))
	w := newBound(t, tr, 8)

	_, err := w.Write([]byte("ab"))
	testutil.AssertNoError(t, err)

	// Abort fires no event, so the writer is still bound but disconnected.
	tr.Abort()
	testutil.AssertEqual(t, w.Connected(), false)

	n, err := w.Write([]byte("cd"))
	testutil.AssertErrorIs(t, err, awerrors.ErrNotConnected)
	testutil.AssertEqual(t, n, 0)
	testutil.AssertEqual(t, w.BufferSize(), 2)
}

func TestWriteAfterDisconnect(t *testing.T) {
	tr := mem.New()
	w := newBound(t, tr, 8)

	tr.Disconnect()

	n, err := w.Write([]byte("late"))
	testutil.AssertErrorIs(t, err, awerrors.ErrNotConnected)
	testutil.AssertEqual(t, n, 0)
	testutil.AssertEqual(t, w.BufferCapacity(), 0)
	testutil.AssertEqual(t, len(tr.Sent()), 0)
}

func TestFIFOAcrossDrains(t *testing.T) {
	tr := mem.New(mem.WithSpace(0))
	w := newBound(t, tr, 4)

	_, err := w.Write([]byte("AB"))
	testutil.AssertNoError(t, err)
	_, err = w.Write([]byte("CD"))
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, w.BufferSize(), 4)

	tr.SetSpace(2)
	tr.Ack(2)

	chunks := tr.Chunks()
	testutil.AssertEqual(t, len(chunks), 2)
	testutil.AssertEqual(t, string(chunks[0]), "AB")
	testutil.AssertEqual(t, string(chunks[1]), "CD")
	testutil.AssertEqual(t, string(tr.Sent()), "ABCD")
}

func TestShortAcceptKeepsRemainder(t *testing.T) {
	tr := mem.New(mem.WithSpace(0))
	w := newBound(t, tr, 8)

	_, err := w.Write([]byte("abcdef"))
	testutil.AssertNoError(t, err)

	tr.SetSpace(4)
	testutil.AssertEqual(t, string(tr.Sent()), "abcd")
	testutil.AssertEqual(t, w.BufferSize(), 2)

	tr.Ack(4)
	testutil.AssertEqual(t, string(tr.Sent()), "abcdef")
	testutil.AssertEqual(t, w.BufferSize(), 0)
}

func TestOverflowBlocksUntilDrained(t *testing.T) {
	tr := mem.New(mem.WithSpace(0))
	pressure := testutil.NewCallbackTracker()
	drains := testutil.NewCallbackTracker()

	config := testConfig(t)
	config.OnBackpressure = func(remaining int) { pressure.Mark(remaining) }
	config.OnDrain = func(n int) { drains.Mark(n) }
	w, err := NewWithTransport(tr, 4, config)
	testutil.AssertNoError(t, err)

	type result struct {
		n   int
		err error
	}
	done := make(chan result, 1)
	go func() {
		n, err := w.Write([]byte("ABCDEF"))
		done <- result{n, err}
	}()

	testutil.AssertEventually(t, func() bool {
		return w.BufferSize() == 4 && pressure.Called()
	})
	select {
	case <-done:
		t.Fatal("Write returned while the buffer was full")
	default:
	}
	testutil.AssertEqual(t, pressure.Value(), interface{}(2))

	tr.SetSpace(4)
	tr.SetSpace(mem.Unlimited)

	select {
	case r := <-done:
		testutil.AssertNoError(t, r.err)
		testutil.AssertEqual(t, r.n, 6)
	case <-time.After(testutil.TestTimeout):
		t.Fatal("Write did not return after space appeared")
	}

	testutil.AssertEqual(t, string(tr.Sent()), "ABCDEF")
	testutil.AssertEqual(t, w.BufferSize(), 0)
	testutil.AssertEqual(t, drains.Called(), true)

	stats := w.Stats()
	testutil.AssertEqual(t, stats.BytesAccepted, int64(6))
	testutil.AssertEqual(t, stats.BytesDrained, int64(6))
	testutil.AssertEqual(t, stats.TotalWaitTime > 0, true)
}

func TestDisconnectDuringBlockedWrite(t *testing.T) {
	tr := mem.New(mem.WithSpace(0))
	w := newBound(t, tr, 4)

	type result struct {
		n   int
		err error
	}
	done := make(chan result, 1)
	go func() {
		n, err := w.Write([]byte("ABCDEFGH"))
		done <- result{n, err}
	}()

	testutil.AssertEventually(t, func() bool {
		return w.Stats().BackpressureWaits == 1
	})
	tr.Disconnect()

	select {
	case r := <-done:
		testutil.AssertErrorIs(t, r.err, awerrors.ErrDisconnected)
		testutil.AssertEqual(t, r.n, 4)
	case <-time.After(testutil.TestTimeout):
		t.Fatal("blocked Write did not observe the disconnect")
	}
	testutil.AssertEqual(t, w.Connected(), false)
}

func TestReleaseDuringBlockedWrite(t *testing.T) {
	tr := mem.New(mem.WithSpace(0))
	w := newBound(t, tr, 2)

	errc := make(chan error, 1)
	go func() {
		_, err := w.Write([]byte("ABCD"))
		errc <- err
	}()

	testutil.AssertEventually(t, func() bool {
		return w.Stats().BackpressureWaits == 1
	})
	w.Release()

	select {
	case err := <-errc:
		testutil.AssertErrorIs(t, err, awerrors.ErrDisconnected)
	case <-time.After(testutil.TestTimeout):
		t.Fatal("blocked Write did not observe Release")
	}
}

func TestWriteContextCancel(t *testing.T) {
	tr := mem.New(mem.WithSpace(0))
	w := newBound(t, tr, 2)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	n, err := w.WriteContext(ctx, []byte("ABCD"))
	testutil.AssertErrorIs(t, err, awerrors.ErrTimeout)
	testutil.AssertErrorIs(t, err, context.DeadlineExceeded)
	testutil.AssertEqual(t, n, 2)
	testutil.AssertEqual(t, w.BufferSize(), 2)
	testutil.AssertEqual(t, w.Connected(), true)
}

func TestWriteContextCanceledIsNotTimeout(t *testing.T) {
	tr := mem.New(mem.WithSpace(0))
	w := newBound(t, tr, 2)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(10*time.Millisecond, cancel)

	n, err := w.WriteContext(ctx, []byte("ABCD"))
	testutil.AssertErrorIs(t, err, context.Canceled)
	testutil.AssertEqual(t, errors.Is(err, awerrors.ErrTimeout), false)
	testutil.AssertEqual(t, n, 2)
}

func TestTeardownIsIdempotent(t *testing.T) {
	tests := []struct {
		name   string
		end    func(w *Writer, tr *mem.Transport)
		closed bool
		freed  int
	}{
		{
			name:  "peer disconnect",
			end:   func(_ *Writer, tr *mem.Transport) { tr.Disconnect() },
			freed: 1,
		},
		{
			name:   "close",
			end:    func(w *Writer, _ *mem.Transport) { _ = w.Close() },
			closed: true,
			freed:  1,
		},
		{
			name: "release",
			end:  func(w *Writer, _ *mem.Transport) { w.Release() },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := mem.New()
			w := newBound(t, tr, 8)
			closes := testutil.NewCallbackTracker()
			w.OnClose(func(*Writer) { closes.Mark() })

			tt.end(w, tr)

			// Every further way of ending must be a no-op.
			tr.Disconnect()
			_ = w.Close()
			w.Release()
			w.Release()

			closes.AssertCallCount(t, 1)
			testutil.AssertEqual(t, w.Connected(), false)
			testutil.AssertEqual(t, w.BufferCapacity(), 0)
			testutil.AssertEqual(t, w.Stats().Disconnects, int64(1))
			testutil.AssertEqual(t, tr.Closed(), tt.closed)
			testutil.AssertEqual(t, tr.Freed(), tt.freed)
		})
	}
}

func TestCloseUnbound(t *testing.T) {
	w := New(testConfig(t))
	testutil.AssertErrorIs(t, w.Close(), awerrors.ErrNotConnected)
}

func TestOnData(t *testing.T) {
	tr := mem.New()
	w := newBound(t, tr, 8)

	var rec testutil.ByteRecorder
	w.OnData(func(got *Writer, p []byte) {
		if got != w {
			t.Errorf("observer got writer %p, want %p", got, w)
		}
		rec.Record(p)
	})

	tr.Deliver([]byte("ping"))
	tr.Deliver([]byte("pong"))
	testutil.AssertEqual(t, rec.String(), "pingpong")
	testutil.AssertEqual(t, rec.Chunks(), 2)

	// Incoming data is never buffered.
	testutil.AssertEqual(t, w.BufferSize(), 0)

	w.OnData(nil)
	tr.Deliver([]byte("dropped"))
	testutil.AssertEqual(t, rec.Chunks(), 2)
}

func TestRebindAbortsPrevious(t *testing.T) {
	t1 := mem.New(mem.WithSpace(0))
	w := newBound(t, t1, 8)
	closes := testutil.NewCallbackTracker()
	w.OnClose(func(*Writer) { closes.Mark() })

	_, err := w.Write([]byte("stale"))
	testutil.AssertNoError(t, err)

	t2 := mem.New()
	testutil.AssertNoError(t, w.Bind(t2, 32))

	testutil.AssertEqual(t, t1.Aborted(), true)
	testutil.AssertEqual(t, t1.Freed(), 1)
	testutil.AssertEqual(t, w.BufferCapacity(), 32)
	testutil.AssertEqual(t, w.BufferSize(), 0)
	closes.AssertCallCount(t, 0)

	_, err = w.Write([]byte("fresh"))
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, string(t2.Sent()), "fresh")
	testutil.AssertEqual(t, len(t1.Sent()), 0)

	// Events from the old transport no longer reach the writer.
	t1.Disconnect()
	closes.AssertCallCount(t, 0)
	testutil.AssertEqual(t, w.Connected(), true)
}

func TestStaleBindingIgnored(t *testing.T) {
	t1 := mem.New()
	w := newBound(t, t1, 8)
	old := w.binding

	t2 := mem.New(mem.WithSpace(0))
	testutil.AssertNoError(t, w.Bind(t2, 8))
	_, err := w.Write([]byte("xy"))
	testutil.AssertNoError(t, err)

	old.HandlePoll(t1)
	old.HandleDisconnect(t1)

	testutil.AssertEqual(t, w.Connected(), true)
	testutil.AssertEqual(t, w.BufferSize(), 2)
}

func TestAssignMovesTransport(t *testing.T) {
	tr := mem.New()
	src := newBound(t, tr, 24)
	srcCloses := testutil.NewCallbackTracker()
	src.OnClose(func(*Writer) { srcCloses.Mark() })

	dst := New(testConfig(t))
	testutil.AssertNoError(t, dst.Assign(src))

	testutil.AssertEqual(t, src.Connected(), false)
	testutil.AssertEqual(t, src.BufferCapacity(), 0)
	testutil.AssertEqual(t, dst.Connected(), true)
	testutil.AssertEqual(t, dst.BufferCapacity(), 24)
	srcCloses.AssertCallCount(t, 0)

	_, err := src.Write([]byte("x"))
	testutil.AssertErrorIs(t, err, awerrors.ErrNotConnected)

	_, err = dst.Write([]byte("moved"))
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, string(tr.Sent()), "moved")

	tr.Disconnect()
	srcCloses.AssertCallCount(t, 0)
	testutil.AssertEqual(t, dst.Connected(), false)
}

func TestBindDeadTransportEndsAtOnce(t *testing.T) {
	tr := mem.New()
	tr.Abort()

	w := New(testConfig(t))
	closes := testutil.NewCallbackTracker()
	w.OnClose(func(*Writer) { closes.Mark() })

	testutil.AssertNoError(t, w.Bind(tr, 8))
	closes.AssertCallCount(t, 1)
	testutil.AssertEqual(t, w.BufferCapacity(), 0)
	testutil.AssertEqual(t, tr.Freed(), 1)

	_, err := w.Write([]byte("x"))
	testutil.AssertErrorIs(t, err, awerrors.ErrNotConnected)
}

func TestAssignAfterSilentDisconnect(t *testing.T) {
	tr := mem.New()
	src := newBound(t, tr, 16)

	// The transport is gone but src has not heard about it yet.
	tr.Abort()

	dst := New(testConfig(t))
	closes := testutil.NewCallbackTracker()
	dst.OnClose(func(*Writer) { closes.Mark() })

	testutil.AssertNoError(t, dst.Assign(src))
	closes.AssertCallCount(t, 1)
	testutil.AssertEqual(t, dst.Connected(), false)
	testutil.AssertEqual(t, src.Connected(), false)
	testutil.AssertEqual(t, tr.Freed(), 1)
}

func TestAssignUnboundDetaches(t *testing.T) {
	tr := mem.New()
	dst := newBound(t, tr, 8)

	testutil.AssertNoError(t, dst.Assign(New(testConfig(t))))
	testutil.AssertEqual(t, dst.Connected(), false)
	testutil.AssertEqual(t, tr.Aborted(), true)

	testutil.AssertNoError(t, dst.Assign(dst))
	testutil.AssertError(t, dst.Assign(nil))
}

func TestRebindAfterClose(t *testing.T) {
	t1 := mem.New()
	w := newBound(t, t1, 8)
	closes := testutil.NewCallbackTracker()
	w.OnClose(func(*Writer) { closes.Mark() })

	t1.Disconnect()
	closes.AssertCallCount(t, 1)

	t2 := mem.New()
	testutil.AssertNoError(t, w.Bind(t2, 8))
	_, err := w.WriteString("again")
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, string(t2.Sent()), "again")

	t2.Disconnect()
	closes.AssertCallCount(t, 2)
}

func TestConcurrentWritesStayContiguous(t *testing.T) {
	tr := mem.New(mem.WithSpace(16))
	tr.AutoAck(true)
	w := newBound(t, tr, 16)

	stop := make(chan struct{})
	var pollers sync.WaitGroup
	pollers.Add(1)
	go func() {
		defer pollers.Done()
		ticker := time.NewTicker(time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				tr.Poll()
			}
		}
	}()

	const producers, records = 4, 50
	var wg sync.WaitGroup
	for g := 0; g < producers; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < records; i++ {
				if _, err := fmt.Fprintf(w, "%d-%04d\n", g, i); err != nil {
					t.Errorf("producer %d: %v", g, err)
					return
				}
			}
		}(g)
	}
	wg.Wait()

	total := producers * records * len("0-0000\n")
	testutil.AssertEventually(t, func() bool { return len(tr.Sent()) == total })
	close(stop)
	pollers.Wait()

	next := make(map[string]int)
	for _, line := range strings.Split(strings.TrimSuffix(string(tr.Sent()), "\n"), "\n") {
		g, seq, ok := strings.Cut(line, "-")
		i, err := strconv.Atoi(seq)
		if !ok || err != nil || len(seq) != 4 {
			t.Fatalf("corrupted record %q", line)
		}
		if i != next[g] {
			t.Fatalf("producer %s: got record %d, want %d", g, i, next[g])
		}
		next[g]++
	}
	testutil.AssertEqual(t, len(next), producers)
}

func TestNoLossUnderRandomSpace(t *testing.T) {
	tr := mem.New(mem.WithSpace(3))
	w := newBound(t, tr, 5)

	var want bytes.Buffer
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 40; i++ {
			p := []byte(fmt.Sprintf("<%d>", i))
			want.Write(p)
			if _, err := w.Write(p); err != nil {
				t.Errorf("write %d: %v", i, err)
				return
			}
		}
	}()

	step := 0
	for {
		select {
		case <-done:
			tr.SetSpace(mem.Unlimited)
			testutil.AssertBytes(t, tr.Sent(), want.Bytes())
			return
		default:
		}
		step++
		tr.Ack(step%4 + 1)
		testutil.AssertEqual(t, w.BufferSize() <= 5, true)
		time.Sleep(time.Millisecond)
	}
}

func TestStats(t *testing.T) {
	tr := mem.New(mem.WithSpace(0))
	w := newBound(t, tr, 10)

	_, err := w.Write([]byte("hello"))
	testutil.AssertNoError(t, err)

	stats := w.Stats()
	testutil.AssertEqual(t, stats.BytesAccepted, int64(5))
	testutil.AssertEqual(t, stats.BytesDrained, int64(0))
	testutil.AssertEqual(t, stats.Buffered, 5)
	testutil.AssertEqual(t, stats.Capacity, 10)
	testutil.AssertEqual(t, stats.BufferUtilization, 0.5)

	tr.SetSpace(mem.Unlimited)
	stats = w.Stats()
	testutil.AssertEqual(t, stats.BytesDrained, int64(5))
	testutil.AssertEqual(t, stats.DrainCount, int64(1))
	testutil.AssertEqual(t, stats.Buffered, 0)
}

func TestMetrics(t *testing.T) {
	tr := mem.New(mem.WithSpace(0))
	w, err := NewWithMetrics(tr, 8, "metered")
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, w.MetricsEnabled(), true)

	reg := w.registry
	_, err = w.Write([]byte("hello"))
	testutil.AssertNoError(t, err)

	testutil.AssertEqual(t, promtestutil.ToFloat64(reg.WriterBytesAccepted.WithLabelValues("metered")), 5.0)
	testutil.AssertEqual(t, promtestutil.ToFloat64(reg.WriterBufferUsage.WithLabelValues("metered")), 5.0)
	testutil.AssertEqual(t, promtestutil.ToFloat64(reg.WriterBufferCapacity.WithLabelValues("metered")), 8.0)

	tr.SetSpace(mem.Unlimited)
	testutil.AssertEqual(t, promtestutil.ToFloat64(reg.WriterBytesDrained.WithLabelValues("metered")), 5.0)
	testutil.AssertEqual(t, promtestutil.ToFloat64(reg.WriterDrains.WithLabelValues("metered")), 1.0)
	testutil.AssertEqual(t, promtestutil.ToFloat64(reg.WriterBufferUsage.WithLabelValues("metered")), 0.0)

	tr.Disconnect()
	testutil.AssertEqual(t, promtestutil.ToFloat64(reg.WriterDisconnects.WithLabelValues("metered")), 1.0)
	testutil.AssertEqual(t, promtestutil.ToFloat64(reg.WriterBufferCapacity.WithLabelValues("metered")), 0.0)

	w.DisableMetrics()
	testutil.AssertEqual(t, w.MetricsEnabled(), false)
}

func TestEnableMetrics(t *testing.T) {
	w := New(testConfig(t))
	testutil.AssertEqual(t, w.MetricsEnabled(), false)

	registry := prometheus.NewRegistry()
	config := metrics.DefaultConfig()
	config.Registry = registry
	testutil.AssertNoError(t, w.EnableMetrics(config))
	testutil.AssertEqual(t, w.MetricsEnabled(), true)

	tr := mem.New()
	testutil.AssertNoError(t, w.Bind(tr, 4))
	_, err := w.Write([]byte("ab"))
	testutil.AssertNoError(t, err)

	count, err := promtestutil.GatherAndCount(registry, "asyncwire_writer_bytes_accepted_total")
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, count, 1)

	config.Enabled = false
	testutil.AssertNoError(t, w.EnableMetrics(config))
	testutil.AssertEqual(t, w.MetricsEnabled(), false)
}

func TestErrorsAreDistinct(t *testing.T) {
	testutil.AssertEqual(t, errors.Is(awerrors.ErrDisconnected, awerrors.ErrNotConnected), false)
}
