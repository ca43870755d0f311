package redis

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap/zaptest"

	"github.com/vnykmshr/asyncwire/internal/testutil"
	awerrors "github.com/vnykmshr/asyncwire/pkg/common/errors"
	"github.com/vnykmshr/asyncwire/pkg/transport"
)

// newClient connects to REDIS_ADDR (default localhost:6379) or skips.
func newClient(t *testing.T) *redis.Client {
	t.Helper()

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		t.Skipf("redis not available at %s: %v", addr, err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func channelName(t *testing.T, suffix string) string {
	return "asyncwire-test:" + t.Name() + ":" + suffix
}

func TestConfigValidation(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	defer func() { _ = client.Close() }()
	ctx := context.Background()

	tests := []struct {
		name   string
		config Config
	}{
		{"missing outbound", DefaultConfig("", "in")},
		{"missing inbound", DefaultConfig("out", "")},
		{"zero window", func() Config { c := DefaultConfig("out", "in"); c.Window = 0; return c }()},
		{"zero timeout", func() Config { c := DefaultConfig("out", "in"); c.Timeout = 0; return c }()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(ctx, client, tt.config)
			testutil.AssertErrorIs(t, err, awerrors.ErrInvalidConfiguration)
		})
	}

	_, err := New(ctx, nil, DefaultConfig("out", "in"))
	testutil.AssertErrorIs(t, err, awerrors.ErrInvalidConfiguration)
}

func TestPublishAndReceive(t *testing.T) {
	client := newClient(t)
	ctx, cancel := testutil.WithTimeout(t)
	defer cancel()

	ab, ba := channelName(t, "ab"), channelName(t, "ba")
	logger := zaptest.NewLogger(t)

	configA := DefaultConfig(ab, ba)
	configA.Logger = logger
	a, err := New(ctx, client, configA)
	testutil.AssertNoError(t, err)

	configB := DefaultConfig(ba, ab)
	configB.Logger = logger
	b, err := New(ctx, client, configB)
	testutil.AssertNoError(t, err)

	var (
		mu       sync.Mutex
		received []byte
		acked    int64
	)
	a.SetHandler(transport.HandlerFuncs{
		Ack: func(_ transport.Transport, n int, _ time.Duration) { atomic.AddInt64(&acked, int64(n)) },
	})
	b.SetHandler(transport.HandlerFuncs{
		Data: func(_ transport.Transport, p []byte) {
			mu.Lock()
			received = append(received, p...)
			mu.Unlock()
		},
	})

	testutil.AssertEqual(t, a.Write([]byte("hello ")), 6)
	testutil.AssertEqual(t, a.Write([]byte("redis")), 5)

	testutil.AssertEventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return string(received) == "hello redis"
	})
	testutil.AssertEventually(t, func() bool { return atomic.LoadInt64(&acked) == 11 })
	testutil.AssertEqual(t, a.Space(), configA.Window)

	a.Abort()
	b.Abort()
	a.Wait()
	b.Wait()
}

func TestWindowAndDisconnect(t *testing.T) {
	client := newClient(t)
	ctx, cancel := testutil.WithTimeout(t)
	defer cancel()

	config := DefaultConfig(channelName(t, "out"), channelName(t, "in"))
	config.Window = 4
	tr, err := New(ctx, client, config)
	testutil.AssertNoError(t, err)

	var disconnects int32
	tr.SetHandler(transport.HandlerFuncs{
		Disconnect: func(transport.Transport) { atomic.AddInt32(&disconnects, 1) },
	})

	testutil.AssertEqual(t, tr.Write([]byte("abcdef")) <= 4, true)

	testutil.AssertNoError(t, tr.Close())
	testutil.AssertEventually(t, func() bool { return !tr.Connected() })
	tr.Abort()
	tr.Free()
	tr.Wait()

	testutil.AssertEqual(t, atomic.LoadInt32(&disconnects), int32(1))
	testutil.AssertEqual(t, tr.Write([]byte("x")), 0)
	testutil.AssertErrorIs(t, tr.Close(), transport.ErrClosed)
}
