// Package redis carries a byte stream over Redis pub/sub.
//
// Outgoing chunks are PUBLISHed to an outbound channel in order; each
// successful publish acknowledges its bytes and returns them to the send
// window. Messages arriving on the inbound channel are delivered as data
// events. A publish failure or the subscription closing ends the connection.
package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	awerrors "github.com/vnykmshr/asyncwire/pkg/common/errors"
	"github.com/vnykmshr/asyncwire/pkg/common/validation"
	"github.com/vnykmshr/asyncwire/pkg/metrics"
	"github.com/vnykmshr/asyncwire/pkg/transport"
	"github.com/vnykmshr/asyncwire/pkg/transport/internal/pipe"
	"github.com/vnykmshr/asyncwire/pkg/transport/poller"
)

// Config holds configuration for a Redis transport.
type Config struct {
	// Outbound is the channel written bytes are published to.
	Outbound string

	// Inbound is the channel subscribed to for incoming bytes.
	Inbound string

	// Window is the maximum number of accepted but unpublished bytes.
	// Default: 16KB
	Window int

	// Timeout bounds each Redis call.
	// Default: 5 seconds
	Timeout time.Duration

	// Poller, when set, delivers periodic poll events.
	Poller *poller.Poller

	// Logger receives lifecycle logs. Default: no-op.
	Logger *zap.Logger

	// Metrics, when set, counts events and bytes published.
	Metrics *metrics.Registry
}

// DefaultConfig returns a default configuration with the given channels.
func DefaultConfig(outbound, inbound string) Config {
	return Config{
		Outbound: outbound,
		Inbound:  inbound,
		Window:   16 * 1024,
		Timeout:  5 * time.Second,
	}
}

func (c Config) validate() error {
	if err := validation.ValidateNotEmpty("redis", "outbound", c.Outbound); err != nil {
		return err
	}
	if err := validation.ValidateNotEmpty("redis", "inbound", c.Inbound); err != nil {
		return err
	}
	if err := validation.ValidatePositive("redis", "window", c.Window); err != nil {
		return err
	}
	return validation.ValidateDuration("redis", "timeout", c.Timeout)
}

// Transport is a transport.Transport over Redis pub/sub.
type Transport struct {
	*pipe.Pipe

	client       redis.UniversalClient
	pubsub       *redis.PubSub
	config       Config
	receiverOnce sync.Once
}

var _ transport.Transport = (*Transport)(nil)

// New subscribes to config.Inbound and returns a connected transport. The
// client stays owned by the caller.
func New(ctx context.Context, client redis.UniversalClient, config Config) (*Transport, error) {
	if err := validation.ValidateNotNil("redis", "client", client); err != nil {
		return nil, err
	}
	if err := config.validate(); err != nil {
		return nil, err
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("redis").With(zap.String("outbound", config.Outbound), zap.String("inbound", config.Inbound))

	ctx, cancel := context.WithTimeout(ctx, config.Timeout)
	defer cancel()

	pubsub := client.Subscribe(ctx, config.Inbound)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, awerrors.NewOperationError("redis", "Subscribe", err).
			WithContext("channel " + config.Inbound)
	}

	t := &Transport{client: client, pubsub: pubsub, config: config}
	t.Pipe = pipe.New(t, pipe.Config{
		Kind:    "redis",
		Window:  config.Window,
		Send:    t.publish,
		Release: func() { _ = pubsub.Close() },
		Poller:  config.Poller,
		Logger:  logger,
		Metrics: config.Metrics,
	})
	logger.Debug("subscribed")
	return t, nil
}

// SetHandler implements transport.Transport. The first non-nil handler
// starts delivery of inbound messages.
func (t *Transport) SetHandler(h transport.Handler) {
	t.Pipe.SetHandler(h)
	if h != nil {
		t.receiverOnce.Do(func() { t.Go(t.receiveLoop) })
	}
}

func (t *Transport) publish(payload []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), t.config.Timeout)
	defer cancel()
	if err := t.client.Publish(ctx, t.config.Outbound, payload).Err(); err != nil {
		return awerrors.NewOperationError("redis", "Publish", err).
			WithContext("channel " + t.config.Outbound)
	}
	return nil
}

func (t *Transport) receiveLoop() {
	ch := t.pubsub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				t.Shutdown(nil)
				return
			}
			t.Deliver([]byte(msg.Payload))
		case <-t.Done():
			return
		}
	}
}
