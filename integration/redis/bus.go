package redis

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/channelkit/core/broadcast"
	"github.com/dmitrymomot/channelkit/pkg/logger"
)

// envelope wraps a payload on the wire with delivery metadata.
type envelope[T any] struct {
	ID      string    `json:"id"`
	SentAt  time.Time `json:"sent_at"`
	Payload T         `json:"payload"`
}

// Bus is a broadcast bus with the same receiver surface as core/broadcast
// but carried over Redis Pub/Sub, so processes on different hosts see the
// same message stream. Incoming messages are pumped into an in-process
// broadcast channel, which keeps the per-receiver cursor and lag semantics
// intact locally.
//
// Redis Pub/Sub delivers to every subscriber, including the publishing
// process itself, and offers no replay: messages published while the bus
// is not started are lost, just like messages sent before a broadcast
// subscription.
type Bus[T any] struct {
	client *redis.Client
	topic  string
	id     string

	local  *broadcast.Channel[T]
	sender *broadcast.Sender[T]

	mu      sync.Mutex
	pubsub  *redis.PubSub
	done    chan struct{}
	started bool
	closed  bool

	logger *slog.Logger
}

type busOptions struct {
	capacity int
	logger   *slog.Logger
}

// BusOption configures a Bus.
type BusOption func(*busOptions)

// WithBusCapacity sets the capacity of the local broadcast buffer that
// absorbs bursts for slow receivers. Default is broadcast.DefaultCapacity.
func WithBusCapacity(capacity int) BusOption {
	return func(o *busOptions) {
		o.capacity = capacity
	}
}

// WithBusLogger configures structured logging for the bus.
// Use slog.New(slog.NewTextHandler(io.Discard, nil)) to disable logging.
func WithBusLogger(logger *slog.Logger) BusOption {
	return func(o *busOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewBus creates a bus over the given client and Pub/Sub topic. Call Start
// to begin receiving; Publish works independently of Start.
func NewBus[T any](client *redis.Client, topic string, opts ...BusOption) (*Bus[T], error) {
	if topic == "" {
		return nil, ErrEmptyTopic
	}

	o := busOptions{
		capacity: broadcast.DefaultCapacity,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&o)
	}

	local, err := broadcast.New[T](
		broadcast.WithCapacity(o.capacity),
		broadcast.WithName("redis:"+topic),
		broadcast.WithLogger(o.logger),
	)
	if err != nil {
		return nil, err
	}

	return &Bus[T]{
		client: client,
		topic:  topic,
		id:     uuid.NewString(),
		local:  local,
		sender: local.NewSender(),
		logger: o.logger,
	}, nil
}

// Start subscribes to the topic and begins pumping incoming messages to
// local receivers. It returns once the subscription is confirmed; the pump
// itself runs on a background goroutine until Close.
func (b *Bus[T]) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrBusClosed
	}
	if b.started {
		return ErrBusAlreadyStarted
	}

	pubsub := b.client.Subscribe(ctx, b.topic)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return err
	}

	b.pubsub = pubsub
	b.done = make(chan struct{})
	b.started = true

	go b.pump(pubsub.Channel())

	b.logger.Debug("bus subscribed",
		logger.Key("bus_id", b.id),
		logger.Topic(b.topic))
	return nil
}

// pump forwards wire messages into the local broadcast channel until the
// subscription channel closes.
func (b *Bus[T]) pump(messages <-chan *redis.Message) {
	defer close(b.done)
	defer b.sender.Close()

	for msg := range messages {
		var env envelope[T]
		if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
			b.logger.Warn("dropping malformed bus message",
				logger.Key("bus_id", b.id),
				logger.Topic(b.topic),
				logger.Error(err))
			continue
		}

		if err := b.sender.Send(env.Payload); err != nil {
			return
		}

		b.logger.Debug("bus message delivered",
			logger.Key("bus_id", b.id),
			logger.MessageID(env.ID))
	}
}

// Publish sends msg to every bus subscribed to the same topic, including
// this one if it is started.
func (b *Bus[T]) Publish(ctx context.Context, msg T) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrBusClosed
	}
	b.mu.Unlock()

	data, err := json.Marshal(envelope[T]{
		ID:      uuid.NewString(),
		SentAt:  time.Now().UTC(),
		Payload: msg,
	})
	if err != nil {
		return err
	}

	return b.client.Publish(ctx, b.topic, data).Err()
}

// NewReceiver returns a receiver over the locally mirrored stream. It
// observes only messages that arrive after this call, with the usual
// broadcast lag semantics if it falls behind.
func (b *Bus[T]) NewReceiver() *broadcast.Receiver[T] {
	return b.local.NewReceiver()
}

// Close unsubscribes from the topic and closes the local channel; blocked
// receivers drain what is buffered and then get broadcast.ErrClosed.
// Close is idempotent.
func (b *Bus[T]) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	pubsub := b.pubsub
	done := b.done
	b.mu.Unlock()

	if pubsub != nil {
		_ = pubsub.Close()
		<-done
	}
	return b.local.Close()
}
