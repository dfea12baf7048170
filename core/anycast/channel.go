package anycast

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/channelkit/pkg/logger"
)

const (
	// DefaultCapacity is the buffer size used when no explicit capacity is configured.
	DefaultCapacity = 10
)

// Channel is a bounded multi-producer, multi-consumer point-to-point
// channel: each message is delivered to exactly one receiver. Unlike the
// broadcast channel, senders block while the buffer is full, which gives
// natural backpressure at the cost of coupling producer and consumer pace.
//
// Channel is safe for concurrent use.
type Channel[T any] struct {
	mu    sync.Mutex
	queue []T

	capacity int
	closed   bool

	// sendWake is closed and replaced when buffer space frees up or the
	// channel closes; recvWake when a message arrives or the channel closes.
	sendWake chan struct{}
	recvWake chan struct{}

	name   string
	logger *slog.Logger
}

type options struct {
	capacity int
	name     string
	logger   *slog.Logger
}

// Option configures a Channel.
type Option func(*options)

// WithCapacity sets the buffer size. Default is DefaultCapacity. New fails
// with ErrInvalidCapacity if the value is not positive.
func WithCapacity(capacity int) Option {
	return func(o *options) {
		o.capacity = capacity
	}
}

// WithName sets a channel name used in log records. Default is "anycast".
func WithName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.name = name
		}
	}
}

// WithLogger configures structured logging for the channel.
// Use slog.New(slog.NewTextHandler(io.Discard, nil)) to disable logging.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// New creates an anycast channel with an empty buffer.
func New[T any](opts ...Option) (*Channel[T], error) {
	o := options{
		capacity: DefaultCapacity,
		name:     "anycast",
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(&o)
	}

	if o.capacity < 1 {
		return nil, ErrInvalidCapacity
	}

	return &Channel[T]{
		queue:    make([]T, 0, o.capacity),
		capacity: o.capacity,
		sendWake: make(chan struct{}),
		recvWake: make(chan struct{}),
		name:     o.name,
		logger:   o.logger,
	}, nil
}

// NewSender returns a producer handle bound to this channel.
func (c *Channel[T]) NewSender() *Sender[T] {
	return &Sender[T]{channel: c}
}

// NewReceiver returns a consumer handle bound to this channel. When several
// receivers wait at once, exactly one of them gets each message; which one
// is unspecified.
func (c *Channel[T]) NewReceiver() *Receiver[T] {
	return &Receiver[T]{channel: c}
}

// Close closes the channel. Blocked senders fail with ErrClosed; receivers
// drain the remaining buffered messages and then get ErrClosed. Close is
// idempotent.
func (c *Channel[T]) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	c.wakeSendersLocked()
	c.wakeReceiversLocked()

	c.logger.Debug("channel closed",
		logger.Channel(c.name),
		logger.Count("undelivered", len(c.queue)))
	return nil
}

// Len reports how many messages are currently buffered.
func (c *Channel[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.queue)
}

// Capacity reports the fixed buffer size.
func (c *Channel[T]) Capacity() int {
	return c.capacity
}

// IsClosed reports whether the channel has been closed.
func (c *Channel[T]) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.closed
}

func (c *Channel[T]) send(ctx context.Context, msg T) error {
	c.mu.Lock()
	for {
		if c.closed {
			c.mu.Unlock()
			return ErrClosed
		}

		if len(c.queue) < c.capacity {
			c.queue = append(c.queue, msg)
			c.wakeReceiversLocked()
			c.mu.Unlock()
			return nil
		}

		// Buffer full: block this sender until a receiver frees a slot.
		wake := c.sendWake
		c.mu.Unlock()

		c.logger.Debug("channel full, blocking sender until a receiver consumes",
			logger.Channel(c.name))

		select {
		case <-wake:
		case <-ctx.Done():
			return ctx.Err()
		}

		c.mu.Lock()
	}
}

func (c *Channel[T]) recv(ctx context.Context) (T, error) {
	var zero T

	c.mu.Lock()
	for {
		if len(c.queue) > 0 {
			msg := c.queue[0]
			c.queue = c.queue[1:]
			c.wakeSendersLocked()
			c.mu.Unlock()
			return msg, nil
		}

		if c.closed {
			c.mu.Unlock()
			return zero, ErrClosed
		}

		wake := c.recvWake
		c.mu.Unlock()

		select {
		case <-wake:
		case <-ctx.Done():
			return zero, ctx.Err()
		}

		c.mu.Lock()
	}
}

func (c *Channel[T]) wakeSendersLocked() {
	close(c.sendWake)
	c.sendWake = make(chan struct{})
}

func (c *Channel[T]) wakeReceiversLocked() {
	close(c.recvWake)
	c.recvWake = make(chan struct{})
}

// Sender is a producer handle for an anycast channel. It is safe for
// concurrent use.
type Sender[T any] struct {
	channel *Channel[T]
}

// Send places msg into the channel's buffer, blocking while the buffer is
// full until a receiver consumes a message, the channel closes, or ctx is
// done.
func (s *Sender[T]) Send(ctx context.Context, msg T) error {
	return s.channel.send(ctx, msg)
}

// Receiver is a consumer handle for an anycast channel. It is safe for
// concurrent use.
type Receiver[T any] struct {
	channel *Channel[T]
}

// Recv takes the oldest buffered message, blocking until one is available,
// the channel closes, or ctx is done. After close, remaining buffered
// messages are still delivered before ErrClosed.
func (r *Receiver[T]) Recv(ctx context.Context) (T, error) {
	return r.channel.recv(ctx)
}
