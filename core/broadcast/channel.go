package broadcast

import (
	"io"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/channelkit/pkg/logger"
)

const (
	// DefaultCapacity is the number of messages retained when no explicit
	// capacity is configured.
	DefaultCapacity = 16
)

// Channel is a multi-producer, multi-consumer broadcast channel. Every
// message sent through any of its senders is delivered to every receiver
// that subscribed before the send.
//
// The channel keeps the most recent messages in a fixed-capacity ring
// buffer shared by all receivers. Each message is tagged with a
// monotonically increasing sequence number; each receiver reads through its
// own cursor, so a slow receiver never blocks senders or other receivers.
// When a receiver falls behind by more than the capacity, its next Recv
// reports the number of missed messages via *LagError and resumes at the
// oldest retained message.
//
// Channel is safe for concurrent use.
//
// Example:
//
//	channel, err := broadcast.New[int](broadcast.WithCapacity(64))
//	if err != nil {
//	    return err
//	}
//	defer channel.Close()
//
//	sender := channel.NewSender()
//	receiver := channel.NewReceiver()
//
//	go func() {
//	    for i := 0; i < 3; i++ {
//	        _ = sender.Send(i)
//	    }
//	}()
//
//	for {
//	    msg, err := receiver.Recv(ctx)
//	    ...
//	}
type Channel[T any] struct {
	mu       sync.Mutex
	buffer   []T
	capacity uint64
	nextSeq  uint64

	// wake is closed and replaced whenever a message is appended or the
	// channel closes; blocked receivers select on the snapshot they took
	// before unlocking.
	wake chan struct{}

	senders    int
	hadSenders bool
	receivers  int
	closed     bool

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

// WithCapacity sets the number of most recent messages retained for slow
// receivers. Default is DefaultCapacity. New fails with ErrInvalidCapacity
// if the value is not positive.
func WithCapacity(capacity int) Option {
	return func(o *options) {
		o.capacity = capacity
	}
}

// WithName sets a channel name used in log records. Default is "broadcast".
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

// New creates a broadcast channel with an empty buffer.
func New[T any](opts ...Option) (*Channel[T], error) {
	o := options{
		capacity: DefaultCapacity,
		name:     "broadcast",
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(&o)
	}

	if o.capacity < 1 {
		return nil, ErrInvalidCapacity
	}

	return &Channel[T]{
		buffer:   make([]T, o.capacity),
		capacity: uint64(o.capacity),
		wake:     make(chan struct{}),
		name:     o.name,
		logger:   o.logger,
	}, nil
}

// NewSender returns a new sender handle bound to this channel. Senders may
// be created and used from any goroutine; all of them feed the same buffer.
func (c *Channel[T]) NewSender() *Sender[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.senders++
	c.hadSenders = true
	return &Sender[T]{channel: c}
}

// NewReceiver returns a receiver whose cursor starts at the current
// sequence number: it observes only messages sent after this call.
func (c *Channel[T]) NewReceiver() *Receiver[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.receivers++
	return &Receiver[T]{channel: c, cursor: c.nextSeq}
}

// Close tears the channel down. Subsequent sends fail with ErrClosed;
// receivers drain whatever is still buffered at their cursor and then get
// ErrClosed. Close is idempotent.
func (c *Channel[T]) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closeLocked()
	return nil
}

// Stats describes the current state of a channel.
type Stats struct {
	Capacity       int    // Fixed buffer capacity
	Buffered       int    // Messages currently retained
	NextSequence   uint64 // Sequence number the next send will be assigned
	OldestRetained uint64 // Lowest sequence number still readable
	Senders        int    // Live sender handles
	Receivers      int    // Live receiver handles
	Closed         bool   // Whether the channel is closed for sends
}

// Stats returns a snapshot of the channel state for observability and
// debugging. It is safe to call at any time.
func (c *Channel[T]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Stats{
		Capacity:       int(c.capacity),
		Buffered:       int(c.nextSeq - c.oldestRetainedLocked()),
		NextSequence:   c.nextSeq,
		OldestRetained: c.oldestRetainedLocked(),
		Senders:        c.senders,
		Receivers:      c.receivers,
		Closed:         c.closed,
	}
}

// oldestRetainedLocked returns the lowest sequence number still present in
// the buffer. Callers must hold c.mu.
func (c *Channel[T]) oldestRetainedLocked() uint64 {
	if c.nextSeq > c.capacity {
		return c.nextSeq - c.capacity
	}
	return 0
}

// append stores msg at the slot for the next sequence number, evicting the
// oldest occupant when the buffer is full, and wakes all blocked receivers.
func (c *Channel[T]) append(msg T) error {
	c.mu.Lock()

	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}

	seq := c.nextSeq
	c.buffer[seq%c.capacity] = msg
	c.nextSeq++
	c.wakeLocked()
	c.mu.Unlock()

	c.logger.Debug("message appended",
		logger.Channel(c.name),
		logger.Sequence(seq))
	return nil
}

// releaseSender is called when a sender handle closes. Dropping the last
// live sender closes the channel for sends so drained receivers terminate.
func (c *Channel[T]) releaseSender() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.senders--
	if c.senders == 0 && c.hadSenders {
		c.closeLocked()
	}
}

// releaseReceiver detaches a receiver handle and wakes any Recv blocked on
// it so the close is observed promptly.
func (c *Channel[T]) releaseReceiver() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.receivers--
	c.wakeLocked()
}

// closeLocked marks the channel closed and wakes all blocked receivers.
// Callers must hold c.mu.
func (c *Channel[T]) closeLocked() {
	if c.closed {
		return
	}
	c.closed = true
	c.wakeLocked()

	c.logger.Debug("channel closed",
		logger.Channel(c.name),
		logger.Sequence(c.nextSeq))
}

// wakeLocked wakes every blocked receiver by closing the current wake
// channel and installing a fresh one. Callers must hold c.mu.
func (c *Channel[T]) wakeLocked() {
	close(c.wake)
	c.wake = make(chan struct{})
}
