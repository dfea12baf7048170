package stream

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrymomot/channelkit/core/broadcast"
)

// LatestValueCache tracks the newest message seen on a source and serves it
// synchronously. It suits consumers that only care about the current value,
// such as periodic reporters reading a fast telemetry feed.
//
// The cache runs one background goroutine that keeps receiving from the
// source until the source stops or Close is called. Lag on the source is
// ignored: missed messages are stale by definition for a latest-value
// consumer.
//
// LatestValueCache is safe for concurrent use.
type LatestValueCache[T any] struct {
	mu    sync.RWMutex
	value T
	has   bool

	cancel context.CancelFunc
	done   chan struct{}
}

// NewLatestValueCache starts caching the newest message from src.
func NewLatestValueCache[T any](src Source[T]) *LatestValueCache[T] {
	ctx, cancel := context.WithCancel(context.Background())
	c := &LatestValueCache[T]{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(c.done)
		for {
			msg, err := src.Recv(ctx)
			if err != nil {
				var lag *broadcast.LagError
				if errors.As(err, &lag) {
					continue
				}
				return
			}

			c.mu.Lock()
			c.value = msg
			c.has = true
			c.mu.Unlock()
		}
	}()

	return c
}

// Get returns the newest message seen so far, or ErrEmpty if none arrived
// yet. It never blocks.
func (c *LatestValueCache[T]) Get() (T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.has {
		var zero T
		return zero, ErrEmpty
	}
	return c.value, nil
}

// Has reports whether a message has been cached.
func (c *LatestValueCache[T]) Has() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.has
}

// Close stops the background goroutine and waits for it to exit. The last
// cached value remains readable. Close is idempotent.
func (c *LatestValueCache[T]) Close() error {
	c.cancel()
	<-c.done
	return nil
}
