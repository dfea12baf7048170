package event

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by Wait once the event is closed.
var ErrClosed = errors.New("event: closed")

// Event is a resettable level-triggered signal. Set latches it until a
// waiter consumes it through Wait, which makes it safe to signal a
// condition to a goroutine that is not waiting yet.
//
// Event is safe for concurrent use. Wait consumes the latch, so when
// several goroutines wait at once each Set releases exactly one of them.
type Event struct {
	mu     sync.Mutex
	set    bool
	closed bool
	wake   chan struct{}
}

// New creates an unset event.
func New() *Event {
	return &Event{wake: make(chan struct{})}
}

// Set latches the event and releases current waiters. Setting an already
// set event has no effect.
func (e *Event) Set() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.set || e.closed {
		return
	}
	e.set = true
	close(e.wake)
	e.wake = make(chan struct{})
}

// Clear unlatches the event without waking anyone.
func (e *Event) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.set = false
}

// IsSet reports whether the event is currently latched.
func (e *Event) IsSet() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.set
}

// Wait blocks until the event is set, then clears it and returns nil.
// If the event is already set, Wait returns immediately. It returns
// ErrClosed once the event is closed and ctx.Err() if ctx is done first.
func (e *Event) Wait(ctx context.Context) error {
	e.mu.Lock()
	for {
		if e.set {
			e.set = false
			e.mu.Unlock()
			return nil
		}
		if e.closed {
			e.mu.Unlock()
			return ErrClosed
		}

		wake := e.wake
		e.mu.Unlock()

		select {
		case <-wake:
		case <-ctx.Done():
			return ctx.Err()
		}

		e.mu.Lock()
	}
}

// IsClosed reports whether the event has been closed.
func (e *Event) IsClosed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.closed
}

// Close permanently stops the event and wakes all waiters with ErrClosed.
// Close is idempotent.
func (e *Event) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true
	close(e.wake)
	e.wake = make(chan struct{})
	return nil
}
