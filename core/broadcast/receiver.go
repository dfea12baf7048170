package broadcast

import "context"

// Receiver holds an independent read cursor into its channel's buffer.
// Receivers created by the same channel at the same moment observe the
// identical sequence of messages, each at its own pace.
//
// A Receiver is safe for concurrent use, though calling Recv from more than
// one goroutine splits the message stream between them.
type Receiver[T any] struct {
	channel *Channel[T]

	// cursor and closed are guarded by channel.mu; the buffer, counters and
	// cursors share the channel's single mutual-exclusion region.
	cursor uint64
	closed bool
}

// Recv returns the next message at the receiver's cursor, blocking until
// one is available, the channel closes, or ctx is done.
//
// If the receiver fell behind the oldest retained message, Recv advances
// the cursor to the oldest retained message and fails with *LagError
// reporting how many messages were missed; the caller is expected to call
// Recv again. Once the channel is closed and the cursor is exhausted, Recv
// fails with ErrClosed.
func (r *Receiver[T]) Recv(ctx context.Context) (T, error) {
	var zero T
	c := r.channel

	c.mu.Lock()
	for {
		if r.closed {
			c.mu.Unlock()
			return zero, ErrReceiverClosed
		}

		if oldest := c.oldestRetainedLocked(); r.cursor < oldest {
			missed := oldest - r.cursor
			r.cursor = oldest
			c.mu.Unlock()
			return zero, &LagError{Missed: missed}
		}

		if r.cursor < c.nextSeq {
			msg := c.buffer[r.cursor%c.capacity]
			r.cursor++
			c.mu.Unlock()
			return msg, nil
		}

		if c.closed {
			c.mu.Unlock()
			return zero, ErrClosed
		}

		// Nothing at the cursor yet. Snapshot the wake channel, release the
		// lock, and suspend until the next append or close.
		wake := c.wake
		c.mu.Unlock()

		select {
		case <-wake:
		case <-ctx.Done():
			return zero, ctx.Err()
		}

		c.mu.Lock()
	}
}

// Pending reports how many messages are currently buffered and unread at
// this receiver's cursor, including any it already missed.
func (r *Receiver[T]) Pending() int {
	c := r.channel
	c.mu.Lock()
	defer c.mu.Unlock()

	return int(c.nextSeq - r.cursor)
}

// Close detaches this receiver from the channel. It does not affect other
// receivers or the sender side. Close is idempotent.
func (r *Receiver[T]) Close() error {
	c := r.channel

	c.mu.Lock()
	if r.closed {
		c.mu.Unlock()
		return nil
	}
	r.closed = true
	c.mu.Unlock()

	c.releaseReceiver()
	return nil
}
