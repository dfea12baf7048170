package broadcast

import "sync/atomic"

// Sender is a lightweight producer handle bound to a Channel. Multiple
// senders may exist at once; all of them append to the same buffer.
// A Sender is safe for concurrent use, but Close applies to the handle,
// not the channel: the channel closes for sends only when the last live
// sender closes (or Channel.Close is called).
type Sender[T any] struct {
	channel *Channel[T]
	closed  atomic.Bool
}

// Send appends msg to the channel's buffer, assigning it the next sequence
// number, and wakes every blocked receiver. Sending with zero live
// receivers is not an error: the message stays in the buffer and remains
// readable, up to capacity depth back, by receivers created afterwards.
// Send never blocks; when the buffer is full the oldest message is evicted.
func (s *Sender[T]) Send(msg T) error {
	if s.closed.Load() {
		return ErrSenderClosed
	}
	return s.channel.append(msg)
}

// Clone returns an independent sender handle on the same channel. Cloning
// has no capacity or backpressure cost.
func (s *Sender[T]) Clone() *Sender[T] {
	return s.channel.NewSender()
}

// Close releases this handle. When the last live sender closes, the channel
// is closed for sends and blocked receivers are woken so they can drain and
// terminate. Close is idempotent.
func (s *Sender[T]) Close() error {
	if s.closed.CompareAndSwap(false, true) {
		s.channel.releaseSender()
	}
	return nil
}
