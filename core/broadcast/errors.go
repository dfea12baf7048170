package broadcast

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCapacity is returned by New when the configured capacity is not positive.
	ErrInvalidCapacity = errors.New("broadcast: capacity must be a positive integer")

	// ErrClosed is returned by Send once the channel is closed and by Recv
	// once the channel is closed and the receiver's cursor is exhausted.
	ErrClosed = errors.New("broadcast: channel closed")

	// ErrSenderClosed is returned by Send on a sender handle that was closed.
	ErrSenderClosed = errors.New("broadcast: sender closed")

	// ErrReceiverClosed is returned by Recv on a receiver handle that was closed.
	ErrReceiverClosed = errors.New("broadcast: receiver closed")

	// ErrNotStarted is returned by Collect when no receive operation was started.
	ErrNotStarted = errors.New("broadcast: no receive operation started")

	// ErrNotReady is returned by Collect while the scheduled receive is still
	// in flight. It indicates a contract violation by the caller, not a
	// condition to wait out inside the bridge.
	ErrNotReady = errors.New("broadcast: receive operation not ready")

	// ErrOutstanding is returned by Start while a previous operation is still
	// pending or its result has not been collected yet.
	ErrOutstanding = errors.New("broadcast: previous receive operation still outstanding")
)

// LagError reports that a receiver fell behind the oldest message still
// retained in the buffer. The receiver's cursor has already been advanced to
// the oldest retained message, so the next Recv returns valid data again.
type LagError struct {
	// Missed is the number of messages evicted before the receiver read them.
	Missed uint64
}

func (e *LagError) Error() string {
	return fmt.Sprintf("broadcast: receiver lagged, missed %d messages", e.Missed)
}
