package anycast

import "errors"

var (
	// ErrInvalidCapacity is returned by New when the configured capacity is not positive.
	ErrInvalidCapacity = errors.New("anycast: capacity must be a positive integer")

	// ErrClosed is returned by Send once the channel is closed and by Recv
	// once the channel is closed and its buffer drained.
	ErrClosed = errors.New("anycast: channel closed")
)
