package timer

import "errors"

var (
	// ErrInvalidInterval is returned when a tick interval shorter than one
	// microsecond is requested.
	ErrInvalidInterval = errors.New("timer: interval must be at least one microsecond")

	// ErrStopped is returned by Recv while the timer is stopped.
	ErrStopped = errors.New("timer: stopped")
)
