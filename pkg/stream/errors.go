package stream

import "errors"

var (
	// ErrClosed is returned by Merged.Recv once every underlying source has
	// stopped and all forwarded messages were consumed.
	ErrClosed = errors.New("stream: all sources closed")

	// ErrEmpty is returned by LatestValueCache.Get before the first message
	// arrives.
	ErrEmpty = errors.New("stream: no value cached yet")
)
