package stream

import (
	"context"
	"errors"
)

// Sink is the write side counterpart of Source: anything that accepts
// messages one at a time.
type Sink[T any] interface {
	Send(ctx context.Context, msg T) error
}

// SinkFunc adapts a plain function to the Sink interface.
type SinkFunc[T any] func(ctx context.Context, msg T) error

// Send calls the function.
func (f SinkFunc[T]) Send(ctx context.Context, msg T) error {
	return f(ctx, msg)
}

// Relay returns a sink that forwards every message to all given sinks, in
// order. A failing sink does not stop delivery to the remaining ones; the
// errors are joined and returned together.
func Relay[T any](sinks ...Sink[T]) Sink[T] {
	return SinkFunc[T](func(ctx context.Context, msg T) error {
		var errs []error
		for _, sink := range sinks {
			if err := sink.Send(ctx, msg); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})
}
