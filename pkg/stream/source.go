package stream

import "context"

// Source is anything messages can be received from: broadcast and anycast
// receivers satisfy it, and combinators in this package both consume and
// return it.
type Source[T any] interface {
	// Recv returns the next message, blocking until one is available or the
	// source is exhausted. Errors are the source's own; recoverable ones
	// (such as *broadcast.LagError) are followed by more messages.
	Recv(ctx context.Context) (T, error)
}

// SourceFunc adapts a plain function to the Source interface.
type SourceFunc[T any] func(ctx context.Context) (T, error)

// Recv calls the function.
func (f SourceFunc[T]) Recv(ctx context.Context) (T, error) {
	return f(ctx)
}

// Map returns a source that transforms every message of src with fn.
// Errors pass through untouched.
func Map[T, U any](src Source[T], fn func(T) U) Source[U] {
	return SourceFunc[U](func(ctx context.Context) (U, error) {
		msg, err := src.Recv(ctx)
		if err != nil {
			var zero U
			return zero, err
		}
		return fn(msg), nil
	})
}

// Filter returns a source that yields only the messages of src for which
// pred is true. Errors pass through untouched.
func Filter[T any](src Source[T], pred func(T) bool) Source[T] {
	return SourceFunc[T](func(ctx context.Context) (T, error) {
		for {
			msg, err := src.Recv(ctx)
			if err != nil || pred(msg) {
				return msg, err
			}
		}
	})
}
