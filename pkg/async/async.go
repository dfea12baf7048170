package async

import (
	"context"
	"time"
)

// Future represents the result of an asynchronous computation producing
// a value of type T.
type Future[T any] struct {
	value T
	err   error
	done  chan struct{}
}

// Await blocks until the asynchronous function completes and returns its result.
func (f *Future[T]) Await() (T, error) {
	<-f.done
	return f.value, f.err
}

// AwaitWithTimeout waits for the asynchronous function to complete with a timeout.
// If the timeout elapses before completion, it returns ErrTimeout; the
// computation itself keeps running and can still be awaited later.
func (f *Future[T]) AwaitWithTimeout(timeout time.Duration) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-time.After(timeout):
		var zero T
		return zero, ErrTimeout
	}
}

// IsComplete reports whether the asynchronous function has completed,
// without blocking.
func (f *Future[T]) IsComplete() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Done returns a channel that is closed when the asynchronous function
// completes. It is the select-friendly form of Await.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Async executes fn asynchronously with the given parameter and returns a
// Future for its result. The result fields are written before the done
// channel is closed, so reads after Await or Done are race-free.
func Async[P, T any](ctx context.Context, param P, fn func(context.Context, P) (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}

	go func() {
		defer close(f.done)

		// Early exit prevents goroutine leak when context is pre-canceled
		select {
		case <-ctx.Done():
			f.err = ctx.Err()
			return
		default:
		}

		f.value, f.err = fn(ctx, param)
	}()

	return f
}

// WaitAll waits for all futures to complete and returns their values in
// order. The first error encountered is returned alongside the partially
// filled results.
func WaitAll[T any](futures ...*Future[T]) ([]T, error) {
	values := make([]T, len(futures))
	for i, future := range futures {
		value, err := future.Await()
		if err != nil {
			return values, err
		}
		values[i] = value
	}
	return values, nil
}

// WaitAny waits for any of the futures to complete and returns the index of
// the first completed future along with its result.
// Note: This function spawns one goroutine per future. All goroutines will
// complete naturally when their respective futures finish.
func WaitAny[T any](futures ...*Future[T]) (int, T, error) {
	if len(futures) == 0 {
		var zero T
		return -1, zero, ErrNoFutures
	}

	type completion struct {
		index int
		value T
		err   error
	}

	// Buffer of one lets the winner record its completion even before
	// this goroutine reaches the receive below.
	done := make(chan completion, 1)

	for i, future := range futures {
		go func(index int, f *Future[T]) {
			value, err := f.Await()
			select {
			case done <- completion{index, value, err}:
			default:
				// Another future already won the race.
			}
		}(i, future)
	}

	res := <-done
	return res.index, res.value, res.err
}
