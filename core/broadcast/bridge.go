package broadcast

import (
	"context"
	"sync"

	"github.com/dmitrymomot/channelkit/pkg/async"
)

// ReceiveBridge adapts the blocking Receiver.Recv to callers that must
// never block, such as event loops and cooperative schedulers. The bridge
// runs the receive on its own goroutine and exposes a two-phase protocol:
// Start schedules the receive and returns immediately; Collect hands back
// the result once the receive has actually completed.
//
// The caller learns about completion through Done, the select-friendly
// continuation for the scheduled operation. Collect never waits: calling it
// while the receive is still in flight is a contract violation answered
// with ErrNotReady.
//
// At most one operation may be outstanding. Start fails with
// ErrOutstanding while a previous operation is pending or its result has
// not been collected, so an in-flight result can never be silently dropped.
//
// There is no cancellation of an in-flight receive other than through the
// context passed to Start; abandoning the bridge leaves the worker
// goroutine waiting until the channel produces a message or closes.
type ReceiveBridge[T any] struct {
	mu       sync.Mutex
	receiver *Receiver[T]
	pending  *async.Future[T]
}

// NewReceiveBridge returns a bridge over the given receiver. The receiver
// must not be used directly while operations are scheduled through the
// bridge, or the message stream will be split between the two.
func NewReceiveBridge[T any](receiver *Receiver[T]) *ReceiveBridge[T] {
	return &ReceiveBridge[T]{receiver: receiver}
}

// Start schedules a single Recv on a worker goroutine and returns without
// blocking. The result must be claimed with Collect after Done signals
// completion.
func (b *ReceiveBridge[T]) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.pending != nil {
		return ErrOutstanding
	}

	b.pending = async.Async(ctx, b.receiver, func(ctx context.Context, r *Receiver[T]) (T, error) {
		return r.Recv(ctx)
	})
	return nil
}

// Scheduled reports whether an operation has been started and not yet
// collected. It is true immediately after a successful Start, regardless
// of whether the receive has completed.
func (b *ReceiveBridge[T]) Scheduled() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.pending != nil
}

// Done returns a channel that is closed when the scheduled receive
// completes, or nil if no operation is outstanding. It is what a
// non-blocking caller selects on before calling Collect.
func (b *ReceiveBridge[T]) Done() <-chan struct{} {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.pending == nil {
		return nil
	}
	return b.pending.Done()
}

// Collect returns the result of the scheduled receive and resets the
// bridge to idle. It fails with ErrNotStarted if nothing was scheduled and
// with ErrNotReady if the receive is still in flight. On completion it
// returns exactly what Recv returned, including *LagError and ErrClosed.
func (b *ReceiveBridge[T]) Collect() (T, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var zero T
	if b.pending == nil {
		return zero, ErrNotStarted
	}
	if !b.pending.IsComplete() {
		return zero, ErrNotReady
	}

	future := b.pending
	b.pending = nil
	return future.Await()
}
