package stream

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrymomot/channelkit/core/broadcast"
)

type item[T any] struct {
	value T
	err   error
}

// Merged fans several sources into one. Pump goroutines are started lazily
// on the first Recv, one per source, and run until their source stops.
// Recoverable lag errors are forwarded to the consumer; any other source
// error ends that source's contribution. Once every source has stopped,
// Recv returns ErrClosed.
//
// Merged is safe for concurrent use.
type Merged[T any] struct {
	mu      sync.Mutex
	sources []Source[T]
	out     chan item[T]
	cancel  context.CancelFunc
	started bool
	closed  bool
}

// Merge combines the given sources into a single one. The merged source
// owns its pump goroutines; call Close to release them when done early.
func Merge[T any](sources ...Source[T]) *Merged[T] {
	return &Merged[T]{
		sources: sources,
		out:     make(chan item[T]),
	}
}

// Recv returns the next message from any of the merged sources, blocking
// until one is available, every source has stopped, or ctx is done.
// Messages from different sources are interleaved in arrival order.
func (m *Merged[T]) Recv(ctx context.Context) (T, error) {
	m.mu.Lock()
	if !m.started {
		m.started = true
		m.startLocked()
	}
	m.mu.Unlock()

	var zero T
	select {
	case it, ok := <-m.out:
		if !ok {
			return zero, ErrClosed
		}
		return it.value, it.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Close stops the pump goroutines. Messages already received from the
// sources but not yet consumed are discarded. Close is idempotent.
func (m *Merged[T]) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true

	if !m.started {
		// Never pumped; make future Recv calls observe closure.
		m.started = true
		close(m.out)
		return nil
	}

	m.cancel()
	return nil
}

// startLocked launches one pump per source plus a closer goroutine that
// shuts the out channel once all pumps return. Callers must hold m.mu.
func (m *Merged[T]) startLocked() {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel

	var pumps sync.WaitGroup
	for _, src := range m.sources {
		pumps.Add(1)
		go func(src Source[T]) {
			defer pumps.Done()
			for {
				msg, err := src.Recv(ctx)
				if err != nil {
					var lag *broadcast.LagError
					if !errors.As(err, &lag) {
						// Source stopped; it no longer contributes.
						return
					}
					select {
					case m.out <- item[T]{err: err}:
						continue
					case <-ctx.Done():
						return
					}
				}

				select {
				case m.out <- item[T]{value: msg}:
				case <-ctx.Done():
					return
				}
			}
		}(src)
	}

	go func() {
		pumps.Wait()
		close(m.out)
	}()
}
