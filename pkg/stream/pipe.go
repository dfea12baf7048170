package stream

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrymomot/channelkit/core/broadcast"
)

// Pipe forwards every message from a source to a sink on a background
// goroutine, bridging two channels without a hand-written pump loop. Lag on
// the source is skipped, the missed messages are already gone; any other
// source or sink error ends the pipe.
//
// Pipe is safe for concurrent use.
type Pipe[T any] struct {
	cancel context.CancelFunc
	done   chan struct{}

	mu  sync.Mutex
	err error
}

// NewPipe starts forwarding from src to sink.
func NewPipe[T any](src Source[T], sink Sink[T]) *Pipe[T] {
	ctx, cancel := context.WithCancel(context.Background())
	p := &Pipe[T]{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(p.done)
		for {
			msg, err := src.Recv(ctx)
			if err != nil {
				var lag *broadcast.LagError
				if errors.As(err, &lag) {
					continue
				}
				p.setErr(err)
				return
			}

			if err := sink.Send(ctx, msg); err != nil {
				p.setErr(err)
				return
			}
		}
	}()

	return p
}

// Done is closed once the pipe has stopped, whether by Close or by a
// terminal error on either end.
func (p *Pipe[T]) Done() <-chan struct{} {
	return p.done
}

// Err returns the error that ended the pipe, nil while it is running or
// after a plain Close.
func (p *Pipe[T]) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if errors.Is(p.err, context.Canceled) {
		return nil
	}
	return p.err
}

// Close stops the pipe and waits for the forwarding goroutine to exit.
// Close is idempotent.
func (p *Pipe[T]) Close() error {
	p.cancel()
	<-p.done
	return nil
}

func (p *Pipe[T]) setErr(err error) {
	p.mu.Lock()
	p.err = err
	p.mu.Unlock()
}
