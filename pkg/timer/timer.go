package timer

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrymomot/channelkit/pkg/stream"
)

// Timer is a periodic message source. Each Recv blocks until the next tick
// is due and returns the drift, the time elapsed between when the tick was
// scheduled and when it was actually delivered. A drift of zero means the
// tick fired exactly on time; it is never negative.
//
// How the schedule recovers from late delivery is decided by the configured
// TickPolicy. Timer satisfies stream.Source[time.Duration], so ticks can be
// merged, mapped, and filtered like any other source.
//
// Timer is safe for concurrent use, though ticks are handed to whichever
// caller happens to receive them.
type Timer struct {
	mu       sync.Mutex
	interval time.Duration
	policy   TickPolicy
	nextTick time.Time
	stopped  bool
	wake     chan struct{}
	now      func() time.Time
}

var _ stream.Source[time.Duration] = (*Timer)(nil)

type options struct {
	policy     TickPolicy
	startDelay time.Duration
	manual     bool
	now        func() time.Time
}

// Option configures a Timer.
type Option func(*options)

// WithPolicy selects how the schedule recovers from missed ticks. The
// default is TriggerAllMissed.
func WithPolicy(policy TickPolicy) Option {
	return func(o *options) {
		o.policy = policy
	}
}

// WithStartDelay postpones the first tick by delay on top of the interval.
// Useful to spread load when many timers with the same interval start at
// once.
func WithStartDelay(delay time.Duration) Option {
	return func(o *options) {
		o.startDelay = delay
	}
}

// WithManualStart creates the timer stopped. Recv returns ErrStopped until
// Reset is called.
func WithManualStart() Option {
	return func(o *options) {
		o.manual = true
	}
}

// WithClock substitutes the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// New creates a timer ticking every interval, starting immediately unless
// WithManualStart is given. Intervals shorter than a microsecond are
// rejected with ErrInvalidInterval.
func New(interval time.Duration, opts ...Option) (*Timer, error) {
	if interval < time.Microsecond {
		return nil, ErrInvalidInterval
	}

	cfg := options{
		policy: TriggerAllMissed{},
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	t := &Timer{
		interval: interval,
		policy:   cfg.policy,
		stopped:  true,
		wake:     make(chan struct{}),
		now:      cfg.now,
	}
	if !cfg.manual {
		t.mu.Lock()
		t.resetLocked(interval, cfg.startDelay)
		t.mu.Unlock()
	}
	return t, nil
}

// Interval returns the current time between ticks.
func (t *Timer) Interval() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.interval
}

// IsRunning reports whether the timer is ticking.
func (t *Timer) IsRunning() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return !t.stopped
}

// Reset restarts the timer with its current interval. The next tick is due
// one full interval from now. Reset also restarts a stopped timer and wakes
// blocked Recv calls so they pick up the new schedule.
func (t *Timer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.resetLocked(t.interval, 0)
}

// ResetInterval restarts the timer with a new interval. Intervals shorter
// than a microsecond are rejected with ErrInvalidInterval and leave the
// timer untouched.
func (t *Timer) ResetInterval(interval time.Duration) error {
	if interval < time.Microsecond {
		return ErrInvalidInterval
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.resetLocked(interval, 0)
	return nil
}

func (t *Timer) resetLocked(interval, startDelay time.Duration) {
	t.interval = interval
	t.nextTick = t.now().Add(startDelay + interval)
	t.stopped = false
	t.wakeLocked()
}

// Stop halts the timer. Blocked and future Recv calls return ErrStopped
// until Reset restarts it. Stopping a stopped timer has no effect.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopped {
		return
	}
	t.stopped = true
	t.wakeLocked()
}

// Close stops the timer. It exists so a Timer can be handed to code that
// expects a closable source.
func (t *Timer) Close() error {
	t.Stop()
	return nil
}

// Recv blocks until the next tick is due and returns its drift. It returns
// ErrStopped while the timer is stopped and ctx.Err() if ctx ends first. A
// concurrent Reset reschedules the wait rather than producing a tick.
func (t *Timer) Recv(ctx context.Context) (time.Duration, error) {
	t.mu.Lock()
	for {
		if t.stopped {
			t.mu.Unlock()
			return 0, ErrStopped
		}

		now := t.now()
		if !now.Before(t.nextTick) {
			drift := now.Sub(t.nextTick)
			t.nextTick = t.policy.NextTick(now, t.nextTick, t.interval)
			t.mu.Unlock()
			return drift, nil
		}

		sleep := time.NewTimer(t.nextTick.Sub(now))
		wake := t.wake
		t.mu.Unlock()

		select {
		case <-sleep.C:
		case <-wake:
			sleep.Stop()
		case <-ctx.Done():
			sleep.Stop()
			return 0, ctx.Err()
		}

		t.mu.Lock()
	}
}

func (t *Timer) wakeLocked() {
	close(t.wake)
	t.wake = make(chan struct{})
}
