package timer_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/channelkit/pkg/timer"
)

// fakeClock is a manually advanced clock for schedule tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

func TestTickPolicies(t *testing.T) {
	t.Parallel()

	base := time.Unix(1000, 0)
	interval := 10 * time.Millisecond

	tests := []struct {
		name      string
		policy    timer.TickPolicy
		now       time.Time
		scheduled time.Time
		want      time.Time
	}{
		{
			name:      "trigger all missed keeps schedule when on time",
			policy:    timer.TriggerAllMissed{},
			now:       base,
			scheduled: base,
			want:      base.Add(interval),
		},
		{
			name:      "trigger all missed keeps schedule when late",
			policy:    timer.TriggerAllMissed{},
			now:       base.Add(35 * time.Millisecond),
			scheduled: base,
			want:      base.Add(interval),
		},
		{
			name:      "resync aligns next tick to the schedule grid",
			policy:    timer.SkipMissedAndResync{},
			now:       base.Add(25 * time.Millisecond),
			scheduled: base,
			want:      base.Add(30 * time.Millisecond),
		},
		{
			name:      "resync on time behaves like a plain interval",
			policy:    timer.SkipMissedAndResync{},
			now:       base,
			scheduled: base,
			want:      base.Add(interval),
		},
		{
			name:      "drift restarts the interval from the late delivery",
			policy:    timer.SkipMissedAndDrift{},
			now:       base.Add(3 * time.Millisecond),
			scheduled: base,
			want:      base.Add(13 * time.Millisecond),
		},
		{
			name:      "drift within tolerance keeps the schedule",
			policy:    timer.SkipMissedAndDrift{Tolerance: 5 * time.Millisecond},
			now:       base.Add(3 * time.Millisecond),
			scheduled: base,
			want:      base.Add(interval),
		},
		{
			name:      "drift beyond tolerance drifts",
			policy:    timer.SkipMissedAndDrift{Tolerance: 5 * time.Millisecond},
			now:       base.Add(7 * time.Millisecond),
			scheduled: base,
			want:      base.Add(17 * time.Millisecond),
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := tt.policy.NextTick(tt.now, tt.scheduled, interval)
			assert.True(t, got.Equal(tt.want), "next tick = %v, want %v", got, tt.want)
		})
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("rejects sub-microsecond interval", func(t *testing.T) {
		t.Parallel()

		_, err := timer.New(500 * time.Nanosecond)
		require.ErrorIs(t, err, timer.ErrInvalidInterval)

		_, err = timer.New(0)
		require.ErrorIs(t, err, timer.ErrInvalidInterval)
	})

	t.Run("starts running by default", func(t *testing.T) {
		t.Parallel()

		tm, err := timer.New(time.Second)
		require.NoError(t, err)
		defer tm.Stop()

		assert.True(t, tm.IsRunning())
		assert.Equal(t, time.Second, tm.Interval())
	})

	t.Run("manual start stays stopped until reset", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()

		tm, err := timer.New(time.Millisecond, timer.WithManualStart())
		require.NoError(t, err)

		assert.False(t, tm.IsRunning())

		_, err = tm.Recv(ctx)
		require.ErrorIs(t, err, timer.ErrStopped)

		tm.Reset()
		defer tm.Stop()
		assert.True(t, tm.IsRunning())

		_, err = tm.Recv(ctx)
		require.NoError(t, err)
	})
}

func TestTimer_Ticks(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	tm, err := timer.New(5 * time.Millisecond)
	require.NoError(t, err)
	defer tm.Stop()

	start := time.Now()
	for i := 0; i < 3; i++ {
		drift, err := tm.Recv(ctx)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, drift, time.Duration(0))
	}
	assert.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond,
		"three ticks at 5ms spacing cannot complete sooner")
}

func TestTimer_DriftReporting(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clock := newFakeClock()

	tm, err := timer.New(10*time.Millisecond, timer.WithClock(clock.Now))
	require.NoError(t, err)
	defer tm.Stop()

	// First tick delivered 25ms late: drift is relative to its schedule.
	clock.Advance(35 * time.Millisecond)
	drift, err := tm.Recv(ctx)
	require.NoError(t, err)
	assert.Equal(t, 25*time.Millisecond, drift)

	// TriggerAllMissed keeps the schedule, so the two missed ticks fire
	// immediately with shrinking drift.
	drift, err = tm.Recv(ctx)
	require.NoError(t, err)
	assert.Equal(t, 15*time.Millisecond, drift)

	drift, err = tm.Recv(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Millisecond, drift)
}

func TestTimer_SkipMissedAndResyncSchedule(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clock := newFakeClock()

	tm, err := timer.New(10*time.Millisecond,
		timer.WithClock(clock.Now),
		timer.WithPolicy(timer.SkipMissedAndResync{}))
	require.NoError(t, err)
	defer tm.Stop()

	clock.Advance(35 * time.Millisecond)
	drift, err := tm.Recv(ctx)
	require.NoError(t, err)
	assert.Equal(t, 25*time.Millisecond, drift)

	// Missed ticks were skipped; the next one sits on the schedule grid
	// 5ms ahead of the late delivery.
	clock.Advance(5 * time.Millisecond)
	drift, err = tm.Recv(ctx)
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), drift)
}

func TestTimer_StartDelay(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clock := newFakeClock()

	tm, err := timer.New(10*time.Millisecond,
		timer.WithClock(clock.Now),
		timer.WithStartDelay(5*time.Millisecond))
	require.NoError(t, err)
	defer tm.Stop()

	clock.Advance(15 * time.Millisecond)
	drift, err := tm.Recv(ctx)
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), drift, "first tick is due at delay plus interval")
}

func TestTimer_StopWakesBlockedRecv(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	tm, err := timer.New(time.Hour)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := tm.Recv(ctx)
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	tm.Stop()

	select {
	case err := <-done:
		require.ErrorIs(t, err, timer.ErrStopped)
	case <-time.After(time.Second):
		t.Fatal("blocked recv was never released by stop")
	}
	assert.False(t, tm.IsRunning())
}

func TestTimer_ResetReschedulesBlockedRecv(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	tm, err := timer.New(time.Hour)
	require.NoError(t, err)
	defer tm.Stop()

	done := make(chan error, 1)
	go func() {
		_, err := tm.Recv(ctx)
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, tm.ResetInterval(5*time.Millisecond))

	select {
	case err := <-done:
		require.NoError(t, err, "recv picks up the shorter schedule")
	case <-time.After(time.Second):
		t.Fatal("blocked recv never saw the reset")
	}
	assert.Equal(t, 5*time.Millisecond, tm.Interval())
}

func TestTimer_ResetIntervalValidation(t *testing.T) {
	t.Parallel()

	tm, err := timer.New(time.Second)
	require.NoError(t, err)
	defer tm.Stop()

	require.ErrorIs(t, tm.ResetInterval(0), timer.ErrInvalidInterval)
	assert.Equal(t, time.Second, tm.Interval(), "failed reset leaves the timer untouched")
}

func TestTimer_ContextCancellation(t *testing.T) {
	t.Parallel()

	tm, err := timer.New(time.Hour)
	require.NoError(t, err)
	defer tm.Stop()

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		_, err := tm.Recv(ctx)
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("blocked recv ignored context cancellation")
	}
	assert.True(t, tm.IsRunning(), "cancellation does not stop the timer")
}
