package timer

import "time"

// TickPolicy decides when the next tick is due after the current one has
// been delivered. It receives the delivery time, the time the tick was
// scheduled for, and the configured interval; late delivery means now is
// past scheduled.
type TickPolicy interface {
	NextTick(now, scheduled time.Time, interval time.Duration) time.Time
}

// TriggerAllMissed keeps the original schedule no matter how late ticks are
// delivered. Every scheduled tick eventually fires, so after a long stall
// the consumer sees a burst of immediate ticks with growing drift values.
// Suited to workloads that count ticks, such as meters and accumulators.
type TriggerAllMissed struct{}

func (TriggerAllMissed) NextTick(_, scheduled time.Time, interval time.Duration) time.Time {
	return scheduled.Add(interval)
}

// SkipMissedAndResync drops ticks that were missed during a stall and
// schedules the next one on the nearest future multiple of the interval,
// keeping ticks aligned with the original schedule. Suited to periodic
// reporting where only the freshest slot matters.
type SkipMissedAndResync struct{}

func (SkipMissedAndResync) NextTick(now, scheduled time.Time, interval time.Duration) time.Time {
	drift := now.Sub(scheduled)
	return now.Add(interval - drift%interval)
}

// SkipMissedAndDrift drops missed ticks and restarts the interval from the
// moment the late tick was delivered, letting the schedule drift away from
// its original alignment. Delays up to Tolerance keep the original schedule
// so that small hiccups do not accumulate into permanent shift.
type SkipMissedAndDrift struct {
	Tolerance time.Duration
}

func (p SkipMissedAndDrift) NextTick(now, scheduled time.Time, interval time.Duration) time.Time {
	if now.Sub(scheduled) > p.Tolerance {
		return now.Add(interval)
	}
	return scheduled.Add(interval)
}
