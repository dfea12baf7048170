// Package timer provides a periodic message source with configurable
// recovery from missed ticks.
//
// Each received tick carries its drift: how late the tick was delivered
// relative to its schedule. When the consumer stalls for longer than the
// interval, the configured TickPolicy decides what happens to the ticks
// that were missed in the meantime:
//
//   - TriggerAllMissed: deliver every missed tick immediately, keeping the
//     original schedule (good for counting).
//   - SkipMissedAndResync: drop missed ticks and realign to the original
//     schedule (good for periodic reporting).
//   - SkipMissedAndDrift: drop missed ticks and restart the interval from
//     the late delivery, letting the schedule drift.
//
// # Usage
//
//	t, err := timer.New(time.Second, timer.WithPolicy(timer.SkipMissedAndResync{}))
//	if err != nil {
//		return err
//	}
//	defer t.Stop()
//
//	for {
//		drift, err := t.Recv(ctx)
//		if err != nil {
//			return err // stopped or context done
//		}
//		report(drift)
//	}
//
// Timer satisfies stream.Source[time.Duration] and composes with the
// combinators in pkg/stream.
//
// # Thread Safety
//
// All operations are safe for concurrent use.
package timer
