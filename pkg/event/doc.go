// Package event provides a resettable, latching signal for coordinating
// goroutines without a payload.
//
// An Event sits between a sync.WaitGroup (one-shot, counted) and a
// channel send (requires a matched receiver): Set latches the signal even
// when nobody is waiting yet, and Wait consumes it once.
//
// # Usage
//
//	reload := event.New()
//	defer reload.Close()
//
//	go func() {
//		for {
//			if err := reload.Wait(ctx); err != nil {
//				return // closed or context done
//			}
//			applyConfig()
//		}
//	}()
//
//	// From a signal handler, HTTP endpoint, etc:
//	reload.Set()
//
// # Close Semantics
//
// Close permanently stops the event: all current and future Wait calls
// return ErrClosed. A latched-but-unconsumed signal is discarded.
//
// # Thread Safety
//
// All operations are safe for concurrent use.
package event
