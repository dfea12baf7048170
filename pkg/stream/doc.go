// Package stream provides combinators over message sources.
//
// The central abstraction is Source, satisfied by the receivers of
// core/broadcast and core/anycast and by anything else with a
// context-aware Recv method. On top of it the package offers:
//
//   - Map and Filter: stateless per-message transformations
//   - Merge: fan several sources into one, interleaved in arrival order
//   - LatestValueCache: synchronous access to the newest message of a feed
//   - Pipe: forward a source into a Sink on a background goroutine
//   - Relay: one sink fanning writes out to several sinks
//
// # Usage
//
// Combining receivers from different channels:
//
//	temps := tempChannel.NewReceiver()
//	humidity := humidityChannel.NewReceiver()
//
//	readings := stream.Merge[Reading](
//		stream.Map(temps, Reading.FromTemp),
//		stream.Map(humidity, Reading.FromHumidity),
//	)
//	defer readings.Close()
//
//	for {
//		reading, err := readings.Recv(ctx)
//		if errors.Is(err, stream.ErrClosed) {
//			return
//		}
//		...
//	}
//
// Serving the current value without blocking:
//
//	cache := stream.NewLatestValueCache[Status](statusChannel.NewReceiver())
//	defer cache.Close()
//
//	status, err := cache.Get() // never blocks
//	if errors.Is(err, stream.ErrEmpty) {
//		// nothing received yet
//	}
//
// # Error Propagation
//
// Map and Filter pass every error through untouched, including recoverable
// lag. Merge forwards lag to the consumer (so missed messages stay visible)
// but treats any other source error as that source being finished; once all
// sources are finished, Merged.Recv returns ErrClosed. LatestValueCache
// ignores lag entirely, since a latest-value consumer only cares about the
// newest message. Pipe also skips lag; any other source or sink error ends
// the pipe and is reported by Err.
//
// # Thread Safety
//
// All types in this package are safe for concurrent use.
package stream
