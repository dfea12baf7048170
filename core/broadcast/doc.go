// Package broadcast provides a bounded multi-producer, multi-consumer
// broadcast channel: every message sent is delivered to every receiver that
// subscribed before the send.
//
// # Architecture
//
// A Channel keeps the most recent messages in a fixed-capacity ring buffer
// shared by all receivers. Messages carry monotonically increasing sequence
// numbers assigned at send time; each Receiver reads through its own cursor,
// so slow receivers never block senders or each other. When a receiver falls
// more than the capacity behind, the evicted messages are reported once as a
// *LagError and the receiver resumes at the oldest retained message.
//
// Send never blocks. This is a deliberate trade-off: backpressure is
// replaced by bounded memory plus explicit lag reporting, which suits
// telemetry and state-update fan-out where only recent values matter.
//
// # Usage
//
// Basic broadcasting:
//
//	channel, err := broadcast.New[string](broadcast.WithCapacity(64))
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer channel.Close()
//
//	receiver := channel.NewReceiver()
//	sender := channel.NewSender()
//
//	go func() {
//		defer sender.Close()
//		_ = sender.Send("hello")
//		_ = sender.Send("world")
//	}()
//
//	for {
//		msg, err := receiver.Recv(ctx)
//		var lag *broadcast.LagError
//		switch {
//		case errors.As(err, &lag):
//			log.Printf("dropped %d messages", lag.Missed)
//			continue
//		case errors.Is(err, broadcast.ErrClosed):
//			return
//		case err != nil:
//			return // context canceled
//		}
//		fmt.Println(msg)
//	}
//
// # Lifecycle
//
// Senders and receivers are independent handles. Closing a receiver detaches
// it without affecting anyone else. Closing the last live sender closes the
// channel for sends: receivers drain what is still buffered at their cursor
// and then get ErrClosed. Channel.Close tears everything down at once.
//
// # Non-blocking callers
//
// ReceiveBridge adapts the blocking Recv for callers that must never block
// their own goroutine (event loops, cooperative schedulers, FFI-style
// polling contracts). Start schedules the receive on a worker goroutine,
// Done exposes the completion signal, and Collect claims the result without
// ever waiting:
//
//	bridge := broadcast.NewReceiveBridge(receiver)
//	if err := bridge.Start(ctx); err != nil {
//		return err
//	}
//
//	select {
//	case <-bridge.Done():
//		msg, err := bridge.Collect()
//		...
//	case <-ctx.Done():
//	}
//
// # Error Handling
//
// All errors are returned to the immediate caller; nothing is logged or
// swallowed internally. Lag is recoverable and expected under sustained
// slow consumption; ErrClosed is terminal for the handle that observes it.
//
// # Thread Safety
//
// All types in this package are safe for concurrent use. The channel's
// buffer, sequence counter, and every cursor share one mutual-exclusion
// region; waiting receivers release it before suspending.
package broadcast
