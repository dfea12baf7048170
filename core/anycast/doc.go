// Package anycast provides a bounded multi-producer, multi-consumer channel
// where each message is delivered to exactly one receiver.
//
// It is the point-to-point counterpart of core/broadcast: instead of
// fanning every message out to all receivers, competing receivers share a
// single FIFO buffer and each message goes to whichever of them takes it
// first. And instead of evicting old messages, a full buffer blocks
// senders, giving natural backpressure.
//
// # Usage
//
//	channel, err := anycast.New[Job](anycast.WithCapacity(32))
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer channel.Close()
//
//	sender := channel.NewSender()
//	go func() {
//		for job := range jobs {
//			if err := sender.Send(ctx, job); err != nil {
//				return
//			}
//		}
//	}()
//
//	// Several workers compete for messages.
//	for i := 0; i < workers; i++ {
//		receiver := channel.NewReceiver()
//		go func() {
//			for {
//				job, err := receiver.Recv(ctx)
//				if err != nil {
//					return
//				}
//				process(job)
//			}
//		}()
//	}
//
// # Close Semantics
//
// After Close, senders fail with ErrClosed immediately, while receivers
// keep draining whatever is still buffered and only then get ErrClosed.
//
// # Choosing Between anycast and broadcast
//
// Use this package for work distribution, where processing each message
// once is what matters. Use core/broadcast for state propagation, where
// every consumer needs to see every message and stale values may be
// dropped.
//
// # Thread Safety
//
// All types in this package are safe for concurrent use.
package anycast
