// Package async provides utilities for asynchronous programming with Go generics.
//
// This package implements a Future pattern for non-blocking operations with timeout
// support and coordination utilities for managing multiple asynchronous computations.
//
// # Core Types
//
// Future[T] represents the result of an asynchronous computation. It provides methods
// to wait for completion (Await), check status without blocking (IsComplete), handle
// timeouts (AwaitWithTimeout), and integrate with select statements (Done).
//
// # Usage
//
// Basic asynchronous operation:
//
//	func fetchUser(ctx context.Context, userID int) (User, error) {
//		// Simulate database call
//		time.Sleep(100 * time.Millisecond)
//		return User{ID: userID, Name: "John"}, nil
//	}
//
//	// Execute asynchronously
//	future := async.Async(ctx, 123, fetchUser)
//
//	// Do other work...
//
//	// Wait for result
//	user, err := future.Await()
//	if err != nil {
//		log.Fatal(err)
//	}
//
// Using timeout:
//
//	user, err := future.AwaitWithTimeout(50 * time.Millisecond)
//	if errors.Is(err, async.ErrTimeout) {
//		log.Println("Operation timed out")
//	}
//
// Select integration:
//
//	select {
//	case <-future.Done():
//		user, err := future.Await() // returns immediately
//	case <-ctx.Done():
//		// gave up waiting
//	}
//
// # Coordination Utilities
//
// WaitAll waits for all futures to complete and returns their results:
//
//	futures := []*async.Future[User]{
//		async.Async(ctx, 1, fetchUser),
//		async.Async(ctx, 2, fetchUser),
//		async.Async(ctx, 3, fetchUser),
//	}
//
//	users, err := async.WaitAll(futures...)
//	if err != nil {
//		log.Printf("One or more operations failed: %v", err)
//	}
//
// WaitAny returns as soon as any future completes:
//
//	index, user, err := async.WaitAny(futures...)
//	log.Printf("Future %d completed first with result: %+v", index, user)
//
// # Error Handling
//
// The package defines two main errors:
//   - ErrTimeout: returned when AwaitWithTimeout exceeds its duration
//   - ErrNoFutures: returned when WaitAny is called with no futures
//
// # Concurrency Safety
//
// All operations are safe for concurrent use. Result fields are written before
// the done channel is closed, so any read that happens after Await,
// AwaitWithTimeout, or a receive from Done observes the final values.
//
// # Performance Considerations
//
//   - Futures spawn exactly one goroutine per Async call
//   - WaitAny spawns additional goroutines (one per future) for coordination
//   - Context cancellation is checked before execution to prevent goroutine leaks
//   - There is no way to cancel a computation that has already started other
//     than through its context
package async
