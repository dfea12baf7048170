// Package redis provides Redis client initialization with connection
// verification, plus a Redis Pub/Sub-backed broadcast bus that mirrors the
// core/broadcast receiver semantics across processes.
//
// # Connecting
//
// Connect validates the connection URL, retries transient failures with
// exponential backoff, and verifies connectivity with a ping before
// returning the client:
//
//	var cfg redis.Config
//	config.MustLoad(&cfg)
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
// Configuration is handled through the Config struct with environment
// variable mapping:
//
//	type Config struct {
//		ConnectionURL  string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
//		RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
//		RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"5s"`
//		ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"`
//	}
//
// Both redis:// and rediss:// (TLS) URL schemes are accepted.
//
// # Health Checking
//
// Healthcheck returns a probe function for readiness/liveness endpoints:
//
//	check := redis.Healthcheck(client)
//	if err := check(ctx); err != nil {
//		// report unhealthy
//	}
//
// # Cross-Process Broadcasting
//
// Bus extends the in-process broadcast channel across hosts. Every bus
// subscribed to a topic receives every published message; each process
// keeps a local ring buffer, so receivers retain the per-cursor ordering
// and lag-reporting semantics of core/broadcast:
//
//	bus, err := redis.NewBus[OrderEvent](client, "orders")
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := bus.Start(ctx); err != nil {
//		log.Fatal(err)
//	}
//	defer bus.Close()
//
//	receiver := bus.NewReceiver()
//	go func() {
//		for {
//			event, err := receiver.Recv(ctx)
//			...
//		}
//	}()
//
//	_ = bus.Publish(ctx, OrderEvent{ID: "o-1"})
//
// Redis Pub/Sub offers at-most-once, no-replay delivery: messages published
// while a bus is not started are lost to that bus, matching the
// subscribe-before-send contract of the in-process channel. Payloads are
// JSON-encoded on the wire in an envelope with a message ID and timestamp.
//
// # Error Handling
//
// The package defines domain-specific errors that can be checked with
// errors.Is(): ErrFailedToParseRedisConnString, ErrRedisNotReady,
// ErrEmptyConnectionURL, ErrHealthcheckFailed for connections, and
// ErrEmptyTopic, ErrBusAlreadyStarted, ErrBusClosed for the bus. These
// wrap the underlying go-redis errors while providing stable types for
// application-level handling.
package redis
