package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/channelkit/core/broadcast"
	"github.com/dmitrymomot/channelkit/integration/redis"
)

func newTestClient(t *testing.T) *goredis.Client {
	t.Helper()

	srv := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
	})
	return client
}

func recvWithTimeout[T any](t *testing.T, r *broadcast.Receiver[T]) (T, error) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return r.Recv(ctx)
}

func TestNewBus(t *testing.T) {
	t.Parallel()

	t.Run("rejects empty topic", func(t *testing.T) {
		t.Parallel()

		_, err := redis.NewBus[string](nil, "")
		require.ErrorIs(t, err, redis.ErrEmptyTopic)
	})

	t.Run("rejects invalid capacity", func(t *testing.T) {
		t.Parallel()

		_, err := redis.NewBus[string](nil, "events", redis.WithBusCapacity(0))
		require.ErrorIs(t, err, broadcast.ErrInvalidCapacity)
	})
}

func TestBus_PublishReachesSubscribedReceivers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := newTestClient(t)

	bus, err := redis.NewBus[string](client, "events")
	require.NoError(t, err)
	defer bus.Close()

	require.NoError(t, bus.Start(ctx))
	receiver := bus.NewReceiver()

	require.NoError(t, bus.Publish(ctx, "hello"))

	got, err := recvWithTimeout(t, receiver)
	require.NoError(t, err)
	assert.Equal(t, "hello", got)
}

func TestBus_DeliversAcrossBuses(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	srv := miniredis.RunT(t)
	clientA := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
	clientB := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
	t.Cleanup(func() {
		_ = clientA.Close()
		_ = clientB.Close()
	})

	publisher, err := redis.NewBus[int](clientA, "metrics")
	require.NoError(t, err)
	defer publisher.Close()

	subscriber, err := redis.NewBus[int](clientB, "metrics")
	require.NoError(t, err)
	defer subscriber.Close()

	require.NoError(t, subscriber.Start(ctx))
	receiver := subscriber.NewReceiver()

	// The publisher never starts: Publish does not require a subscription.
	require.NoError(t, publisher.Publish(ctx, 42))

	got, err := recvWithTimeout(t, receiver)
	require.NoError(t, err)
	assert.Equal(t, 42, got)
}

func TestBus_DoubleStart(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := newTestClient(t)

	bus, err := redis.NewBus[string](client, "events")
	require.NoError(t, err)
	defer bus.Close()

	require.NoError(t, bus.Start(ctx))
	require.ErrorIs(t, bus.Start(ctx), redis.ErrBusAlreadyStarted)
}

func TestBus_StartAfterClose(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	bus, err := redis.NewBus[string](nil, "events")
	require.NoError(t, err)

	require.NoError(t, bus.Close())
	require.ErrorIs(t, bus.Start(ctx), redis.ErrBusClosed)
}

func TestBus_PublishAfterClose(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	bus, err := redis.NewBus[string](nil, "events")
	require.NoError(t, err)

	require.NoError(t, bus.Close())
	require.ErrorIs(t, bus.Publish(ctx, "late"), redis.ErrBusClosed)
}

func TestBus_CloseUnblocksReceivers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := newTestClient(t)

	bus, err := redis.NewBus[string](client, "events")
	require.NoError(t, err)

	require.NoError(t, bus.Start(ctx))
	receiver := bus.NewReceiver()

	done := make(chan error, 1)
	go func() {
		_, err := receiver.Recv(context.Background())
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, bus.Close())

	select {
	case err := <-done:
		require.ErrorIs(t, err, broadcast.ErrClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("blocked receiver was never released by close")
	}
}

func TestBus_CloseIsIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := newTestClient(t)

	bus, err := redis.NewBus[string](client, "events")
	require.NoError(t, err)

	require.NoError(t, bus.Start(ctx))
	require.NoError(t, bus.Close())
	require.NoError(t, bus.Close())
}

func TestBus_DropsMalformedMessages(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := newTestClient(t)

	bus, err := redis.NewBus[string](client, "events")
	require.NoError(t, err)
	defer bus.Close()

	require.NoError(t, bus.Start(ctx))
	receiver := bus.NewReceiver()

	// Raw publish bypasses the envelope; the pump must drop it and keep
	// pumping.
	require.NoError(t, client.Publish(ctx, "events", "not json").Err())
	require.NoError(t, bus.Publish(ctx, "valid"))

	got, err := recvWithTimeout(t, receiver)
	require.NoError(t, err)
	assert.Equal(t, "valid", got, "malformed wire message must not reach receivers")
}

func TestBus_LateReceiverMissesEarlierMessages(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := newTestClient(t)

	bus, err := redis.NewBus[string](client, "events")
	require.NoError(t, err)
	defer bus.Close()

	require.NoError(t, bus.Start(ctx))

	early := bus.NewReceiver()
	require.NoError(t, bus.Publish(ctx, "first"))

	got, err := recvWithTimeout(t, early)
	require.NoError(t, err)
	require.Equal(t, "first", got)

	// A receiver created after delivery starts at the current cursor.
	late := bus.NewReceiver()
	require.NoError(t, bus.Publish(ctx, "second"))

	got, err = recvWithTimeout(t, late)
	require.NoError(t, err)
	assert.Equal(t, "second", got, "late receiver sees only messages after subscription")
}
