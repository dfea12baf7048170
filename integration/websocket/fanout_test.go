package websocket_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	ws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/channelkit/core/broadcast"
	"github.com/dmitrymomot/channelkit/integration/websocket"
	"github.com/dmitrymomot/channelkit/pkg/stream"
)

func newFanoutServer[T any](t *testing.T, channel *broadcast.Channel[T], opts ...websocket.Option) *httptest.Server {
	t.Helper()

	handler := websocket.Fanout(
		func(r *http.Request) (stream.Source[T], func(), error) {
			receiver := channel.NewReceiver()
			return receiver, func() { _ = receiver.Close() }, nil
		},
		opts...,
	)

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func dial(t *testing.T, server *httptest.Server) *ws.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, resp, err := ws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestFanout_StreamsMessages(t *testing.T) {
	t.Parallel()

	channel, err := broadcast.New[string]()
	require.NoError(t, err)
	defer channel.Close()

	server := newFanoutServer(t, channel)
	conn := dial(t, server)

	sender := channel.NewSender()
	// The subscription happens during the HTTP handshake, which completed
	// before Dial returned, so these sends are visible to the client.
	require.NoError(t, sender.Send("first"))
	require.NoError(t, sender.Send("second"))

	for _, want := range []string{"first", "second"} {
		var frame websocket.Frame[string]
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		require.NoError(t, conn.ReadJSON(&frame))
		assert.Equal(t, websocket.FrameMessage, frame.Type)
		assert.Equal(t, want, frame.Payload)
	}
}

func TestFanout_ReportsLag(t *testing.T) {
	t.Parallel()

	channel, err := broadcast.New[int](broadcast.WithCapacity(2))
	require.NoError(t, err)
	defer channel.Close()

	// Handler with a blocked write path is hard to arrange reliably, so
	// lag is produced before the handler starts reading: the source given
	// to the handler already fell behind.
	lagged := channel.NewReceiver()
	sender := channel.NewSender()
	for i := 0; i < 5; i++ {
		require.NoError(t, sender.Send(i))
	}

	handler := websocket.Fanout(
		func(r *http.Request) (stream.Source[int], func(), error) {
			return lagged, func() { _ = lagged.Close() }, nil
		},
	)
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	conn := dial(t, server)

	var frame websocket.Frame[int]
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, websocket.FrameLagged, frame.Type)
	assert.Equal(t, uint64(3), frame.Missed)

	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, websocket.FrameMessage, frame.Type)
	assert.Equal(t, 3, frame.Payload)
}

func TestFanout_ClosesOnChannelClose(t *testing.T) {
	t.Parallel()

	channel, err := broadcast.New[string]()
	require.NoError(t, err)

	server := newFanoutServer(t, channel)
	conn := dial(t, server)

	require.NoError(t, channel.Close())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, readErr := conn.ReadMessage()
	var closeErr *ws.CloseError
	require.ErrorAs(t, readErr, &closeErr)
	assert.Equal(t, ws.CloseNormalClosure, closeErr.Code)
}

func TestFanout_SubscriptionFailure(t *testing.T) {
	t.Parallel()

	handler := websocket.Fanout(
		func(r *http.Request) (stream.Source[string], func(), error) {
			return nil, nil, assert.AnError
		},
	)
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestFanout_IndependentClients(t *testing.T) {
	t.Parallel()

	channel, err := broadcast.New[int]()
	require.NoError(t, err)
	defer channel.Close()

	server := newFanoutServer(t, channel)
	fast := dial(t, server)
	slow := dial(t, server)

	sender := channel.NewSender()
	require.NoError(t, sender.Send(1))

	for _, conn := range []*ws.Conn{fast, slow} {
		var frame websocket.Frame[int]
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		require.NoError(t, conn.ReadJSON(&frame))
		assert.Equal(t, 1, frame.Payload)
	}
}
