package websocket

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	ws "github.com/gorilla/websocket"

	"github.com/dmitrymomot/channelkit/core/broadcast"
	"github.com/dmitrymomot/channelkit/pkg/logger"
	"github.com/dmitrymomot/channelkit/pkg/stream"
)

// Frame is the JSON message sent to WebSocket clients. Data messages carry
// the payload; lag on the underlying source is surfaced as its own frame so
// clients know messages were dropped rather than silently missing them.
type Frame[T any] struct {
	Type    string `json:"type"` // FrameMessage or FrameLagged
	Payload T      `json:"payload,omitempty"`
	Missed  uint64 `json:"missed,omitempty"`
}

const (
	FrameMessage = "message"
	FrameLagged  = "lagged"
)

// SubscribeFunc opens a message source for an incoming connection. The
// returned cleanup function is called when the connection ends; use it to
// close the receiver backing the source.
type SubscribeFunc[T any] func(r *http.Request) (stream.Source[T], func(), error)

type fanoutConfig struct {
	upgrader     *ws.Upgrader
	writeTimeout time.Duration
	logger       *slog.Logger
}

// Option configures a fan-out handler.
type Option func(*fanoutConfig)

// WithReadBuffer sets the connection read buffer size.
func WithReadBuffer(size int) Option {
	return func(c *fanoutConfig) {
		c.upgrader.ReadBufferSize = size
	}
}

// WithWriteBuffer sets the connection write buffer size.
func WithWriteBuffer(size int) Option {
	return func(c *fanoutConfig) {
		c.upgrader.WriteBufferSize = size
	}
}

// WithHandshakeTimeout limits the duration of the upgrade handshake.
func WithHandshakeTimeout(timeout time.Duration) Option {
	return func(c *fanoutConfig) {
		c.upgrader.HandshakeTimeout = timeout
	}
}

// WithOriginCheck sets a custom origin check for the upgrade.
func WithOriginCheck(fn func(r *http.Request) bool) Option {
	return func(c *fanoutConfig) {
		c.upgrader.CheckOrigin = fn
	}
}

// WithAllowAnyOrigin disables the origin check.
func WithAllowAnyOrigin() Option {
	return func(c *fanoutConfig) {
		c.upgrader.CheckOrigin = func(r *http.Request) bool {
			return true
		}
	}
}

// WithSubprotocols advertises the supported subprotocols during upgrade.
func WithSubprotocols(protocols ...string) Option {
	return func(c *fanoutConfig) {
		c.upgrader.Subprotocols = protocols
	}
}

// WithWriteTimeout bounds each frame write. Default is 10 seconds.
func WithWriteTimeout(timeout time.Duration) Option {
	return func(c *fanoutConfig) {
		if timeout > 0 {
			c.writeTimeout = timeout
		}
	}
}

// WithFanoutLogger configures structured logging for the handler.
// Use slog.New(slog.NewTextHandler(io.Discard, nil)) to disable logging.
func WithFanoutLogger(logger *slog.Logger) Option {
	return func(c *fanoutConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Fanout returns an HTTP handler that upgrades each request to a WebSocket
// connection and streams messages from the subscribed source to the client
// as JSON frames until the source stops, the client disconnects, or the
// request context is done.
func Fanout[T any](subscribe SubscribeFunc[T], opts ...Option) http.Handler {
	cfg := &fanoutConfig{
		upgrader: &ws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		writeTimeout: 10 * time.Second,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		src, cleanup, err := subscribe(r)
		if err != nil {
			http.Error(w, "subscription failed", http.StatusServiceUnavailable)
			return
		}
		defer cleanup()

		conn, err := cfg.upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade already wrote the HTTP error response.
			return
		}
		defer conn.Close()

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		// Read pump: the client never sends data frames, but reading is the
		// only way to notice close frames and broken connections promptly.
		go func() {
			defer cancel()
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		cfg.logger.Debug("websocket subscriber connected",
			logger.Key("remote", conn.RemoteAddr().String()))

		for {
			msg, err := src.Recv(ctx)

			var lag *broadcast.LagError
			switch {
			case err == nil:
				if writeErr := writeFrame(conn, cfg.writeTimeout, Frame[T]{
					Type:    FrameMessage,
					Payload: msg,
				}); writeErr != nil {
					return
				}
			case errors.As(err, &lag):
				if writeErr := writeFrame(conn, cfg.writeTimeout, Frame[T]{
					Type:   FrameLagged,
					Missed: lag.Missed,
				}); writeErr != nil {
					return
				}
			default:
				// Source stopped or the connection's context is done.
				deadline := time.Now().Add(cfg.writeTimeout)
				_ = conn.WriteControl(ws.CloseMessage,
					ws.FormatCloseMessage(ws.CloseNormalClosure, "stream ended"), deadline)

				cfg.logger.Debug("websocket subscriber disconnected",
					logger.Key("remote", conn.RemoteAddr().String()),
					logger.Error(err))
				return
			}
		}
	})
}

func writeFrame[T any](conn *ws.Conn, timeout time.Duration, frame Frame[T]) error {
	if err := conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
		return err
	}
	return conn.WriteJSON(frame)
}
