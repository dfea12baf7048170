// Package websocket streams broadcast messages to WebSocket clients.
//
// Fanout turns a channel subscription into an HTTP handler: each connecting
// client gets its own receiver, so a slow browser tab lags independently
// without affecting senders or other clients, exactly like any other
// broadcast receiver.
//
// # Usage
//
//	channel, _ := broadcast.New[Quote](broadcast.WithCapacity(256))
//
//	mux.Handle("/ws/quotes", websocket.Fanout(
//		func(r *http.Request) (stream.Source[Quote], func(), error) {
//			receiver := channel.NewReceiver()
//			return receiver, func() { receiver.Close() }, nil
//		},
//		websocket.WithAllowAnyOrigin(),
//	))
//
// # Wire Format
//
// Messages are JSON frames:
//
//	{"type":"message","payload":{...}}
//	{"type":"lagged","missed":42}
//
// A lagged frame tells the client it missed messages because it consumed
// too slowly; the stream then continues from the oldest retained message.
// When the source stops, the handler sends a normal close frame and ends
// the connection.
//
// # Connection Handling
//
// Incoming data frames from clients are read and discarded; the read pump
// exists to detect close frames and broken connections. Each frame write
// is bounded by the configured write timeout.
package websocket
