// Package logger provides slog attribute helpers for consistent log field
// naming across the library.
//
// All helpers follow the empty Attr pattern: passing a nil error or empty
// identifier yields an attribute that slog silently drops, so call sites
// never need nil checks:
//
//	log.Warn("delivery failed",
//		logger.Topic("orders"),
//		logger.Error(err), // safe even when err is nil
//	)
//
// Domain helpers (Channel, Topic, Sequence, Missed, MessageID) keep field
// names uniform between the in-process channels and the Redis/WebSocket
// integrations, which makes log correlation across the two straightforward.
package logger
