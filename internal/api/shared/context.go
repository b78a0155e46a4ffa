// Package shared holds the request/response plumbing used by every
// versioned handler: trace-ID context helpers, strict JSON decoding,
// request validation, and RFC 7807 problem responses.
package shared

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"log/slog"
	"time"
)

// ContextKey is the key type for request-scoped values.
type ContextKey string

const (
	// IdentityContextKey carries the authenticated subject ID set by the
	// auth middleware.
	IdentityContextKey ContextKey = "identity"

	// TraceIDKey carries the per-request trace ID.
	TraceIDKey ContextKey = "traceID"

	// traceIDLength is the number of random bytes in a trace ID, rendered
	// as twice as many hex characters.
	traceIDLength = 16
)

// SetTraceID stores a fresh trace ID in the context. Logs and problem
// responses use it to correlate a request across layers.
func SetTraceID(ctx context.Context) context.Context {
	return context.WithValue(ctx, TraceIDKey, generateTraceID())
}

// GetTraceID returns the trace ID from the context, or an empty string when
// none was set.
func GetTraceID(ctx context.Context) string {
	traceID, ok := ctx.Value(TraceIDKey).(string)
	if !ok {
		return ""
	}
	return traceID
}

// generateTraceID produces a 32-character hex ID from crypto/rand. If the
// random source fails it falls back to a time-derived ID rather than ever
// returning a static value.
func generateTraceID() string {
	b := make([]byte, traceIDLength)
	n, err := rand.Read(b)
	if err != nil || n != traceIDLength {
		slog.Error("failed to generate random trace ID",
			"error", err,
			"bytes_read", n)
		return fallbackTraceID()
	}

	return hex.EncodeToString(b)
}

// fallbackTraceID derives an ID from the clock. Collisions are possible but
// a degraded trace ID beats none at all.
func fallbackTraceID() string {
	b := make([]byte, traceIDLength)
	binary.BigEndian.PutUint64(b[:8], uint64(time.Now().UnixNano()))
	binary.BigEndian.PutUint32(b[8:12], uint32(time.Now().Nanosecond()))
	binary.BigEndian.PutUint32(b[12:16], uint32(time.Now().Unix()))

	return hex.EncodeToString(b)
}
