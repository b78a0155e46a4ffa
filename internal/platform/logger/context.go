package logger

import (
	"context"
	"log/slog"
)

// loggerContextKey is a private type for the context key so it cannot collide
// with keys from other packages.
type loggerContextKey struct{}

// WithLogger returns a copy of ctx carrying the given logger. Downstream code
// retrieves it with FromContext, which lets request-scoped attributes (trace
// ID, resolved API version) follow the call chain into the store layer.
// Panics if logger is nil; storing a nil logger would only defer the crash to
// an arbitrary later call site.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	if logger == nil {
		panic("logger: WithLogger called with nil logger")
	}
	return context.WithValue(ctx, loggerContextKey{}, logger)
}

// FromContext returns the logger stored in ctx, falling back to the process
// default when the context carries none. The result is never nil.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return slog.Default()
	}
	if logger, ok := ctx.Value(loggerContextKey{}).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// FromContextOrDefault behaves like FromContext but falls back to the given
// logger instead of the process default. A nil fallback still yields the
// process default.
func FromContextOrDefault(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(loggerContextKey{}).(*slog.Logger); ok {
			return logger
		}
	}
	if fallback != nil {
		return fallback
	}
	return slog.Default()
}
