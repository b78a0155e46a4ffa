package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gridstonehq/gridstone-api/internal/api/shared"
	"github.com/gridstonehq/gridstone-api/internal/platform/logger"
)

// NewTraceMiddleware returns middleware that stamps each request with a fresh
// trace ID and stores a trace-scoped logger in the context. It should run
// before any middleware that logs, so every line for the request carries the
// same trace ID.
func NewTraceMiddleware(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := shared.SetTraceID(r.Context())
			traceID := shared.GetTraceID(ctx)

			log := base.With(slog.String("trace_id", traceID))
			ctx = logger.WithLogger(ctx, log)

			log.Debug("request started",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", r.RemoteAddr))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
