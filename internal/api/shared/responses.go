package shared

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gridstonehq/gridstone-api/internal/redact"
)

// Problem is the RFC 7807 error body every host returns. Errors carries
// per-field validation messages and is omitted for non-validation failures.
type Problem struct {
	Type    string            `json:"type"`
	Title   string            `json:"title"`
	Status  int               `json:"status"`
	Detail  string            `json:"detail,omitempty"`
	TraceID string            `json:"traceId,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// NewProblem builds a problem with the RFC default type. Callers that have a
// more specific type URI set it on the returned value.
func NewProblem(status int, title, detail string) Problem {
	return Problem{
		Type:   "about:blank",
		Title:  title,
		Status: status,
		Detail: detail,
	}
}

// ResponseOption customizes problem response behavior.
type ResponseOption func(*responseOptions)

type responseOptions struct {
	elevateLogLevel bool
}

// WithElevatedLogLevel raises 4xx problem logging to WARN instead of the
// default DEBUG. Use for operational concerns like repeated auth failures.
func WithElevatedLogLevel() ResponseOption {
	return func(opts *responseOptions) {
		opts.elevateLogLevel = true
	}
}

// RespondWithJSON writes a JSON response with the given status code.
func RespondWithJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// RespondWithProblem writes p as an application/problem+json response,
// filling the trace ID from the request context.
func RespondWithProblem(w http.ResponseWriter, r *http.Request, p Problem) {
	p.TraceID = GetTraceID(r.Context())

	slog.Debug("sending problem response",
		"status", p.Status,
		"title", p.Title,
		"trace_id", p.TraceID,
		"path", r.URL.Path,
		"method", r.Method)

	writeProblem(w, p)
}

// RespondWithProblemAndLog writes p to the client and logs the underlying
// error with its details redacted. The problem body itself never carries the
// raw error.
//
// Log level strategy: 5xx at ERROR, 429 at WARN, other 4xx at DEBUG unless
// elevated via WithElevatedLogLevel.
func RespondWithProblemAndLog(
	w http.ResponseWriter,
	r *http.Request,
	p Problem,
	err error,
	opts ...ResponseOption,
) {
	p.TraceID = GetTraceID(r.Context())

	logAttrs := []slog.Attr{
		slog.String("trace_id", p.TraceID),
		slog.String("path", r.URL.Path),
		slog.String("method", r.Method),
		slog.Int("status", p.Status),
		slog.String("title", p.Title),
	}
	if err != nil {
		logAttrs = append(logAttrs,
			slog.String("error", redact.Error(err)),
			slog.String("error_type", fmt.Sprintf("%T", err)))
	}

	var responseOpts responseOptions
	for _, opt := range opts {
		opt(&responseOpts)
	}

	logLevel := slog.LevelDebug
	switch {
	case p.Status >= http.StatusInternalServerError:
		logLevel = slog.LevelError
	case p.Status == http.StatusTooManyRequests:
		logLevel = slog.LevelWarn
	case responseOpts.elevateLogLevel && p.Status >= http.StatusBadRequest:
		logLevel = slog.LevelWarn
	}

	slog.LogAttrs(r.Context(), logLevel, "request failed", logAttrs...)

	writeProblem(w, p)
}

func writeProblem(w http.ResponseWriter, p Problem) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	if err := json.NewEncoder(w).Encode(p); err != nil {
		slog.Error("failed to encode problem response", "error", err)
	}
}
