package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"github.com/gridstonehq/gridstone-api/internal/api"
	"github.com/gridstonehq/gridstone-api/internal/api/shared"
)

// errServerFailure marks a 5xx response inside the breaker so it counts as a
// failure. The handler already wrote the response by then; the error only
// feeds the breaker's counters.
var errServerFailure = errors.New("handler returned a server error")

// breakerRetryAfter is the advisory wait sent with 503 responses. It matches
// the breaker's open-state timeout.
const breakerRetryAfter = 60 * time.Second

// CircuitBreaker sheds traffic while the handlers behind it keep failing,
// giving the database or a struggling downstream room to recover instead of
// queueing more doomed requests.
type CircuitBreaker struct {
	cb *gobreaker.CircuitBreaker
}

// NewCircuitBreaker creates a breaker that trips once at least five requests
// in the rolling interval have failed at an 80 percent rate, stays open for
// a minute, and then probes with a handful of half-open requests.
func NewCircuitBreaker(name string, log *slog.Logger) *CircuitBreaker {
	if log == nil {
		panic("middleware: circuit breaker logger is required")
	}

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    30 * time.Second,
		Timeout:     breakerRetryAfter,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= 0.8
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	}

	return &CircuitBreaker{cb: gobreaker.NewCircuitBreaker(settings)}
}

// Protect wraps next in the breaker. While the breaker is open, requests are
// answered with a 503 problem without reaching the handler.
func (b *CircuitBreaker) Protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, err := b.cb.Execute(func() (any, error) {
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(recorder, r)

			if recorder.status >= http.StatusInternalServerError {
				return nil, errServerFailure
			}
			return nil, nil
		})

		// errServerFailure means the handler already answered; only the
		// breaker's own rejections need a response here.
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			p := shared.NewProblem(
				http.StatusServiceUnavailable,
				"Service Unavailable",
				"service is temporarily unavailable, retry later",
			)
			p.Type = api.ProblemTypeUnavailable
			w.Header().Set("Retry-After", strconv.Itoa(int(breakerRetryAfter.Seconds())))
			shared.RespondWithProblemAndLog(w, r, p, err)
		}
	})
}

// statusRecorder captures the status code written by the wrapped handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
