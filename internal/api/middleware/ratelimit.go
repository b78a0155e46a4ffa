package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/gridstonehq/gridstone-api/internal/api"
	"github.com/gridstonehq/gridstone-api/internal/api/shared"
	"github.com/gridstonehq/gridstone-api/internal/config"
)

const (
	// limiterIdleTTL is how long an unused client bucket survives before the
	// sweep drops it.
	limiterIdleTTL = 3 * time.Minute

	// sweepInterval bounds how often the sweep walks the client map.
	sweepInterval = time.Minute
)

// clientLimiter pairs a token bucket with the time it last admitted a
// request, so idle entries can be swept.
type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter applies a per-client token bucket to every request. Clients are
// keyed by authenticated caller ID when the auth middleware ran earlier in
// the chain, otherwise by remote address, so one noisy integration cannot
// starve the rest.
type RateLimiter struct {
	mu        sync.Mutex
	clients   map[string]*clientLimiter
	lastSweep time.Time

	rps        rate.Limit
	burst      int
	retryAfter string
}

// NewRateLimiter creates a limiter from the host's rate limit configuration.
// Callers check cfg.Enabled before mounting it.
func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		clients:    make(map[string]*clientLimiter),
		lastSweep:  time.Now(),
		rps:        rate.Limit(cfg.RequestsPerSecond),
		burst:      cfg.Burst,
		retryAfter: strconv.Itoa(retryAfterSeconds(cfg.RequestsPerSecond)),
	}
}

// Limit rejects requests that exceed the client's bucket with a 429 problem
// and a Retry-After hint.
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(clientKey(r)) {
			p := shared.NewProblem(
				http.StatusTooManyRequests,
				"Too Many Requests",
				"request rate limit exceeded, retry later",
			)
			p.Type = api.ProblemTypeRateLimited
			w.Header().Set("Retry-After", rl.retryAfter)
			shared.RespondWithProblemAndLog(w, r, p, nil)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	if now.Sub(rl.lastSweep) >= sweepInterval {
		rl.sweep(now)
	}

	client, ok := rl.clients[key]
	if !ok {
		client = &clientLimiter{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.clients[key] = client
	}
	client.lastSeen = now

	return client.limiter.Allow()
}

// sweep removes buckets idle past their TTL. Callers must hold mu.
func (rl *RateLimiter) sweep(now time.Time) {
	for key, client := range rl.clients {
		if now.Sub(client.lastSeen) > limiterIdleTTL {
			delete(rl.clients, key)
		}
	}
	rl.lastSweep = now
}

// clientKey picks the bucket key for a request. Authenticated callers get a
// stable bucket regardless of where they connect from; anonymous requests are
// keyed by remote IP with the port stripped, so connections from one host
// share a bucket.
func clientKey(r *http.Request) string {
	if callerID, ok := CallerID(r); ok {
		return callerID.String()
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// retryAfterSeconds estimates how long a limited client should wait for the
// bucket to admit another request. Coarse on purpose; the header is advisory.
func retryAfterSeconds(rps float64) int {
	if rps >= 1 || rps <= 0 {
		return 1
	}
	return int(math.Ceil(1 / rps))
}
