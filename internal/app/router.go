package app

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/gridstonehq/gridstone-api/internal/api"
	"github.com/gridstonehq/gridstone-api/internal/api/middleware"
	"github.com/gridstonehq/gridstone-api/internal/api/shared"
	"github.com/gridstonehq/gridstone-api/internal/config"
	"github.com/gridstonehq/gridstone-api/internal/platform/logger"
	"github.com/gridstonehq/gridstone-api/internal/platform/metrics"
	"github.com/gridstonehq/gridstone-api/internal/service/auth"
)

// readyPingTimeout bounds the database check behind /ready. Readiness probes
// run often, so a slow answer is as bad as a failed one.
const readyPingTimeout = 2 * time.Second

// RouterOptions carries everything the shared router needs from a host.
type RouterOptions struct {
	// Service names the host in circuit breaker state and logs.
	Service string

	Logger    *slog.Logger
	Collector *metrics.Collector
	Verifier  auth.TokenVerifier
	DB        *sql.DB

	API       config.APIConfig
	RateLimit config.RateLimitConfig
}

// NewRouter assembles the base router every host serves: request ID and
// real IP resolution, metrics, trace-aware logging and panic recovery on
// every route, plus the public operational endpoints. mountAPI registers the
// host's resource routes under /api, behind CORS, authentication, the rate
// limiter and the circuit breaker.
//
// The rate limiter sits inside authentication so it can key on caller
// identity rather than peer address. The breaker is innermost so limiter
// rejections never count against it. Metrics wrap the recoverer so panics
// are still recorded as 500s.
func NewRouter(opts RouterOptions, mountAPI func(chi.Router)) http.Handler {
	if opts.Logger == nil {
		panic("app: router logger is required")
	}
	if opts.Collector == nil {
		panic("app: router metrics collector is required")
	}
	if opts.DB == nil {
		panic("app: router database handle is required")
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(opts.Collector.Middleware)
	r.Use(middleware.NewTraceMiddleware(opts.Logger))
	r.Use(chimiddleware.Recoverer)

	r.Get("/health", handleHealth)
	r.Get("/ready", handleReady(opts.DB))
	r.Method(http.MethodGet, "/metrics", opts.Collector.Handler())

	authMiddleware := middleware.NewAuthMiddleware(opts.Verifier)
	breaker := middleware.NewCircuitBreaker(opts.Service, opts.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(corsOptions(opts.API.CORSAllowedOrigins)))
		r.Use(authMiddleware.Authenticate)
		if opts.RateLimit.Enabled {
			r.Use(middleware.NewRateLimiter(opts.RateLimit).Limit)
		}
		r.Use(breaker.Protect)

		mountAPI(r)
	})

	return r
}

func corsOptions(origins []string) cors.Options {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{
			"X-API-Version", "X-API-Latest", "Deprecation", "Sunset", "Retry-After",
		},
		MaxAge: 300,
	}
}

// handleHealth reports liveness only. It deliberately checks nothing; a host
// wedged on its database should still answer liveness probes so the
// orchestrator restarts it for the right reason.
func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		logger.FromContext(r.Context()).Error("failed to write health response",
			slog.String("error", err.Error()))
	}
}

// handleReady reports whether the host can serve traffic, which for these
// hosts means the database answers.
func handleReady(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyPingTimeout)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			problem := shared.NewProblem(http.StatusServiceUnavailable,
				"Service Unavailable", "database is unreachable")
			problem.Type = api.ProblemTypeUnavailable
			shared.RespondWithProblemAndLog(w, r, problem, err)
			return
		}

		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.FromContext(r.Context()).Error("failed to write readiness response",
				slog.String("error", err.Error()))
		}
	}
}
