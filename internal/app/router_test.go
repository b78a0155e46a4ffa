package app_test

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridstonehq/gridstone-api/internal/api"
	"github.com/gridstonehq/gridstone-api/internal/api/middleware"
	"github.com/gridstonehq/gridstone-api/internal/api/shared"
	"github.com/gridstonehq/gridstone-api/internal/app"
	"github.com/gridstonehq/gridstone-api/internal/config"
	"github.com/gridstonehq/gridstone-api/internal/platform/metrics"
	"github.com/gridstonehq/gridstone-api/internal/service/auth"
)

const testOrigin = "https://app.gridstone.example"

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// routerFixture bundles a fully assembled router with the fakes behind it.
type routerFixture struct {
	handler   http.Handler
	mock      sqlmock.Sqlmock
	collector *metrics.Collector
}

func newRouterFixture(t *testing.T, mountAPI func(chi.Router)) *routerFixture {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	collector := metrics.NewCollector("app_test")

	handler := app.NewRouter(app.RouterOptions{
		Service:   "app-test",
		Logger:    quietLogger(),
		Collector: collector,
		Verifier:  auth.NewMockTokenVerifier(),
		DB:        db,
		API:       config.APIConfig{CORSAllowedOrigins: []string{testOrigin}},
		RateLimit: config.RateLimitConfig{Enabled: true, RequestsPerSecond: 100, Burst: 100},
	}, mountAPI)

	return &routerFixture{handler: handler, mock: mock, collector: collector}
}

func TestRouterHealthIsPublic(t *testing.T) {
	t.Parallel()

	fx := newRouterFixture(t, func(chi.Router) {})

	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestRouterReady(t *testing.T) {
	t.Parallel()

	fx := newRouterFixture(t, func(chi.Router) {})
	fx.mock.ExpectPing()

	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
	assert.NoError(t, fx.mock.ExpectationsWereMet())
}

func TestRouterReadyDatabaseDown(t *testing.T) {
	t.Parallel()

	fx := newRouterFixture(t, func(chi.Router) {})
	fx.mock.ExpectPing().WillReturnError(errors.New("connection refused"))

	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var problem shared.Problem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, api.ProblemTypeUnavailable, problem.Type)
	assert.Equal(t, http.StatusServiceUnavailable, problem.Status)
	assert.NotEmpty(t, problem.TraceID, "problems must carry the request trace ID")
}

func TestRouterMetricsEndpoint(t *testing.T) {
	t.Parallel()

	fx := newRouterFixture(t, func(chi.Router) {})

	fx.handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "app_test_http_requests_total",
		"the scrape endpoint should expose request counts recorded by the chain")
}

func TestRouterAPIRequiresAuth(t *testing.T) {
	t.Parallel()

	fx := newRouterFixture(t, func(r chi.Router) {
		r.Get("/v1/projects", func(w http.ResponseWriter, r *http.Request) {
			_, ok := middleware.CallerID(r)
			assert.True(t, ok, "authenticated requests must carry a caller identity")
			w.WriteHeader(http.StatusOK)
		})
	})

	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/projects", nil))

	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var problem shared.Problem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, api.ProblemTypeUnauthorized, problem.Type)

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/projects", nil)
	req.Header.Set("Authorization", "Bearer any-token-will-do")
	fx.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterCORSPreflightBypassesAuth(t *testing.T) {
	t.Parallel()

	fx := newRouterFixture(t, func(r chi.Router) {
		r.Get("/v1/projects", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/projects", nil)
	req.Header.Set("Origin", testOrigin)
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)

	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code,
		"preflight requests carry no bearer token and must not be rejected")
	assert.Equal(t, testOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouterRecoversPanics(t *testing.T) {
	t.Parallel()

	fx := newRouterFixture(t, func(r chi.Router) {
		r.Get("/v1/boom", func(http.ResponseWriter, *http.Request) {
			panic("handler exploded")
		})
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/boom", nil)
	req.Header.Set("Authorization", "Bearer any-token-will-do")
	fx.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	count := testutil.ToFloat64(
		fx.collector.HTTPRequests.WithLabelValues(http.MethodGet, "/api/v1/boom", "500"))
	assert.Equal(t, 1.0, count, "recovered panics must still be recorded as server errors")
}
