package apiversion

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gridstonehq/gridstone-api/internal/api/shared"
)

type contextKey int

const resolutionKey contextKey = 0

// NewContext returns a context carrying the resolution.
func NewContext(ctx context.Context, res Resolution) context.Context {
	return context.WithValue(ctx, resolutionKey, res)
}

// FromContext returns the resolution stored by the middleware, and whether
// one was present.
func FromContext(ctx context.Context) (Resolution, bool) {
	res, ok := ctx.Value(resolutionKey).(Resolution)
	return res, ok
}

// Middleware resolves the {version} URL segment for a resource against the
// registry. Successful resolutions are stamped onto the response headers and
// stored in the request context; unsupported versions are answered with a
// 400 problem before any handler runs. Routes without a {version} segment
// resolve the empty token, which selects the default version.
func Middleware(registry *Registry, resource string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := chi.URLParam(r, "version")

			res, err := registry.Resolve(resource, token)
			if err != nil {
				p := shared.NewProblem(
					http.StatusBadRequest,
					"Unsupported API Version",
					err.Error(),
				)
				p.Type = "/errors/unsupported-version"
				shared.RespondWithProblem(w, r, p)
				return
			}

			stampVersionHeaders(w, res)

			if res.Deprecated() {
				slog.Debug("serving deprecated api version",
					slog.String("resource", res.Resource),
					slog.String("version", res.Version.String()),
					slog.String("path", r.URL.Path))
			}

			next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), res)))
		})
	}
}

// stampVersionHeaders advertises the resolved and latest versions, plus
// deprecation advisories when the resolved version is past its prime.
func stampVersionHeaders(w http.ResponseWriter, res Resolution) {
	w.Header().Set("X-API-Version", res.Version.String())
	if !res.Latest.IsZero() {
		w.Header().Set("X-API-Latest", res.Latest.String())
	}

	if res.Deprecated() {
		w.Header().Set("Deprecation", "true")
		if !res.Sunset.IsZero() {
			w.Header().Set("Sunset", res.Sunset.UTC().Format(http.TimeFormat))
		}
	}
}
