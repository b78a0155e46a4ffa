package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gridstonehq/gridstone-api/internal/api"
	"github.com/gridstonehq/gridstone-api/internal/apiversion"
	"github.com/gridstonehq/gridstone-api/internal/app"
	"github.com/gridstonehq/gridstone-api/internal/config"
	"github.com/gridstonehq/gridstone-api/internal/platform/metrics"
	"github.com/gridstonehq/gridstone-api/internal/platform/postgres"
	"github.com/gridstonehq/gridstone-api/internal/service"
	"github.com/gridstonehq/gridstone-api/internal/service/auth"
)

// materialsResource is the name the version registry tracks lifecycles under.
const materialsResource = "materials"

// application holds the host's shared dependencies so wiring happens in one
// place and cleanup releases them in reverse order. Materials hard-delete,
// so this host runs no retention sweeper.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	materialStore *postgres.PostgresMaterialStore

	tokenService *auth.HMACTokenService
	registry     *apiversion.Registry
	collector    *metrics.Collector
	handler      *api.MaterialHandler
}

// newApplication wires the host. Construction order follows the dependency
// graph: platform pieces first, then the store, the service, and finally the
// HTTP surface.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	a := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	a.tokenService, err = auth.NewHMACTokenService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}

	a.collector = metrics.NewCollector("materials_api")
	a.materialStore = postgres.NewPostgresMaterialStore(db, logger)

	services := map[apiversion.Version]service.MaterialService{
		apiversion.MustParse("v1"): service.NewMaterialService(a.materialStore, db, logger),
	}
	a.handler = api.NewMaterialHandler(services, logger)

	a.registry = apiversion.NewRegistry()
	for version := range services {
		if err := a.registry.Register(materialsResource, version); err != nil {
			return nil, fmt.Errorf("failed to register %s %s: %w", materialsResource, version, err)
		}
	}
	if err := app.ApplyVersionConfig(a.registry, cfg.API); err != nil {
		return nil, fmt.Errorf("failed to apply version lifecycle configuration: %w", err)
	}

	logger.Info("application initialized", slog.Int("versions", len(services)))
	return a, nil
}

// run serves HTTP until a shutdown signal arrives or ctx is canceled.
func (a *application) run(ctx context.Context) error {
	router := app.NewRouter(app.RouterOptions{
		Service:   serviceName,
		Logger:    a.logger,
		Collector: a.collector,
		Verifier:  a.tokenService,
		DB:        a.db,
		API:       a.config.API,
		RateLimit: a.config.RateLimit,
	}, a.mountRoutes)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.config.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdownTimeout := time.Duration(a.config.Server.ShutdownTimeoutSeconds) * time.Second
	return app.Serve(ctx, srv, shutdownTimeout, a.logger)
}

// mountRoutes registers the materials resource under /api. Versioned paths
// carry an explicit {version} segment; bare paths resolve to the default
// version.
func (a *application) mountRoutes(r chi.Router) {
	versioned := apiversion.Middleware(a.registry, materialsResource)

	routes := func(r chi.Router) {
		r.Use(versioned)
		r.Get("/", a.handler.ListMaterials)
		r.Post("/", a.handler.CreateMaterial)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", a.handler.GetMaterial)
			r.Put("/", a.handler.UpdateMaterial)
			r.Delete("/", a.handler.DeleteMaterial)
		})
	}

	r.Route("/{version}/materials", routes)
	r.Route("/materials", routes)
}

// cleanup releases resources in reverse construction order.
func (a *application) cleanup() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error("error closing database connection",
				slog.String("error", err.Error()))
		}
	}

	a.logger.Info("application shutdown completed")
}
