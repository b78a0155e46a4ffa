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
	"github.com/gridstonehq/gridstone-api/internal/retention"
	"github.com/gridstonehq/gridstone-api/internal/service"
	"github.com/gridstonehq/gridstone-api/internal/service/auth"
)

// projectsResource is the name the version registry tracks lifecycles under.
const projectsResource = "projects"

// application holds the host's shared dependencies so wiring happens in one
// place and cleanup releases them in reverse order.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	projectStore *postgres.PostgresProjectStore

	tokenService *auth.HMACTokenService
	registry     *apiversion.Registry
	collector    *metrics.Collector
	handler      *api.ProjectHandler
	sweeper      *retention.Sweeper
}

// newApplication wires the host. Construction order follows the dependency
// graph: platform pieces first, then the store, the per-version services,
// and finally the HTTP surface.
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

	a.collector = metrics.NewCollector("projects_api")
	a.projectStore = postgres.NewPostgresProjectStore(db, logger)

	// One service per contract version; v2 adds the on-hold status flow.
	services := map[apiversion.Version]service.ProjectService{
		apiversion.MustParse("v1"): service.NewProjectService(
			a.projectStore, db, service.ProjectRulesV1(), logger),
		apiversion.MustParse("v2"): service.NewProjectService(
			a.projectStore, db, service.ProjectRulesV2(), logger),
	}
	a.handler = api.NewProjectHandler(services, logger)

	a.registry = apiversion.NewRegistry()
	for version := range services {
		if err := a.registry.Register(projectsResource, version); err != nil {
			return nil, fmt.Errorf("failed to register %s %s: %w", projectsResource, version, err)
		}
	}
	if err := app.ApplyVersionConfig(a.registry, cfg.API); err != nil {
		return nil, fmt.Errorf("failed to apply version lifecycle configuration: %w", err)
	}

	a.sweeper = retention.NewSweeper(cfg.Retention, []retention.Target{
		{Table: "projects", Purger: a.projectStore},
	}, a.collector, logger)
	if err := a.sweeper.Start(); err != nil {
		return nil, fmt.Errorf("failed to start retention sweeper: %w", err)
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

// mountRoutes registers the projects resource under /api. Versioned paths
// carry an explicit {version} segment; bare paths resolve to the default
// version. Both go through the version middleware, which stamps the
// resolution headers and rejects unsupported tokens.
func (a *application) mountRoutes(r chi.Router) {
	versioned := apiversion.Middleware(a.registry, projectsResource)

	routes := func(r chi.Router) {
		r.Use(versioned)
		r.Get("/", a.handler.ListProjects)
		r.Post("/", a.handler.CreateProject)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", a.handler.GetProject)
			r.Put("/", a.handler.UpdateProject)
			r.Delete("/", a.handler.DeleteProject)
		})
	}

	r.Route("/{version}/projects", routes)
	r.Route("/projects", routes)
}

// cleanup releases resources in reverse construction order.
func (a *application) cleanup() {
	if a.sweeper != nil {
		a.sweeper.Stop()
	}

	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error("error closing database connection",
				slog.String("error", err.Error()))
		}
	}

	a.logger.Info("application shutdown completed")
}
