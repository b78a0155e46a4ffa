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

// Resource names the version registry tracks lifecycles under. The logistics
// host serves two resources, each with its own lifecycle.
const (
	ordersResource    = "orders"
	shipmentsResource = "shipments"
)

// application holds the host's shared dependencies so wiring happens in one
// place and cleanup releases them in reverse order.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	orderStore    *postgres.PostgresOrderStore
	shipmentStore *postgres.PostgresShipmentStore

	tokenService    *auth.HMACTokenService
	registry        *apiversion.Registry
	collector       *metrics.Collector
	orderHandler    *api.OrderHandler
	shipmentHandler *api.ShipmentHandler
	sweeper         *retention.Sweeper
}

// newApplication wires the host. Construction order follows the dependency
// graph: platform pieces first, then stores, services, and finally the HTTP
// surface.
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

	a.collector = metrics.NewCollector("logistics_api")
	a.orderStore = postgres.NewPostgresOrderStore(db, logger)
	a.shipmentStore = postgres.NewPostgresShipmentStore(db, logger)

	v1 := apiversion.MustParse("v1")

	orderServices := map[apiversion.Version]service.OrderService{
		v1: service.NewOrderService(a.orderStore, db, logger),
	}
	a.orderHandler = api.NewOrderHandler(orderServices, logger)

	shipmentServices := map[apiversion.Version]service.ShipmentService{
		v1: service.NewShipmentService(a.shipmentStore, a.orderStore, db, logger),
	}
	a.shipmentHandler = api.NewShipmentHandler(shipmentServices, logger)

	a.registry = apiversion.NewRegistry()
	if err := a.registry.Register(ordersResource, v1); err != nil {
		return nil, fmt.Errorf("failed to register %s %s: %w", ordersResource, v1, err)
	}
	if err := a.registry.Register(shipmentsResource, v1); err != nil {
		return nil, fmt.Errorf("failed to register %s %s: %w", shipmentsResource, v1, err)
	}
	if err := app.ApplyVersionConfig(a.registry, cfg.API); err != nil {
		return nil, fmt.Errorf("failed to apply version lifecycle configuration: %w", err)
	}

	// Only orders soft-delete; shipments hard-delete and need no purging.
	a.sweeper = retention.NewSweeper(cfg.Retention, []retention.Target{
		{Table: "orders", Purger: a.orderStore},
	}, a.collector, logger)
	if err := a.sweeper.Start(); err != nil {
		return nil, fmt.Errorf("failed to start retention sweeper: %w", err)
	}

	logger.Info("application initialized")
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

// mountRoutes registers both logistics resources under /api. Versioned paths
// carry an explicit {version} segment; bare paths resolve to each resource's
// default version.
func (a *application) mountRoutes(r chi.Router) {
	orderVersioned := apiversion.Middleware(a.registry, ordersResource)
	shipmentVersioned := apiversion.Middleware(a.registry, shipmentsResource)

	orderRoutes := func(r chi.Router) {
		r.Use(orderVersioned)
		r.Get("/", a.orderHandler.ListOrders)
		r.Post("/", a.orderHandler.CreateOrder)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", a.orderHandler.GetOrder)
			r.Put("/", a.orderHandler.UpdateOrder)
			r.Delete("/", a.orderHandler.DeleteOrder)
		})
	}

	shipmentRoutes := func(r chi.Router) {
		r.Use(shipmentVersioned)
		r.Get("/", a.shipmentHandler.ListShipments)
		r.Post("/", a.shipmentHandler.CreateShipment)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", a.shipmentHandler.GetShipment)
			r.Put("/", a.shipmentHandler.UpdateShipment)
			r.Delete("/", a.shipmentHandler.DeleteShipment)
		})
	}

	r.Route("/{version}/orders", orderRoutes)
	r.Route("/orders", orderRoutes)
	r.Route("/{version}/shipments", shipmentRoutes)
	r.Route("/shipments", shipmentRoutes)
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
