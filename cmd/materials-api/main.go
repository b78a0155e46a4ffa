// Package main implements the materials host, which serves the material
// catalog over the versioned REST API backed by its own PostgreSQL database.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	stdlog "log"
	"log/slog"

	"github.com/gridstonehq/gridstone-api/internal/app"
	"github.com/gridstonehq/gridstone-api/internal/config"
	"github.com/gridstonehq/gridstone-api/internal/platform/logger"
	"github.com/gridstonehq/gridstone-api/migrations"
)

const serviceName = "materials-api"

func main() {
	configPath := flag.String("config", "",
		"path to a YAML config file (defaults to ./config.yaml, then environment)")
	migrateCmd := flag.String("migrate", "",
		"run a schema migration command (up, down or status) and exit")
	flag.Parse()

	if err := run(*configPath, *migrateCmd); err != nil {
		stdlog.Fatalf("%s: %v", serviceName, err)
	}
}

func run(configPath, migrateCmd string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server, serviceName)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	db, err := app.OpenDatabase(cfg.Database, log)
	if err != nil {
		return err
	}

	if migrateCmd != "" {
		defer closeDatabase(db, log)
		return app.RunMigrations(db, migrations.Materials(), migrateCmd, log)
	}

	host, err := newApplication(cfg, log, db)
	if err != nil {
		closeDatabase(db, log)
		return err
	}
	defer host.cleanup()

	return host.run(context.Background())
}

func closeDatabase(db *sql.DB, log *slog.Logger) {
	if err := db.Close(); err != nil {
		log.Error("error closing database connection", slog.String("error", err.Error()))
	}
}
