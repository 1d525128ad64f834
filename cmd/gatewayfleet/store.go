package main

import (
	"context"
	"fmt"

	"github.com/nerrad567/gateway-fleet-core/internal/api"
	"github.com/nerrad567/gateway-fleet-core/internal/audit"
	"github.com/nerrad567/gateway-fleet-core/internal/device"
	"github.com/nerrad567/gateway-fleet-core/internal/gateway"
	"github.com/nerrad567/gateway-fleet-core/internal/infrastructure/config"
	"github.com/nerrad567/gateway-fleet-core/internal/infrastructure/database"
	"github.com/nerrad567/gateway-fleet-core/internal/infrastructure/postgres"
)

// store bundles the repositories for the configured database driver.
type store struct {
	gateways gateway.Repository
	devices  device.Repository
	logs     audit.Repository
	health   api.HealthChecker
	close    func() error

	// location is the SQLite file path; empty for PostgreSQL.
	location string
}

// openStore connects to the configured database and applies migrations.
func openStore(ctx context.Context, cfg config.DatabaseConfig) (*store, error) {
	switch cfg.Driver {
	case config.DriverSQLite, "":
		db, err := database.Open(database.Config{
			Path:        cfg.Path,
			WALMode:     cfg.WALMode,
			BusyTimeout: cfg.BusyTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close() //nolint:errcheck // already failing
			return nil, fmt.Errorf("running migrations: %w", err)
		}
		return &store{
			gateways: gateway.NewSQLiteRepository(db.DB),
			devices:  device.NewSQLiteRepository(db.DB),
			logs:     audit.NewSQLiteRepository(db.DB),
			health:   db,
			close:    db.Close,
			location: db.Path(),
		}, nil

	case config.DriverPostgres:
		db, err := postgres.Open(ctx, postgres.Config{
			URL:      cfg.URL,
			MaxConns: cfg.MaxConns,
		})
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		if err := db.Migrate(); err != nil {
			db.Close() //nolint:errcheck // already failing
			return nil, fmt.Errorf("running migrations: %w", err)
		}
		return &store{
			gateways: gateway.NewPostgresRepository(db.Pool),
			devices:  device.NewPostgresRepository(db.Pool),
			logs:     audit.NewPostgresRepository(db.Pool),
			health:   db,
			close:    db.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}
