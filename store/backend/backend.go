// Package backend opens the store.Store selected by configuration.
package backend

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/warp/payroll-engine/config"
	"github.com/warp/payroll-engine/store"
	"github.com/warp/payroll-engine/store/memory"
	"github.com/warp/payroll-engine/store/postgres"
	"github.com/warp/payroll-engine/store/sqlite"
)

// Open returns a migrated store for cfg.DBDriver.
func Open(ctx context.Context, cfg config.Server, logger *slog.Logger) (store.Store, error) {
	switch cfg.DBDriver {
	case config.DriverMemory:
		logger.Info("using in-memory store")
		return memory.New(), nil

	case config.DriverSQLite:
		s, err := sqlite.New(cfg.DBDSN)
		if err != nil {
			return nil, fmt.Errorf("sqlite %s: %w", cfg.DBDSN, err)
		}
		logger.Info("using sqlite store", "path", cfg.DBDSN)
		return s, nil

	case config.DriverPostgres:
		s, err := postgres.New(ctx, cfg.DBDSN)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		logger.Info("using postgres store")
		return s, nil
	}
	return nil, fmt.Errorf("unknown database driver %q", cfg.DBDriver)
}

// Migrate applies pending schema migrations without opening a full store
// and describes the resulting state.
func Migrate(ctx context.Context, cfg config.Server) (string, error) {
	switch cfg.DBDriver {
	case config.DriverMemory:
		return "memory store has no schema", nil

	case config.DriverSQLite:
		s, err := sqlite.Open(cfg.DBDSN)
		if err != nil {
			return "", err
		}
		defer s.Close()
		if err := s.Migrate(); err != nil {
			return "", fmt.Errorf("migrate %s: %w", cfg.DBDSN, err)
		}
		status, err := s.MigrationStatus()
		if err != nil {
			return "", err
		}
		return Describe("sqlite "+cfg.DBDSN, status), nil

	case config.DriverPostgres:
		status, err := postgres.Migrate(cfg.DBDSN)
		if err != nil {
			return "", err
		}
		return Describe("postgres", status), nil
	}
	return "", fmt.Errorf("unknown database driver %q", cfg.DBDriver)
}

// Describe renders a migration status for the command line.
func Describe(name string, status *store.MigrationStatus) string {
	msg := fmt.Sprintf("%s at version %d of %d", name, status.CurrentVersion, status.LatestVersion)
	if status.Dirty {
		msg += " (dirty)"
	}
	return msg
}
