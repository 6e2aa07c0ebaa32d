// Package backend opens the store selected by configuration.
package backend

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mmynk/splitledger/internal/config"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/internal/storage/memory"
	"github.com/mmynk/splitledger/internal/storage/postgres"
	"github.com/mmynk/splitledger/internal/storage/sqlite"
)

// Open returns the store for cfg.StoreDriver, migrated and ready.
func Open(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverSQLite:
		store, err := sqlite.New(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.DriverPostgres:
		store, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.DriverMemory:
		slog.Warn("Using in-memory storage; data is lost on restart")
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
