// Package backend opens the document store selected by configuration.
package backend

import (
	"context"
	"fmt"

	"automator/internal/backend/memstore"
	"automator/internal/backend/mongostore"
	"automator/internal/backend/sqlitestore"
	"automator/internal/config"
	"automator/internal/docstore"
)

// Open returns the store named by cfg.Store.Driver.
func Open(ctx context.Context, cfg *config.Config) (docstore.Store, error) {
	switch cfg.Store.Driver {
	case config.DriverMemory:
		return memstore.New(), nil
	case config.DriverSQLite:
		if err := cfg.EnsureDir(); err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}
		return sqlitestore.Open(cfg.DatabasePath())
	case config.DriverMongo:
		return mongostore.Open(ctx, cfg.Store.MongoURL, cfg.Store.Database)
	default:
		return nil, fmt.Errorf("unknown store driver: %q", cfg.Store.Driver)
	}
}
