package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/dreamdigital/landing/internal/config"
	"github.com/dreamdigital/landing/internal/database"
	"github.com/dreamdigital/landing/internal/logging"
)

// Backend constructors, swapped in tests
var (
	runMigrations = database.Migrate
	openPostgres  = database.OpenPostgres
	openSQLite    = database.OpenSQLite
)

// Open returns the backend selected by cfg.Storage.
// SQL backends satisfy Closer; callers should close them on shutdown.
func Open(ctx context.Context, cfg *config.Config) (Storage, error) {
	log := logging.L().With(zap.String("backend", cfg.Storage))

	switch cfg.Storage {
	case config.StorageMemory:
		log.Warn("using in-memory storage; data is lost on exit")
		return NewMemory(), nil

	case config.StorageSQLite:
		db, err := openSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		store := NewSQL(db, SQLite, cfg.TableName)
		if err := store.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
		log.Info("storage ready", zap.String("path", cfg.SQLitePath))
		return store, nil

	case config.StoragePostgres:
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			return nil, err
		}
		db, err := openPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		store := NewSQL(db, Postgres, cfg.TableName)
		if store.table != DefaultTable {
			if err := store.EnsureSchema(ctx); err != nil {
				_ = db.Close()
				return nil, err
			}
		}
		log.Info("storage ready", zap.String("table", store.table))
		return store, nil
	}

	return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage)
}

// Close releases s when the backend holds external resources. Closing a
// non-empty memory store logs how many keys are discarded.
func Close(s Storage) error {
	if m, ok := s.(*Memory); ok {
		if keys := m.Keys(); len(keys) > 0 {
			logging.L().Warn("memory storage closed; data discarded", zap.Int("keys", len(keys)))
		}
		return nil
	}
	if c, ok := s.(Closer); ok {
		return c.Close()
	}
	return nil
}
