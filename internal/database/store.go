package database

import (
	"context"
	"fmt"
	"log/slog"

	"inventory/internal/config"
	"inventory/internal/repositories"
)

// Store bundles the repositories of the configured backend with its health.
type Store struct {
	Users    repositories.UserRepository
	Products repositories.ProductRepository
	Status   *Status
	Driver   string

	closeFn func(ctx context.Context) error
}

// Close releases the underlying connection, if any.
func (s *Store) Close(ctx context.Context) error {
	if s.closeFn == nil {
		return nil
	}
	return s.closeFn(ctx)
}

// Open makes exactly one attempt to reach the configured store. A failed
// attempt is logged and leaves the Store in offline mode; it is not retried.
func Open(ctx context.Context, cfg config.Config, log *slog.Logger) *Store {
	ctx, cancel := context.WithTimeout(ctx, cfg.StoreConnectTimeout)
	defer cancel()

	store, err := open(ctx, cfg)
	if err != nil {
		log.Error("store connection failed, running in offline mode",
			"driver", cfg.StoreDriver, "error", err)
		store.Status.SetAvailable(false)
		return store
	}
	log.Info("connected to store", "driver", cfg.StoreDriver)
	return store
}

func open(ctx context.Context, cfg config.Config) (*Store, error) {
	switch cfg.StoreDriver {
	case config.DriverMemory:
		return NewMemoryStore(), nil
	case config.DriverMongo:
		return openMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
	case config.DriverPostgres, config.DriverSQLite:
		return openGORM(ctx, cfg.StoreDriver, cfg.DatabaseDSN)
	default:
		return offlineStore(cfg.StoreDriver), fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
}

// NewMemoryStore returns an always-available in-process store.
func NewMemoryStore() *Store {
	return &Store{
		Users:    repositories.NewMockUserRepository(),
		Products: repositories.NewMockProductRepository(),
		Status:   NewStatus(true),
		Driver:   config.DriverMemory,
	}
}

// offlineStore is returned when no connection could be made. Its repositories
// are in-memory placeholders that the store middleware never lets requests reach.
func offlineStore(driver string) *Store {
	return &Store{
		Users:    repositories.NewMockUserRepository(),
		Products: repositories.NewMockProductRepository(),
		Status:   NewStatus(false),
		Driver:   driver,
	}
}
