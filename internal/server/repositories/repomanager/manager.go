package repomanager

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/profilekeeper/internal/server/config"
	"github.com/dmitrijs2005/profilekeeper/internal/server/repositories/accounts"
)

// RepositoryManager owns a storage connection and vends the repositories
// bound to it.
type RepositoryManager interface {
	// RunMigrations prepares the schema (tables or indexes) of the backend.
	RunMigrations(context.Context) error
	Accounts() accounts.Repository
	Close(context.Context) error
}

// New opens the backend selected by cfg.StorageDriver.
func New(ctx context.Context, cfg *config.Config) (RepositoryManager, error) {
	switch cfg.StorageDriver {
	case config.StorageDriverPostgres:
		return OpenPostgres(ctx, cfg.DatabaseDSN)
	case config.StorageDriverMongo:
		return OpenMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
	case config.StorageDriverMemory:
		return NewMemoryRepositoryManager(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
