// Package repomanager opens the configured storage backend and vends its
// repositories: PostgreSQL (migrated with goose), MongoDB, or process memory.
package repomanager

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/agentdesk/internal/common"
	"github.com/dmitrijs2005/agentdesk/internal/server/config"
	"github.com/dmitrijs2005/agentdesk/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/agentdesk/internal/server/repositories/tasks"
	"github.com/dmitrijs2005/agentdesk/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context) error
	Users() users.Repository
	Sessions() sessions.Repository
	Tasks() tasks.Repository
	// Ping reports whether the backend still answers.
	Ping(context.Context) error
	Close(context.Context) error
}

// New opens the backend named by cfg.StorageBackend. Connection failures
// wrap common.ErrStoreUnavailable.
func New(ctx context.Context, cfg *config.Config) (RepositoryManager, error) {
	switch cfg.StorageBackend {
	case config.BackendPostgres:
		db, err := OpenPostgres(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		return NewPostgresRepositoryManager(db), nil
	case config.BackendMongo:
		client, err := OpenMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		return NewMongoRepositoryManager(client, cfg.MongoDatabase), nil
	case config.BackendMemory:
		return NewInMemoryRepositoryManager(), nil
	default:
		return nil, fmt.Errorf("%w: unknown storage backend %q", common.ErrConfiguration, cfg.StorageBackend)
	}
}
