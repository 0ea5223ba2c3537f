package repomanager

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dmitrijs2005/agentdesk/internal/common"
	"github.com/dmitrijs2005/agentdesk/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/agentdesk/internal/server/repositories/tasks"
	"github.com/dmitrijs2005/agentdesk/internal/server/repositories/users"
)

// MongoRepositoryManager vends MongoDB-backed repositories over one database.
// Its migration step creates the indexes the repositories rely on.
type MongoRepositoryManager struct {
	client   *mongo.Client
	users    *users.MongoRepository
	sessions *sessions.MongoRepository
	tasks    *tasks.MongoRepository
}

// OpenMongo connects to uri and checks that the primary answers.
func OpenMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("%w: mongo connect error: %v", common.ErrStoreUnavailable, err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("%w: mongo ping error: %v", common.ErrStoreUnavailable, err)
	}
	return client, nil
}

// NewMongoRepositoryManager wires repositories over client.Database(name).
func NewMongoRepositoryManager(client *mongo.Client, name string) *MongoRepositoryManager {
	return newMongoRepositoryManager(client, client.Database(name))
}

func newMongoRepositoryManager(client *mongo.Client, db *mongo.Database) *MongoRepositoryManager {
	return &MongoRepositoryManager{
		client:   client,
		users:    users.NewMongoRepository(db),
		sessions: sessions.NewMongoRepository(db),
		tasks:    tasks.NewMongoRepository(db),
	}
}

func (m *MongoRepositoryManager) Users() users.Repository {
	return m.users
}

func (m *MongoRepositoryManager) Sessions() sessions.Repository {
	return m.sessions
}

func (m *MongoRepositoryManager) Tasks() tasks.Repository {
	return m.tasks
}

func (m *MongoRepositoryManager) RunMigrations(ctx context.Context) error {
	if err := m.users.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("users indexes: %w", err)
	}
	if err := m.sessions.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("sessions indexes: %w", err)
	}
	if err := m.tasks.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("task indexes: %w", err)
	}
	return nil
}

func (m *MongoRepositoryManager) Ping(ctx context.Context) error {
	if err := m.client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("%w: mongo ping error: %v", common.ErrStoreUnavailable, err)
	}
	return nil
}

func (m *MongoRepositoryManager) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
