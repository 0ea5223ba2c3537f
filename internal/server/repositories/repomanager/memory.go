package repomanager

import (
	"context"

	"github.com/dmitrijs2005/agentdesk/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/agentdesk/internal/server/repositories/tasks"
	"github.com/dmitrijs2005/agentdesk/internal/server/repositories/users"
)

// InMemoryRepositoryManager keeps everything in process memory. Data is lost
// on exit.
type InMemoryRepositoryManager struct {
	users    *users.MemoryRepository
	sessions *sessions.MemoryRepository
	tasks    *tasks.MemoryRepository
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{
		users:    users.NewMemoryRepository(),
		sessions: sessions.NewMemoryRepository(),
		tasks:    tasks.NewMemoryRepository(),
	}
}

func (m *InMemoryRepositoryManager) RunMigrations(context.Context) error { return nil }

func (m *InMemoryRepositoryManager) Users() users.Repository { return m.users }

func (m *InMemoryRepositoryManager) Sessions() sessions.Repository { return m.sessions }

func (m *InMemoryRepositoryManager) Tasks() tasks.Repository { return m.tasks }

func (m *InMemoryRepositoryManager) Ping(context.Context) error { return nil }

func (m *InMemoryRepositoryManager) Close(context.Context) error { return nil }
