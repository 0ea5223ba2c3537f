package sessions

import (
	"context"
	"sort"
	"sync"

	"github.com/dmitrijs2005/agentdesk/internal/common"
	"github.com/dmitrijs2005/agentdesk/internal/server/models"
)

// MemoryRepository keeps sessions and their messages in maps.
type MemoryRepository struct {
	mu       sync.RWMutex
	sessions map[string]models.Session
	messages map[string][]models.Message
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		sessions: make(map[string]models.Session),
		messages: make(map[string][]models.Message),
	}
}

func (r *MemoryRepository) Create(ctx context.Context, s *models.Session) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[s.ID] = *s
	return s, nil
}

func (r *MemoryRepository) Get(ctx context.Context, id string) (*models.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &s, nil
}

func (r *MemoryRepository) ListByUser(ctx context.Context, userName string) ([]models.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []models.Session
	for _, s := range r.sessions {
		if s.UserName == userName {
			result = append(result, s)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *MemoryRepository) Append(ctx context.Context, s *models.Session, m *models.Message) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.sessions[s.ID]
	if !ok {
		current = *s
		r.sessions[s.ID] = current
	}
	if current.UserName != s.UserName {
		return nil, common.ErrorUnauthorized
	}

	msg := *m
	msg.SessionID = current.ID
	r.messages[current.ID] = append(r.messages[current.ID], msg)
	return &current, nil
}

func (r *MemoryRepository) Messages(ctx context.Context, sessionID string) ([]models.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.sessions[sessionID]; !ok {
		return nil, common.ErrorNotFound
	}
	msgs := r.messages[sessionID]
	out := make([]models.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}
