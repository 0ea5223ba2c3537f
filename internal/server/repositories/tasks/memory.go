package tasks

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/agentdesk/internal/server/models"
)

// MemoryRepository keeps task records in insertion order.
type MemoryRepository struct {
	mu      sync.RWMutex
	records []models.TaskRecord
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Insert(ctx context.Context, rec *models.TaskRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records = append(r.records, cloneRecord(*rec))
	return nil
}

// cloneRecord copies rec including its Fields map, so stored records never
// share state with callers.
func cloneRecord(rec models.TaskRecord) models.TaskRecord {
	fields := make(map[string]string, len(rec.Fields))
	for k, v := range rec.Fields {
		fields[k] = v
	}
	rec.Fields = fields
	return rec
}

// ListRecent walks backwards so that records inserted later win ties on
// CreatedAt.
func (r *MemoryRepository) ListRecent(ctx context.Context, kind models.TaskKind, limit int) ([]models.TaskRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []models.TaskRecord
	for i := len(r.records) - 1; i >= 0 && len(result) < limit; i-- {
		if r.records[i].Kind == kind {
			result = append(result, cloneRecord(r.records[i]))
		}
	}
	return result, nil
}
