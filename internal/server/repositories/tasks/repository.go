// Package tasks stores planner and research task records.
package tasks

import (
	"context"

	"github.com/dmitrijs2005/agentdesk/internal/server/models"
)

// Repository persists immutable task records, queried by recency only.
type Repository interface {
	Insert(ctx context.Context, rec *models.TaskRecord) error
	ListRecent(ctx context.Context, kind models.TaskKind, limit int) ([]models.TaskRecord, error)
}
