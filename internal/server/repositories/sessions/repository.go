// Package sessions stores chat sessions and their append-only messages.
package sessions

import (
	"context"

	"github.com/dmitrijs2005/agentdesk/internal/server/models"
)

// Repository persists sessions and messages.
//
// Append creates the session described by s when its id is unknown, then
// appends m to it, as one atomic step. It returns the stored session, or
// common.ErrorUnauthorized when the id belongs to another user.
//
// Get returns common.ErrorNotFound for unknown ids. ListByUser returns the
// user's sessions most recent first. Messages returns them in append order.
type Repository interface {
	Create(ctx context.Context, s *models.Session) (*models.Session, error)
	Get(ctx context.Context, id string) (*models.Session, error)
	ListByUser(ctx context.Context, userName string) ([]models.Session, error)
	Append(ctx context.Context, s *models.Session, m *models.Message) (*models.Session, error)
	Messages(ctx context.Context, sessionID string) ([]models.Message, error)
}
