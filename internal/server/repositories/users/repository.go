// Package users stores accounts for AuthGate.
package users

import (
	"context"

	"github.com/dmitrijs2005/agentdesk/internal/server/models"
)

// Repository persists users. Create returns common.ErrDuplicateUser when the
// username is taken; GetUserByLogin returns common.ErrorNotFound when absent.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)
}
