// Package users persists administrator accounts.
package users

import (
	"context"
	"time"

	"github.com/nvoloshin/folio/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id string, when time.Time) error
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
}
