// Package sections persists top-level content groups.
package sections

import (
	"context"

	"github.com/nvoloshin/folio/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, section *models.Section) (*models.Section, error)
	GetByID(ctx context.Context, id string) (*models.Section, error)
	GetBySlug(ctx context.Context, slug string) (*models.Section, error)
	// List returns sections ordered by display rank; inactive sections
	// are included only when requested.
	List(ctx context.Context, includeInactive bool) ([]models.Section, error)
	Update(ctx context.Context, section *models.Section) (*models.Section, error)
	Delete(ctx context.Context, id string) error
}
