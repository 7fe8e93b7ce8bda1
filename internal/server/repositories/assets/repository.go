package assets

import (
	"context"

	"github.com/nvoloshin/folio/internal/server/models"
)

// ListFilter narrows asset listings. Zero values mean "no constraint".
type ListFilter struct {
	ProjectID *string
	FileType  string
	Offset    int
	Limit     int
}

// Repository persists asset metadata. The binary content itself lives
// in the object store and is not this layer's concern.
type Repository interface {
	Create(ctx context.Context, asset *models.Asset) (*models.Asset, error)
	GetByID(ctx context.Context, id string) (*models.Asset, error)
	List(ctx context.Context, filter ListFilter) ([]models.Asset, error)
	Count(ctx context.Context, filter ListFilter) (int, error)
	ListByProjectIDs(ctx context.Context, projectIDs []string) ([]models.Asset, error)
	Update(ctx context.Context, asset *models.Asset) (*models.Asset, error)
	Delete(ctx context.Context, id string) error
	// DetachByProjectID clears project_id on every asset attached to
	// the project and returns the number of assets detached.
	DetachByProjectID(ctx context.Context, projectID string) (int, error)
	// DetachBySectionID detaches assets from every project in the
	// section, ahead of a cascading section delete.
	DetachBySectionID(ctx context.Context, sectionID string) (int, error)
}
