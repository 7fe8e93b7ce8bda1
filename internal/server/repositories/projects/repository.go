// Package projects persists portfolio entries and their ordering and
// publish state.
package projects

import (
	"context"

	"github.com/nvoloshin/folio/internal/server/models"
)

// ListFilter narrows admin listings. Offset/Limit of zero means no
// paging bound on that side.
type ListFilter struct {
	SectionID     *string
	PublishedOnly bool
	FeaturedOnly  bool
	Offset        int
	Limit         int
}

type Repository interface {
	Create(ctx context.Context, project *models.Project) (*models.Project, error)
	GetByID(ctx context.Context, id string) (*models.Project, error)
	List(ctx context.Context, filter ListFilter) ([]models.Project, error)
	Count(ctx context.Context, filter ListFilter) (int, error)
	// ListBySectionIDs is the aggregator batch fetch: one query for all
	// sections of a page, ordered by display rank within each section.
	ListBySectionIDs(ctx context.Context, sectionIDs []string, publishedOnly bool) ([]models.Project, error)
	// SlugExists checks (section_id, slug) uniqueness, excluding one
	// project id (pass "" on create).
	SlugExists(ctx context.Context, sectionID, slug, excludeID string) (bool, error)
	Update(ctx context.Context, project *models.Project) (*models.Project, error)
	// SetDisplayOrder assigns a rank to one project. Unknown ids are
	// not an error: reorder tolerates stale id lists.
	SetDisplayOrder(ctx context.Context, id string, order int) error
	Publish(ctx context.Context, id string) (*models.Project, error)
	Unpublish(ctx context.Context, id string) (*models.Project, error)
	Delete(ctx context.Context, id string) error
}
