package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/nvoloshin/folio/internal/common"
	"github.com/nvoloshin/folio/internal/dbx"
	"github.com/nvoloshin/folio/internal/logging"
	"github.com/nvoloshin/folio/internal/server/models"
	"github.com/nvoloshin/folio/internal/server/repositories/projects"
	"github.com/nvoloshin/folio/internal/server/repositories/repomanager"
)

// SectionInput carries the fields of a new section.
type SectionInput struct {
	Slug         string  `json:"slug" binding:"required"`
	Title        string  `json:"title" binding:"required"`
	Description  *string `json:"description"`
	DisplayOrder int     `json:"display_order"`
	IsActive     *bool   `json:"is_active"`
}

// SectionUpdate carries a partial update; nil fields are left as-is.
type SectionUpdate struct {
	Slug         *string `json:"slug"`
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	DisplayOrder *int    `json:"display_order"`
	IsActive     *bool   `json:"is_active"`
}

// ProjectInput carries the fields of a new project.
type ProjectInput struct {
	SectionID    string          `json:"section_id" binding:"required"`
	Slug         string          `json:"slug" binding:"required"`
	Title        string          `json:"title" binding:"required"`
	Subtitle     *string         `json:"subtitle"`
	Description  *string         `json:"description"`
	Content      json.RawMessage `json:"content"`
	ThumbnailURL *string         `json:"thumbnail_url"`
	DisplayOrder int             `json:"display_order"`
	IsPublished  bool            `json:"is_published"`
	IsFeatured   bool            `json:"is_featured"`
	Tags         []string        `json:"tags"`
	ExtraData    json.RawMessage `json:"extra_data"`
}

// ProjectUpdate carries a partial update; nil fields are left as-is.
type ProjectUpdate struct {
	SectionID    *string         `json:"section_id"`
	Slug         *string         `json:"slug"`
	Title        *string         `json:"title"`
	Subtitle     *string         `json:"subtitle"`
	Description  *string         `json:"description"`
	Content      json.RawMessage `json:"content"`
	ThumbnailURL *string         `json:"thumbnail_url"`
	DisplayOrder *int            `json:"display_order"`
	IsPublished  *bool           `json:"is_published"`
	IsFeatured   *bool           `json:"is_featured"`
	Tags         []string        `json:"tags"`
	ExtraData    json.RawMessage `json:"extra_data"`
}

type ContentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewContentService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *ContentService {
	return &ContentService{
		db:          db,
		repomanager: m,
		logger:      logger.With("module", "content_service"),
	}
}

func (s *ContentService) CreateSection(ctx context.Context, in SectionInput) (*models.Section, error) {
	section := &models.Section{
		Slug:         in.Slug,
		Title:        in.Title,
		Description:  in.Description,
		DisplayOrder: in.DisplayOrder,
		IsActive:     true,
	}
	if in.IsActive != nil {
		section.IsActive = *in.IsActive
	}

	section, err := s.repomanager.Sections(s.db).Create(ctx, section)
	if err != nil {
		return nil, fmt.Errorf("creating section: %w", err)
	}
	return section, nil
}

func (s *ContentService) GetSection(ctx context.Context, id string) (*models.Section, error) {
	return s.repomanager.Sections(s.db).GetByID(ctx, id)
}

func (s *ContentService) ListSections(ctx context.Context, includeInactive bool) ([]models.Section, error) {
	return s.repomanager.Sections(s.db).List(ctx, includeInactive)
}

func (s *ContentService) UpdateSection(ctx context.Context, id string, upd SectionUpdate) (*models.Section, error) {
	var section *models.Section

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Sections(tx)

		var err error
		section, err = repo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if upd.Slug != nil {
			section.Slug = *upd.Slug
		}
		if upd.Title != nil {
			section.Title = *upd.Title
		}
		if upd.Description != nil {
			section.Description = upd.Description
		}
		if upd.DisplayOrder != nil {
			section.DisplayOrder = *upd.DisplayOrder
		}
		if upd.IsActive != nil {
			section.IsActive = *upd.IsActive
		}

		section, err = repo.Update(ctx, section)
		return err
	})

	if err != nil {
		return nil, fmt.Errorf("updating section: %w", err)
	}
	return section, nil
}

// DeleteSection removes a section and, through the schema cascade, its
// projects. Assets attached to those projects are detached first so
// they survive as orphans in the media library.
func (s *ContentService) DeleteSection(ctx context.Context, id string) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		detached, err := s.repomanager.Assets(tx).DetachBySectionID(ctx, id)
		if err != nil {
			return err
		}
		if detached > 0 {
			s.logger.Info(ctx, "detached assets before section delete", "section_id", id, "count", detached)
		}
		return s.repomanager.Sections(tx).Delete(ctx, id)
	})

	if err != nil {
		return fmt.Errorf("deleting section: %w", err)
	}
	return nil
}

func (s *ContentService) CreateProject(ctx context.Context, in ProjectInput) (*models.Project, error) {
	var project *models.Project

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.Sections(tx).GetByID(ctx, in.SectionID); err != nil {
			return err
		}

		taken, err := s.repomanager.Projects(tx).SlugExists(ctx, in.SectionID, in.Slug, "")
		if err != nil {
			return err
		}
		if taken {
			return common.ErrConflict
		}

		project = &models.Project{
			SectionID:    in.SectionID,
			Slug:         in.Slug,
			Title:        in.Title,
			Subtitle:     in.Subtitle,
			Description:  in.Description,
			Content:      in.Content,
			ThumbnailURL: in.ThumbnailURL,
			DisplayOrder: in.DisplayOrder,
			IsPublished:  in.IsPublished,
			IsFeatured:   in.IsFeatured,
			Tags:         in.Tags,
			ExtraData:    in.ExtraData,
		}
		project, err = s.repomanager.Projects(tx).Create(ctx, project)
		return err
	})

	if err != nil {
		return nil, fmt.Errorf("creating project: %w", err)
	}
	return project, nil
}

func (s *ContentService) GetProject(ctx context.Context, id string) (*models.Project, error) {
	return s.repomanager.Projects(s.db).GetByID(ctx, id)
}

// ListProjects returns one page of projects plus the unpaged total.
func (s *ContentService) ListProjects(ctx context.Context, filter projects.ListFilter) ([]models.Project, int, error) {
	repo := s.repomanager.Projects(s.db)

	list, err := repo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := repo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// ListProjectsBySectionSlug lists a section's projects for the public
// site, resolving the section by slug. Unlike the paged listing it
// returns the whole set.
func (s *ContentService) ListProjectsBySectionSlug(ctx context.Context, slug string, publishedOnly bool) ([]models.Project, int, error) {
	section, err := s.repomanager.Sections(s.db).GetBySlug(ctx, slug)
	if err != nil {
		return nil, 0, err
	}

	list, err := s.repomanager.Projects(s.db).List(ctx, projects.ListFilter{
		SectionID:     &section.ID,
		PublishedOnly: publishedOnly,
	})
	if err != nil {
		return nil, 0, err
	}
	return list, len(list), nil
}

func (s *ContentService) UpdateProject(ctx context.Context, id string, upd ProjectUpdate) (*models.Project, error) {
	var project *models.Project

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Projects(tx)

		var err error
		project, err = repo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if upd.SectionID != nil && *upd.SectionID != project.SectionID {
			if _, err := s.repomanager.Sections(tx).GetByID(ctx, *upd.SectionID); err != nil {
				return err
			}
			project.SectionID = *upd.SectionID
		}
		if upd.Slug != nil {
			project.Slug = *upd.Slug
		}

		if upd.SectionID != nil || upd.Slug != nil {
			taken, err := repo.SlugExists(ctx, project.SectionID, project.Slug, project.ID)
			if err != nil {
				return err
			}
			if taken {
				return common.ErrConflict
			}
		}

		if upd.Title != nil {
			project.Title = *upd.Title
		}
		if upd.Subtitle != nil {
			project.Subtitle = upd.Subtitle
		}
		if upd.Description != nil {
			project.Description = upd.Description
		}
		if upd.Content != nil {
			project.Content = upd.Content
		}
		if upd.ThumbnailURL != nil {
			project.ThumbnailURL = upd.ThumbnailURL
		}
		if upd.DisplayOrder != nil {
			project.DisplayOrder = *upd.DisplayOrder
		}
		if upd.IsPublished != nil {
			project.IsPublished = *upd.IsPublished
		}
		if upd.IsFeatured != nil {
			project.IsFeatured = *upd.IsFeatured
		}
		if upd.Tags != nil {
			project.Tags = upd.Tags
		}
		if upd.ExtraData != nil {
			project.ExtraData = upd.ExtraData
		}

		project, err = repo.Update(ctx, project)
		return err
	})

	if err != nil {
		return nil, fmt.Errorf("updating project: %w", err)
	}
	return project, nil
}

// DeleteProject removes a project; its assets are detached, not
// deleted.
func (s *ContentService) DeleteProject(ctx context.Context, id string) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.Assets(tx).DetachByProjectID(ctx, id); err != nil {
			return err
		}
		return s.repomanager.Projects(tx).Delete(ctx, id)
	})

	if err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	return nil
}

// PublishProject marks a project published. The first publish stamps
// published_at; re-publishing keeps the original timestamp.
func (s *ContentService) PublishProject(ctx context.Context, id string) (*models.Project, error) {
	return s.repomanager.Projects(s.db).Publish(ctx, id)
}

// UnpublishProject hides a project but keeps published_at as a
// historical marker.
func (s *ContentService) UnpublishProject(ctx context.Context, id string) (*models.Project, error) {
	return s.repomanager.Projects(s.db).Unpublish(ctx, id)
}

// ReorderProjects assigns each listed project a display order equal to
// its position in the list. Ids that do not resolve are skipped
// without error; projects not listed keep their current order. The
// whole pass runs in one transaction.
func (s *ContentService) ReorderProjects(ctx context.Context, ids []string) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Projects(tx)
		for i, id := range ids {
			if err := repo.SetDisplayOrder(ctx, id, i); err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		return fmt.Errorf("reordering projects: %w", err)
	}
	return nil
}

// AggregateAll builds the public read view: active sections in display
// order, each with its published projects and their assets. Data is
// gathered in three batched queries, never per-row.
func (s *ContentService) AggregateAll(ctx context.Context) ([]models.SectionView, error) {
	sectionList, err := s.repomanager.Sections(s.db).List(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("aggregating content: %w", err)
	}
	return s.assemble(ctx, sectionList)
}

// AggregateSection is AggregateAll restricted to one active section by
// slug. An inactive section's slug resolves to ErrNotFound.
func (s *ContentService) AggregateSection(ctx context.Context, slug string) (*models.SectionView, error) {
	section, err := s.repomanager.Sections(s.db).GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !section.IsActive {
		return nil, common.ErrNotFound
	}

	views, err := s.assemble(ctx, []models.Section{*section})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *ContentService) assemble(ctx context.Context, sectionList []models.Section) ([]models.SectionView, error) {
	sectionIDs := make([]string, 0, len(sectionList))
	for _, sec := range sectionList {
		sectionIDs = append(sectionIDs, sec.ID)
	}

	projectList, err := s.repomanager.Projects(s.db).ListBySectionIDs(ctx, sectionIDs, true)
	if err != nil {
		return nil, fmt.Errorf("aggregating content: %w", err)
	}

	projectIDs := make([]string, 0, len(projectList))
	for _, p := range projectList {
		projectIDs = append(projectIDs, p.ID)
	}

	assetList, err := s.repomanager.Assets(s.db).ListByProjectIDs(ctx, projectIDs)
	if err != nil {
		return nil, fmt.Errorf("aggregating content: %w", err)
	}

	assetsByProject := make(map[string][]models.AssetView)
	for i := range assetList {
		a := &assetList[i]
		if a.ProjectID == nil {
			continue
		}
		assetsByProject[*a.ProjectID] = append(assetsByProject[*a.ProjectID], models.AssetViewOf(a))
	}

	projectsBySection := make(map[string][]models.ProjectView)
	for i := range projectList {
		p := &projectList[i]
		view := models.ProjectViewOf(p)
		if assets, ok := assetsByProject[p.ID]; ok {
			view.Assets = assets
		}
		projectsBySection[p.SectionID] = append(projectsBySection[p.SectionID], view)
	}

	views := make([]models.SectionView, 0, len(sectionList))
	for i := range sectionList {
		sec := &sectionList[i]
		view := models.SectionViewOf(sec)
		if pv, ok := projectsBySection[sec.ID]; ok {
			view.Projects = pv
		}
		views = append(views, view)
	}

	return views, nil
}
