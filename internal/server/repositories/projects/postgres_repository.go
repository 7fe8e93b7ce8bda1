package projects

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/nvoloshin/folio/internal/common"
	"github.com/nvoloshin/folio/internal/dbx"
	"github.com/nvoloshin/folio/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const projectColumns = `id, section_id, slug, title, subtitle, description, content, thumbnail_url,
	display_order, is_published, is_featured, tags, extra_data, created_at, updated_at, published_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*models.Project, error) {
	p := &models.Project{}
	var tags []byte
	err := row.Scan(&p.ID, &p.SectionID, &p.Slug, &p.Title, &p.Subtitle, &p.Description,
		(*[]byte)(&p.Content), &p.ThumbnailURL, &p.DisplayOrder, &p.IsPublished, &p.IsFeatured,
		&tags, (*[]byte)(&p.ExtraData), &p.CreatedAt, &p.UpdatedAt, &p.PublishedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || dbx.IsInvalidTextRepresentation(err) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if tags != nil {
		if err := json.Unmarshal(tags, &p.Tags); err != nil {
			return nil, fmt.Errorf("decoding tags: %w", err)
		}
	}
	return p, nil
}

// marshalTags converts the tag list into its jsonb column form; nil
// stays NULL so absent and empty lists stay distinguishable.
func marshalTags(tags []string) ([]byte, error) {
	if tags == nil {
		return nil, nil
	}
	return json.Marshal(tags)
}

func (r *PostgresRepository) Create(ctx context.Context, project *models.Project) (*models.Project, error) {
	tags, err := marshalTags(project.Tags)
	if err != nil {
		return nil, fmt.Errorf("encoding tags: %w", err)
	}

	query :=
		`INSERT INTO projects (section_id, slug, title, subtitle, description, content, thumbnail_url,
		                       display_order, is_published, is_featured, tags, extra_data)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING id, created_at, updated_at
		 `

	err = r.db.QueryRowContext(ctx, query,
		project.SectionID, project.Slug, project.Title, project.Subtitle, project.Description,
		[]byte(project.Content), project.ThumbnailURL, project.DisplayOrder,
		project.IsPublished, project.IsFeatured, tags, []byte(project.ExtraData)).
		Scan(&project.ID, &project.CreatedAt, &project.UpdatedAt)

	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrConflict
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return project, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`
	return scanProject(r.db.QueryRowContext(ctx, query, id))
}

// filterClause builds the WHERE part shared by List and Count.
func filterClause(filter ListFilter) (string, []any) {
	where := ""
	var args []any
	and := func(cond string) {
		if where == "" {
			where = " WHERE " + cond
		} else {
			where += " AND " + cond
		}
	}

	if filter.SectionID != nil {
		args = append(args, *filter.SectionID)
		and("section_id = $" + strconv.Itoa(len(args)))
	}
	if filter.PublishedOnly {
		and("is_published = true")
	}
	if filter.FeaturedOnly {
		and("is_featured = true")
	}

	return where, args
}

func (r *PostgresRepository) List(ctx context.Context, filter ListFilter) ([]models.Project, error) {
	where, args := filterClause(filter)

	query := `SELECT ` + projectColumns + ` FROM projects` + where +
		` ORDER BY display_order, created_at, id`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	return r.queryProjects(ctx, query, args...)
}

func (r *PostgresRepository) Count(ctx context.Context, filter ListFilter) (int, error) {
	where, args := filterClause(filter)

	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects`+where, args...).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) ListBySectionIDs(ctx context.Context, sectionIDs []string, publishedOnly bool) ([]models.Project, error) {
	if len(sectionIDs) == 0 {
		return nil, nil
	}

	query := `SELECT ` + projectColumns + ` FROM projects WHERE section_id = ANY($1)`
	if publishedOnly {
		query += ` AND is_published = true`
	}
	query += ` ORDER BY section_id, display_order, created_at, id`

	return r.queryProjects(ctx, query, sectionIDs)
}

func (r *PostgresRepository) queryProjects(ctx context.Context, query string, args ...any) ([]models.Project, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) SlugExists(ctx context.Context, sectionID, slug, excludeID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM projects WHERE section_id = $1 AND slug = $2 AND id::text <> $3)`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, sectionID, slug, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) Update(ctx context.Context, project *models.Project) (*models.Project, error) {
	tags, err := marshalTags(project.Tags)
	if err != nil {
		return nil, fmt.Errorf("encoding tags: %w", err)
	}

	query :=
		`UPDATE projects
		 SET section_id = $2, slug = $3, title = $4, subtitle = $5, description = $6, content = $7,
		     thumbnail_url = $8, display_order = $9, is_published = $10, is_featured = $11,
		     tags = $12, extra_data = $13, updated_at = now()
		 WHERE id = $1
		 RETURNING updated_at
		 `

	err = r.db.QueryRowContext(ctx, query,
		project.ID, project.SectionID, project.Slug, project.Title, project.Subtitle,
		project.Description, []byte(project.Content), project.ThumbnailURL, project.DisplayOrder,
		project.IsPublished, project.IsFeatured, tags, []byte(project.ExtraData)).
		Scan(&project.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || dbx.IsInvalidTextRepresentation(err) {
			return nil, common.ErrNotFound
		}
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrConflict
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return project, nil
}

func (r *PostgresRepository) SetDisplayOrder(ctx context.Context, id string, order int) error {
	query := `UPDATE projects SET display_order = $2, updated_at = now() WHERE id = $1`

	// Zero rows affected is not an error here: the reorder operation
	// skips ids that no longer resolve. A malformed id counts as not
	// resolving.
	if _, err := r.db.ExecContext(ctx, query, id, order); err != nil {
		if dbx.IsInvalidTextRepresentation(err) {
			return nil
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Publish(ctx context.Context, id string) (*models.Project, error) {
	// COALESCE keeps the original published_at on re-publish.
	query :=
		`UPDATE projects
		 SET is_published = true, published_at = COALESCE(published_at, now()), updated_at = now()
		 WHERE id = $1
		 RETURNING ` + projectColumns

	return scanProject(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) Unpublish(ctx context.Context, id string) (*models.Project, error) {
	query :=
		`UPDATE projects
		 SET is_published = false, updated_at = now()
		 WHERE id = $1
		 RETURNING ` + projectColumns

	return scanProject(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		if dbx.IsInvalidTextRepresentation(err) {
			return common.ErrNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}
