package sections

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

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

const sectionColumns = `id, slug, title, description, display_order, is_active, created_at, updated_at`

func scanSection(row *sql.Row) (*models.Section, error) {
	s := &models.Section{}
	err := row.Scan(&s.ID, &s.Slug, &s.Title, &s.Description,
		&s.DisplayOrder, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || dbx.IsInvalidTextRepresentation(err) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

func (r *PostgresRepository) Create(ctx context.Context, section *models.Section) (*models.Section, error) {
	query :=
		`INSERT INTO sections (slug, title, description, display_order, is_active)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		section.Slug, section.Title, section.Description, section.DisplayOrder, section.IsActive).
		Scan(&section.ID, &section.CreatedAt, &section.UpdatedAt)

	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrConflict
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return section, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Section, error) {
	query := `SELECT ` + sectionColumns + ` FROM sections WHERE id = $1`
	return scanSection(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) GetBySlug(ctx context.Context, slug string) (*models.Section, error) {
	query := `SELECT ` + sectionColumns + ` FROM sections WHERE slug = $1`
	return scanSection(r.db.QueryRowContext(ctx, query, slug))
}

func (r *PostgresRepository) List(ctx context.Context, includeInactive bool) ([]models.Section, error) {
	query := `SELECT ` + sectionColumns + ` FROM sections`
	if !includeInactive {
		query += ` WHERE is_active = true`
	}
	// display_order ties are broken by creation time then id so the
	// public ordering does not depend on storage retrieval order.
	query += ` ORDER BY display_order, created_at, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.Section
	for rows.Next() {
		var s models.Section
		if err := rows.Scan(&s.ID, &s.Slug, &s.Title, &s.Description,
			&s.DisplayOrder, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, section *models.Section) (*models.Section, error) {
	query :=
		`UPDATE sections
		 SET slug = $2, title = $3, description = $4, display_order = $5, is_active = $6, updated_at = now()
		 WHERE id = $1
		 RETURNING updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		section.ID, section.Slug, section.Title, section.Description,
		section.DisplayOrder, section.IsActive).
		Scan(&section.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || dbx.IsInvalidTextRepresentation(err) {
			return nil, common.ErrNotFound
		}
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrConflict
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return section, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sections WHERE id = $1`, id)
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
