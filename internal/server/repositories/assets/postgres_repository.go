package assets

import (
	"context"
	"database/sql"
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

const assetColumns = `id, project_id, filename, original_filename, file_type, mime_type, file_size,
	storage_key, storage_bucket, url, thumbnail_url, width, height, duration,
	alt_text, caption, extra_data, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAsset(row rowScanner) (*models.Asset, error) {
	a := &models.Asset{}
	err := row.Scan(&a.ID, &a.ProjectID, &a.Filename, &a.OriginalFilename, &a.FileType,
		&a.MimeType, &a.FileSize, &a.StorageKey, &a.StorageBucket, &a.URL,
		&a.ThumbnailURL, &a.Width, &a.Height, &a.Duration,
		&a.AltText, &a.Caption, (*[]byte)(&a.ExtraData), &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || dbx.IsInvalidTextRepresentation(err) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) Create(ctx context.Context, asset *models.Asset) (*models.Asset, error) {
	query :=
		`INSERT INTO assets (project_id, filename, original_filename, file_type, mime_type, file_size,
		                     storage_key, storage_bucket, url, thumbnail_url, width, height, duration,
		                     alt_text, caption, extra_data)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		 RETURNING id, created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		asset.ProjectID, asset.Filename, asset.OriginalFilename, asset.FileType,
		asset.MimeType, asset.FileSize, asset.StorageKey, asset.StorageBucket,
		asset.URL, asset.ThumbnailURL, asset.Width, asset.Height, asset.Duration,
		asset.AltText, asset.Caption, []byte(asset.ExtraData)).
		Scan(&asset.ID, &asset.CreatedAt, &asset.UpdatedAt)

	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrConflict
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return asset, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets WHERE id = $1`
	return scanAsset(r.db.QueryRowContext(ctx, query, id))
}

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

	if filter.ProjectID != nil {
		args = append(args, *filter.ProjectID)
		and("project_id = $" + strconv.Itoa(len(args)))
	}
	if filter.FileType != "" {
		args = append(args, filter.FileType)
		and("file_type = $" + strconv.Itoa(len(args)))
	}

	return where, args
}

func (r *PostgresRepository) List(ctx context.Context, filter ListFilter) ([]models.Asset, error) {
	where, args := filterClause(filter)

	// Newest first: the media library surfaces fresh uploads on top.
	query := `SELECT ` + assetColumns + ` FROM assets` + where + ` ORDER BY created_at DESC, id`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	return r.queryAssets(ctx, query, args...)
}

func (r *PostgresRepository) Count(ctx context.Context, filter ListFilter) (int, error) {
	where, args := filterClause(filter)

	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM assets`+where, args...).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) ListByProjectIDs(ctx context.Context, projectIDs []string) ([]models.Asset, error) {
	if len(projectIDs) == 0 {
		return nil, nil
	}

	query := `SELECT ` + assetColumns + ` FROM assets WHERE project_id = ANY($1)
		 ORDER BY project_id, created_at, id`

	return r.queryAssets(ctx, query, projectIDs)
}

func (r *PostgresRepository) queryAssets(ctx context.Context, query string, args ...any) ([]models.Asset, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, asset *models.Asset) (*models.Asset, error) {
	query :=
		`UPDATE assets
		 SET project_id = $2, thumbnail_url = $3, alt_text = $4, caption = $5,
		     extra_data = $6, updated_at = now()
		 WHERE id = $1
		 RETURNING updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		asset.ID, asset.ProjectID, asset.ThumbnailURL, asset.AltText, asset.Caption,
		[]byte(asset.ExtraData)).
		Scan(&asset.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || dbx.IsInvalidTextRepresentation(err) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return asset, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM assets WHERE id = $1`, id)
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

func (r *PostgresRepository) DetachByProjectID(ctx context.Context, projectID string) (int, error) {
	query := `UPDATE assets SET project_id = NULL, updated_at = now() WHERE project_id = $1`

	res, err := r.db.ExecContext(ctx, query, projectID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return int(n), nil
}

func (r *PostgresRepository) DetachBySectionID(ctx context.Context, sectionID string) (int, error) {
	query :=
		`UPDATE assets SET project_id = NULL, updated_at = now()
		 WHERE project_id IN (SELECT id FROM projects WHERE section_id = $1)`

	res, err := r.db.ExecContext(ctx, query, sectionID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return int(n), nil
}
