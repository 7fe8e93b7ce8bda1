package assets

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nvoloshin/folio/internal/common"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func assetRows(t *testing.T) *sqlmock.Rows {
	t.Helper()
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "project_id", "filename", "original_filename", "file_type", "mime_type",
		"file_size", "storage_key", "storage_bucket", "url", "thumbnail_url",
		"width", "height", "duration", "alt_text", "caption", "extra_data",
		"created_at", "updated_at",
	}).AddRow("a-1", nil, "x.jpg", "Photo.JPG", "image", "image/jpeg",
		int64(1024), "assets/2026/01/01/abc.jpg", "b", "https://cdn/x.jpg", nil,
		nil, nil, nil, nil, nil, nil, now, now)
}

func TestGetByID_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`^SELECT\s+id,\s*project_id`).
		WithArgs("a-1").
		WillReturnRows(assetRows(t))

	got, err := repo.GetByID(context.Background(), "a-1")
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if got.StorageKey != "assets/2026/01/01/abc.jpg" || got.ProjectID != nil {
		t.Fatalf("unexpected asset: %+v", got)
	}
}

func TestGetByID_MalformedIDIsNotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`^SELECT\s+id,\s*project_id`).
		WithArgs("not-a-uuid").
		WillReturnError(&pgconn.PgError{Code: "22P02"})

	_, err := repo.GetByID(context.Background(), "not-a-uuid")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

// Media-library listings page newest first.
func TestList_FilterAndOrder(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	projectID := "p-1"
	mock.ExpectQuery(`(?s)WHERE\s+project_id\s*=\s*\$1\s+AND\s+file_type\s*=\s*\$2\s+ORDER\s+BY\s+created_at\s+DESC,\s*id\s+LIMIT\s+\$3`).
		WithArgs("p-1", "image", 25).
		WillReturnRows(assetRows(t))

	got, err := repo.List(context.Background(), ListFilter{
		ProjectID: &projectID,
		FileType:  "image",
		Limit:     25,
	})
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("want one asset, got %d", len(got))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestDetachByProjectID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`^UPDATE\s+assets\s+SET\s+project_id\s*=\s*NULL`).
		WithArgs("p-1").
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.DetachByProjectID(context.Background(), "p-1")
	if err != nil {
		t.Fatalf("DetachByProjectID error: %v", err)
	}
	if n != 3 {
		t.Fatalf("want 3 detached, got %d", n)
	}
}

// The section-wide detach goes through a subquery over projects.
func TestDetachBySectionID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^UPDATE\s+assets\s+SET\s+project_id\s*=\s*NULL.*WHERE\s+project_id\s+IN\s+\(SELECT\s+id\s+FROM\s+projects\s+WHERE\s+section_id\s*=\s*\$1\)`).
		WithArgs("s-1").
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := repo.DetachBySectionID(context.Background(), "s-1")
	if err != nil {
		t.Fatalf("DetachBySectionID error: %v", err)
	}
	if n != 2 {
		t.Fatalf("want 2 detached, got %d", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestDelete_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`^DELETE\s+FROM\s+assets`).
		WithArgs("ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "ghost")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}
