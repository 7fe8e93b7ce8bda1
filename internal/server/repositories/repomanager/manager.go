package repomanager

import (
	"context"
	"database/sql"

	"github.com/nvoloshin/folio/internal/dbx"
	"github.com/nvoloshin/folio/internal/server/repositories/assets"
	"github.com/nvoloshin/folio/internal/server/repositories/projects"
	"github.com/nvoloshin/folio/internal/server/repositories/sections"
	"github.com/nvoloshin/folio/internal/server/repositories/users"
)

// RepositoryManager vends repository implementations bound to a DBTX,
// which lets services run several repositories inside one transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Sections(db dbx.DBTX) sections.Repository
	Projects(db dbx.DBTX) projects.Repository
	Assets(db dbx.DBTX) assets.Repository
}
