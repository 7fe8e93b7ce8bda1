package services

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/nvoloshin/folio/internal/common"
	"github.com/nvoloshin/folio/internal/dbx"
	"github.com/nvoloshin/folio/internal/logging"
	"github.com/nvoloshin/folio/internal/server/models"
	assetsrepo "github.com/nvoloshin/folio/internal/server/repositories/assets"
	projectsrepo "github.com/nvoloshin/folio/internal/server/repositories/projects"
	sectionsrepo "github.com/nvoloshin/folio/internal/server/repositories/sections"
	usersrepo "github.com/nvoloshin/folio/internal/server/repositories/users"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

type nopLogger struct{}

func (nopLogger) Debug(context.Context, string, ...any) {}
func (nopLogger) Info(context.Context, string, ...any)  {}
func (nopLogger) Warn(context.Context, string, ...any)  {}
func (nopLogger) Error(context.Context, string, ...any) {}
func (l nopLogger) With(...any) logging.Logger          { return l }

// fakeStore is an in-memory double of the whole relational store. The
// per-entity fake repositories below share it so cross-entity rules
// (cascade, detach) behave like the real schema.
type fakeStore struct {
	users    []*models.User
	sections []models.Section
	projects []models.Project
	assets   []models.Asset

	seq    int
	now    time.Time
	errAll error // when set, every call fails with it
}

func newFakeStore() *fakeStore {
	return &fakeStore{now: time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)}
}

func (s *fakeStore) nextID() string {
	s.seq++
	return fmt.Sprintf("id-%03d", s.seq)
}

func (s *fakeStore) tick() time.Time {
	s.now = s.now.Add(time.Second)
	return s.now
}

func orderProjects(list []models.Project) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if a.DisplayOrder != b.DisplayOrder {
			return a.DisplayOrder < b.DisplayOrder
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

// --- users ---

type fakeUsersRepo struct{ s *fakeStore }

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.s.errAll != nil {
		return nil, f.s.errAll
	}
	for _, existing := range f.s.users {
		if existing.Email == u.Email {
			return nil, common.ErrConflict
		}
	}
	u.ID = f.s.nextID()
	u.CreatedAt = f.s.tick()
	f.s.users = append(f.s.users, u)
	return u, nil
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.s.errAll != nil {
		return nil, f.s.errAll
	}
	for _, u := range f.s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	if f.s.errAll != nil {
		return nil, f.s.errAll
	}
	for _, u := range f.s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeUsersRepo) UpdateLastLogin(ctx context.Context, id string, when time.Time) error {
	if f.s.errAll != nil {
		return f.s.errAll
	}
	for _, u := range f.s.users {
		if u.ID == id {
			u.LastLogin = &when
			return nil
		}
	}
	return common.ErrNotFound
}

func (f *fakeUsersRepo) UpdatePassword(ctx context.Context, id string, hash string) error {
	if f.s.errAll != nil {
		return f.s.errAll
	}
	for _, u := range f.s.users {
		if u.ID == id {
			u.PasswordHash = hash
			return nil
		}
	}
	return common.ErrNotFound
}

// --- sections ---

type fakeSectionsRepo struct{ s *fakeStore }

func (f *fakeSectionsRepo) Create(ctx context.Context, sec *models.Section) (*models.Section, error) {
	if f.s.errAll != nil {
		return nil, f.s.errAll
	}
	for _, existing := range f.s.sections {
		if existing.Slug == sec.Slug {
			return nil, common.ErrConflict
		}
	}
	sec.ID = f.s.nextID()
	sec.CreatedAt = f.s.tick()
	sec.UpdatedAt = sec.CreatedAt
	f.s.sections = append(f.s.sections, *sec)
	return sec, nil
}

func (f *fakeSectionsRepo) GetByID(ctx context.Context, id string) (*models.Section, error) {
	if f.s.errAll != nil {
		return nil, f.s.errAll
	}
	for i := range f.s.sections {
		if f.s.sections[i].ID == id {
			sec := f.s.sections[i]
			return &sec, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeSectionsRepo) GetBySlug(ctx context.Context, slug string) (*models.Section, error) {
	if f.s.errAll != nil {
		return nil, f.s.errAll
	}
	for i := range f.s.sections {
		if f.s.sections[i].Slug == slug {
			sec := f.s.sections[i]
			return &sec, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeSectionsRepo) List(ctx context.Context, includeInactive bool) ([]models.Section, error) {
	if f.s.errAll != nil {
		return nil, f.s.errAll
	}
	var out []models.Section
	for _, sec := range f.s.sections {
		if includeInactive || sec.IsActive {
			out = append(out, sec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.DisplayOrder != b.DisplayOrder {
			return a.DisplayOrder < b.DisplayOrder
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return out, nil
}

func (f *fakeSectionsRepo) Update(ctx context.Context, sec *models.Section) (*models.Section, error) {
	if f.s.errAll != nil {
		return nil, f.s.errAll
	}
	for _, existing := range f.s.sections {
		if existing.Slug == sec.Slug && existing.ID != sec.ID {
			return nil, common.ErrConflict
		}
	}
	for i := range f.s.sections {
		if f.s.sections[i].ID == sec.ID {
			sec.UpdatedAt = f.s.tick()
			f.s.sections[i] = *sec
			return sec, nil
		}
	}
	return nil, common.ErrNotFound
}

// Delete removes the section and, like the schema cascade, its
// projects.
func (f *fakeSectionsRepo) Delete(ctx context.Context, id string) error {
	if f.s.errAll != nil {
		return f.s.errAll
	}
	found := false
	kept := f.s.sections[:0]
	for _, sec := range f.s.sections {
		if sec.ID == id {
			found = true
			continue
		}
		kept = append(kept, sec)
	}
	f.s.sections = kept
	if !found {
		return common.ErrNotFound
	}

	keptProjects := f.s.projects[:0]
	for _, p := range f.s.projects {
		if p.SectionID != id {
			keptProjects = append(keptProjects, p)
		}
	}
	f.s.projects = keptProjects
	return nil
}

// --- projects ---

type fakeProjectsRepo struct{ s *fakeStore }

func (f *fakeProjectsRepo) Create(ctx context.Context, p *models.Project) (*models.Project, error) {
	if f.s.errAll != nil {
		return nil, f.s.errAll
	}
	for _, existing := range f.s.projects {
		if existing.SectionID == p.SectionID && existing.Slug == p.Slug {
			return nil, common.ErrConflict
		}
	}
	p.ID = f.s.nextID()
	p.CreatedAt = f.s.tick()
	p.UpdatedAt = p.CreatedAt
	f.s.projects = append(f.s.projects, *p)
	return p, nil
}

func (f *fakeProjectsRepo) GetByID(ctx context.Context, id string) (*models.Project, error) {
	if f.s.errAll != nil {
		return nil, f.s.errAll
	}
	for i := range f.s.projects {
		if f.s.projects[i].ID == id {
			p := f.s.projects[i]
			return &p, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeProjectsRepo) List(ctx context.Context, filter projectsrepo.ListFilter) ([]models.Project, error) {
	if f.s.errAll != nil {
		return nil, f.s.errAll
	}
	var out []models.Project
	for _, p := range f.s.projects {
		if filter.SectionID != nil && p.SectionID != *filter.SectionID {
			continue
		}
		if filter.PublishedOnly && !p.IsPublished {
			continue
		}
		if filter.FeaturedOnly && !p.IsFeatured {
			continue
		}
		out = append(out, p)
	}
	orderProjects(out)
	return out, nil
}

func (f *fakeProjectsRepo) Count(ctx context.Context, filter projectsrepo.ListFilter) (int, error) {
	list, err := f.List(ctx, filter)
	return len(list), err
}

func (f *fakeProjectsRepo) ListBySectionIDs(ctx context.Context, sectionIDs []string, publishedOnly bool) ([]models.Project, error) {
	if f.s.errAll != nil {
		return nil, f.s.errAll
	}
	wanted := make(map[string]bool, len(sectionIDs))
	for _, id := range sectionIDs {
		wanted[id] = true
	}
	var out []models.Project
	for _, p := range f.s.projects {
		if !wanted[p.SectionID] {
			continue
		}
		if publishedOnly && !p.IsPublished {
			continue
		}
		out = append(out, p)
	}
	orderProjects(out)
	return out, nil
}

func (f *fakeProjectsRepo) SlugExists(ctx context.Context, sectionID, slug, excludeID string) (bool, error) {
	if f.s.errAll != nil {
		return false, f.s.errAll
	}
	for _, p := range f.s.projects {
		if p.SectionID == sectionID && p.Slug == slug && p.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeProjectsRepo) Update(ctx context.Context, p *models.Project) (*models.Project, error) {
	if f.s.errAll != nil {
		return nil, f.s.errAll
	}
	for i := range f.s.projects {
		if f.s.projects[i].ID == p.ID {
			p.UpdatedAt = f.s.tick()
			f.s.projects[i] = *p
			return p, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeProjectsRepo) SetDisplayOrder(ctx context.Context, id string, order int) error {
	if f.s.errAll != nil {
		return f.s.errAll
	}
	for i := range f.s.projects {
		if f.s.projects[i].ID == id {
			f.s.projects[i].DisplayOrder = order
		}
	}
	return nil
}

func (f *fakeProjectsRepo) Publish(ctx context.Context, id string) (*models.Project, error) {
	if f.s.errAll != nil {
		return nil, f.s.errAll
	}
	for i := range f.s.projects {
		if f.s.projects[i].ID == id {
			f.s.projects[i].IsPublished = true
			if f.s.projects[i].PublishedAt == nil {
				when := f.s.tick()
				f.s.projects[i].PublishedAt = &when
			}
			p := f.s.projects[i]
			return &p, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeProjectsRepo) Unpublish(ctx context.Context, id string) (*models.Project, error) {
	if f.s.errAll != nil {
		return nil, f.s.errAll
	}
	for i := range f.s.projects {
		if f.s.projects[i].ID == id {
			f.s.projects[i].IsPublished = false
			p := f.s.projects[i]
			return &p, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeProjectsRepo) Delete(ctx context.Context, id string) error {
	if f.s.errAll != nil {
		return f.s.errAll
	}
	kept := f.s.projects[:0]
	found := false
	for _, p := range f.s.projects {
		if p.ID == id {
			found = true
			continue
		}
		kept = append(kept, p)
	}
	f.s.projects = kept
	if !found {
		return common.ErrNotFound
	}
	return nil
}

// --- assets ---

type fakeAssetsRepo struct{ s *fakeStore }

func (f *fakeAssetsRepo) Create(ctx context.Context, a *models.Asset) (*models.Asset, error) {
	if f.s.errAll != nil {
		return nil, f.s.errAll
	}
	a.ID = f.s.nextID()
	a.CreatedAt = f.s.tick()
	a.UpdatedAt = a.CreatedAt
	f.s.assets = append(f.s.assets, *a)
	return a, nil
}

func (f *fakeAssetsRepo) GetByID(ctx context.Context, id string) (*models.Asset, error) {
	if f.s.errAll != nil {
		return nil, f.s.errAll
	}
	for i := range f.s.assets {
		if f.s.assets[i].ID == id {
			a := f.s.assets[i]
			return &a, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeAssetsRepo) List(ctx context.Context, filter assetsrepo.ListFilter) ([]models.Asset, error) {
	if f.s.errAll != nil {
		return nil, f.s.errAll
	}
	var out []models.Asset
	for _, a := range f.s.assets {
		if filter.ProjectID != nil && (a.ProjectID == nil || *a.ProjectID != *filter.ProjectID) {
			continue
		}
		if filter.FileType != "" && a.FileType != filter.FileType {
			continue
		}
		out = append(out, a)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (f *fakeAssetsRepo) Count(ctx context.Context, filter assetsrepo.ListFilter) (int, error) {
	list, err := f.List(ctx, filter)
	return len(list), err
}

func (f *fakeAssetsRepo) ListByProjectIDs(ctx context.Context, projectIDs []string) ([]models.Asset, error) {
	if f.s.errAll != nil {
		return nil, f.s.errAll
	}
	wanted := make(map[string]bool, len(projectIDs))
	for _, id := range projectIDs {
		wanted[id] = true
	}
	var out []models.Asset
	for _, a := range f.s.assets {
		if a.ProjectID != nil && wanted[*a.ProjectID] {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAssetsRepo) Update(ctx context.Context, a *models.Asset) (*models.Asset, error) {
	if f.s.errAll != nil {
		return nil, f.s.errAll
	}
	for i := range f.s.assets {
		if f.s.assets[i].ID == a.ID {
			a.UpdatedAt = f.s.tick()
			f.s.assets[i] = *a
			return a, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeAssetsRepo) Delete(ctx context.Context, id string) error {
	if f.s.errAll != nil {
		return f.s.errAll
	}
	kept := f.s.assets[:0]
	found := false
	for _, a := range f.s.assets {
		if a.ID == id {
			found = true
			continue
		}
		kept = append(kept, a)
	}
	f.s.assets = kept
	if !found {
		return common.ErrNotFound
	}
	return nil
}

func (f *fakeAssetsRepo) DetachByProjectID(ctx context.Context, projectID string) (int, error) {
	if f.s.errAll != nil {
		return 0, f.s.errAll
	}
	n := 0
	for i := range f.s.assets {
		if f.s.assets[i].ProjectID != nil && *f.s.assets[i].ProjectID == projectID {
			f.s.assets[i].ProjectID = nil
			n++
		}
	}
	return n, nil
}

func (f *fakeAssetsRepo) DetachBySectionID(ctx context.Context, sectionID string) (int, error) {
	if f.s.errAll != nil {
		return 0, f.s.errAll
	}
	inSection := make(map[string]bool)
	for _, p := range f.s.projects {
		if p.SectionID == sectionID {
			inSection[p.ID] = true
		}
	}
	n := 0
	for i := range f.s.assets {
		if f.s.assets[i].ProjectID != nil && inSection[*f.s.assets[i].ProjectID] {
			f.s.assets[i].ProjectID = nil
			n++
		}
	}
	return n, nil
}

// --- manager ---

type fakeRepoManager struct{ s *fakeStore }

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{s: newFakeStore()}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository      { return &fakeUsersRepo{s: m.s} }
func (m *fakeRepoManager) Sections(db dbx.DBTX) sectionsrepo.Repository {
	return &fakeSectionsRepo{s: m.s}
}
func (m *fakeRepoManager) Projects(db dbx.DBTX) projectsrepo.Repository {
	return &fakeProjectsRepo{s: m.s}
}
func (m *fakeRepoManager) Assets(db dbx.DBTX) assetsrepo.Repository { return &fakeAssetsRepo{s: m.s} }
