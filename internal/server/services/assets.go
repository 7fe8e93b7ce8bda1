package services

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nvoloshin/folio/internal/common"
	"github.com/nvoloshin/folio/internal/dbx"
	"github.com/nvoloshin/folio/internal/logging"
	"github.com/nvoloshin/folio/internal/server/config"
	"github.com/nvoloshin/folio/internal/server/models"
	"github.com/nvoloshin/folio/internal/server/repositories/assets"
	"github.com/nvoloshin/folio/internal/server/repositories/repomanager"
	"github.com/nvoloshin/folio/internal/server/storage"
)

// UploadInput describes one incoming file plus its optional metadata.
type UploadInput struct {
	Filename  string
	MimeType  string
	Size      int64
	Body      io.Reader
	ProjectID *string
	AltText   *string
	Caption   *string
}

// AssetUpdate carries a partial metadata update. ProjectID re-links
// the asset; DetachProject clears the link instead.
type AssetUpdate struct {
	ProjectID     *string         `json:"project_id"`
	DetachProject bool            `json:"detach_project"`
	AltText       *string         `json:"alt_text"`
	Caption       *string         `json:"caption"`
	ExtraData     json.RawMessage `json:"extra_data"`
}

type AssetService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	store         storage.ObjectStore
	logger        logging.Logger
	maxUploadSize int64
}

func NewAssetService(db *sql.DB, m repomanager.RepositoryManager, store storage.ObjectStore, cfg *config.Config, logger logging.Logger) *AssetService {
	return &AssetService{
		db:            db,
		repomanager:   m,
		store:         store,
		logger:        logger.With("module", "asset_service"),
		maxUploadSize: cfg.MaxUploadSize,
	}
}

// Upload pushes the file to the object store and records its metadata.
// Only images, video, audio and PDFs are accepted. A failed store call
// surfaces as ErrDependency; a failed metadata insert triggers a
// best-effort cleanup of the just-written object.
func (s *AssetService) Upload(ctx context.Context, in UploadInput) (*models.Asset, error) {
	fileType := models.ClassifyMime(in.MimeType)
	if fileType == models.FileTypeOther {
		return nil, fmt.Errorf("%w: unsupported media type %q", common.ErrValidation, in.MimeType)
	}
	if in.Size <= 0 || in.Size > s.maxUploadSize {
		return nil, fmt.Errorf("%w: file size %d out of bounds", common.ErrValidation, in.Size)
	}

	if in.ProjectID != nil {
		if _, err := s.repomanager.Projects(s.db).GetByID(ctx, *in.ProjectID); err != nil {
			return nil, err
		}
	}

	// Images are buffered so their dimensions and thumbnail can be
	// derived after the original is stored.
	var imageData []byte
	body := in.Body
	if fileType == models.FileTypeImage {
		data, err := io.ReadAll(in.Body)
		if err != nil {
			return nil, fmt.Errorf("reading upload: %w", err)
		}
		imageData = data
		in.Size = int64(len(data))
		body = bytes.NewReader(data)
	}

	key := storage.NewStorageKey(in.Filename, time.Now())

	if err := s.store.Put(ctx, key, body, in.Size, in.MimeType); err != nil {
		s.logger.Error(ctx, "object store upload failed", "key", key, "error", err)
		return nil, common.ErrDependency
	}

	asset := &models.Asset{
		ProjectID:        in.ProjectID,
		Filename:         keyBasename(key),
		OriginalFilename: in.Filename,
		FileType:         fileType,
		MimeType:         in.MimeType,
		FileSize:         in.Size,
		StorageKey:       key,
		StorageBucket:    s.store.Bucket(),
		URL:              s.store.PublicURL(key),
		AltText:          in.AltText,
		Caption:          in.Caption,
	}

	if imageData != nil {
		asset.Width, asset.Height, asset.ThumbnailURL = s.processImage(ctx, key, imageData)
	}

	created, err := s.repomanager.Assets(s.db).Create(ctx, asset)
	if err != nil {
		for _, k := range s.objectKeys(asset) {
			if delErr := s.store.Delete(ctx, k); delErr != nil {
				s.logger.Warn(ctx, "orphaned object left after failed insert", "key", k, "error", delErr)
			}
		}
		return nil, fmt.Errorf("recording asset: %w", err)
	}

	return created, nil
}

func keyBasename(key string) string {
	if i := strings.LastIndexByte(key, '/'); i >= 0 {
		return key[i+1:]
	}
	return key
}

func (s *AssetService) Get(ctx context.Context, id string) (*models.Asset, error) {
	return s.repomanager.Assets(s.db).GetByID(ctx, id)
}

// List returns one page of assets plus the unpaged total.
func (s *AssetService) List(ctx context.Context, filter assets.ListFilter) ([]models.Asset, int, error) {
	repo := s.repomanager.Assets(s.db)

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

// Update edits asset metadata. Re-linking to a project checks the
// target exists first.
func (s *AssetService) Update(ctx context.Context, id string, upd AssetUpdate) (*models.Asset, error) {
	var asset *models.Asset

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Assets(tx)

		var err error
		asset, err = repo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		switch {
		case upd.DetachProject:
			asset.ProjectID = nil
		case upd.ProjectID != nil:
			if _, err := s.repomanager.Projects(tx).GetByID(ctx, *upd.ProjectID); err != nil {
				return err
			}
			asset.ProjectID = upd.ProjectID
		}

		if upd.AltText != nil {
			asset.AltText = upd.AltText
		}
		if upd.Caption != nil {
			asset.Caption = upd.Caption
		}
		if upd.ExtraData != nil {
			asset.ExtraData = upd.ExtraData
		}

		asset, err = repo.Update(ctx, asset)
		return err
	})

	if err != nil {
		return nil, fmt.Errorf("updating asset: %w", err)
	}
	return asset, nil
}

// Delete removes the stored objects best-effort, then the metadata.
// Object-store failures are logged and swallowed so a dead bucket
// cannot make an asset undeletable.
func (s *AssetService) Delete(ctx context.Context, id string) error {
	asset, err := s.repomanager.Assets(s.db).GetByID(ctx, id)
	if err != nil {
		return err
	}

	for _, key := range s.objectKeys(asset) {
		if err := s.store.Delete(ctx, key); err != nil {
			s.logger.Warn(ctx, "object store delete failed", "key", key, "error", err)
		}
	}

	return s.repomanager.Assets(s.db).Delete(ctx, id)
}

// objectKeys lists the store keys belonging to an asset: the original
// plus the thumbnail, when the thumbnail URL maps back into our store.
func (s *AssetService) objectKeys(asset *models.Asset) []string {
	keys := []string{asset.StorageKey}
	if asset.ThumbnailURL != nil {
		prefix := s.store.PublicURL("")
		if rest := strings.TrimPrefix(*asset.ThumbnailURL, prefix); rest != *asset.ThumbnailURL && rest != "" {
			keys = append(keys, rest)
		}
	}
	return keys
}
