package models

import (
	"encoding/json"
	"strings"
	"time"
)

// Coarse asset classifications derived from the MIME type.
const (
	FileTypeImage    = "image"
	FileTypeVideo    = "video"
	FileTypeAudio    = "audio"
	FileTypeDocument = "document"
	FileTypeOther    = "other"
)

// Asset is an uploaded media file. The binary lives in the object
// store under StorageKey; the row holds metadata and the public
// delivery URL. ProjectID is optional: deleting or reassigning a
// project detaches its assets instead of deleting them.
type Asset struct {
	ID               string          `json:"id"`
	ProjectID        *string         `json:"project_id,omitempty"`
	Filename         string          `json:"filename"`
	OriginalFilename string          `json:"original_filename"`
	FileType         string          `json:"file_type"`
	MimeType         string          `json:"mime_type"`
	FileSize         int64           `json:"file_size"`
	StorageKey       string          `json:"storage_key"`
	StorageBucket    string          `json:"storage_bucket"`
	URL              string          `json:"url"`
	ThumbnailURL     *string         `json:"thumbnail_url,omitempty"`
	Width            *int            `json:"width,omitempty"`
	Height           *int            `json:"height,omitempty"`
	Duration         *int            `json:"duration,omitempty"`
	AltText          *string         `json:"alt_text,omitempty"`
	Caption          *string         `json:"caption,omitempty"`
	ExtraData        json.RawMessage `json:"extra_data,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// ClassifyMime maps a MIME type onto the coarse file-type buckets used
// for filtering in the media library.
func ClassifyMime(mimeType string) string {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return FileTypeImage
	case strings.HasPrefix(mimeType, "video/"):
		return FileTypeVideo
	case strings.HasPrefix(mimeType, "audio/"):
		return FileTypeAudio
	case mimeType == "application/pdf":
		return FileTypeDocument
	default:
		return FileTypeOther
	}
}
