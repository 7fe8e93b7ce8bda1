package models

import (
	"encoding/json"
	"time"
)

// Project is a portfolio entry inside a section. Slug is unique within
// its section, not globally. Content and ExtraData are opaque JSON
// documents owned by the frontend.
//
// PublishedAt is stamped on the first publish only and survives
// unpublish as a historical marker.
type Project struct {
	ID           string          `json:"id"`
	SectionID    string          `json:"section_id"`
	Slug         string          `json:"slug"`
	Title        string          `json:"title"`
	Subtitle     *string         `json:"subtitle,omitempty"`
	Description  *string         `json:"description,omitempty"`
	Content      json.RawMessage `json:"content,omitempty"`
	ThumbnailURL *string         `json:"thumbnail_url,omitempty"`
	DisplayOrder int             `json:"display_order"`
	IsPublished  bool            `json:"is_published"`
	IsFeatured   bool            `json:"is_featured"`
	Tags         []string        `json:"tags,omitempty"`
	ExtraData    json.RawMessage `json:"extra_data,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	PublishedAt  *time.Time      `json:"published_at,omitempty"`
}
