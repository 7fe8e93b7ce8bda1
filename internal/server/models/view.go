package models

import (
	"bytes"
	"encoding/json"
	"time"
)

// Read-only projections served by the public content endpoints. Only
// whitelisted fields cross this boundary: storage bucket/key and
// publish flags never leave the backend.

// ContentMap marshals sections as a JSON object keyed by section
// slug. Marshalling by hand keeps the sections in display order,
// which a Go map would lose.
type ContentMap []SectionView

func (m ContentMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, s := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(s.Slug)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(s)
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

type SectionView struct {
	ID          string        `json:"id"`
	Slug        string        `json:"slug"`
	Title       string        `json:"title"`
	Description *string       `json:"description,omitempty"`
	Projects    []ProjectView `json:"projects"`
}

type ProjectView struct {
	ID           string          `json:"id"`
	Slug         string          `json:"slug"`
	Title        string          `json:"title"`
	Subtitle     *string         `json:"subtitle,omitempty"`
	Description  *string         `json:"description,omitempty"`
	Content      json.RawMessage `json:"content,omitempty"`
	ThumbnailURL *string         `json:"thumbnail_url,omitempty"`
	IsFeatured   bool            `json:"is_featured"`
	Tags         []string        `json:"tags"`
	ExtraData    json.RawMessage `json:"extra_data,omitempty"`
	PublishedAt  *time.Time      `json:"published_at,omitempty"`
	Assets       []AssetView     `json:"assets"`
}

type AssetView struct {
	ID           string  `json:"id"`
	Filename     string  `json:"filename"`
	FileType     string  `json:"file_type"`
	URL          string  `json:"url"`
	ThumbnailURL *string `json:"thumbnail_url,omitempty"`
	Width        *int    `json:"width,omitempty"`
	Height       *int    `json:"height,omitempty"`
	Duration     *int    `json:"duration,omitempty"`
	AltText      *string `json:"alt_text,omitempty"`
	Caption      *string `json:"caption,omitempty"`
}

// SectionViewOf builds the public projection of a section without its
// projects; the aggregator fills those in.
func SectionViewOf(s *Section) SectionView {
	return SectionView{
		ID:          s.ID,
		Slug:        s.Slug,
		Title:       s.Title,
		Description: s.Description,
		Projects:    []ProjectView{},
	}
}

// ProjectViewOf builds the public projection of a published project.
func ProjectViewOf(p *Project) ProjectView {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return ProjectView{
		ID:           p.ID,
		Slug:         p.Slug,
		Title:        p.Title,
		Subtitle:     p.Subtitle,
		Description:  p.Description,
		Content:      p.Content,
		ThumbnailURL: p.ThumbnailURL,
		IsFeatured:   p.IsFeatured,
		Tags:         tags,
		ExtraData:    p.ExtraData,
		PublishedAt:  p.PublishedAt,
		Assets:       []AssetView{},
	}
}

// AssetViewOf builds the public projection of an asset, omitting the
// object-store coordinates.
func AssetViewOf(a *Asset) AssetView {
	return AssetView{
		ID:           a.ID,
		Filename:     a.Filename,
		FileType:     a.FileType,
		URL:          a.URL,
		ThumbnailURL: a.ThumbnailURL,
		Width:        a.Width,
		Height:       a.Height,
		Duration:     a.Duration,
		AltText:      a.AltText,
		Caption:      a.Caption,
	}
}
