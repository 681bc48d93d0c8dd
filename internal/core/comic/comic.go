// Copyright (c) 2026 SkyComic. All rights reserved.

/*
Package comic defines the core domain entities for the SkyComic catalogue.

It manages the lifecycle of comic series including metadata, chapter
assembly, and the dashboard aggregates.

Core Responsibility:

  - Catalogue: Defines publication statuses (Ongoing, Completed, Hiatus).
  - Identity: Every comic carries a canonical 24-hex id plus an optional
    legacy numeric id kept for pre-migration clients.
  - Analytics: View counts in compact notation ("12.5M") feed the stats
    endpoint.

This package acts as the source of truth for all series-level data models.
*/
package comic

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/skycomic/skycomic/internal/core/chapter"
	"github.com/skycomic/skycomic/pkg/compact"
)

// # Domain Enums

// Status represents the publication status of a comic.
//
// Values are capitalised on the wire because the legacy data stores them that way.
type Status string

const (
	// StatusOngoing indicates the series is actively updating.
	StatusOngoing Status = "Ongoing"

	// StatusCompleted indicates no further chapters are expected.
	StatusCompleted Status = "Completed"

	// StatusHiatus indicates the series is paused indefinitely.
	StatusHiatus Status = "Hiatus"
)

// IsValid reports whether s is a recognised [Status] value.
func (s Status) IsValid() bool {
	switch s {
	case StatusOngoing, StatusCompleted, StatusHiatus:
		return true
	}
	return false
}

// # View Counts

// Views is a view count as persisted: either a plain number ("500") or a
// compact-notation string ("12.5M"). Legacy rows mix both forms, so the type
// accepts and re-emits either on the wire.
type Views string

// UnmarshalJSON accepts a JSON number or string.
func (v *Views) UnmarshalJSON(data []byte) error {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		*v = Views(asString)
		return nil
	}

	var asNumber json.Number
	if err := json.Unmarshal(data, &asNumber); err != nil {
		return err
	}
	*v = Views(asNumber.String())
	return nil
}

// MarshalJSON re-emits plain integers as JSON numbers and anything else
// (compact notation) as a string, matching the stored form.
func (v Views) MarshalJSON() ([]byte, error) {
	s := string(v)
	if s == "" {
		return []byte("0"), nil
	}
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return []byte(s), nil
	}
	return json.Marshal(s)
}

// Count parses the stored form into a raw count (unparsable → 0).
func (v Views) Count() int64 {
	return compact.Parse(string(v))
}

// # Core Entities

// Comic is the root aggregate of the SkyComic domain.
// It represents a single series in the catalogue.
type Comic struct {
	// ID is the canonical 24-hex identifier ("_id" on the wire, a name
	// pre-migration clients depend on).
	ID string `json:"_id"`

	// LegacyID is the plain-integer identifier retained for backward-compatible
	// lookup. Assigned max+1 at creation; nil only for rows that predate it.
	LegacyID *int64 `json:"id,omitempty"`

	Title       string `json:"title"`
	Author      string `json:"author,omitempty"`
	Artist      string `json:"artist,omitempty"`
	Status      Status `json:"status,omitempty"`
	Description string `json:"description,omitempty"`

	// CoverURL is either a plain URL or a tagged storage reference ("r2:<key>").
	CoverURL string `json:"cover_url,omitempty"`

	Rating float64 `json:"rating"`
	Views  Views   `json:"views"`

	// Genres are free-text labels. Duplicates are tolerated, not deduplicated.
	Genres []string `json:"genres"`

	// Slug is a URL-safe identifier derived from the title.
	Slug string `json:"slug,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Detail is the fully assembled comic view: the series plus its chapters in
// reading order, each populated with its pages, with every stored image
// reference resolved to a usable URL.
type Detail struct {
	Comic
	Chapters []*chapter.WithPages `json:"chapters"`
}

// Stats holds the dashboard aggregates for the whole catalogue.
type Stats struct {
	TotalComics int `json:"totalComics"`

	// TotalViews is the compact-format sum of every stored views value.
	TotalViews string `json:"totalViews"`
}

// # Partial Updates

// Patch carries a partial-field update. Nil fields are left untouched;
// non-nil fields replace the stored value.
type Patch struct {
	Title       *string   `json:"title"`
	Author      *string   `json:"author"`
	Artist      *string   `json:"artist"`
	Status      *Status   `json:"status"`
	CoverURL    *string   `json:"cover_url"`
	Description *string   `json:"description"`
	Rating      *float64  `json:"rating"`
	Views       *Views    `json:"views"`
	Genres      *[]string `json:"genres"`
	Slug        *string   `json:"slug"`
}

// IsEmpty reports whether the patch carries no field at all.
func (p *Patch) IsEmpty() bool {
	return p.Title == nil && p.Author == nil && p.Artist == nil &&
		p.Status == nil && p.CoverURL == nil && p.Description == nil &&
		p.Rating == nil && p.Views == nil && p.Genres == nil && p.Slug == nil
}

// # Search & Filtering

// Filter holds the parameters for a filtered comic list query.
type Filter struct {
	// Query is a case-insensitive title substring.
	Query string `json:"q,omitempty"`

	// Sort is one of: latest (default), popular, rating, az.
	Sort string `json:"sort,omitempty"`
}

// # Field Identifiers

// Wire-level field names used in validation errors.
const (
	FieldTitle  = "title"
	FieldStatus = "status"
	FieldRating = "rating"
	FieldSlug   = "slug"
)
