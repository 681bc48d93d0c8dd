// Copyright (c) 2026 SkyComic. All rights reserved.

// Package schema centralizes the physical table and column names used by the
// PostgreSQL repositories. Table names are fixed by the pre-migration data
// layout (comic, chapter, pages, uploads) and must not drift.
package schema

// ComicTable represents the 'comic' table
type ComicTable struct {
	Table       string
	ID          string
	LegacyID    string
	Title       string
	Author      string
	Artist      string
	Status      string
	CoverURL    string
	Description string
	Rating      string
	Views       string
	Genres      string
	Slug        string
	CreatedAt   string
}

// Comic is the schema definition for comic
var Comic = ComicTable{
	Table:       "comic",
	ID:          "id",
	LegacyID:    "legacy_id",
	Title:       "title",
	Author:      "author",
	Artist:      "artist",
	Status:      "status",
	CoverURL:    "cover_url",
	Description: "description",
	Rating:      "rating",
	Views:       "views",
	Genres:      "genres",
	Slug:        "slug",
	CreatedAt:   "created_at",
}

func (t ComicTable) Columns() []string {
	return []string{
		t.ID, t.LegacyID, t.Title, t.Author, t.Artist, t.Status,
		t.CoverURL, t.Description, t.Rating, t.Views, t.Genres, t.Slug, t.CreatedAt,
	}
}
