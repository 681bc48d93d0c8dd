// Copyright (c) 2026 SkyComic. All rights reserved.

package schema

// UploadsTable represents the 'uploads' table
type UploadsTable struct {
	Table      string
	ID         string
	Key        string
	Type       string
	ComicID    string
	ChapterID  string
	PageNumber string
	CreatedAt  string
}

// Uploads is the schema definition for uploads
var Uploads = UploadsTable{
	Table:      "uploads",
	ID:         "id",
	Key:        "key",
	Type:       "type",
	ComicID:    "comic_id",
	ChapterID:  "chapter_id",
	PageNumber: "page_number",
	CreatedAt:  "created_at",
}

func (t UploadsTable) Columns() []string {
	return []string{t.ID, t.Key, t.Type, t.ComicID, t.ChapterID, t.PageNumber, t.CreatedAt}
}
