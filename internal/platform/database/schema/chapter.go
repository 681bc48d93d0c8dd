// Copyright (c) 2026 SkyComic. All rights reserved.

package schema

// ChapterTable represents the 'chapter' table
type ChapterTable struct {
	Table         string
	ID            string
	ComicID       string
	ChapterNumber string
	Title         string
	Date          string
	CreatedAt     string
}

// Chapter is the schema definition for chapter
var Chapter = ChapterTable{
	Table:         "chapter",
	ID:            "id",
	ComicID:       "comic_id",
	ChapterNumber: "chapter_number",
	Title:         "title",
	Date:          "date",
	CreatedAt:     "created_at",
}

func (t ChapterTable) Columns() []string {
	return []string{t.ID, t.ComicID, t.ChapterNumber, t.Title, t.Date, t.CreatedAt}
}
