// Copyright (c) 2026 SkyComic. All rights reserved.

package schema

// PagesTable represents the 'pages' table
type PagesTable struct {
	Table      string
	ID         string
	ChapterID  string
	PageNumber string
	ImageURL   string
}

// Pages is the schema definition for pages
var Pages = PagesTable{
	Table:      "pages",
	ID:         "id",
	ChapterID:  "chapter_id",
	PageNumber: "page_number",
	ImageURL:   "image_url",
}

func (t PagesTable) Columns() []string {
	return []string{t.ID, t.ChapterID, t.PageNumber, t.ImageURL}
}
