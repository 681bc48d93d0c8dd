// Copyright (c) 2026 SkyComic. All rights reserved.

/*
Package chapter manages the reading units of a comic series.

A chapter belongs to exactly one comic and owns an ordered set of pages.
Ordering is numeric on both levels: chapters sort ascending by
chapter_number (fractional numbers such as 10.5 are valid for side
stories), pages sort ascending by page_number starting at 1.
*/
package chapter

import (
	"time"
)

// Chapter is a single reading unit of a comic.
type Chapter struct {
	// ID is the canonical 24-hex identifier ("_id" on the wire).
	ID string `json:"_id"`

	// ComicID is the canonical id of the owning comic. Always the 24-hex
	// form; legacy numeric ids are resolved before a chapter is created.
	ComicID string `json:"comic_id"`

	// ChapterNumber orders chapters within a comic. Fractional values are
	// allowed (extras, omakes).
	ChapterNumber float64 `json:"chapter_number"`

	Title string `json:"title,omitempty"`

	// Date is a free-form display string ("2 days ago"), distinct from
	// CreatedAt which records when the row was inserted.
	Date string `json:"date,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Page is a single image within a chapter.
type Page struct {
	// ID is the canonical 24-hex identifier ("_id" on the wire).
	ID string `json:"_id"`

	ChapterID string `json:"chapter_id"`

	// PageNumber is 1-based and assigned sequentially at upload time.
	PageNumber int `json:"page_number"`

	// ImageURL is either a plain URL or a tagged storage reference
	// ("r2:<key>"). Handlers resolve it to a fetchable URL before responding.
	ImageURL string `json:"image_url"`
}

// WithPages is a chapter assembled with its pages in reading order.
type WithPages struct {
	Chapter
	Pages []*Page `json:"pages"`
}
