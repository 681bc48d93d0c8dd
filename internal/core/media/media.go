// Copyright (c) 2026 SkyComic. All rights reserved.

/*
Package media handles image ingestion for the catalogue.

It proxies multipart uploads into Cloudflare R2, records every stored object
in the uploads ledger, and exposes signed-URL resolution for clients that
hold a raw storage key.

Object Key Layout:

  - Covers: covers/<comic-ref>/<unix-millis>.<ext>
  - Pages:  chapters/<chapter-id>/<page-number>.<ext>

Stored references keep the "r2:" tag so readers can tell keys from the plain
URLs that predate object storage.
*/
package media

import (
	"time"
)

// Type discriminates what an uploaded object is used for.
type Type string

const (
	// TypeCover marks a comic cover image.
	TypeCover Type = "cover"

	// TypePage marks a chapter page image.
	TypePage Type = "page"
)

// Upload is one entry in the uploads ledger. Every object written to storage
// gets a row, keyed by its tagged reference, so objects stay traceable even
// after the comic or chapter that used them is gone.
type Upload struct {
	// ID is the canonical 24-hex identifier ("_id" on the wire).
	ID string `json:"_id"`

	// Key is the tagged storage reference ("r2:<key>").
	Key string `json:"key"`

	Type Type `json:"type"`

	// ComicID is always set: covers reference the comic directly, pages
	// reference the comic that owns their chapter.
	ComicID string `json:"comic_id"`

	// ChapterID and PageNumber are set for page uploads only.
	ChapterID  string `json:"chapter_id,omitempty"`
	PageNumber int    `json:"page_number,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
