// Copyright (c) 2026 SkyComic. All rights reserved.

package chapter

import (
	"context"
)

// # Repository Contracts

// Repository defines the persistence operations for chapters.
type Repository interface {
	// FindByID returns the chapter with the given canonical id.
	FindByID(ctx context.Context, id string) (*Chapter, error)

	// ListByComic returns all chapters of a comic ordered by chapter_number
	// ascending.
	ListByComic(ctx context.Context, comicID string) ([]*Chapter, error)

	// Create inserts a new chapter row.
	Create(ctx context.Context, c *Chapter) error

	// Delete removes a chapter by canonical id.
	Delete(ctx context.Context, id string) error

	// DeleteByComic removes every chapter belonging to a comic and returns
	// the number of rows removed.
	DeleteByComic(ctx context.Context, comicID string) (int64, error)
}

// PageRepository defines the persistence operations for chapter pages.
type PageRepository interface {
	// ListByChapter returns the pages of a chapter ordered by page_number
	// ascending.
	ListByChapter(ctx context.Context, chapterID string) ([]*Page, error)

	// ListByComic returns the pages of every chapter of a comic, ordered by
	// chapter then page_number. Used to assemble the full comic detail in a
	// single round trip.
	ListByComic(ctx context.Context, comicID string) ([]*Page, error)

	// CreateBatch inserts the given pages in a single pipelined batch.
	//
	// There is deliberately no delete: page rows outlive their chapter, the
	// same way upload records outlive the objects they index.
	CreateBatch(ctx context.Context, pages []*Page) error
}

// ComicFinder confirms the parent series exists before a chapter is attached
// to it. Implemented by the comic repository; declared here to keep the
// dependency one-directional.
type ComicFinder interface {
	Exists(ctx context.Context, comicID string) (bool, error)
}
