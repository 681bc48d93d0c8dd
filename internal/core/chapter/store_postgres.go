// Copyright (c) 2026 SkyComic. All rights reserved.

package chapter

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/skycomic/skycomic/internal/platform/apperr"
	"github.com/skycomic/skycomic/internal/platform/database/schema"
)

// # PostgreSQL Repositories

// chapterRepository implements the [Repository] interface using pgx.
type chapterRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed chapter store.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &chapterRepository{pool: pool}
}

// # Chapter Repository Implementation

/*
FindByID returns the chapter row matching the canonical id.

Parameters:
  - context: context.Context
  - id: string (canonical 24-hex id)

Returns:
  - *Chapter: The mapped chapter
  - error: apperr.NotFound on absent rows
*/
func (repository *chapterRepository) FindByID(context context.Context, id string) (*Chapter, error) {

	// Direct primary-key lookup
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1
	`,
		schema.Chapter.ID, schema.Chapter.ComicID, schema.Chapter.ChapterNumber,
		schema.Chapter.Title, schema.Chapter.Date, schema.Chapter.CreatedAt,
		schema.Chapter.Table,
		schema.Chapter.ID,
	)

	var chapter Chapter
	err := repository.pool.QueryRow(context, query, id).Scan(
		&chapter.ID,
		&chapter.ComicID,
		&chapter.ChapterNumber,
		&chapter.Title,
		&chapter.Date,
		&chapter.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Chapter")
		}
		return nil, fmt.Errorf("postgres: failed to find chapter by id: %w", err)
	}

	return &chapter, nil
}

/*
ListByComic retrieves all chapters of a comic in reading order.

Description: Orders ascending by chapter_number so clients can render the
chapter list without re-sorting. Fractional chapter numbers slot in between
their neighbours naturally.

Parameters:
  - context: context.Context
  - comicID: string (canonical owner id)

Returns:
  - []*Chapter: Slice of chapters, possibly empty
  - error: Query failures
*/
func (repository *chapterRepository) ListByComic(context context.Context, comicID string) ([]*Chapter, error) {

	// Ordered retrieval query
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1
		ORDER BY %s ASC
	`,
		schema.Chapter.ID, schema.Chapter.ComicID, schema.Chapter.ChapterNumber,
		schema.Chapter.Title, schema.Chapter.Date, schema.Chapter.CreatedAt,
		schema.Chapter.Table,
		schema.Chapter.ComicID,
		schema.Chapter.ChapterNumber,
	)

	rows, err := repository.pool.Query(context, query, comicID)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to list chapters: %w", err)
	}
	defer rows.Close()

	// Row iteration and entity hydration
	var chapters []*Chapter
	for rows.Next() {
		var chapter Chapter
		err := rows.Scan(
			&chapter.ID,
			&chapter.ComicID,
			&chapter.ChapterNumber,
			&chapter.Title,
			&chapter.Date,
			&chapter.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres: failed to scan chapter: %w", err)
		}
		chapters = append(chapters, &chapter)
	}

	return chapters, rows.Err()
}

/*
Create inserts a new chapter row.
*/
func (repository *chapterRepository) Create(context context.Context, chapter *Chapter) error {

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		schema.Chapter.Table,
		schema.Chapter.ID, schema.Chapter.ComicID, schema.Chapter.ChapterNumber,
		schema.Chapter.Title, schema.Chapter.Date, schema.Chapter.CreatedAt,
	)

	_, err := repository.pool.Exec(context, query,
		chapter.ID,
		chapter.ComicID,
		chapter.ChapterNumber,
		chapter.Title,
		chapter.Date,
		chapter.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres: failed to create chapter: %w", err)
	}

	return nil
}

/*
Delete removes a chapter row by canonical id.

Returns:
  - error: apperr.NotFound when no row matched
*/
func (repository *chapterRepository) Delete(context context.Context, id string) error {

	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`,
		schema.Chapter.Table, schema.Chapter.ID)

	result, err := repository.pool.Exec(context, query, id)
	if err != nil {
		return fmt.Errorf("postgres: failed to delete chapter: %w", err)
	}

	// Affected row verification
	if result.RowsAffected() == 0 {
		return apperr.NotFound("Chapter")
	}

	return nil
}

/*
DeleteByComic removes every chapter belonging to a comic. Page rows under
the removed chapters are left in place.
*/
func (repository *chapterRepository) DeleteByComic(context context.Context, comicID string) (int64, error) {

	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`,
		schema.Chapter.Table, schema.Chapter.ComicID)

	result, err := repository.pool.Exec(context, query, comicID)
	if err != nil {
		return 0, fmt.Errorf("postgres: failed to delete chapters by comic: %w", err)
	}

	return result.RowsAffected(), nil
}

// # Page Repository Implementation

// pageRepository implements the [PageRepository] interface using pgx.
type pageRepository struct {
	pool *pgxpool.Pool
}

// NewPageRepository constructs a PostgreSQL backed page store.
func NewPageRepository(pool *pgxpool.Pool) PageRepository {
	return &pageRepository{pool: pool}
}

/*
ListByChapter retrieves the images of a chapter sorted by sequence.
*/
func (repository *pageRepository) ListByChapter(context context.Context, chapterID string) ([]*Page, error) {

	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s
		FROM %s
		WHERE %s = $1
		ORDER BY %s ASC
	`,
		schema.Pages.ID, schema.Pages.ChapterID, schema.Pages.PageNumber, schema.Pages.ImageURL,
		schema.Pages.Table,
		schema.Pages.ChapterID,
		schema.Pages.PageNumber,
	)

	rows, err := repository.pool.Query(context, query, chapterID)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to list pages: %w", err)
	}
	defer rows.Close()

	return scanPages(rows)
}

/*
ListByComic retrieves the pages of every chapter of a comic in one round trip.

Description: Joins through the chapter table and orders by chapter then page
sequence, so callers can group rows by ChapterID while streaming.
*/
func (repository *pageRepository) ListByComic(context context.Context, comicID string) ([]*Page, error) {

	query := fmt.Sprintf(`
		SELECT p.%s, p.%s, p.%s, p.%s
		FROM %s p
		JOIN %s c ON p.%s = c.%s
		WHERE c.%s = $1
		ORDER BY c.%s ASC, p.%s ASC
	`,
		schema.Pages.ID, schema.Pages.ChapterID, schema.Pages.PageNumber, schema.Pages.ImageURL,
		schema.Pages.Table,
		schema.Chapter.Table, schema.Pages.ChapterID, schema.Chapter.ID,
		schema.Chapter.ComicID,
		schema.Chapter.ChapterNumber, schema.Pages.PageNumber,
	)

	rows, err := repository.pool.Query(context, query, comicID)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to list pages by comic: %w", err)
	}
	defer rows.Close()

	return scanPages(rows)
}

/*
CreateBatch persists chapter images in a high-performance batch.

Description: Uses Postgres batching (pipelining) to reduce round-trips
for multi-page uploads.
*/
func (repository *pageRepository) CreateBatch(context context.Context, pages []*Page) error {

	// Pre-condition verification
	if len(pages) == 0 {
		return nil
	}

	// Batch queue construction
	batch := &pgx.Batch{}
	insert := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		VALUES ($1, $2, $3, $4)
	`, schema.Pages.Table, schema.Pages.ID, schema.Pages.ChapterID, schema.Pages.PageNumber, schema.Pages.ImageURL)

	for _, page := range pages {
		batch.Queue(insert, page.ID, page.ChapterID, page.PageNumber, page.ImageURL)
	}

	// Send batch and close pipeline
	result := repository.pool.SendBatch(context, batch)
	defer result.Close()

	// Verify all items in the batch succeeded
	for i := 0; i < len(pages); i++ {
		if _, err := result.Exec(); err != nil {
			return fmt.Errorf("postgres: failed to batch insert page %d: %w", i, err)
		}
	}

	return nil
}

// scanPages hydrates page entities from an open row set.
func scanPages(rows pgx.Rows) ([]*Page, error) {
	var pages []*Page
	for rows.Next() {
		var page Page
		err := rows.Scan(&page.ID, &page.ChapterID, &page.PageNumber, &page.ImageURL)
		if err != nil {
			return nil, fmt.Errorf("postgres: failed to scan page: %w", err)
		}
		pages = append(pages, &page)
	}
	return pages, rows.Err()
}
