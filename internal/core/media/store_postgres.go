// Copyright (c) 2026 SkyComic. All rights reserved.

package media

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/skycomic/skycomic/internal/platform/database/schema"
)

// uploadRepository implements the [Repository] interface using pgx.
type uploadRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed uploads store.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &uploadRepository{pool: pool}
}

// insertStatement is shared by single and batched creation.
func insertStatement() string {
	t := schema.Uploads
	return fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, t.Table, t.ID, t.Key, t.Type, t.ComicID, t.ChapterID, t.PageNumber, t.CreatedAt)
}

/*
Create inserts a single ledger entry.
*/
func (repository *uploadRepository) Create(context context.Context, upload *Upload) error {

	_, err := repository.pool.Exec(context, insertStatement(),
		upload.ID,
		upload.Key,
		string(upload.Type),
		upload.ComicID,
		nullable(upload.ChapterID),
		nullableInt(upload.PageNumber),
		upload.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres: failed to create upload record: %w", err)
	}

	return nil
}

/*
CreateBatch inserts ledger entries in a single pipelined batch.
*/
func (repository *uploadRepository) CreateBatch(context context.Context, uploads []*Upload) error {

	if len(uploads) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	statement := insertStatement()
	for _, upload := range uploads {
		batch.Queue(statement,
			upload.ID,
			upload.Key,
			string(upload.Type),
			upload.ComicID,
			nullable(upload.ChapterID),
			nullableInt(upload.PageNumber),
			upload.CreatedAt,
		)
	}

	result := repository.pool.SendBatch(context, batch)
	defer result.Close()

	for i := 0; i < len(uploads); i++ {
		if _, err := result.Exec(); err != nil {
			return fmt.Errorf("postgres: failed to batch insert upload %d: %w", i, err)
		}
	}

	return nil
}

/*
ListByComic returns the ledger entries recorded for a comic, newest first.
*/
func (repository *uploadRepository) ListByComic(context context.Context, comicID string) ([]*Upload, error) {

	t := schema.Uploads
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, COALESCE(%s, ''), COALESCE(%s, 0), %s
		FROM %s
		WHERE %s = $1
		ORDER BY %s DESC
	`,
		t.ID, t.Key, t.Type, t.ComicID, t.ChapterID, t.PageNumber, t.CreatedAt,
		t.Table,
		t.ComicID,
		t.CreatedAt,
	)

	rows, err := repository.pool.Query(context, query, comicID)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to list uploads: %w", err)
	}
	defer rows.Close()

	var uploads []*Upload
	for rows.Next() {
		var upload Upload
		err := rows.Scan(
			&upload.ID,
			&upload.Key,
			&upload.Type,
			&upload.ComicID,
			&upload.ChapterID,
			&upload.PageNumber,
			&upload.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres: failed to scan upload: %w", err)
		}
		uploads = append(uploads, &upload)
	}

	return uploads, rows.Err()
}

// nullable turns an empty string into a SQL NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// nullableInt turns an unset page number into a SQL NULL. Page numbers are
// 1-based, so zero always means "not a page row".
func nullableInt(n int) any {
	if n == 0 {
		return nil
	}
	return n
}
