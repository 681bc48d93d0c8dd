// Copyright (c) 2026 SkyComic. All rights reserved.

/*
PostgreSQL implementation of the comic repository.

Notable mechanics:
  - Legacy ID Assignment: Creation computes MAX(legacy_id)+1 inside the
    INSERT itself and relies on the unique index plus a bounded retry to
    stay correct under concurrent writers.
  - Dynamic Patching: Partial updates build their SET clause from the
    non-nil patch fields and return the updated row in the same statement.
  - Escaped Search: Title search escapes ILIKE metacharacters so user input
    is always a literal substring match.
*/
package comic

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/skycomic/skycomic/internal/platform/apperr"
	"github.com/skycomic/skycomic/internal/platform/database/schema"
	"github.com/skycomic/skycomic/internal/platform/dberr"
)

// legacyIDRetries bounds the unique-violation retry loop during creation.
const legacyIDRetries = 3

// comicRepository implements the [Repository] interface using pgx.
type comicRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed comic store.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &comicRepository{pool: pool}
}

// columnList is the canonical SELECT column order shared by every query that
// hydrates a full comic row.
func columnList(prefix string) string {
	t := schema.Comic
	cols := t.Columns()
	if prefix != "" {
		for i, c := range cols {
			cols[i] = prefix + "." + c
		}
	}
	return strings.Join(cols, ", ")
}

// scanComic hydrates a comic entity from a row in columnList order.
func scanComic(row pgx.Row) (*Comic, error) {
	var comic Comic
	var views string
	err := row.Scan(
		&comic.ID,
		&comic.LegacyID,
		&comic.Title,
		&comic.Author,
		&comic.Artist,
		&comic.Status,
		&comic.CoverURL,
		&comic.Description,
		&comic.Rating,
		&views,
		&comic.Genres,
		&comic.Slug,
		&comic.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	comic.Views = Views(views)
	return &comic, nil
}

/*
List returns comics matching the filter.

Description: Title search is a case-insensitive literal substring match.
Sorting handles latest (default), rating, and az in SQL; popularity ordering
needs the compact views codec and is applied by the service layer.

Parameters:
  - context: context.Context
  - filter: Filter (Search and sort)
  - limit: int (0 disables windowing)
  - offset: int

Returns:
  - []*Comic: Matching comics
  - error: Query failures
*/
func (repository *comicRepository) List(context context.Context, filter Filter, limit, offset int) ([]*Comic, error) {

	// Query construction
	var queryBuilder strings.Builder
	var args []any
	argID := 1

	queryBuilder.WriteString(fmt.Sprintf(`SELECT %s FROM %s`, columnList(""), schema.Comic.Table))

	// Title substring filter with escaped metacharacters
	if filter.Query != "" {
		queryBuilder.WriteString(fmt.Sprintf(` WHERE %s ILIKE $%d ESCAPE '\'`, schema.Comic.Title, argID))
		args = append(args, "%"+escapeLike(filter.Query)+"%")
		argID++
	}

	// Ordering
	switch filter.Sort {
	case "rating":
		queryBuilder.WriteString(fmt.Sprintf(` ORDER BY %s DESC, %s DESC`, schema.Comic.Rating, schema.Comic.CreatedAt))
	case "az":
		queryBuilder.WriteString(fmt.Sprintf(` ORDER BY %s ASC`, schema.Comic.Title))
	default:
		// latest and popular both leave the store in recency order
		queryBuilder.WriteString(fmt.Sprintf(` ORDER BY %s DESC`, schema.Comic.CreatedAt))
	}

	// Windowing
	if limit > 0 {
		queryBuilder.WriteString(fmt.Sprintf(` LIMIT $%d OFFSET $%d`, argID, argID+1))
		args = append(args, limit, offset)
	}

	// Query execution
	rows, err := repository.pool.Query(context, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to list comics: %w", err)
	}
	defer rows.Close()

	// Row iteration and entity hydration
	var comics []*Comic
	for rows.Next() {
		comic, err := scanComic(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: failed to scan comic: %w", err)
		}
		comics = append(comics, comic)
	}

	return comics, rows.Err()
}

/*
FindByID returns the comic matching the canonical 24-hex id.

Returns:
  - *Comic: The mapped comic
  - error: apperr.NotFound on absent rows
*/
func (repository *comicRepository) FindByID(context context.Context, id string) (*Comic, error) {

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		columnList(""), schema.Comic.Table, schema.Comic.ID)

	comic, err := scanComic(repository.pool.QueryRow(context, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Comic")
		}
		return nil, fmt.Errorf("postgres: failed to find comic by id: %w", err)
	}

	return comic, nil
}

/*
FindByLegacyID returns the comic matching the legacy numeric id.

Returns:
  - *Comic: The mapped comic
  - error: apperr.NotFound on absent rows
*/
func (repository *comicRepository) FindByLegacyID(context context.Context, legacyID int64) (*Comic, error) {

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		columnList(""), schema.Comic.Table, schema.Comic.LegacyID)

	comic, err := scanComic(repository.pool.QueryRow(context, query, legacyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Comic")
		}
		return nil, fmt.Errorf("postgres: failed to find comic by legacy id: %w", err)
	}

	return comic, nil
}

/*
Exists reports whether a comic row with the canonical id is present.
*/
func (repository *comicRepository) Exists(context context.Context, id string) (bool, error) {

	query := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE %s = $1)`,
		schema.Comic.Table, schema.Comic.ID)

	var exists bool
	if err := repository.pool.QueryRow(context, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("postgres: failed to check comic existence: %w", err)
	}

	return exists, nil
}

/*
Create inserts a new comic and assigns its legacy numeric id.

Description: The legacy id is computed as MAX(legacy_id)+1 inside the INSERT
statement itself, so assignment and insertion are a single atomic step. Two
concurrent creators can still race to the same value; the unique index turns
the loser into a 23505 which is retried a bounded number of times.

Parameters:
  - context: context.Context
  - comic: *Comic (ID, metadata and timestamps set by the service)

Returns:
  - error: Insert failures; conflict only if retries are exhausted
*/
func (repository *comicRepository) Create(context context.Context, comic *Comic) error {

	t := schema.Comic
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, (SELECT COALESCE(MAX(%s), 0) + 1 FROM %s), $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING %s
	`,
		t.Table,
		t.ID, t.LegacyID, t.Title, t.Author, t.Artist, t.Status,
		t.CoverURL, t.Description, t.Rating, t.Views, t.Genres, t.Slug, t.CreatedAt,
		t.LegacyID, t.Table,
		t.LegacyID,
	)

	var lastErr error
	for attempt := 0; attempt < legacyIDRetries; attempt++ {
		var legacyID int64
		err := repository.pool.QueryRow(context, query,
			comic.ID,
			comic.Title,
			comic.Author,
			comic.Artist,
			comic.Status,
			comic.CoverURL,
			comic.Description,
			comic.Rating,
			string(comic.Views),
			comic.Genres,
			comic.Slug,
			comic.CreatedAt,
		).Scan(&legacyID)

		if err == nil {
			comic.LegacyID = &legacyID
			return nil
		}

		// Concurrent creator won the same legacy id; recompute and retry
		if dberr.IsUniqueViolation(err) {
			lastErr = err
			continue
		}

		return fmt.Errorf("postgres: failed to create comic: %w", err)
	}

	return dberr.Wrap(lastErr, "create comic")
}

/*
Update applies a partial-field patch and returns the updated row.

Description: Builds the SET clause from the non-nil patch fields only;
untouched columns keep their stored values. The updated row comes back via
RETURNING so no second round trip is needed.

Returns:
  - *Comic: The post-update row
  - error: apperr.NotFound when no row matched
*/
func (repository *comicRepository) Update(context context.Context, id string, patch *Patch) (*Comic, error) {

	t := schema.Comic
	var setClauses []string
	var args []any
	argID := 1

	appendSet := func(column string, value any) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argID))
		args = append(args, value)
		argID++
	}

	if patch.Title != nil {
		appendSet(t.Title, *patch.Title)
	}
	if patch.Author != nil {
		appendSet(t.Author, *patch.Author)
	}
	if patch.Artist != nil {
		appendSet(t.Artist, *patch.Artist)
	}
	if patch.Status != nil {
		appendSet(t.Status, string(*patch.Status))
	}
	if patch.CoverURL != nil {
		appendSet(t.CoverURL, *patch.CoverURL)
	}
	if patch.Description != nil {
		appendSet(t.Description, *patch.Description)
	}
	if patch.Rating != nil {
		appendSet(t.Rating, *patch.Rating)
	}
	if patch.Views != nil {
		appendSet(t.Views, string(*patch.Views))
	}
	if patch.Genres != nil {
		appendSet(t.Genres, *patch.Genres)
	}
	if patch.Slug != nil {
		appendSet(t.Slug, *patch.Slug)
	}

	if len(setClauses) == 0 {
		// Empty patch degenerates to a plain read
		return repository.FindByID(context, id)
	}

	query := fmt.Sprintf(`
		UPDATE %s SET %s
		WHERE %s = $%d
		RETURNING %s
	`,
		t.Table, strings.Join(setClauses, ", "),
		t.ID, argID,
		columnList(""),
	)
	args = append(args, id)

	comic, err := scanComic(repository.pool.QueryRow(context, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Comic")
		}
		return nil, fmt.Errorf("postgres: failed to update comic: %w", err)
	}

	return comic, nil
}

/*
Delete removes a comic row by canonical id.

Returns:
  - error: apperr.NotFound when no row matched
*/
func (repository *comicRepository) Delete(context context.Context, id string) error {

	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`,
		schema.Comic.Table, schema.Comic.ID)

	result, err := repository.pool.Exec(context, query, id)
	if err != nil {
		return fmt.Errorf("postgres: failed to delete comic: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperr.NotFound("Comic")
	}

	return nil
}

/*
Count returns the total number of comics in the catalogue.
*/
func (repository *comicRepository) Count(context context.Context) (int, error) {

	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, schema.Comic.Table)

	var total int
	if err := repository.pool.QueryRow(context, query).Scan(&total); err != nil {
		return 0, fmt.Errorf("postgres: failed to count comics: %w", err)
	}

	return total, nil
}

/*
AllViews returns the stored views value of every comic.

Description: Views live as free-form text (plain numbers mixed with compact
notation), so summation happens in the service with the compact codec rather
than in SQL.
*/
func (repository *comicRepository) AllViews(context context.Context) ([]Views, error) {

	query := fmt.Sprintf(`SELECT %s FROM %s`, schema.Comic.Views, schema.Comic.Table)

	rows, err := repository.pool.Query(context, query)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to list views: %w", err)
	}
	defer rows.Close()

	var all []Views
	for rows.Next() {
		var views string
		if err := rows.Scan(&views); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan views: %w", err)
		}
		all = append(all, Views(views))
	}

	return all, rows.Err()
}

/*
SetCover overwrites the stored cover reference and returns the updated row.
*/
func (repository *comicRepository) SetCover(context context.Context, id string, coverURL string) (*Comic, error) {

	query := fmt.Sprintf(`
		UPDATE %s SET %s = $1
		WHERE %s = $2
		RETURNING %s
	`,
		schema.Comic.Table, schema.Comic.CoverURL,
		schema.Comic.ID,
		columnList(""),
	)

	comic, err := scanComic(repository.pool.QueryRow(context, query, coverURL, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Comic")
		}
		return nil, fmt.Errorf("postgres: failed to set cover: %w", err)
	}

	return comic, nil
}

// escapeLike escapes ILIKE metacharacters so user input matches literally.
func escapeLike(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(s)
}
