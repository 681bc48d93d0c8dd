// Copyright (c) 2026 SkyComic. All rights reserved.

package comic

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/skycomic/skycomic/internal/core/chapter"
	"github.com/skycomic/skycomic/internal/platform/constants"
	"github.com/skycomic/skycomic/internal/platform/storage"
	"github.com/skycomic/skycomic/internal/platform/validate"
	"github.com/skycomic/skycomic/pkg/compact"
	"github.com/skycomic/skycomic/pkg/convert"
	"github.com/skycomic/skycomic/pkg/hexid"
	"github.com/skycomic/skycomic/pkg/pagination"
	slugpkg "github.com/skycomic/skycomic/pkg/slug"
)

// # Service Layer

// Service implements the business logic for catalogue management.
type Service struct {
	repository Repository
	chapters   *chapter.Service
	stats      StatsCache
	urls       chapter.URLResolver
	logger     *slog.Logger
}

// NewService constructs the comic service with its dependencies.
// The stats cache may be nil; aggregates are then computed on every request.
func NewService(repository Repository, chapters *chapter.Service, stats StatsCache, urls chapter.URLResolver, logger *slog.Logger) *Service {
	return &Service{
		repository: repository,
		chapters:   chapters,
		stats:      stats,
		urls:       urls,
		logger:     logger,
	}
}

// CreateInput carries the fields accepted when creating a comic.
type CreateInput struct {
	Title       string
	Author      string
	Artist      string
	Status      Status
	CoverURL    string
	Description string
	Rating      float64
	Views       Views
	Genres      []string
	Slug        string
}

/*
Resolve locates a comic by either identifier form.

Description: A 24-character hex string is a canonical id; anything else is
interpreted as a legacy numeric id. Values that are neither resolve to no
row and surface as a 404.

Parameters:
  - ctx: context.Context
  - raw: string (canonical 24-hex id or legacy numeric id)

Returns:
  - *Comic: The resolved comic
  - error: apperr.NotFound when no comic matches either form
*/
func (service *Service) Resolve(ctx context.Context, raw string) (*Comic, error) {
	if hexid.Is(raw) {
		return service.repository.FindByID(ctx, raw)
	}
	return service.repository.FindByLegacyID(ctx, convert.ToInt64(raw))
}

/*
List returns comics matching the filter, covers resolved.

Description: Without pagination parameters the full result set is returned,
preserving the pre-pagination contract. Popularity ordering parses the
compact views notation and therefore sorts in memory over the full match
set before any windowing is applied.

Parameters:
  - ctx: context.Context
  - filter: Filter (Search and sort)
  - window: pagination.Params

Returns:
  - []*Comic: Matching comics in requested order
  - error: Store failures
*/
func (service *Service) List(ctx context.Context, filter Filter, window pagination.Params) ([]*Comic, error) {

	limit, offset := 0, 0
	if window.Windowed && filter.Sort != "popular" {
		limit, offset = window.Limit, window.Offset()
	}

	comics, err := service.repository.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, err
	}

	if filter.Sort == "popular" {
		sort.SliceStable(comics, func(i, j int) bool {
			return comics[i].Views.Count() > comics[j].Views.Count()
		})
		if window.Windowed {
			comics = windowSlice(comics, window.Offset(), window.Limit)
		}
	}

	for _, comic := range comics {
		service.resolveCover(ctx, comic)
	}

	if comics == nil {
		comics = []*Comic{}
	}
	return comics, nil
}

/*
Get returns the fully assembled comic detail.

Description: Resolves the identifier in dual mode, attaches every chapter
with its pages in reading order, and rewrites stored image references into
fetchable URLs.
*/
func (service *Service) Get(ctx context.Context, raw string) (*Detail, error) {

	comic, err := service.Resolve(ctx, raw)
	if err != nil {
		return nil, err
	}
	service.resolveCover(ctx, comic)

	chapters, err := service.chapters.ListForComic(ctx, comic.ID)
	if err != nil {
		return nil, err
	}

	return &Detail{Comic: *comic, Chapters: chapters}, nil
}

/*
Create validates and persists a new comic.

Description: The canonical id is generated here; the legacy numeric id is
assigned atomically by the store. A missing slug is derived from the title
and a missing status defaults to Ongoing.

Returns:
  - *Comic: The persisted comic with both identifiers populated
  - error: Validation failures or store errors
*/
func (service *Service) Create(ctx context.Context, input CreateInput) (*Comic, error) {

	if input.Status == "" {
		input.Status = StatusOngoing
	}

	err := validate.New().
		Required(FieldTitle, input.Title).
		MaxLen(FieldTitle, input.Title, 255).
		Custom(FieldStatus, !input.Status.IsValid(), "Must be one of: Ongoing, Completed, Hiatus").
		Custom(FieldRating, input.Rating < 0 || input.Rating > 10, "Must be between 0 and 10").
		Err()
	if err != nil {
		return nil, err
	}

	if input.Views == "" {
		input.Views = "0"
	}
	if input.Genres == nil {
		input.Genres = []string{}
	}
	if input.Slug == "" {
		input.Slug = slugpkg.From(input.Title)
	}

	comic := &Comic{
		ID:          hexid.New(),
		Title:       input.Title,
		Author:      input.Author,
		Artist:      input.Artist,
		Status:      input.Status,
		CoverURL:    input.CoverURL,
		Description: input.Description,
		Rating:      input.Rating,
		Views:       input.Views,
		Genres:      input.Genres,
		Slug:        input.Slug,
		CreatedAt:   time.Now().UTC(),
	}

	if err := service.repository.Create(ctx, comic); err != nil {
		return nil, err
	}
	service.invalidateStats(ctx)

	service.logger.Info("comic_created",
		slog.String("comic_id", comic.ID),
		slog.Int64("legacy_id", derefInt64(comic.LegacyID)),
		slog.String("title", comic.Title),
	)

	return comic, nil
}

/*
Update applies a partial-field patch to a comic located by either id form.

Description: Only the fields present in the patch change; absent fields keep
their stored values. Changing the title without supplying a slug regenerates
the slug from the new title.

Returns:
  - *Comic: The post-update row, cover resolved
  - error: Validation failures or apperr.NotFound
*/
func (service *Service) Update(ctx context.Context, raw string, patch *Patch) (*Comic, error) {

	validator := validate.New()
	if patch.Title != nil {
		validator.Required(FieldTitle, *patch.Title).MaxLen(FieldTitle, *patch.Title, 255)
	}
	if patch.Status != nil {
		validator.Custom(FieldStatus, !patch.Status.IsValid(), "Must be one of: Ongoing, Completed, Hiatus")
	}
	if patch.Rating != nil {
		validator.Custom(FieldRating, *patch.Rating < 0 || *patch.Rating > 10, "Must be between 0 and 10")
	}
	if patch.Slug != nil {
		validator.Slug(FieldSlug, *patch.Slug)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	existing, err := service.Resolve(ctx, raw)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil && patch.Slug == nil {
		derived := slugpkg.From(*patch.Title)
		patch.Slug = &derived
	}

	updated, err := service.repository.Update(ctx, existing.ID, patch)
	if err != nil {
		return nil, err
	}
	service.invalidateStats(ctx)
	service.resolveCover(ctx, updated)

	service.logger.Info("comic_updated", slog.String("comic_id", updated.ID))

	return updated, nil
}

/*
Delete removes a comic together with its chapters.

Description: Chapters go first so a failure mid-way never leaves chapters
pointing at a missing comic. Page rows under the removed chapters stay
behind, uploaded objects stay in storage, and the upload records remain
addressable.

Returns:
  - error: apperr.NotFound when no comic matches either id form
*/
func (service *Service) Delete(ctx context.Context, raw string) error {

	comic, err := service.Resolve(ctx, raw)
	if err != nil {
		return err
	}

	if err := service.chapters.DeleteForComic(ctx, comic.ID); err != nil {
		return err
	}

	if err := service.repository.Delete(ctx, comic.ID); err != nil {
		return err
	}
	service.invalidateStats(ctx)

	service.logger.Info("comic_deleted",
		slog.String("comic_id", comic.ID),
		slog.Int64("legacy_id", derefInt64(comic.LegacyID)),
	)

	return nil
}

/*
Stats returns the dashboard aggregates for the whole catalogue.

Description: Sums every stored views value through the compact codec and
renders the total back in compact notation. Results are cached briefly;
cache failures degrade to recomputation, never to an error.
*/
func (service *Service) Stats(ctx context.Context) (*Stats, error) {

	if service.stats != nil {
		cached, err := service.stats.GetStats(ctx)
		if err != nil {
			service.logger.Warn("stats_cache_read_failed", slog.String("error", err.Error()))
		} else if cached != nil {
			return cached, nil
		}
	}

	total, err := service.repository.Count(ctx)
	if err != nil {
		return nil, err
	}

	allViews, err := service.repository.AllViews(ctx)
	if err != nil {
		return nil, err
	}

	var sum int64
	for _, views := range allViews {
		sum += views.Count()
	}

	stats := &Stats{
		TotalComics: total,
		TotalViews:  compact.Format(sum),
	}

	if service.stats != nil {
		if err := service.stats.SetStats(ctx, stats); err != nil {
			service.logger.Warn("stats_cache_write_failed", slog.String("error", err.Error()))
		}
	}

	return stats, nil
}

// SetCover overwrites the stored cover reference of a comic. Used by the
// media upload flow; the raw id may be either identifier form.
func (service *Service) SetCover(ctx context.Context, raw string, ref storage.Ref) (*Comic, error) {

	comic, err := service.Resolve(ctx, raw)
	if err != nil {
		return nil, err
	}

	updated, err := service.repository.SetCover(ctx, comic.ID, ref.String())
	if err != nil {
		return nil, err
	}
	service.resolveCover(ctx, updated)

	return updated, nil
}

// invalidateStats drops the cached aggregates; failures are logged only.
func (service *Service) invalidateStats(ctx context.Context) {
	if service.stats == nil {
		return
	}
	if err := service.stats.Invalidate(ctx); err != nil {
		service.logger.Warn("stats_cache_invalidate_failed", slog.String("error", err.Error()))
	}
}

// resolveCover rewrites a stored cover reference into a fetchable URL in
// place. Resolution failures keep the stored form.
func (service *Service) resolveCover(ctx context.Context, comic *Comic) {
	ref := storage.ParseRef(comic.CoverURL)
	if !ref.IsKey() {
		return
	}

	resolved, err := service.urls.ResolveURL(ctx, ref, constants.DefaultSignedURLExpiry)
	if err != nil {
		service.logger.Warn("cover_url_resolution_failed",
			slog.String("comic_id", comic.ID),
			slog.String("error", err.Error()),
		)
		return
	}
	if resolved != "" {
		comic.CoverURL = resolved
	}
}

// windowSlice applies offset/limit to an in-memory result set.
func windowSlice(comics []*Comic, offset, limit int) []*Comic {
	if offset >= len(comics) {
		return []*Comic{}
	}
	comics = comics[offset:]
	if limit > 0 && limit < len(comics) {
		comics = comics[:limit]
	}
	return comics
}

// derefInt64 returns 0 for a nil pointer; used only for log fields.
func derefInt64(p *int64) int64 {
	if p == nil {
		return 0
	}
	return *p
}
