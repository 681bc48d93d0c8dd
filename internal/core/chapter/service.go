// Copyright (c) 2026 SkyComic. All rights reserved.

package chapter

import (
	"context"
	"log/slog"
	"time"

	"github.com/skycomic/skycomic/internal/platform/apperr"
	"github.com/skycomic/skycomic/internal/platform/constants"
	"github.com/skycomic/skycomic/internal/platform/storage"
	"github.com/skycomic/skycomic/internal/platform/validate"
	"github.com/skycomic/skycomic/pkg/hexid"
)

// URLResolver turns a stored image reference into a fetchable URL.
// Implemented by [storage.Client]; declared here so services can be tested
// against a fake.
type URLResolver interface {
	ResolveURL(ctx context.Context, ref storage.Ref, expiry time.Duration) (string, error)
}

// # Service Layer

// Service implements the business logic for chapter management.
type Service struct {
	repository Repository
	pages      PageRepository
	comics     ComicFinder
	urls       URLResolver
	logger     *slog.Logger
}

// NewService constructs the chapter service with its dependencies.
func NewService(repository Repository, pages PageRepository, comics ComicFinder, urls URLResolver, logger *slog.Logger) *Service {
	return &Service{
		repository: repository,
		pages:      pages,
		comics:     comics,
		urls:       urls,
		logger:     logger,
	}
}

// CreateInput carries the fields accepted when creating a chapter.
type CreateInput struct {
	ComicID       string
	ChapterNumber float64
	Title         string
	Date          string
}

/*
Create validates and persists a new chapter.

Description: The owning comic must be referenced by its canonical 24-hex id;
legacy numeric ids are resolved by the comic endpoints before reaching this
layer. The parent comic must exist.

Parameters:
  - ctx: context.Context
  - input: CreateInput

Returns:
  - *Chapter: The persisted chapter with its generated id
  - error: Validation failures or apperr.NotFound for a missing parent
*/
func (service *Service) Create(ctx context.Context, input CreateInput) (*Chapter, error) {

	// Structural validation
	err := validate.New().
		Required("comic_id", input.ComicID).
		MaxLen("title", input.Title, 255).
		Custom("comic_id", input.ComicID != "" && !hexid.Is(input.ComicID), "Must be a canonical 24-character hex id").
		Custom("chapter_number", input.ChapterNumber < 0, "Must not be negative").
		Err()
	if err != nil {
		return nil, err
	}

	// Parent existence check
	exists, err := service.comics.Exists(ctx, input.ComicID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperr.NotFound("Comic")
	}

	chapter := &Chapter{
		ID:            hexid.New(),
		ComicID:       input.ComicID,
		ChapterNumber: input.ChapterNumber,
		Title:         input.Title,
		Date:          input.Date,
		CreatedAt:     time.Now().UTC(),
	}

	if err := service.repository.Create(ctx, chapter); err != nil {
		return nil, err
	}

	service.logger.Info("chapter_created",
		slog.String("chapter_id", chapter.ID),
		slog.String("comic_id", chapter.ComicID),
		slog.Float64("chapter_number", chapter.ChapterNumber),
	)

	return chapter, nil
}

/*
Get returns a chapter assembled with its pages in reading order.

Description: Stored page references are resolved to fetchable URLs. A
malformed id is treated as a chapter that does not exist.
*/
func (service *Service) Get(ctx context.Context, id string) (*WithPages, error) {

	if !hexid.Is(id) {
		return nil, apperr.NotFound("Chapter")
	}

	chapter, err := service.repository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	pages, err := service.pages.ListByChapter(ctx, id)
	if err != nil {
		return nil, err
	}
	service.resolvePages(ctx, pages)

	return &WithPages{Chapter: *chapter, Pages: emptyIfNil(pages)}, nil
}

/*
Delete removes a chapter.

Description: Only the chapter row is removed. Its page rows and upload
records stay behind as orphans, the same contract pre-migration clients
observed, so imported history is never destroyed by a chapter cleanup.

Returns:
  - error: apperr.NotFound when the chapter does not exist
*/
func (service *Service) Delete(ctx context.Context, id string) error {

	if !hexid.Is(id) {
		return apperr.NotFound("Chapter")
	}

	if err := service.repository.Delete(ctx, id); err != nil {
		return err
	}

	service.logger.Info("chapter_deleted", slog.String("chapter_id", id))

	return nil
}

/*
ListForComic assembles every chapter of a comic with its pages.

Description: Fetches chapters and pages in two round trips and groups the
pages in memory, preserving the reading order guaranteed by the stores.
*/
func (service *Service) ListForComic(ctx context.Context, comicID string) ([]*WithPages, error) {

	chapters, err := service.repository.ListByComic(ctx, comicID)
	if err != nil {
		return nil, err
	}

	pages, err := service.pages.ListByComic(ctx, comicID)
	if err != nil {
		return nil, err
	}
	service.resolvePages(ctx, pages)

	// Group pages under their chapters
	byChapter := make(map[string][]*Page, len(chapters))
	for _, page := range pages {
		byChapter[page.ChapterID] = append(byChapter[page.ChapterID], page)
	}

	assembled := make([]*WithPages, 0, len(chapters))
	for _, chapter := range chapters {
		assembled = append(assembled, &WithPages{
			Chapter: *chapter,
			Pages:   emptyIfNil(byChapter[chapter.ID]),
		})
	}

	return assembled, nil
}

/*
AddPages appends page images to a chapter.

Description: Pages are numbered sequentially from 1 in the order given and
persisted in a single batch. The stored ImageURL keeps the tagged reference
form; callers resolve it for presentation.

Parameters:
  - ctx: context.Context
  - chapterID: string (canonical 24-hex id)
  - imageRefs: []string (tagged references or plain URLs, upload order)

Returns:
  - []*Page: The created pages in upload order
  - error: apperr.NotFound when the chapter does not exist
*/
func (service *Service) AddPages(ctx context.Context, chapterID string, imageRefs []string) ([]*Page, error) {

	if _, err := service.repository.FindByID(ctx, chapterID); err != nil {
		return nil, err
	}

	pages := make([]*Page, 0, len(imageRefs))
	for i, ref := range imageRefs {
		pages = append(pages, &Page{
			ID:         hexid.New(),
			ChapterID:  chapterID,
			PageNumber: i + 1,
			ImageURL:   ref,
		})
	}

	if err := service.pages.CreateBatch(ctx, pages); err != nil {
		return nil, err
	}

	return pages, nil
}

// DeleteForComic removes all chapters of a comic. Used by the comic service
// when a series is deleted. Page rows are left orphaned by contract.
func (service *Service) DeleteForComic(ctx context.Context, comicID string) error {

	removedChapters, err := service.repository.DeleteByComic(ctx, comicID)
	if err != nil {
		return err
	}

	service.logger.Info("comic_chapters_deleted",
		slog.String("comic_id", comicID),
		slog.Int64("chapters_removed", removedChapters),
	)

	return nil
}

// resolvePages rewrites stored page references into fetchable URLs in place.
// Resolution failures keep the stored form; a single bad key must not take
// down a whole chapter listing.
func (service *Service) resolvePages(ctx context.Context, pages []*Page) {
	for _, page := range pages {
		ref := storage.ParseRef(page.ImageURL)
		if !ref.IsKey() {
			continue
		}

		resolved, err := service.urls.ResolveURL(ctx, ref, constants.DefaultSignedURLExpiry)
		if err != nil {
			service.logger.Warn("page_url_resolution_failed",
				slog.String("page_id", page.ID),
				slog.String("error", err.Error()),
			)
			continue
		}
		if resolved != "" {
			page.ImageURL = resolved
		}
	}
}

// emptyIfNil normalizes a nil slice so JSON renders [] instead of null.
func emptyIfNil(pages []*Page) []*Page {
	if pages == nil {
		return []*Page{}
	}
	return pages
}
