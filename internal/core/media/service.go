// Copyright (c) 2026 SkyComic. All rights reserved.

package media

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/skycomic/skycomic/internal/core/chapter"
	"github.com/skycomic/skycomic/internal/core/comic"
	"github.com/skycomic/skycomic/internal/platform/apperr"
	"github.com/skycomic/skycomic/internal/platform/constants"
	"github.com/skycomic/skycomic/internal/platform/storage"
	"github.com/skycomic/skycomic/internal/platform/validate"
	"github.com/skycomic/skycomic/pkg/hexid"
)

// ObjectStore is the slice of the storage adapter the media service needs.
// Implemented by [storage.Client]; declared here so the upload flow can be
// tested against a fake.
type ObjectStore interface {
	Enabled() bool
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (storage.Ref, error)
	ResolveURL(ctx context.Context, ref storage.Ref, expiry time.Duration) (string, error)
}

// allowedImageTypes is the accepted MIME whitelist for all image uploads.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// # Service Layer

// Service implements the business logic for image ingestion.
type Service struct {
	store    ObjectStore
	uploads  Repository
	comics   *comic.Service
	chapters *chapter.Service
	logger   *slog.Logger
}

// NewService constructs the media service with its dependencies.
func NewService(store ObjectStore, uploads Repository, comics *comic.Service, chapters *chapter.Service, logger *slog.Logger) *Service {
	return &Service{
		store:    store,
		uploads:  uploads,
		comics:   comics,
		chapters: chapters,
		logger:   logger,
	}
}

// File is one uploaded file, decoupled from the multipart transport.
type File struct {
	Name        string
	Size        int64
	ContentType string
	Body        io.Reader
}

// CoverResult is the response payload of a cover upload.
type CoverResult struct {
	Comic    *comic.Comic `json:"comic"`
	CoverURL string       `json:"cover_url"`
}

// PagesResult is the response payload of a chapter page upload.
type PagesResult struct {
	Chapter *chapter.Chapter `json:"chapter"`
	Pages   []*chapter.Page  `json:"pages"`
}

/*
UploadCover stores a new cover image for a comic.

Description: The object key embeds the identifier exactly as the client sent
it (canonical or legacy) plus a millisecond timestamp, so re-uploads never
overwrite each other. The comic's stored cover reference is replaced with
the tagged key and a ledger entry is recorded.

Parameters:
  - ctx: context.Context
  - rawComicID: string (canonical 24-hex id or legacy numeric id)
  - file: File (image content)

Returns:
  - *CoverResult: Updated comic and its resolved cover URL
  - error: 503 when storage is disabled, 400 on bad input, 404 on unknown comic
*/
func (service *Service) UploadCover(ctx context.Context, rawComicID string, file File) (*CoverResult, error) {

	if !service.store.Enabled() {
		return nil, storage.ErrNotConfigured
	}

	if err := validateImage(file); err != nil {
		return nil, err
	}

	// Locate the comic before touching storage
	target, err := service.comics.Resolve(ctx, rawComicID)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("covers/%s/%d%s", rawComicID, time.Now().UnixMilli(), extensionOf(file.Name))

	ref, err := service.store.Put(ctx, key, file.Body, file.Size, file.ContentType)
	if err != nil {
		return nil, err
	}

	if err := service.uploads.Create(ctx, &Upload{
		ID:        hexid.New(),
		Key:       ref.String(),
		Type:      TypeCover,
		ComicID:   target.ID,
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		return nil, err
	}

	updated, err := service.comics.SetCover(ctx, target.ID, ref)
	if err != nil {
		return nil, err
	}

	service.logger.Info("cover_uploaded",
		slog.String("comic_id", target.ID),
		slog.String("key", key),
		slog.Int64("bytes", file.Size),
	)

	return &CoverResult{Comic: updated, CoverURL: updated.CoverURL}, nil
}

/*
UploadChapterPages stores a batch of page images for a chapter.

Description: Files are numbered 1..N in upload order; each object key is
chapters/<chapter-id>/<n>.<ext>. Page rows and ledger entries are created
for every stored object. Validation runs over the whole batch before the
first byte is uploaded, so a bad file never leaves a partial prefix.

Parameters:
  - ctx: context.Context
  - chapterID: string (canonical 24-hex id)
  - files: []File (page images in reading order)

Returns:
  - *PagesResult: The chapter and its created pages with resolved URLs
  - error: 503 when storage is disabled, 400 on bad input, 404 on unknown chapter
*/
func (service *Service) UploadChapterPages(ctx context.Context, chapterID string, files []File) (*PagesResult, error) {

	if !service.store.Enabled() {
		return nil, storage.ErrNotConfigured
	}

	err := validate.New().
		Custom("pages", len(files) == 0, "No files uploaded").
		Custom("pages", len(files) > constants.MaxChapterPages,
			fmt.Sprintf("Maximum %d pages per upload", constants.MaxChapterPages)).
		Err()
	if err != nil {
		return nil, err
	}

	// Validate the whole batch up front
	for _, file := range files {
		if err := validateImage(file); err != nil {
			return nil, err
		}
	}

	// Locate the chapter before touching storage
	target, err := service.chapters.Get(ctx, chapterID)
	if err != nil {
		return nil, err
	}

	refs := make([]string, 0, len(files))
	for i, file := range files {
		key := fmt.Sprintf("chapters/%s/%d%s", chapterID, i+1, extensionOf(file.Name))

		ref, err := service.store.Put(ctx, key, file.Body, file.Size, file.ContentType)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref.String())
	}

	pages, err := service.chapters.AddPages(ctx, chapterID, refs)
	if err != nil {
		return nil, err
	}

	// Ledger entries, one per stored object
	ledger := make([]*Upload, 0, len(pages))
	now := time.Now().UTC()
	for _, page := range pages {
		ledger = append(ledger, &Upload{
			ID:         hexid.New(),
			Key:        page.ImageURL,
			Type:       TypePage,
			ComicID:    target.ComicID,
			ChapterID:  chapterID,
			PageNumber: page.PageNumber,
			CreatedAt:  now,
		})
	}
	if err := service.uploads.CreateBatch(ctx, ledger); err != nil {
		return nil, err
	}

	// Resolve stored references for the response
	for _, page := range pages {
		resolved, err := service.store.ResolveURL(ctx, storage.ParseRef(page.ImageURL), constants.DefaultSignedURLExpiry)
		if err == nil && resolved != "" {
			page.ImageURL = resolved
		}
	}

	service.logger.Info("chapter_pages_uploaded",
		slog.String("chapter_id", chapterID),
		slog.Int("pages", len(pages)),
	)

	return &PagesResult{Chapter: &target.Chapter, Pages: pages}, nil
}

/*
SignedURL resolves a raw storage key into a fetchable URL.

Description: Accepts both the bare key and the tagged "r2:" form. An empty
resolution (storage disabled or unknown key space) surfaces as a 404.

Returns:
  - string: Public or time-limited signed URL
  - error: 400 on a missing key, 404 when unresolvable
*/
func (service *Service) SignedURL(ctx context.Context, key string) (string, error) {

	if strings.TrimSpace(key) == "" {
		return "", validate.RequiredError("key", "Missing key parameter")
	}

	ref := storage.ParseRef(key)
	if !ref.IsKey() {
		ref = storage.KeyRef(key)
	}

	resolved, err := service.store.ResolveURL(ctx, ref, constants.DefaultSignedURLExpiry)
	if err != nil {
		return "", err
	}
	if resolved == "" {
		return "", apperr.NotFound("Object")
	}

	return resolved, nil
}

/*
UploadsForComic returns the ledger entries recorded for a comic, newest first.

Description: The ledger is append-only, so this lists every object ever
stored for the comic, including entries whose chapter has since been deleted.

Returns:
  - []*Upload: Ledger entries, possibly empty
  - error: apperr.NotFound when no comic matches either id form
*/
func (service *Service) UploadsForComic(ctx context.Context, rawComicID string) ([]*Upload, error) {

	target, err := service.comics.Resolve(ctx, rawComicID)
	if err != nil {
		return nil, err
	}

	uploads, err := service.uploads.ListByComic(ctx, target.ID)
	if err != nil {
		return nil, err
	}
	if uploads == nil {
		uploads = []*Upload{}
	}

	return uploads, nil
}

// Configured reports whether object storage is usable.
func (service *Service) Configured() bool {
	return service.store.Enabled()
}

// validateImage enforces the MIME whitelist and the per-file size limit.
func validateImage(file File) error {
	return validate.New().
		Custom("file", !allowedImageTypes[strings.ToLower(file.ContentType)], "Only image files are allowed").
		Custom("file", file.Size > constants.MaxUploadBytes, "File exceeds the 10MB limit").
		Err()
}

// extensionOf extracts a lowercase file extension, defaulting to ".jpg".
func extensionOf(name string) string {
	ext := strings.ToLower(path.Ext(name))
	if ext == "" {
		return ".jpg"
	}
	return ext
}
