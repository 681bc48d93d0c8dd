// Copyright (c) 2026 SkyComic. All rights reserved.

package media

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skycomic/skycomic/internal/core/chapter"
	"github.com/skycomic/skycomic/internal/core/comic"
	"github.com/skycomic/skycomic/internal/platform/apperr"
	"github.com/skycomic/skycomic/internal/platform/constants"
	"github.com/skycomic/skycomic/internal/platform/storage"
	"github.com/skycomic/skycomic/pkg/hexid"
)

// # Test Fakes

// fakeObjectStore records every Put and resolves keys to a predictable CDN URL.
type fakeObjectStore struct {
	enabled bool
	keys    []string
}

func (f *fakeObjectStore) Enabled() bool { return f.enabled }

func (f *fakeObjectStore) Put(_ context.Context, key string, body io.Reader, _ int64, _ string) (storage.Ref, error) {
	_, _ = io.Copy(io.Discard, body)
	f.keys = append(f.keys, key)
	return storage.KeyRef(key), nil
}

func (f *fakeObjectStore) ResolveURL(_ context.Context, ref storage.Ref, _ time.Duration) (string, error) {
	if !ref.IsKey() {
		return ref.Value, nil
	}
	if !f.enabled {
		return "", nil
	}
	return "https://cdn.test/" + ref.Value, nil
}

type fakeUploadRepo struct {
	entries []*Upload
}

func (f *fakeUploadRepo) Create(_ context.Context, upload *Upload) error {
	f.entries = append(f.entries, upload)
	return nil
}

func (f *fakeUploadRepo) CreateBatch(_ context.Context, uploads []*Upload) error {
	f.entries = append(f.entries, uploads...)
	return nil
}

func (f *fakeUploadRepo) ListByComic(_ context.Context, comicID string) ([]*Upload, error) {
	var out []*Upload
	for _, u := range f.entries {
		if u.ComicID == comicID {
			out = append(out, u)
		}
	}
	return out, nil
}

type fakeComicRepo struct {
	comics     map[string]*comic.Comic
	nextLegacy int64
}

func (f *fakeComicRepo) List(_ context.Context, _ comic.Filter, _, _ int) ([]*comic.Comic, error) {
	return nil, nil
}

func (f *fakeComicRepo) FindByID(_ context.Context, id string) (*comic.Comic, error) {
	if c, ok := f.comics[id]; ok {
		clone := *c
		return &clone, nil
	}
	return nil, apperr.NotFound("Comic")
}

func (f *fakeComicRepo) FindByLegacyID(_ context.Context, legacyID int64) (*comic.Comic, error) {
	for _, c := range f.comics {
		if c.LegacyID != nil && *c.LegacyID == legacyID {
			clone := *c
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("Comic")
}

func (f *fakeComicRepo) Exists(_ context.Context, id string) (bool, error) {
	_, ok := f.comics[id]
	return ok, nil
}

func (f *fakeComicRepo) Create(_ context.Context, c *comic.Comic) error {
	f.nextLegacy++
	legacy := f.nextLegacy
	c.LegacyID = &legacy
	f.comics[c.ID] = c
	return nil
}

func (f *fakeComicRepo) Update(_ context.Context, id string, _ *comic.Patch) (*comic.Comic, error) {
	return f.FindByID(context.Background(), id)
}

func (f *fakeComicRepo) Delete(_ context.Context, id string) error {
	delete(f.comics, id)
	return nil
}

func (f *fakeComicRepo) Count(_ context.Context) (int, error) { return len(f.comics), nil }

func (f *fakeComicRepo) AllViews(_ context.Context) ([]comic.Views, error) { return nil, nil }

func (f *fakeComicRepo) SetCover(_ context.Context, id string, coverURL string) (*comic.Comic, error) {
	existing, ok := f.comics[id]
	if !ok {
		return nil, apperr.NotFound("Comic")
	}
	existing.CoverURL = coverURL
	clone := *existing
	return &clone, nil
}

type fakeChapterRepo struct{ chapters map[string]*chapter.Chapter }

func (f *fakeChapterRepo) FindByID(_ context.Context, id string) (*chapter.Chapter, error) {
	if c, ok := f.chapters[id]; ok {
		return c, nil
	}
	return nil, apperr.NotFound("Chapter")
}

func (f *fakeChapterRepo) ListByComic(_ context.Context, _ string) ([]*chapter.Chapter, error) {
	return nil, nil
}

func (f *fakeChapterRepo) Create(_ context.Context, c *chapter.Chapter) error {
	f.chapters[c.ID] = c
	return nil
}

func (f *fakeChapterRepo) Delete(_ context.Context, id string) error {
	delete(f.chapters, id)
	return nil
}

func (f *fakeChapterRepo) DeleteByComic(_ context.Context, _ string) (int64, error) { return 0, nil }

type fakePageRepo struct{ pages []*chapter.Page }

func (f *fakePageRepo) ListByChapter(_ context.Context, chapterID string) ([]*chapter.Page, error) {
	var out []*chapter.Page
	for _, p := range f.pages {
		if p.ChapterID == chapterID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePageRepo) ListByComic(_ context.Context, _ string) ([]*chapter.Page, error) {
	return f.pages, nil
}

func (f *fakePageRepo) CreateBatch(_ context.Context, pages []*chapter.Page) error {
	f.pages = append(f.pages, pages...)
	return nil
}

type harness struct {
	store    *fakeObjectStore
	uploads  *fakeUploadRepo
	comics   *comic.Service
	chapters *chapter.Service
	service  *Service
}

func newHarness(storageEnabled bool) *harness {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := &fakeObjectStore{enabled: storageEnabled}
	uploads := &fakeUploadRepo{}
	comicRepo := &fakeComicRepo{comics: map[string]*comic.Comic{}}
	chapterRepo := &fakeChapterRepo{chapters: map[string]*chapter.Chapter{}}

	chapterService := chapter.NewService(chapterRepo, &fakePageRepo{}, comicRepo, store, logger)
	comicService := comic.NewService(comicRepo, chapterService, nil, store, logger)

	return &harness{
		store:    store,
		uploads:  uploads,
		comics:   comicService,
		chapters: chapterService,
		service:  NewService(store, uploads, comicService, chapterService, logger),
	}
}

func imageFile(name, contentType string, size int64) File {
	return File{
		Name:        name,
		Size:        size,
		ContentType: contentType,
		Body:        strings.NewReader("fake image bytes"),
	}
}

// # Cover Uploads

func TestUploadCover(t *testing.T) {
	h := newHarness(true)
	created, err := h.comics.Create(context.Background(), comic.CreateInput{Title: "Covered"})
	require.NoError(t, err)

	// Clients address covers by the legacy id too; the raw value lands in the key
	result, err := h.service.UploadCover(context.Background(), "1", imageFile("cover.png", "image/png", 2048))
	require.NoError(t, err)

	require.Len(t, h.store.keys, 1)
	assert.True(t, strings.HasPrefix(h.store.keys[0], "covers/1/"))
	assert.True(t, strings.HasSuffix(h.store.keys[0], ".png"))

	// Ledger entry keeps the tagged form
	require.Len(t, h.uploads.entries, 1)
	assert.Equal(t, TypeCover, h.uploads.entries[0].Type)
	assert.Equal(t, created.ID, h.uploads.entries[0].ComicID)
	assert.True(t, strings.HasPrefix(h.uploads.entries[0].Key, "r2:covers/1/"))

	// Cover rows never carry a page number
	assert.Zero(t, h.uploads.entries[0].PageNumber)

	// Response carries the resolved URL
	assert.True(t, strings.HasPrefix(result.CoverURL, "https://cdn.test/covers/1/"))
	assert.Equal(t, created.ID, result.Comic.ID)
}

func TestUploadCoverValidation(t *testing.T) {
	h := newHarness(true)
	_, err := h.comics.Create(context.Background(), comic.CreateInput{Title: "Covered"})
	require.NoError(t, err)

	tests := []struct {
		name       string
		comicID    string
		file       File
		wantStatus int
	}{
		{"wrong_mime_type", "1", imageFile("doc.pdf", "application/pdf", 1024), 400},
		{"oversized_file", "1", imageFile("big.jpg", "image/jpeg", constants.MaxUploadBytes+1), 400},
		{"unknown_comic", "999", imageFile("cover.jpg", "image/jpeg", 1024), 404},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.service.UploadCover(context.Background(), tt.comicID, tt.file)
			appErr := apperr.As(err)
			require.NotNil(t, appErr)
			assert.Equal(t, tt.wantStatus, appErr.HTTPStatus)
		})
	}
}

func TestUploadCoverStorageDisabled(t *testing.T) {
	h := newHarness(false)

	_, err := h.service.UploadCover(context.Background(), "1", imageFile("c.jpg", "image/jpeg", 100))

	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, 503, appErr.HTTPStatus)
	assert.Equal(t, "Object storage is not configured", appErr.Message)
}

// # Page Uploads

func TestUploadChapterPages(t *testing.T) {
	h := newHarness(true)
	created, err := h.comics.Create(context.Background(), comic.CreateInput{Title: "Series"})
	require.NoError(t, err)
	ch, err := h.chapters.Create(context.Background(), chapter.CreateInput{ComicID: created.ID, ChapterNumber: 1})
	require.NoError(t, err)

	files := []File{
		imageFile("01.jpg", "image/jpeg", 100),
		imageFile("02.png", "image/png", 100),
		imageFile("03.webp", "image/webp", 100),
	}

	result, err := h.service.UploadChapterPages(context.Background(), ch.ID, files)
	require.NoError(t, err)
	require.Len(t, result.Pages, 3)

	// Keys are numbered sequentially and keep each file's extension
	assert.Equal(t, "chapters/"+ch.ID+"/1.jpg", h.store.keys[0])
	assert.Equal(t, "chapters/"+ch.ID+"/2.png", h.store.keys[1])
	assert.Equal(t, "chapters/"+ch.ID+"/3.webp", h.store.keys[2])

	for i, page := range result.Pages {
		assert.Equal(t, i+1, page.PageNumber)
		assert.True(t, strings.HasPrefix(page.ImageURL, "https://cdn.test/chapters/"))
	}

	// One ledger entry per page with matching numbering
	require.Len(t, h.uploads.entries, 3)
	for i, entry := range h.uploads.entries {
		assert.Equal(t, TypePage, entry.Type)
		assert.Equal(t, created.ID, entry.ComicID)
		assert.Equal(t, ch.ID, entry.ChapterID)
		assert.Equal(t, i+1, entry.PageNumber)
	}
}

func TestUploadChapterPagesLimits(t *testing.T) {
	h := newHarness(true)
	created, err := h.comics.Create(context.Background(), comic.CreateInput{Title: "Series"})
	require.NoError(t, err)
	ch, err := h.chapters.Create(context.Background(), chapter.CreateInput{ComicID: created.ID, ChapterNumber: 1})
	require.NoError(t, err)

	t.Run("no_files", func(t *testing.T) {
		_, err := h.service.UploadChapterPages(context.Background(), ch.ID, nil)
		appErr := apperr.As(err)
		require.NotNil(t, appErr)
		assert.Equal(t, 400, appErr.HTTPStatus)
	})

	t.Run("too_many_files", func(t *testing.T) {
		files := make([]File, constants.MaxChapterPages+1)
		for i := range files {
			files[i] = imageFile("p.jpg", "image/jpeg", 10)
		}
		_, err := h.service.UploadChapterPages(context.Background(), ch.ID, files)
		appErr := apperr.As(err)
		require.NotNil(t, appErr)
		assert.Equal(t, 400, appErr.HTTPStatus)
	})

	t.Run("unknown_chapter", func(t *testing.T) {
		_, err := h.service.UploadChapterPages(context.Background(), hexid.New(), []File{
			imageFile("p.jpg", "image/jpeg", 10),
		})
		appErr := apperr.As(err)
		require.NotNil(t, appErr)
		assert.Equal(t, 404, appErr.HTTPStatus)
	})

	t.Run("bad_file_blocks_whole_batch", func(t *testing.T) {
		uploadsBefore := len(h.store.keys)
		_, err := h.service.UploadChapterPages(context.Background(), ch.ID, []File{
			imageFile("ok.jpg", "image/jpeg", 10),
			imageFile("virus.exe", "application/octet-stream", 10),
		})
		require.Error(t, err)
		assert.Len(t, h.store.keys, uploadsBefore)
	})
}

// # Upload Ledger

func TestUploadsForComic(t *testing.T) {
	h := newHarness(true)
	created, err := h.comics.Create(context.Background(), comic.CreateInput{Title: "Audited"})
	require.NoError(t, err)
	ch, err := h.chapters.Create(context.Background(), chapter.CreateInput{ComicID: created.ID, ChapterNumber: 1})
	require.NoError(t, err)

	_, err = h.service.UploadCover(context.Background(), created.ID, imageFile("cover.jpg", "image/jpeg", 100))
	require.NoError(t, err)
	_, err = h.service.UploadChapterPages(context.Background(), ch.ID, []File{
		imageFile("01.jpg", "image/jpeg", 100),
		imageFile("02.jpg", "image/jpeg", 100),
	})
	require.NoError(t, err)

	// The legacy id resolves to the same ledger
	uploads, err := h.service.UploadsForComic(context.Background(), "1")
	require.NoError(t, err)
	assert.Len(t, uploads, 3)

	for _, entry := range uploads {
		assert.Equal(t, created.ID, entry.ComicID)
	}
}

func TestUploadsForComicUnknown(t *testing.T) {
	h := newHarness(true)

	_, err := h.service.UploadsForComic(context.Background(), hexid.New())

	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, 404, appErr.HTTPStatus)
}

// # Signed URLs

func TestSignedURL(t *testing.T) {
	h := newHarness(true)

	t.Run("bare_key", func(t *testing.T) {
		url, err := h.service.SignedURL(context.Background(), "covers/12/1700000000000.jpg")
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.test/covers/12/1700000000000.jpg", url)
	})

	t.Run("tagged_key", func(t *testing.T) {
		url, err := h.service.SignedURL(context.Background(), "r2:covers/12/1700000000000.jpg")
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.test/covers/12/1700000000000.jpg", url)
	})

	t.Run("missing_key", func(t *testing.T) {
		_, err := h.service.SignedURL(context.Background(), "  ")
		appErr := apperr.As(err)
		require.NotNil(t, appErr)
		assert.Equal(t, 400, appErr.HTTPStatus)
	})
}

func TestSignedURLUnresolvable(t *testing.T) {
	h := newHarness(false)

	_, err := h.service.SignedURL(context.Background(), "covers/1/x.jpg")

	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, 404, appErr.HTTPStatus)
}

func TestConfigured(t *testing.T) {
	assert.True(t, newHarness(true).service.Configured())
	assert.False(t, newHarness(false).service.Configured())
}
