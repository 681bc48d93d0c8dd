// Copyright (c) 2026 SkyComic. All rights reserved.

package chapter

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skycomic/skycomic/internal/platform/apperr"
	"github.com/skycomic/skycomic/internal/platform/storage"
	"github.com/skycomic/skycomic/pkg/hexid"
)

// # Test Fakes

type fakeChapterRepo struct {
	chapters map[string]*Chapter
}

func newFakeChapterRepo() *fakeChapterRepo {
	return &fakeChapterRepo{chapters: map[string]*Chapter{}}
}

func (f *fakeChapterRepo) FindByID(_ context.Context, id string) (*Chapter, error) {
	if c, ok := f.chapters[id]; ok {
		return c, nil
	}
	return nil, apperr.NotFound("Chapter")
}

func (f *fakeChapterRepo) ListByComic(_ context.Context, comicID string) ([]*Chapter, error) {
	var out []*Chapter
	for _, c := range f.chapters {
		if c.ComicID == comicID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeChapterRepo) Create(_ context.Context, c *Chapter) error {
	f.chapters[c.ID] = c
	return nil
}

func (f *fakeChapterRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.chapters[id]; !ok {
		return apperr.NotFound("Chapter")
	}
	delete(f.chapters, id)
	return nil
}

func (f *fakeChapterRepo) DeleteByComic(_ context.Context, comicID string) (int64, error) {
	var n int64
	for id, c := range f.chapters {
		if c.ComicID == comicID {
			delete(f.chapters, id)
			n++
		}
	}
	return n, nil
}

type fakePageRepo struct {
	pages []*Page
}

func (f *fakePageRepo) ListByChapter(_ context.Context, chapterID string) ([]*Page, error) {
	var out []*Page
	for _, p := range f.pages {
		if p.ChapterID == chapterID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePageRepo) ListByComic(_ context.Context, _ string) ([]*Page, error) {
	return f.pages, nil
}

func (f *fakePageRepo) CreateBatch(_ context.Context, pages []*Page) error {
	f.pages = append(f.pages, pages...)
	return nil
}

type fakeComicFinder struct {
	existing map[string]bool
}

func (f *fakeComicFinder) Exists(_ context.Context, comicID string) (bool, error) {
	return f.existing[comicID], nil
}

// fakeResolver resolves storage keys to a predictable public URL.
type fakeResolver struct {
	fail bool
}

func (f *fakeResolver) ResolveURL(_ context.Context, ref storage.Ref, _ time.Duration) (string, error) {
	if f.fail {
		return "", errors.New("presign failed")
	}
	if ref.IsKey() {
		return "https://cdn.test/" + ref.Value, nil
	}
	return ref.Value, nil
}

func newTestService(repo *fakeChapterRepo, pages *fakePageRepo, comics *fakeComicFinder, urls URLResolver) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, pages, comics, urls, logger)
}

// # Creation

func TestCreate(t *testing.T) {
	comicID := hexid.New()

	tests := []struct {
		name       string
		input      CreateInput
		wantErr    bool
		wantStatus int
	}{
		{
			name:  "valid_chapter",
			input: CreateInput{ComicID: comicID, ChapterNumber: 1, Title: "First Steps"},
		},
		{
			name:  "fractional_chapter_number",
			input: CreateInput{ComicID: comicID, ChapterNumber: 10.5},
		},
		{
			name:       "missing_comic_id",
			input:      CreateInput{ChapterNumber: 1},
			wantErr:    true,
			wantStatus: 400,
		},
		{
			name:       "legacy_numeric_comic_id_rejected",
			input:      CreateInput{ComicID: "42", ChapterNumber: 1},
			wantErr:    true,
			wantStatus: 400,
		},
		{
			name:       "negative_chapter_number",
			input:      CreateInput{ComicID: comicID, ChapterNumber: -1},
			wantErr:    true,
			wantStatus: 400,
		},
		{
			name:       "unknown_comic",
			input:      CreateInput{ComicID: hexid.New(), ChapterNumber: 1},
			wantErr:    true,
			wantStatus: 404,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := newTestService(
				newFakeChapterRepo(),
				&fakePageRepo{},
				&fakeComicFinder{existing: map[string]bool{comicID: true}},
				&fakeResolver{},
			)

			chapter, err := service.Create(context.Background(), tt.input)

			if tt.wantErr {
				require.Error(t, err)
				var appErr *apperr.AppError
				require.ErrorAs(t, err, &appErr)
				assert.Equal(t, tt.wantStatus, appErr.HTTPStatus)
				return
			}

			require.NoError(t, err)
			assert.True(t, hexid.Is(chapter.ID))
			assert.Equal(t, tt.input.ComicID, chapter.ComicID)
			assert.Equal(t, tt.input.ChapterNumber, chapter.ChapterNumber)
			assert.False(t, chapter.CreatedAt.IsZero())
		})
	}
}

// # Retrieval

func TestGetResolvesPageReferences(t *testing.T) {
	repo := newFakeChapterRepo()
	pages := &fakePageRepo{}
	chapterID := hexid.New()
	repo.chapters[chapterID] = &Chapter{ID: chapterID, ComicID: hexid.New(), ChapterNumber: 1}
	pages.pages = []*Page{
		{ID: hexid.New(), ChapterID: chapterID, PageNumber: 1, ImageURL: "r2:chapters/" + chapterID + "/1.jpg"},
		{ID: hexid.New(), ChapterID: chapterID, PageNumber: 2, ImageURL: "https://legacy.example.com/p2.jpg"},
	}

	service := newTestService(repo, pages, &fakeComicFinder{}, &fakeResolver{})

	got, err := service.Get(context.Background(), chapterID)
	require.NoError(t, err)
	require.Len(t, got.Pages, 2)

	// Tagged reference resolved, plain URL untouched
	assert.Equal(t, "https://cdn.test/chapters/"+chapterID+"/1.jpg", got.Pages[0].ImageURL)
	assert.Equal(t, "https://legacy.example.com/p2.jpg", got.Pages[1].ImageURL)
}

func TestGetMalformedID(t *testing.T) {
	service := newTestService(newFakeChapterRepo(), &fakePageRepo{}, &fakeComicFinder{}, &fakeResolver{})

	_, err := service.Get(context.Background(), "not-a-hex-id")

	var appErr *apperr.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 404, appErr.HTTPStatus)
	assert.Equal(t, "Chapter not found", appErr.Message)
}

func TestGetKeepsStoredFormWhenResolutionFails(t *testing.T) {
	repo := newFakeChapterRepo()
	pages := &fakePageRepo{}
	chapterID := hexid.New()
	repo.chapters[chapterID] = &Chapter{ID: chapterID, ChapterNumber: 1}
	pages.pages = []*Page{
		{ID: hexid.New(), ChapterID: chapterID, PageNumber: 1, ImageURL: "r2:chapters/x/1.jpg"},
	}

	service := newTestService(repo, pages, &fakeComicFinder{}, &fakeResolver{fail: true})

	got, err := service.Get(context.Background(), chapterID)
	require.NoError(t, err)
	assert.Equal(t, "r2:chapters/x/1.jpg", got.Pages[0].ImageURL)
}

// # Page Attachment

func TestAddPagesNumbersSequentially(t *testing.T) {
	repo := newFakeChapterRepo()
	pages := &fakePageRepo{}
	chapterID := hexid.New()
	repo.chapters[chapterID] = &Chapter{ID: chapterID, ChapterNumber: 3}

	service := newTestService(repo, pages, &fakeComicFinder{}, &fakeResolver{})

	refs := []string{
		"r2:chapters/" + chapterID + "/1.jpg",
		"r2:chapters/" + chapterID + "/2.png",
		"r2:chapters/" + chapterID + "/3.webp",
	}
	created, err := service.AddPages(context.Background(), chapterID, refs)
	require.NoError(t, err)
	require.Len(t, created, 3)

	for i, page := range created {
		assert.Equal(t, i+1, page.PageNumber)
		assert.Equal(t, refs[i], page.ImageURL)
		assert.Equal(t, chapterID, page.ChapterID)
		assert.True(t, hexid.Is(page.ID))
	}
}

func TestAddPagesUnknownChapter(t *testing.T) {
	service := newTestService(newFakeChapterRepo(), &fakePageRepo{}, &fakeComicFinder{}, &fakeResolver{})

	_, err := service.AddPages(context.Background(), hexid.New(), []string{"r2:x/1.jpg"})

	var appErr *apperr.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 404, appErr.HTTPStatus)
}

// # Deletion

func TestDeleteLeavesPagesOrphaned(t *testing.T) {
	repo := newFakeChapterRepo()
	pages := &fakePageRepo{}
	chapterID := hexid.New()
	repo.chapters[chapterID] = &Chapter{ID: chapterID}
	pages.pages = []*Page{
		{ID: hexid.New(), ChapterID: chapterID, PageNumber: 1, ImageURL: "r2:x/1.jpg"},
		{ID: hexid.New(), ChapterID: chapterID, PageNumber: 2, ImageURL: "r2:x/2.jpg"},
	}

	service := newTestService(repo, pages, &fakeComicFinder{}, &fakeResolver{})

	require.NoError(t, service.Delete(context.Background(), chapterID))
	assert.Empty(t, repo.chapters)

	// Page rows stay behind; only the chapter itself is removed.
	assert.Len(t, pages.pages, 2)
}

func TestDeleteUnknownChapter(t *testing.T) {
	service := newTestService(newFakeChapterRepo(), &fakePageRepo{}, &fakeComicFinder{}, &fakeResolver{})

	err := service.Delete(context.Background(), hexid.New())

	var appErr *apperr.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 404, appErr.HTTPStatus)
}

// # Assembly

func TestListForComicGroupsPages(t *testing.T) {
	repo := newFakeChapterRepo()
	pages := &fakePageRepo{}
	comicID := hexid.New()
	ch1 := hexid.New()
	ch2 := hexid.New()
	repo.chapters[ch1] = &Chapter{ID: ch1, ComicID: comicID, ChapterNumber: 1}
	repo.chapters[ch2] = &Chapter{ID: ch2, ComicID: comicID, ChapterNumber: 2}
	pages.pages = []*Page{
		{ID: hexid.New(), ChapterID: ch1, PageNumber: 1, ImageURL: "r2:a/1.jpg"},
		{ID: hexid.New(), ChapterID: ch1, PageNumber: 2, ImageURL: "r2:a/2.jpg"},
	}

	service := newTestService(repo, pages, &fakeComicFinder{}, &fakeResolver{})

	assembled, err := service.ListForComic(context.Background(), comicID)
	require.NoError(t, err)
	require.Len(t, assembled, 2)

	for _, withPages := range assembled {
		switch withPages.ID {
		case ch1:
			assert.Len(t, withPages.Pages, 2)
		case ch2:
			// Chapter without pages still serializes with an empty array
			assert.NotNil(t, withPages.Pages)
			assert.Empty(t, withPages.Pages)
		default:
			t.Fatalf("unexpected chapter %s", withPages.ID)
		}
	}
}
