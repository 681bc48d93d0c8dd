// Copyright (c) 2026 SkyComic. All rights reserved.

package comic

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skycomic/skycomic/internal/core/chapter"
	"github.com/skycomic/skycomic/internal/platform/apperr"
	"github.com/skycomic/skycomic/internal/platform/storage"
	"github.com/skycomic/skycomic/pkg/hexid"
	"github.com/skycomic/skycomic/pkg/pagination"
	"github.com/skycomic/skycomic/pkg/pointer"
)

// # Test Fakes

type fakeComicRepo struct {
	comics     map[string]*Comic
	nextLegacy int64
}

func newFakeComicRepo() *fakeComicRepo {
	return &fakeComicRepo{comics: map[string]*Comic{}}
}

func (f *fakeComicRepo) List(_ context.Context, filter Filter, limit, offset int) ([]*Comic, error) {
	var out []*Comic
	for _, c := range f.comics {
		out = append(out, c)
	}
	if offset > 0 && offset < len(out) {
		out = out[offset:]
	}
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeComicRepo) FindByID(_ context.Context, id string) (*Comic, error) {
	if c, ok := f.comics[id]; ok {
		clone := *c
		return &clone, nil
	}
	return nil, apperr.NotFound("Comic")
}

func (f *fakeComicRepo) FindByLegacyID(_ context.Context, legacyID int64) (*Comic, error) {
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

func (f *fakeComicRepo) Create(_ context.Context, c *Comic) error {
	f.nextLegacy++
	legacy := f.nextLegacy
	c.LegacyID = &legacy
	f.comics[c.ID] = c
	return nil
}

func (f *fakeComicRepo) Update(_ context.Context, id string, patch *Patch) (*Comic, error) {
	existing, ok := f.comics[id]
	if !ok {
		return nil, apperr.NotFound("Comic")
	}
	if patch.Title != nil {
		existing.Title = *patch.Title
	}
	if patch.Rating != nil {
		existing.Rating = *patch.Rating
	}
	if patch.Views != nil {
		existing.Views = *patch.Views
	}
	if patch.Slug != nil {
		existing.Slug = *patch.Slug
	}
	if patch.Status != nil {
		existing.Status = *patch.Status
	}
	clone := *existing
	return &clone, nil
}

func (f *fakeComicRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.comics[id]; !ok {
		return apperr.NotFound("Comic")
	}
	delete(f.comics, id)
	return nil
}

func (f *fakeComicRepo) Count(_ context.Context) (int, error) {
	return len(f.comics), nil
}

func (f *fakeComicRepo) AllViews(_ context.Context) ([]Views, error) {
	var all []Views
	for _, c := range f.comics {
		all = append(all, c.Views)
	}
	return all, nil
}

func (f *fakeComicRepo) SetCover(_ context.Context, id string, coverURL string) (*Comic, error) {
	existing, ok := f.comics[id]
	if !ok {
		return nil, apperr.NotFound("Comic")
	}
	existing.CoverURL = coverURL
	clone := *existing
	return &clone, nil
}

type fakeStatsCache struct {
	stored      *Stats
	invalidated int
}

func (f *fakeStatsCache) GetStats(_ context.Context) (*Stats, error) { return f.stored, nil }
func (f *fakeStatsCache) SetStats(_ context.Context, s *Stats) error {
	f.stored = s
	return nil
}
func (f *fakeStatsCache) Invalidate(_ context.Context) error {
	f.stored = nil
	f.invalidated++
	return nil
}

// Minimal chapter-side fakes so the comic service can own a real chapter service.

type fakeChapterRepo struct{ chapters map[string]*chapter.Chapter }

func (f *fakeChapterRepo) FindByID(_ context.Context, id string) (*chapter.Chapter, error) {
	if c, ok := f.chapters[id]; ok {
		return c, nil
	}
	return nil, apperr.NotFound("Chapter")
}

func (f *fakeChapterRepo) ListByComic(_ context.Context, comicID string) ([]*chapter.Chapter, error) {
	var out []*chapter.Chapter
	for _, c := range f.chapters {
		if c.ComicID == comicID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeChapterRepo) Create(_ context.Context, c *chapter.Chapter) error {
	f.chapters[c.ID] = c
	return nil
}

func (f *fakeChapterRepo) Delete(_ context.Context, id string) error {
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

type fakeResolver struct{}

func (fakeResolver) ResolveURL(_ context.Context, ref storage.Ref, _ time.Duration) (string, error) {
	if ref.IsKey() {
		return "https://cdn.test/" + ref.Value, nil
	}
	return ref.Value, nil
}

type harness struct {
	repo    *fakeComicRepo
	stats   *fakeStatsCache
	service *Service
}

func newHarness() *harness {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := newFakeComicRepo()
	stats := &fakeStatsCache{}
	chapterRepo := &fakeChapterRepo{chapters: map[string]*chapter.Chapter{}}
	chapterService := chapter.NewService(chapterRepo, &fakePageRepo{}, repo, fakeResolver{}, logger)
	return &harness{
		repo:    repo,
		stats:   stats,
		service: NewService(repo, chapterService, stats, fakeResolver{}, logger),
	}
}

// # Dual-Mode Resolution

func TestResolveDualMode(t *testing.T) {
	h := newHarness()
	created, err := h.service.Create(context.Background(), CreateInput{Title: "Sky Pirates"})
	require.NoError(t, err)

	t.Run("canonical_hex_id", func(t *testing.T) {
		got, err := h.service.Resolve(context.Background(), created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
	})

	t.Run("legacy_numeric_id", func(t *testing.T) {
		got, err := h.service.Resolve(context.Background(), "1")
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
	})

	t.Run("unknown_legacy_id", func(t *testing.T) {
		_, err := h.service.Resolve(context.Background(), "999")
		appErr := apperr.As(err)
		require.NotNil(t, appErr)
		assert.Equal(t, 404, appErr.HTTPStatus)
		assert.Equal(t, "Comic not found", appErr.Message)
	})

	t.Run("garbage_id_is_not_found", func(t *testing.T) {
		_, err := h.service.Resolve(context.Background(), "not-an-id")
		appErr := apperr.As(err)
		require.NotNil(t, appErr)
		assert.Equal(t, 404, appErr.HTTPStatus)
	})
}

// # Creation

func TestCreateDefaults(t *testing.T) {
	h := newHarness()

	created, err := h.service.Create(context.Background(), CreateInput{Title: "Thám Tử Lừng Danh"})
	require.NoError(t, err)

	assert.True(t, hexid.Is(created.ID))
	require.NotNil(t, created.LegacyID)
	assert.Equal(t, int64(1), *created.LegacyID)
	assert.Equal(t, StatusOngoing, created.Status)
	assert.Equal(t, Views("0"), created.Views)
	assert.Equal(t, "tham-tu-lung-danh", created.Slug)
	assert.NotNil(t, created.Genres)
	assert.False(t, created.CreatedAt.IsZero())
}

func TestCreateValidation(t *testing.T) {
	h := newHarness()

	tests := []struct {
		name  string
		input CreateInput
	}{
		{"missing_title", CreateInput{}},
		{"invalid_status", CreateInput{Title: "X", Status: "Cancelled"}},
		{"rating_out_of_range", CreateInput{Title: "X", Rating: 11}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.service.Create(context.Background(), tt.input)
			appErr := apperr.As(err)
			require.NotNil(t, appErr)
			assert.Equal(t, 400, appErr.HTTPStatus)
		})
	}
}

func TestCreateAssignsIncrementingLegacyIDs(t *testing.T) {
	h := newHarness()

	first, err := h.service.Create(context.Background(), CreateInput{Title: "A"})
	require.NoError(t, err)
	second, err := h.service.Create(context.Background(), CreateInput{Title: "B"})
	require.NoError(t, err)

	assert.Equal(t, int64(1), *first.LegacyID)
	assert.Equal(t, int64(2), *second.LegacyID)
}

// # Partial Updates

func TestUpdatePartialFields(t *testing.T) {
	h := newHarness()
	created, err := h.service.Create(context.Background(), CreateInput{Title: "Original", Rating: 4})
	require.NoError(t, err)

	updated, err := h.service.Update(context.Background(), created.ID, &Patch{
		Rating: pointer.To(8.5),
	})
	require.NoError(t, err)

	assert.Equal(t, "Original", updated.Title)
	assert.Equal(t, 8.5, updated.Rating)
}

func TestUpdateRegeneratesSlugWithTitle(t *testing.T) {
	h := newHarness()
	created, err := h.service.Create(context.Background(), CreateInput{Title: "Old Name"})
	require.NoError(t, err)

	updated, err := h.service.Update(context.Background(), created.ID, &Patch{
		Title: pointer.To("Brand New Name"),
	})
	require.NoError(t, err)

	assert.Equal(t, "brand-new-name", updated.Slug)
}

func TestUpdateByLegacyID(t *testing.T) {
	h := newHarness()
	_, err := h.service.Create(context.Background(), CreateInput{Title: "Findable"})
	require.NoError(t, err)

	updated, err := h.service.Update(context.Background(), "1", &Patch{
		Status: pointer.To(StatusCompleted),
	})
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, updated.Status)
}

// # Deletion

func TestDeleteInvalidatesStats(t *testing.T) {
	h := newHarness()
	created, err := h.service.Create(context.Background(), CreateInput{Title: "Doomed"})
	require.NoError(t, err)
	invalidationsBefore := h.stats.invalidated

	require.NoError(t, h.service.Delete(context.Background(), created.ID))

	_, err = h.service.Resolve(context.Background(), created.ID)
	require.Error(t, err)
	assert.Greater(t, h.stats.invalidated, invalidationsBefore)
}

// # Detail Assembly

func TestGetResolvesCover(t *testing.T) {
	h := newHarness()
	created, err := h.service.Create(context.Background(), CreateInput{
		Title:    "Covered",
		CoverURL: "r2:covers/1/1700000000000.jpg",
	})
	require.NoError(t, err)

	detail, err := h.service.Get(context.Background(), created.ID)
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.test/covers/1/1700000000000.jpg", detail.CoverURL)
	assert.NotNil(t, detail.Chapters)
}

// # Aggregates

func TestStatsSumsCompactViews(t *testing.T) {
	h := newHarness()
	_, err := h.service.Create(context.Background(), CreateInput{Title: "A", Views: "12.5M"})
	require.NoError(t, err)
	_, err = h.service.Create(context.Background(), CreateInput{Title: "B", Views: "3K"})
	require.NoError(t, err)
	_, err = h.service.Create(context.Background(), CreateInput{Title: "C", Views: "500"})
	require.NoError(t, err)

	stats, err := h.service.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, stats.TotalComics)
	// 12,500,000 + 3,000 + 500 = 12,503,500 → compact
	assert.Equal(t, "12.5M", stats.TotalViews)
}

func TestStatsServedFromCache(t *testing.T) {
	h := newHarness()
	h.stats.stored = &Stats{TotalComics: 99, TotalViews: "1.0M"}

	stats, err := h.service.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 99, stats.TotalComics)
	assert.Equal(t, "1.0M", stats.TotalViews)
}

// # Listing

func TestListPopularSortsByParsedViews(t *testing.T) {
	h := newHarness()
	_, err := h.service.Create(context.Background(), CreateInput{Title: "Mid", Views: "900K"})
	require.NoError(t, err)
	_, err = h.service.Create(context.Background(), CreateInput{Title: "Top", Views: "2.1M"})
	require.NoError(t, err)
	_, err = h.service.Create(context.Background(), CreateInput{Title: "Low", Views: "42"})
	require.NoError(t, err)

	comics, err := h.service.List(context.Background(), Filter{Sort: "popular"}, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, comics, 3)

	assert.Equal(t, "Top", comics[0].Title)
	assert.Equal(t, "Mid", comics[1].Title)
	assert.Equal(t, "Low", comics[2].Title)
}
