// Copyright (c) 2026 SkyComic. All rights reserved.

package comic

import (
	"context"
)

// # Repository Contracts

// Repository defines the persistence operations for comics.
type Repository interface {
	// List returns comics matching the filter. A limit of 0 returns the full
	// result set (the pre-pagination contract).
	List(ctx context.Context, filter Filter, limit, offset int) ([]*Comic, error)

	// FindByID returns the comic with the given canonical 24-hex id.
	FindByID(ctx context.Context, id string) (*Comic, error)

	// FindByLegacyID returns the comic with the given legacy numeric id.
	FindByLegacyID(ctx context.Context, legacyID int64) (*Comic, error)

	// Exists reports whether a comic with the canonical id exists. Satisfies
	// the chapter package's parent check.
	Exists(ctx context.Context, id string) (bool, error)

	// Create inserts a new comic and assigns its legacy numeric id
	// atomically (max existing + 1).
	Create(ctx context.Context, c *Comic) error

	// Update applies a partial-field patch and returns the updated row.
	Update(ctx context.Context, id string, patch *Patch) (*Comic, error)

	// Delete removes a comic by canonical id.
	Delete(ctx context.Context, id string) error

	// Count returns the total number of comics in the catalogue.
	Count(ctx context.Context) (int, error)

	// AllViews returns the stored views value of every comic, for the
	// dashboard aggregate.
	AllViews(ctx context.Context) ([]Views, error)

	// SetCover overwrites the stored cover reference and returns the
	// updated row. Used by the media upload flow.
	SetCover(ctx context.Context, id string, coverURL string) (*Comic, error)
}

// StatsCache is the volatile store for the dashboard aggregates.
type StatsCache interface {
	// GetStats returns the cached aggregates, or (nil, nil) on a miss.
	GetStats(ctx context.Context) (*Stats, error)

	// SetStats stores the aggregates with the standard TTL.
	SetStats(ctx context.Context, stats *Stats) error

	// Invalidate drops the cached aggregates after a catalogue mutation.
	Invalidate(ctx context.Context) error
}
