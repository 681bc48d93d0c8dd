// Copyright (c) 2026 SkyComic. All rights reserved.

package media

import (
	"context"
)

// Repository defines the persistence operations for the uploads ledger.
type Repository interface {
	// Create inserts a single ledger entry.
	Create(ctx context.Context, upload *Upload) error

	// CreateBatch inserts the given entries in a single pipelined batch.
	CreateBatch(ctx context.Context, uploads []*Upload) error

	// ListByComic returns the ledger entries recorded for a comic, newest
	// first.
	ListByComic(ctx context.Context, comicID string) ([]*Upload, error)
}
