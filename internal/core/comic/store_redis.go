// Copyright (c) 2026 SkyComic. All rights reserved.

package comic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/skycomic/skycomic/internal/platform/constants"
)

// statsCache implements [StatsCache] on Redis.
//
// The aggregates walk the whole comic table, so they are cached for a short
// TTL and dropped eagerly whenever the catalogue mutates.
type statsCache struct {
	client *redis.Client
}

// NewStatsCache constructs a Redis backed stats cache.
func NewStatsCache(client *redis.Client) StatsCache {
	return &statsCache{client: client}
}

// GetStats returns the cached aggregates, or (nil, nil) on a miss.
func (cache *statsCache) GetStats(ctx context.Context) (*Stats, error) {
	raw, err := cache.client.Get(ctx, constants.RedisPrefixStats).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis: failed to get stats: %w", err)
	}

	var stats Stats
	if err := json.Unmarshal([]byte(raw), &stats); err != nil {
		// A corrupt entry is treated as a miss; the next Set overwrites it
		return nil, nil
	}

	return &stats, nil
}

// SetStats stores the aggregates with the standard TTL.
func (cache *statsCache) SetStats(ctx context.Context, stats *Stats) error {
	payload, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("redis: failed to marshal stats: %w", err)
	}

	if err := cache.client.Set(ctx, constants.RedisPrefixStats, payload, constants.StatsCacheTTL).Err(); err != nil {
		return fmt.Errorf("redis: failed to set stats: %w", err)
	}

	return nil
}

// Invalidate drops the cached aggregates after a catalogue mutation.
func (cache *statsCache) Invalidate(ctx context.Context) error {
	if err := cache.client.Del(ctx, constants.RedisPrefixStats).Err(); err != nil {
		return fmt.Errorf("redis: failed to invalidate stats: %w", err)
	}
	return nil
}
