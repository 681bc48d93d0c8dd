// Copyright (c) 2026 SkyComic. All rights reserved.

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, and cross-cutting keys that are shared
between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Burst capacities and IP tracking TTLs.
  - Uploads: Multipart size/count limits for image submission.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "skycomic-api"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	// Sized generously because chapter uploads carry up to 50 images.
	DefaultReadTimeout = 60 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 60 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 90 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 100.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 150

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Uploads

const (
	// MaxUploadBytes is the per-file size limit for image uploads (10MB).
	MaxUploadBytes = 10 << 20

	// MaxChapterPages is the maximum number of page images per chapter upload.
	MaxChapterPages = 50

	// CoverFormField is the multipart field name for single cover uploads.
	CoverFormField = "cover"

	// PagesFormField is the multipart field name for multi-file page uploads.
	PagesFormField = "pages"
)

// # Media

const (
	// DefaultSignedURLExpiry is the lifetime of a presigned object-storage URL.
	DefaultSignedURLExpiry = 3600 * time.Second
)

// # HTTP Headers

const (
	HeaderXRequestID = "X-Request-ID"
	HeaderOrigin     = "Origin"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	// RedisPrefixStats namespaces the cached catalogue aggregates.
	RedisPrefixStats = "catalogue:stats"
)

// # Cache Timing

const (
	// StatsCacheTTL bounds the staleness of the dashboard aggregates.
	StatsCacheTTL = 60 * time.Second
)
