// Copyright (c) 2026 SkyComic. All rights reserved.

/*
Package storage provides the Cloudflare R2 object-storage adapter.

R2 speaks the S3 protocol, so the adapter is a thin wrapper over a
minio-go client pointed at the account-scoped R2 endpoint.

Core Responsibilities:

  - Upload: Writes image bytes under a caller-chosen key.
  - Resolution: Turns stored references into browser-usable URLs, either
    permanent public links (when a public base URL is configured) or
    time-limited presigned URLs.
  - Degradation: When credentials are absent the adapter is constructed in a
    disabled state; uploads fail with a service-unavailable condition and
    resolution yields no URL. The process still serves read traffic.

The adapter holds no state beyond its configuration.
*/
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/skycomic/skycomic/internal/platform/apperr"
	"github.com/skycomic/skycomic/internal/platform/config"
)

// ErrNotConfigured is returned by mutating operations when the adapter was
// constructed without credentials. It maps to HTTP 503.
var ErrNotConfigured = apperr.ServiceUnavailable("Object storage is not configured")

// Client is the R2 adapter. A nil inner client means storage is disabled.
type Client struct {
	s3            *minio.Client
	bucket        string
	publicBaseURL string
	logger        *slog.Logger
}

// New constructs the R2 adapter from configuration.
//
// Missing account id or credentials do not fail startup: the adapter comes up
// disabled so that the rest of the API keeps working without object storage.
func New(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	client := &Client{
		bucket:        cfg.R2Bucket,
		publicBaseURL: strings.TrimRight(cfg.R2PublicURL, "/"),
		logger:        logger,
	}

	if cfg.R2AccountID == "" || cfg.R2AccessKeyID == "" || cfg.R2SecretAccessKey == "" || cfg.R2Bucket == "" {
		logger.Warn("object storage disabled",
			slog.Bool("account_id_set", cfg.R2AccountID != ""),
			slog.Bool("credentials_set", cfg.R2AccessKeyID != "" && cfg.R2SecretAccessKey != ""),
		)
		return client, nil
	}

	endpoint := fmt.Sprintf("%s.r2.cloudflarestorage.com", cfg.R2AccountID)

	s3, err := minio.New(endpoint, &minio.Options{
		Creds:        credentials.NewStaticV4(cfg.R2AccessKeyID, cfg.R2SecretAccessKey, ""),
		Secure:       true,
		Region:       "auto",
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("storage: failed to build R2 client: %w", err)
	}

	client.s3 = s3

	logger.Info("object storage configured",
		slog.String("endpoint", endpoint),
		slog.String("bucket", cfg.R2Bucket),
		slog.Bool("public_url", client.publicBaseURL != ""),
	)

	return client, nil
}

// Enabled reports whether the adapter holds a usable R2 client.
func (client *Client) Enabled() bool {
	return client.s3 != nil && client.bucket != ""
}

/*
Put uploads an object and returns its tagged storage reference.

Parameters:
  - context: context.Context
  - key: string (Object key, e.g. "covers/12/1700000000000.jpg")
  - body: io.Reader (File content)
  - size: int64 (Content length in bytes)
  - contentType: string (MIME type)

Returns:
  - Ref: Tagged storage reference ("r2:<key>")
  - error: ErrNotConfigured when disabled; remote I/O failures otherwise
*/
func (client *Client) Put(context context.Context, key string, body io.Reader, size int64, contentType string) (Ref, error) {
	if !client.Enabled() {
		return Ref{}, ErrNotConfigured
	}

	_, err := client.s3.PutObject(context, client.bucket, key, body, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return Ref{}, fmt.Errorf("storage: failed to put object %q: %w", key, err)
	}

	return KeyRef(key), nil
}

/*
ResolveURL turns a stored reference into a browser-usable URL.

Description: Plain URLs pass through unchanged. Storage keys resolve to a
permanent public link when a public base URL is configured, otherwise to a
time-limited presigned URL. An empty reference or a disabled adapter yields
an empty string without error — callers decide whether that is a 404.

Parameters:
  - context: context.Context
  - reference: Ref (Tagged reference or plain URL)
  - expiry: time.Duration (Signed URL lifetime; ignored for public links)

Returns:
  - string: Usable URL, or "" when unresolvable
  - error: Presigning failures only
*/
func (client *Client) ResolveURL(context context.Context, reference Ref, expiry time.Duration) (string, error) {
	if reference.IsZero() {
		return "", nil
	}

	// Plain URL passthrough
	if !reference.IsKey() {
		return reference.Value, nil
	}

	if !client.Enabled() {
		return "", nil
	}

	// Permanent public link
	if client.publicBaseURL != "" {
		return client.publicBaseURL + "/" + reference.Value, nil
	}

	// Time-limited signed URL
	signed, err := client.s3.PresignedGetObject(context, client.bucket, reference.Value, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("storage: failed to presign %q: %w", reference.Value, err)
	}

	return signed.String(), nil
}
