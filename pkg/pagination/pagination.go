// Copyright (c) 2026 SkyComic. All rights reserved.

// Package pagination provides shared types and helpers for API list endpoints.
//
// # Overview
//
// It standardizes how page-based navigation is requested via query parameters.
// The catalogue listing endpoint predates pagination and returns the full
// result set when no parameters are sent, so [FromRequest] distinguishes
// "absent" from "present but invalid".
package pagination

import (
	"net/http"
	"strconv"
)

const (
	// DefaultLimit is the number of items per page if only "page" is specified.
	DefaultLimit = 20
	// MaxLimit is the upper bound for items per page to prevent system abuse.
	MaxLimit = 100
	// DefaultPage is the starting page (1-indexed).
	DefaultPage = 1
)

// Params holds the parsed page and limit from a request's query string.
//
// Windowed is false when the client sent neither parameter, in which case the
// endpoint returns the complete result set (the pre-pagination contract).
type Params struct {
	Page     int
	Limit    int
	Windowed bool
}

// Offset returns the SQL OFFSET value derived from [Page] and [Limit].
func (p Params) Offset() int {
	if p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// FromRequest parses "page" and "limit" query parameters from an HTTP request.
//
// # Clamping
//
// Invalid, negative, or excessive values are automatically clamped to
// [DefaultPage], [DefaultLimit], or [MaxLimit].
func FromRequest(r *http.Request) Params {
	rawPage := r.URL.Query().Get("page")
	rawLimit := r.URL.Query().Get("limit")

	if rawPage == "" && rawLimit == "" {
		return Params{Page: DefaultPage, Limit: 0, Windowed: false}
	}

	page := parseIntParam(rawPage, DefaultPage)
	limit := parseIntParam(rawLimit, DefaultLimit)

	if page < 1 {
		page = DefaultPage
	}

	if limit < 1 || limit > MaxLimit {
		limit = DefaultLimit
	}

	return Params{Page: page, Limit: limit, Windowed: true}
}

// parseIntParam parses a single integer query parameter with a fallback default.
func parseIntParam(raw string, defaultVal int) int {
	if raw == "" {
		return defaultVal
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return defaultVal
	}

	return n
}
