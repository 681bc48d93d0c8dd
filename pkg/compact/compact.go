// Copyright (c) 2026 SkyComic. All rights reserved.

/*
Package compact implements the compact view-count notation used across the
catalogue ("12.5M", "3K", "500").

The codec is lossy by design: formatting keeps one decimal place, and parsing
tolerates arbitrary junk by yielding 0. Stored view counts predate the API and
mix plain numbers with compact strings, so both directions must accept
anything the database may contain.

Rules:

  - Parse: suffix K = ×1e3, M = ×1e6 (case-insensitive); unparsable → 0.
  - Format: ≥1e6 → "x.xM", ≥1e3 → "x.xK", else the plain integer string.
*/
package compact

import (
	"math"
	"strconv"
	"strings"
)

// # Parsing

// Parse converts a compact view-count string into a raw count.
//
// Examples: "12.5M" → 12500000, "3K" → 3000, "500" → 500, "" → 0.
func Parse(s string) int64 {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return 0
	}

	multiplier := 1.0
	switch {
	case strings.Contains(s, "M"):
		multiplier = 1e6
	case strings.Contains(s, "K"):
		multiplier = 1e3
	}

	return int64(math.Round(leadingFloat(s) * multiplier))
}

// # Formatting

// Format renders a raw count in compact notation with one decimal place.
//
// Examples: 12503500 → "12.5M", 3000 → "3.0K", 500 → "500".
func Format(n int64) string {
	switch {
	case n >= 1e6:
		return strconv.FormatFloat(float64(n)/1e6, 'f', 1, 64) + "M"
	case n >= 1e3:
		return strconv.FormatFloat(float64(n)/1e3, 'f', 1, 64) + "K"
	default:
		return strconv.FormatInt(n, 10)
	}
}

// leadingFloat parses the longest numeric prefix of s, returning 0 when no
// prefix parses. This mirrors how legacy data was originally ingested
// ("12.5M" yields 12.5).
func leadingFloat(s string) float64 {
	for end := len(s); end > 0; end-- {
		if v, err := strconv.ParseFloat(s[:end], 64); err == nil {
			return v
		}
	}
	return 0
}
