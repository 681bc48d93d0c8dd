// Copyright (c) 2026 SkyComic. All rights reserved.

/*
Package hexid provides the canonical 24-character hexadecimal identifiers
used for every entity primary key, plus the single format test that drives
dual-mode identifier dispatch.

Layout:

  - 4 bytes: Unix timestamp in seconds (big-endian) — roughly time-sortable.
  - 8 bytes: Cryptographically random entropy.

The 24-hex format matches the identifiers pre-migration clients already hold,
so it is a permanent part of the wire contract: any path parameter matching
[Is] resolves via canonical lookup, anything else via legacy numeric lookup.
*/
package hexid

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"regexp"
	"time"
)

// Length is the canonical identifier length in characters.
const Length = 24

// pattern matches exactly 24 hexadecimal characters (case-insensitive).
var pattern = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)

// # Generators

// New generates a new canonical identifier.
func New() string {
	var raw [12]byte

	// Leading 4 bytes: creation time, for index-friendly rough ordering.
	binary.BigEndian.PutUint32(raw[:4], uint32(time.Now().Unix()))

	// Trailing 8 bytes: entropy. Failure to read randomness is an
	// unrecoverable system-level error.
	if _, err := rand.Read(raw[4:]); err != nil {
		panic("hexid: failed to read random bytes: " + err.Error())
	}

	return hex.EncodeToString(raw[:])
}

// # Format Detection

// Is reports whether raw has the canonical 24-hex form.
//
// This is the load-bearing dual-mode dispatch test: true → canonical id
// lookup, false → legacy numeric id lookup.
func Is(raw string) bool {
	return pattern.MatchString(raw)
}
