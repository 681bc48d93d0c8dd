// Copyright (c) 2026 SkyComic. All rights reserved.

package hexid_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/skycomic/skycomic/pkg/hexid"
)

/*
TestNew verifies generated identifiers have the canonical form and are unique.
*/
func TestNew(t *testing.T) {
	seen := make(map[string]bool)

	for i := 0; i < 1000; i++ {
		id := hexid.New()

		assert.Len(t, id, hexid.Length)
		assert.True(t, hexid.Is(id), "generated id must match the canonical format: %s", id)
		assert.False(t, seen[id], "duplicate id generated: %s", id)
		seen[id] = true
	}
}

/*
TestIs exercises the dual-mode dispatch format test.
*/
func TestIs(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want bool
	}{
		{"canonical_lowercase", "507f1f77bcf86cd799439011", true},
		{"canonical_uppercase", "507F1F77BCF86CD799439011", true},
		{"legacy_numeric", "42", false},
		{"too_short", "507f1f77bcf86cd79943901", false},
		{"too_long", "507f1f77bcf86cd7994390111", false},
		{"non_hex", "507f1f77bcf86cd79943901z", false},
		{"empty", "", false},
		{"uuid_form", "0189c6a5-6f7e-7c3a-9d2e-1a2b3c4d5e6f", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, hexid.Is(tt.raw))
		})
	}
}
