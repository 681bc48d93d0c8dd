// Copyright (c) 2026 SkyComic. All rights reserved.

package storage

import "strings"

// refPrefix marks a stored value as an object-storage key rather than a plain
// URL. The prefix is persisted in the database and understood by pre-migration
// clients, so it is part of the wire contract.
const refPrefix = "r2:"

// RefKind discriminates the two forms an image reference can take.
type RefKind int

const (
	// KindURL is a plain, directly usable URL (passed through unchanged).
	KindURL RefKind = iota

	// KindKey is an object-storage key that must be resolved to a public or
	// signed URL before a browser can use it.
	KindKey
)

// Ref is a tagged image reference: either a plain URL or an object-storage key.
//
// It replaces ad-hoc string sniffing with a single parse at the boundary while
// preserving the persisted "r2:<key>" string form exactly.
type Ref struct {
	Kind  RefKind
	Value string
}

// ParseRef classifies a stored reference string.
//
// "r2:covers/1/169.jpg" → KindKey "covers/1/169.jpg"; anything else → KindURL.
func ParseRef(s string) Ref {
	if key, ok := strings.CutPrefix(s, refPrefix); ok {
		return Ref{Kind: KindKey, Value: key}
	}
	return Ref{Kind: KindURL, Value: s}
}

// KeyRef builds a storage-key reference from a raw object key.
func KeyRef(key string) Ref {
	return Ref{Kind: KindKey, Value: key}
}

// String renders the persisted form: keys carry the "r2:" prefix, URLs are verbatim.
func (r Ref) String() string {
	if r.Kind == KindKey {
		return refPrefix + r.Value
	}
	return r.Value
}

// IsKey reports whether the reference points into object storage.
func (r Ref) IsKey() bool { return r.Kind == KindKey }

// IsZero reports whether the reference is empty.
func (r Ref) IsZero() bool { return r.Value == "" }
