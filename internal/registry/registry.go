// Package registry holds the authoritative set of currently valid coupon
// codes, loaded once per run from an external source.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrEmptySource is returned when the source yields no usable codes.
	// A run must abort on this rather than proceed with an empty registry,
	// which would mislabel every mention as invalid.
	ErrEmptySource = errors.New("coupon source returned no codes")

	// ErrSourceFetch wraps failures reaching the coupon source.
	ErrSourceFetch = errors.New("failed to fetch coupon source")
)

// Source supplies the raw coupon list as plain strings. The registry owns
// normalization and validation of whatever the source returns.
type Source interface {
	FetchCodes(ctx context.Context) ([]string, error)
}

// StaticSource is a fixed in-memory coupon list, used when no spreadsheet
// is configured.
type StaticSource []string

// FetchCodes returns a copy of the static list.
func (s StaticSource) FetchCodes(_ context.Context) ([]string, error) {
	codes := make([]string, len(s))
	copy(codes, s)
	return codes, nil
}

// Registry is the normalized set of active coupon codes for one run.
// It holds no cross-run state; each run loads a fresh snapshot.
type Registry struct {
	codes map[string]struct{}
	strip string
}

// Load fetches codes from the source and builds the registry. Entries are
// normalized (trimmed, uppercased, separator characters in strip removed);
// empty entries are dropped and duplicates-after-normalization collapse
// silently. An unreachable or empty source is a distinct, loud error.
func Load(ctx context.Context, source Source, strip string) (*Registry, error) {
	raw, err := source.FetchCodes(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceFetch, err)
	}

	r := &Registry{
		codes: make(map[string]struct{}, len(raw)),
		strip: strip,
	}
	for _, code := range raw {
		normalized := r.Normalize(code)
		if normalized == "" {
			continue
		}
		r.codes[normalized] = struct{}{}
	}

	if len(r.codes) == 0 {
		return nil, ErrEmptySource
	}

	return r, nil
}

// Normalize canonicalizes a code: whitespace trimmed, uppercased, and any
// configured separator characters removed.
func (r *Registry) Normalize(code string) string {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if r.strip == "" {
		return normalized
	}
	return strings.Map(func(c rune) rune {
		if strings.ContainsRune(r.strip, c) {
			return -1
		}
		return c
	}, normalized)
}

// IsActive reports whether the code is in the current registry snapshot.
func (r *Registry) IsActive(code string) bool {
	_, ok := r.codes[r.Normalize(code)]
	return ok
}

// Codes returns the active codes in sorted order.
func (r *Registry) Codes() []string {
	codes := make([]string, 0, len(r.codes))
	for code := range r.codes {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Len returns the number of active codes.
func (r *Registry) Len() int {
	return len(r.codes)
}
