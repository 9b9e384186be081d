// Package search merges whisky name matches from session history and the
// reference library into a single deduplicated candidate list.
package search

import (
	"strings"
	"unicode/utf8"

	"github.com/freemaltson/whiskynights/internal/library"
	"github.com/freemaltson/whiskynights/internal/metrics"
	"github.com/freemaltson/whiskynights/internal/session"
)

// DefaultLimit caps the combined candidate list.
const DefaultLimit = 10

// Sources of a candidate result.
const (
	SourceLocal   = "local"
	SourceLibrary = "library"
)

// Result is one search candidate. Library-sourced results never carry a
// price or image; those only exist on session records.
type Result struct {
	Whisky   string   `json:"whisky"`
	Region   string   `json:"region"`
	Type     string   `json:"type,omitempty"`
	RRP      *float64 `json:"rrp"`
	ImageURL *string  `json:"image_url"`
	Source   string   `json:"source"`
}

// Candidates matches the query case-insensitively as a substring against
// session history first and the reference library second, deduplicating on
// the lowercased whisky name. History matches win ties by pass ordering.
// A trimmed query shorter than two characters returns nothing: too cheap a
// query to be worth the scan.
func Candidates(query string, local []session.Record, lib []library.Entry, limit int) []Result {
	q := strings.ToLower(strings.TrimSpace(query))
	if utf8.RuneCountInString(q) < 2 {
		return nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	seen := make(map[string]struct{})
	results := make([]Result, 0, limit)

	for _, rec := range local {
		if rec.Whisky == "" {
			continue
		}
		lower := strings.ToLower(rec.Whisky)
		if !strings.Contains(lower, q) {
			continue
		}
		if _, dup := seen[lower]; dup {
			continue
		}
		seen[lower] = struct{}{}
		var image *string
		if rec.ImageURL != "" {
			u := rec.ImageURL
			image = &u
		}
		results = append(results, Result{
			Whisky:   rec.Whisky,
			Region:   rec.Region,
			RRP:      rec.RRP,
			ImageURL: image,
			Source:   SourceLocal,
		})
		metrics.RecordSearchResult(SourceLocal)
	}

	for _, entry := range lib {
		lower := strings.ToLower(entry.Whisky)
		if !strings.Contains(lower, q) {
			continue
		}
		if _, dup := seen[lower]; dup {
			continue
		}
		seen[lower] = struct{}{}
		results = append(results, Result{
			Whisky: entry.Whisky,
			Region: entry.Region,
			Type:   entry.Type,
			Source: SourceLibrary,
		})
		metrics.RecordSearchResult(SourceLibrary)
	}

	if len(results) > limit {
		results = results[:limit]
	}
	return results
}
