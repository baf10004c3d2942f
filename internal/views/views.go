// Package views derives the published catalog views from admitted records.
package views

import (
	"strings"
	"time"

	"flixlist/internal/catalog"
)

// RecentWindow is how far back the recent view reaches.
const RecentWindow = 90 * 24 * time.Hour

type dedupeKey struct {
	title       string
	kind        string
	releaseDate string
}

// Dedupe drops records that repeat an earlier (trimmed title, type,
// release date) triple. Order is preserved and the first occurrence wins.
func Dedupe(records []catalog.Record) ([]catalog.Record, int) {
	seen := make(map[dedupeKey]struct{}, len(records))
	out := make([]catalog.Record, 0, len(records))
	for _, r := range records {
		key := dedupeKey{
			title:       strings.TrimSpace(r.Title),
			kind:        r.Type,
			releaseDate: r.ReleaseDate,
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out, len(records) - len(out)
}

// Recent returns the records whose recency date (dateAdded, else
// releaseDate) falls within the 90 days ending on today, inclusive. Only the
// UTC calendar date of today is used.
func Recent(records []catalog.Record, today time.Time) []catalog.Record {
	today = today.UTC()
	end := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	start := end.AddDate(0, 0, -int(RecentWindow/(24*time.Hour)))
	out := make([]catalog.Record, 0)
	for _, r := range records {
		date, ok := r.RecencyDate()
		if !ok {
			continue
		}
		if date.Before(start) || date.After(end) {
			continue
		}
		out = append(out, r)
	}
	return out
}
