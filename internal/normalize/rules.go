package normalize

import (
	"errors"
	"strings"
	"time"

	"flixlist/internal/catalog"
)

// ErrEmptyTitle is returned for items with no usable title.
var ErrEmptyTitle = errors.New("item has no title")

// Raw is one decoded catalog item.
type Raw map[string]any

// Rule reads one upstream key and converts its value.
type Rule[T any] struct {
	Key   string
	Parse func(any) (T, bool)
}

// First applies rules in order and returns the first successful conversion.
func First[T any](raw Raw, rules []Rule[T]) (T, bool) {
	for _, rule := range rules {
		value, ok := raw[rule.Key]
		if !ok {
			continue
		}
		if out, ok := rule.Parse(value); ok {
			return out, true
		}
	}
	var zero T
	return zero, false
}

var (
	titleRules = []Rule[string]{
		{Key: "title", Parse: nonEmptyTitle},
		{Key: "t", Parse: nonEmptyTitle},
		{Key: "name", Parse: nonEmptyTitle},
	}
	externalIDRules = []Rule[int64]{
		{Key: "tmid", Parse: positiveID},
		{Key: "tmdbid", Parse: positiveID},
		{Key: "tmdb_id", Parse: positiveID},
	}
	imdbIDRules = []Rule[string]{
		{Key: "imdbid", Parse: imdbID},
		{Key: "imid", Parse: imdbID},
	}
	releaseDateRules = []Rule[time.Time]{
		{Key: "release_year", Parse: Year},
		{Key: "released", Parse: Year},
		{Key: "released", Parse: Date},
		{Key: "releaseDate", Parse: Date},
	}
	dateAddedRules = []Rule[time.Time]{
		{Key: "ndate", Parse: Date},
		{Key: "dateAdded", Parse: Date},
	}
	primaryRatingRules = []Rule[catalog.Rating]{
		{Key: "imdbrating", Parse: presentRating},
		{Key: "imdbRating", Parse: presentRating},
	}
	secondaryHintRules = []Rule[catalog.Rating]{
		{Key: "tmdb_rating", Parse: presentRating},
		{Key: "rating", Parse: presentRating},
	}
)

// Candidate converts a raw catalog item of the given media type.
func Candidate(raw Raw, mediaType catalog.MediaType) (catalog.Candidate, error) {
	title, ok := First(raw, titleRules)
	if !ok {
		return catalog.Candidate{}, ErrEmptyTitle
	}
	c := catalog.Candidate{
		Title:     title,
		MediaType: mediaType,
	}
	c.ExternalID, _ = First(raw, externalIDRules)
	c.IMDbID, _ = First(raw, imdbIDRules)
	c.ReleaseDate, _ = First(raw, releaseDateRules)
	c.DateAdded, _ = First(raw, dateAddedRules)
	c.PrimaryRating, _ = First(raw, primaryRatingRules)
	c.SecondaryHint, _ = First(raw, secondaryHintRules)
	return c, nil
}

func nonEmptyTitle(value any) (string, bool) {
	title := Title(value)
	return title, title != ""
}

func positiveID(value any) (int64, bool) {
	id := ExternalID(value)
	return id, id > 0
}

func imdbID(value any) (string, bool) {
	id := strings.TrimSpace(text(value))
	return id, strings.HasPrefix(id, "tt") && len(id) > 2
}

func presentRating(value any) (catalog.Rating, bool) {
	r := Rating(value)
	return r, r.Valid
}
