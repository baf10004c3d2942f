package catalog

import (
	"fmt"
	"strings"
)

// MediaType distinguishes films from series.
type MediaType string

const (
	Movie  MediaType = "movie"
	Series MediaType = "series"
)

// MediaTypes lists the types in fetch order.
var MediaTypes = []MediaType{Movie, Series}

// ParseMediaType accepts catalog, TMDB, Trakt, and output spellings.
func ParseMediaType(value string) (MediaType, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "movie", "movies", "film":
		return Movie, nil
	case "series", "tv", "show", "shows":
		return Series, nil
	default:
		return "", fmt.Errorf("unknown media type %q", value)
	}
}

// Label is the type string written to output records.
func (m MediaType) Label() string {
	if m == Series {
		return "Series"
	}
	return "Film"
}

// TMDBPath is the path segment TMDB uses for the type.
func (m MediaType) TMDBPath() string {
	if m == Series {
		return "tv"
	}
	return "movie"
}

// TraktType is the singular form used by Trakt search filters and result keys.
func (m MediaType) TraktType() string {
	if m == Series {
		return "show"
	}
	return "movie"
}

// TraktCollection is the plural form used by Trakt resource paths.
func (m MediaType) TraktCollection() string {
	return m.TraktType() + "s"
}

func (m MediaType) String() string { return string(m) }
