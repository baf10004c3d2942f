package catalog

import "time"

// DateLayout is the calendar date format used in output records.
const DateLayout = "2006-01-02"

// Candidate is a normalized title from the catalog source. Zero times and
// invalid ratings mean the value was absent upstream.
type Candidate struct {
	Title           string
	MediaType       MediaType
	ExternalID      int64
	IMDbID          string
	ReleaseDate     time.Time
	DateAdded       time.Time
	PrimaryRating   Rating
	SecondaryHint   Rating
	SecondaryRating Rating
}

// HasExternalID reports whether the candidate carries a TMDB id.
func (c Candidate) HasExternalID() bool {
	return c.ExternalID > 0
}

// Record is one entry in a published catalog file.
type Record struct {
	Title       string `json:"title" validate:"required"`
	Type        string `json:"type" validate:"oneof=Film Series"`
	IMDbRating  Rating `json:"imdbRating"`
	TraktRating Score  `json:"traktRating" validate:"gte=0,lte=10"`
	ReleaseDate string `json:"releaseDate" validate:"omitempty,datetime=2006-01-02"`
	DateAdded   string `json:"dateAdded" validate:"omitempty,datetime=2006-01-02"`
	TMDBID      *int64 `json:"tmdb_id" validate:"omitempty,gt=0"`
}

// FormatDate renders t as YYYY-MM-DD, or "" when t is zero.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// RecencyDate returns the date that places the record in the recent window:
// dateAdded, else releaseDate. The bool is false when neither parses.
func (r Record) RecencyDate() (time.Time, bool) {
	for _, raw := range []string{r.DateAdded, r.ReleaseDate} {
		if raw == "" {
			continue
		}
		if t, err := time.Parse(DateLayout, raw); err == nil {
			return t, true
		}
		return time.Time{}, false
	}
	return time.Time{}, false
}
