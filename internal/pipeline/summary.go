package pipeline

import (
	"time"

	"flixlist/internal/catalog"
	"flixlist/internal/enrichment"
	"flixlist/internal/publish"
)

// Summary reports what a run did.
type Summary struct {
	RunID    string
	Started  time.Time
	Duration time.Duration

	Fetched    map[catalog.MediaType]int
	Candidates int
	// Dropped counts catalog items without a usable title.
	Dropped      int
	IMDbFilled   int
	Lookups      enrichment.Stats
	Admitted     int
	Rejections   map[catalog.Reason]int
	Overrides    int
	Duplicates   int
	RecentTitles int

	Full   publish.Result
	Recent publish.Result
}

// Rejected returns the total number of rejected candidates.
func (s Summary) Rejected() int {
	total := 0
	for _, n := range s.Rejections {
		total += n
	}
	return total
}

// Changed reports whether either view changed on disk.
func (s Summary) Changed() bool {
	return s.Full.Changed() || s.Recent.Changed()
}
