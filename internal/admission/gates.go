package admission

import (
	"fmt"
	"math"

	"flixlist/internal/catalog"
)

const (
	// Benchmark is the minimum admissible rating.
	Benchmark = 8.0
	// MaxDivergence is the largest tolerated gap between the primary and
	// secondary rating, as a fraction of the primary.
	MaxDivergence = 0.3
)

// Ratings are compared in tenths so that one-decimal inputs such as 8.0
// and 5.6 are not misjudged by binary rounding.
func tenths(v float64) int64 {
	return int64(math.Round(v * 10))
}

// BenchmarkScore returns the rating the benchmark applies to: the primary
// rating, else the catalog hint.
func BenchmarkScore(c catalog.Candidate) (catalog.Rating, bool) {
	if c.PrimaryRating.Valid {
		return c.PrimaryRating, true
	}
	if c.SecondaryHint.Valid {
		return c.SecondaryHint, true
	}
	return catalog.Rating{}, false
}

// CanPassBenchmark reports whether c clears the benchmark gate. It is used to
// skip secondary lookups for candidates that would be rejected anyway.
func CanPassBenchmark(c catalog.Candidate) bool {
	return checkBenchmark(c) == nil
}

func checkBenchmark(c catalog.Candidate) *verdict {
	score, ok := BenchmarkScore(c)
	if !ok {
		return reject(catalog.ReasonMissingPrimaryRating, "no imdb rating and no catalog hint")
	}
	if tenths(score.Value) < tenths(Benchmark) {
		source := "imdb"
		if !c.PrimaryRating.Valid {
			source = "hint"
		}
		return reject(catalog.ReasonBelowBenchmark, fmt.Sprintf("%s rating %s below %.1f", source, score, Benchmark))
	}
	return nil
}

func checkConsistency(c catalog.Candidate) *verdict {
	if !c.SecondaryRating.Valid {
		return reject(catalog.ReasonMissingSecondaryRating, "no trakt rating")
	}
	if !c.PrimaryRating.Valid {
		return nil
	}
	primary := tenths(c.PrimaryRating.Value)
	gap := primary - tenths(c.SecondaryRating.Value)
	if gap < 0 {
		gap = -gap
	}
	// gap and primary are both in tenths; MaxDivergence is 3/10.
	if gap*10 > primary*int64(math.Round(MaxDivergence*10)) {
		return reject(catalog.ReasonInconsistentScores,
			fmt.Sprintf("imdb %s vs trakt %s", c.PrimaryRating, c.SecondaryRating))
	}
	return nil
}

type verdict struct {
	reason catalog.Reason
	detail string
}

func reject(reason catalog.Reason, detail string) *verdict {
	return &verdict{reason: reason, detail: detail}
}
