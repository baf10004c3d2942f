package catalog

// Reason tags why a candidate was excluded.
type Reason string

const (
	ReasonNotAvailable           Reason = "NotAvailable"
	ReasonMissingPrimaryRating   Reason = "MissingPrimaryRating"
	ReasonBelowBenchmark         Reason = "BelowBenchmark"
	ReasonMissingSecondaryRating Reason = "MissingSecondaryRating"
	ReasonInconsistentScores     Reason = "InconsistentScores"
	ReasonProcessingError        Reason = "ProcessingError"
)

// Reasons lists every tag in gate order.
var Reasons = []Reason{
	ReasonNotAvailable,
	ReasonMissingPrimaryRating,
	ReasonBelowBenchmark,
	ReasonMissingSecondaryRating,
	ReasonInconsistentScores,
	ReasonProcessingError,
}

// Rejection records one excluded candidate.
type Rejection struct {
	Title      string    `json:"title"`
	MediaType  MediaType `json:"mediaType"`
	ExternalID int64     `json:"tmdb_id,omitempty"`
	Reason     Reason    `json:"reason"`
	Detail     string    `json:"detail,omitempty"`
}
