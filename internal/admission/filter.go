package admission

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"flixlist/internal/catalog"
	"flixlist/internal/logging"
)

// AvailabilityChecker answers whether a title streams in the target region.
type AvailabilityChecker interface {
	Available(ctx context.Context, mediaType catalog.MediaType, externalID int64) (bool, error)
}

// ReleaseDateSource backfills release dates the catalog did not provide.
type ReleaseDateSource interface {
	ReleaseDate(ctx context.Context, mediaType catalog.MediaType, externalID int64) (time.Time, bool, error)
}

// Options toggles the optional network-backed steps.
type Options struct {
	CheckAvailability    bool
	BackfillReleaseDates bool
}

// Result is the outcome of filtering a batch.
type Result struct {
	Admitted []catalog.Record
	Rejected []catalog.Rejection
}

// Counts returns the number of rejections per reason.
func (r Result) Counts() map[catalog.Reason]int {
	counts := make(map[catalog.Reason]int, len(catalog.Reasons))
	for _, rej := range r.Rejected {
		counts[rej.Reason]++
	}
	return counts
}

// Filter applies the admission gates.
type Filter struct {
	availability AvailabilityChecker
	dates        ReleaseDateSource
	options      Options
	logger       *slog.Logger
}

// New builds a Filter. availability and dates may be nil when the matching
// option is disabled.
func New(availability AvailabilityChecker, dates ReleaseDateSource, opts Options, logger *slog.Logger) *Filter {
	if availability == nil {
		opts.CheckAvailability = false
	}
	if dates == nil {
		opts.BackfillReleaseDates = false
	}
	return &Filter{
		availability: availability,
		dates:        dates,
		options:      opts,
		logger:       logging.NewComponentLogger(logger, "admission"),
	}
}

// Apply evaluates candidates in order. onReject, when non-nil, is called
// for every rejection as it happens.
func (f *Filter) Apply(ctx context.Context, candidates []catalog.Candidate, onReject func(catalog.Rejection)) (Result, error) {
	var result Result
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		record, rejection := f.Evaluate(ctx, c)
		if rejection != nil {
			result.Rejected = append(result.Rejected, *rejection)
			if onReject != nil {
				onReject(*rejection)
			}
			continue
		}
		result.Admitted = append(result.Admitted, record)
	}
	f.logger.Info("admission finished",
		logging.Int("candidates", len(candidates)),
		logging.Int("admitted", len(result.Admitted)),
		logging.Int("rejected", len(result.Rejected)),
		logging.String(logging.FieldEventType, "admission_finished"),
	)
	return result, nil
}

// Evaluate runs the gates for one candidate. Exactly one of the return values
// is meaningful: a nil rejection means the record was admitted. A panic while
// evaluating is reported as a ProcessingError rejection.
func (f *Filter) Evaluate(ctx context.Context, c catalog.Candidate) (record catalog.Record, rejection *catalog.Rejection) {
	logger := f.logger.With(
		logging.String(logging.FieldTitle, c.Title),
		logging.String(logging.FieldMediaType, c.MediaType.String()),
	)
	defer func() {
		if r := recover(); r != nil {
			logging.ErrorWithContext(logger, "candidate processing panicked", "admission_panic",
				logging.Any("panic", r),
				logging.String("stack", string(debug.Stack())),
			)
			record = catalog.Record{}
			rejection = f.rejection(c, reject(catalog.ReasonProcessingError, fmt.Sprint(r)))
		}
	}()

	if v := f.checkAvailability(ctx, c, logger); v != nil {
		return catalog.Record{}, f.rejection(c, v)
	}
	if v := checkBenchmark(c); v != nil {
		return catalog.Record{}, f.rejection(c, v)
	}
	if v := checkConsistency(c); v != nil {
		return catalog.Record{}, f.rejection(c, v)
	}
	return f.project(ctx, c, logger), nil
}

func (f *Filter) checkAvailability(ctx context.Context, c catalog.Candidate, logger *slog.Logger) *verdict {
	if !f.options.CheckAvailability || !c.HasExternalID() {
		return nil
	}
	ok, err := f.availability.Available(ctx, c.MediaType, c.ExternalID)
	if err != nil {
		logging.WarnWithContext(logger, "availability lookup failed", "availability_failed",
			logging.Int64(logging.FieldExternalID, c.ExternalID),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check tmdb api key and connectivity"),
			logging.String(logging.FieldImpact, "title excluded from this run"),
		)
		return reject(catalog.ReasonProcessingError, "availability lookup: "+err.Error())
	}
	if !ok {
		return reject(catalog.ReasonNotAvailable, "not on the regional flatrate list")
	}
	return nil
}

func (f *Filter) project(ctx context.Context, c catalog.Candidate, logger *slog.Logger) catalog.Record {
	record := catalog.Record{
		Title:       c.Title,
		Type:        c.MediaType.Label(),
		IMDbRating:  c.PrimaryRating,
		TraktRating: catalog.Score(c.SecondaryRating.Value),
		ReleaseDate: catalog.FormatDate(c.ReleaseDate),
		DateAdded:   catalog.FormatDate(c.DateAdded),
	}
	if c.HasExternalID() {
		id := c.ExternalID
		record.TMDBID = &id
	}
	if record.ReleaseDate == "" && c.HasExternalID() && f.options.BackfillReleaseDates {
		date, ok, err := f.dates.ReleaseDate(ctx, c.MediaType, c.ExternalID)
		switch {
		case err != nil:
			logging.WarnWithContext(logger, "release date backfill failed", "release_date_backfill_failed",
				logging.Int64(logging.FieldExternalID, c.ExternalID),
				logging.Error(err),
				logging.String(logging.FieldImpact, "record written without a release date"),
			)
		case ok:
			record.ReleaseDate = catalog.FormatDate(date)
		}
	}
	return record
}

func (f *Filter) rejection(c catalog.Candidate, v *verdict) *catalog.Rejection {
	f.logger.Debug("candidate rejected",
		logging.String(logging.FieldTitle, c.Title),
		logging.String(logging.FieldReason, string(v.reason)),
		logging.String("detail", v.detail),
	)
	return &catalog.Rejection{
		Title:      c.Title,
		MediaType:  c.MediaType,
		ExternalID: c.ExternalID,
		Reason:     v.reason,
		Detail:     v.detail,
	}
}
