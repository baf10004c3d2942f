package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"flixlist/internal/admission"
	"flixlist/internal/catalog"
	"flixlist/internal/enrichment"
	"flixlist/internal/exclusions"
	"flixlist/internal/logging"
	"flixlist/internal/metrics"
	"flixlist/internal/normalize"
	"flixlist/internal/notifications"
	"flixlist/internal/overrides"
	"flixlist/internal/publish"
	"flixlist/internal/retry"
	"flixlist/internal/services"
	"flixlist/internal/views"
	"flixlist/internal/workpool"
)

// Stage names used in logs, errors and notifications.
const (
	StageLock      = "lock"
	StageFetch     = "fetch"
	StageBackfill  = "imdb_backfill"
	StageEnrich    = "enrichment"
	StageAdmission = "admission"
	StageViews     = "views"
	StagePublish   = "publish"
)

// Metric view labels.
const (
	viewFull   = "full"
	viewRecent = "recent"
)

type runner struct {
	deps    Deps
	logger  *slog.Logger
	summary Summary
	stage   string
}

// Run executes one refresh. On success both views have been written. On a
// fatal error neither view is touched; services.IsFatal classifies it.
func Run(ctx context.Context, deps Deps) (Summary, error) {
	if deps.Config == nil {
		return Summary{}, errors.New("pipeline: config is required")
	}
	if deps.Catalog == nil || deps.Secondary == nil {
		return Summary{}, services.Wrap(services.ErrConfiguration, StageFetch, "pipeline", "catalog and secondary sources are required", nil)
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Notifier == nil {
		deps.Notifier = notifications.NewService(nil)
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}

	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	r := &runner{
		deps: deps,
		summary: Summary{
			RunID:      runID,
			Started:    deps.Now(),
			Fetched:    make(map[catalog.MediaType]int, len(catalog.MediaTypes)),
			Rejections: make(map[catalog.Reason]int, len(catalog.Reasons)),
		},
	}
	r.logger = logging.WithContext(ctx, logging.NewComponentLogger(deps.Logger, "pipeline"))
	r.logger.Info("run started", logging.String(logging.FieldEventType, "run_start"))

	err := r.run(ctx)
	r.summary.Duration = deps.Now().Sub(r.summary.Started)
	r.finish(ctx, err)
	return r.summary, err
}

func (r *runner) run(ctx context.Context) error {
	cfg := r.deps.Config

	r.stage = StageLock
	if err := cfg.EnsureDirectories(); err != nil {
		return services.Wrap(services.ErrConfiguration, StageLock, "ensure directories", "", err)
	}
	lock := flock.New(cfg.LockFilePath())
	locked, err := lock.TryLock()
	if err != nil {
		return services.Wrap(services.ErrConfiguration, StageLock, "acquire run lock", cfg.LockFilePath(), err)
	}
	if !locked {
		return services.Wrap(services.ErrRunInProgress, StageLock, "acquire run lock", cfg.LockFilePath(), nil)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			r.logger.Warn("release run lock", logging.Error(err))
		}
	}()

	excluded, err := exclusions.Open(cfg.ExclusionLogPath(), r.summary.RunID)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, StageLock, "open exclusion log", "", err)
	}
	defer func() {
		if err := excluded.Close(); err != nil {
			r.logger.Warn("close exclusion log", logging.Error(err))
		}
	}()

	candidates, err := r.fetch(ctx)
	if err != nil {
		return err
	}
	candidates, err = r.backfillIMDb(ctx, candidates)
	if err != nil {
		return err
	}
	candidates, err = r.enrich(ctx, candidates)
	if err != nil {
		return err
	}
	admitted, err := r.admit(ctx, candidates, excluded)
	if err != nil {
		return err
	}
	full, recent := r.views(ctx, admitted)
	return r.publish(ctx, full, recent)
}

func (r *runner) stageLogger(ctx context.Context, stage string) (context.Context, *slog.Logger) {
	r.stage = stage
	ctx = services.WithStage(ctx, stage)
	return ctx, logging.WithContext(ctx, logging.NewComponentLogger(r.deps.Logger, "pipeline"))
}

func (r *runner) fetch(ctx context.Context) ([]catalog.Candidate, error) {
	ctx, logger := r.stageLogger(ctx, StageFetch)
	items, err := r.deps.Catalog.FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}

	candidates := make([]catalog.Candidate, 0, len(items))
	for _, item := range items {
		r.summary.Fetched[item.MediaType]++
		c, err := normalize.Candidate(item.Raw, item.MediaType)
		if err != nil {
			r.summary.Dropped++
			logger.Debug("catalog item dropped", logging.Error(err))
			continue
		}
		candidates = append(candidates, c)
	}
	r.summary.Candidates = len(candidates)
	for _, mt := range catalog.MediaTypes {
		r.deps.Metrics.SetCandidates(mt, r.summary.Fetched[mt])
	}
	if len(candidates) == 0 {
		return nil, services.Wrap(services.ErrNoCandidates, StageFetch, "catalog", "catalog returned no usable titles", nil)
	}
	logger.Info("candidates ready",
		logging.Int("candidates", len(candidates)),
		logging.Int("dropped", r.summary.Dropped),
		logging.String(logging.FieldEventType, "candidates_ready"),
	)
	return candidates, nil
}

func (r *runner) backfillIMDb(ctx context.Context, candidates []catalog.Candidate) ([]catalog.Candidate, error) {
	if r.deps.IMDb == nil {
		return candidates, nil
	}
	ctx, logger := r.stageLogger(ctx, StageBackfill)
	var filled atomic.Int64
	out, err := workpool.Map(ctx, r.deps.Config.Trakt.Workers, candidates, func(ctx context.Context, _ int, c catalog.Candidate) (catalog.Candidate, error) {
		if c.PrimaryRating.Valid || c.IMDbID == "" {
			return c, nil
		}
		rating, err := r.deps.IMDb.Rating(ctx, c.IMDbID)
		if err != nil {
			logger.Debug("imdb backfill failed",
				logging.String(logging.FieldTitle, c.Title),
				logging.String("imdb_id", c.IMDbID),
				logging.Error(err),
			)
			return c, nil
		}
		if rating.Valid {
			c.PrimaryRating = rating
			filled.Add(1)
		}
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	r.summary.IMDbFilled = int(filled.Load())
	logger.Info("imdb backfill finished",
		logging.Int("filled", r.summary.IMDbFilled),
		logging.String(logging.FieldEventType, "imdb_backfill_finished"),
	)
	return out, nil
}

func (r *runner) enrich(ctx context.Context, candidates []catalog.Candidate) ([]catalog.Candidate, error) {
	ctx, logger := r.stageLogger(ctx, StageEnrich)
	cfg := r.deps.Config
	enricher := enrichment.New(r.deps.Secondary, enrichment.Options{
		Workers: cfg.Trakt.Workers,
		Delay:   cfg.LookupDelay(),
		Policy: retry.Policy{
			Attempts:  cfg.Trakt.RetryAttempts,
			Delay:     cfg.RetryDelay(),
			Retryable: r.deps.SecondaryRetryable,
		},
	}, logger)
	out, err := enricher.EnrichAll(ctx, candidates, admission.CanPassBenchmark)
	stats := enricher.Stats()
	r.summary.Lookups = stats
	r.deps.Metrics.AddLookups(metrics.LookupNetwork, stats.Lookups)
	r.deps.Metrics.AddLookups(metrics.LookupCache, stats.CacheHits)
	r.deps.Metrics.AddLookups(metrics.LookupFailure, stats.Failures)
	if err != nil {
		return nil, fmt.Errorf("enrich candidates: %w", err)
	}
	return out, nil
}

func (r *runner) admit(ctx context.Context, candidates []catalog.Candidate, excluded *exclusions.Log) ([]catalog.Record, error) {
	ctx, logger := r.stageLogger(ctx, StageAdmission)
	cfg := r.deps.Config
	filter := admission.New(r.deps.Availability, r.deps.ReleaseDates, admission.Options{
		CheckAvailability:    cfg.TMDB.CheckAvailability,
		BackfillReleaseDates: cfg.TMDB.BackfillReleaseDates,
	}, logger)
	result, err := filter.Apply(ctx, candidates, func(rej catalog.Rejection) {
		if err := excluded.Record(rej); err != nil {
			logging.WarnWithContext(logger, "exclusion log write failed", "exclusion_log_failed",
				logging.String(logging.FieldTitle, rej.Title),
				logging.Error(err),
				logging.String(logging.FieldImpact, "exclusion log incomplete"),
			)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("admission: %w", err)
	}
	r.summary.Admitted = len(result.Admitted)
	for reason, n := range result.Counts() {
		r.summary.Rejections[reason] = n
	}
	r.deps.Metrics.SetAdmitted(r.summary.Admitted)
	r.deps.Metrics.SetRejected(r.summary.Rejections)
	return result.Admitted, nil
}

func (r *runner) views(ctx context.Context, admitted []catalog.Record) ([]catalog.Record, []catalog.Record) {
	_, logger := r.stageLogger(ctx, StageViews)
	cfg := r.deps.Config

	extra, err := overrides.Load(cfg.Paths.Overrides)
	if err != nil {
		logging.WarnWithContext(logger, "override file ignored", "overrides_invalid",
			logging.String("path", cfg.Paths.Overrides),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "fix the override file; see 'flixlist config validate'"),
			logging.String(logging.FieldImpact, "curated titles missing from this run"),
		)
	}
	merged, added := overrides.Merge(admitted, extra, logger)
	full, duplicates := views.Dedupe(merged)
	recent := views.Recent(full, r.deps.Now())

	r.summary.Overrides = added
	r.summary.Duplicates = duplicates
	r.summary.RecentTitles = len(recent)
	r.deps.Metrics.SetOverrides(added)
	r.deps.Metrics.SetDuplicates(duplicates)
	logger.Info("views derived",
		logging.Int("full", len(full)),
		logging.Int("recent", len(recent)),
		logging.Int("overrides", added),
		logging.Int("duplicates", duplicates),
		logging.String(logging.FieldEventType, "views_derived"),
	)
	return full, recent
}

func (r *runner) publish(ctx context.Context, full, recent []catalog.Record) error {
	_, logger := r.stageLogger(ctx, StagePublish)
	cfg := r.deps.Config
	writer := publish.NewWriter(logger)

	// Both views are checked before either file is replaced.
	if err := writer.Validate(full); err != nil {
		return err
	}
	if err := writer.Validate(recent); err != nil {
		return err
	}
	var err error
	if r.summary.Full, err = writer.Write(cfg.FullCatalogPath(), full); err != nil {
		return fmt.Errorf("write full catalog: %w", err)
	}
	if r.summary.Recent, err = writer.Write(cfg.RecentCatalogPath(), recent); err != nil {
		return fmt.Errorf("write recent catalog: %w", err)
	}
	r.deps.Metrics.SetWritten(viewFull, len(full))
	r.deps.Metrics.SetWritten(viewRecent, len(recent))
	return nil
}

func (r *runner) finish(ctx context.Context, runErr error) {
	cfg := r.deps.Config
	r.deps.Metrics.Finish(r.summary.Duration, r.deps.Now(), runErr == nil)
	if err := r.deps.Metrics.WriteTextfile(cfg.Paths.MetricsTextfile); err != nil {
		logging.WarnWithContext(r.logger, "metrics textfile write failed", "metrics_write_failed",
			logging.String("path", cfg.Paths.MetricsTextfile),
			logging.Error(err),
			logging.String(logging.FieldImpact, "metrics stale until next run"),
		)
	}

	notifyCtx := context.WithoutCancel(ctx)
	if runErr != nil {
		logging.ErrorWithContext(r.logger, "run failed", "run_failed",
			logging.String(logging.FieldStage, r.stage),
			logging.Error(runErr),
			logging.Bool("fatal", services.IsFatal(runErr)),
		)
		if err := r.deps.Notifier.NotifyRunFailed(notifyCtx, runErr, r.stage); err != nil {
			r.logger.Warn("failure notification not sent", logging.Error(err))
		}
		return
	}

	r.logger.Info("run finished",
		logging.Int("candidates", r.summary.Candidates),
		logging.Int("admitted", r.summary.Admitted),
		logging.Int("rejected", r.summary.Rejected()),
		logging.Int("recent", r.summary.RecentTitles),
		logging.Duration("duration", r.summary.Duration),
		logging.String(logging.FieldEventType, "run_finished"),
	)
	report := notifications.RunReport{
		Candidates: r.summary.Candidates,
		Admitted:   r.summary.Full.Records,
		Recent:     r.summary.RecentTitles,
		Rejected:   r.summary.Rejected(),
		Overrides:  r.summary.Overrides,
		Changed:    r.summary.Changed(),
		Duration:   r.summary.Duration,
	}
	if err := r.deps.Notifier.NotifyRunCompleted(notifyCtx, report); err != nil {
		r.logger.Warn("completion notification not sent", logging.Error(err))
	}
}
