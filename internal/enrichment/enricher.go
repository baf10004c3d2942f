package enrichment

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"flixlist/internal/catalog"
	"flixlist/internal/logging"
	"flixlist/internal/retry"
	"flixlist/internal/services"
	"flixlist/internal/workpool"
)

// Source resolves a secondary rating for a TMDB id.
type Source interface {
	Rating(ctx context.Context, mediaType catalog.MediaType, externalID int64) (catalog.Rating, error)
}

// Options tunes an Enricher.
type Options struct {
	Workers int
	// Delay follows each successful network lookup.
	Delay  time.Duration
	Policy retry.Policy
	// Sleep overrides how Delay is taken (useful for tests).
	Sleep func(context.Context, time.Duration) error
}

// Stats summarizes the work done by an Enricher.
type Stats struct {
	Lookups   int64
	CacheHits int64
	Failures  int64
	Absent    int64
}

// Enricher performs memoized secondary rating lookups.
type Enricher struct {
	source  Source
	cache   *Cache
	group   singleflight.Group
	options Options
	logger  *slog.Logger

	lookups   atomic.Int64
	cacheHits atomic.Int64
	failures  atomic.Int64
	absent    atomic.Int64
}

// New creates an Enricher backed by source.
func New(source Source, opts Options, logger *slog.Logger) *Enricher {
	if opts.Workers <= 0 {
		opts.Workers = workpool.DefaultWorkers
	}
	return &Enricher{
		source:  source,
		cache:   NewCache(),
		options: opts,
		logger:  logging.NewComponentLogger(logger, "enrichment"),
	}
}

// Lookup returns the secondary rating for the key. Failures resolve to an
// absent rating and are memoized like successes.
func (e *Enricher) Lookup(ctx context.Context, mediaType catalog.MediaType, externalID int64) catalog.Rating {
	key := Key{MediaType: mediaType, ExternalID: externalID}
	if rating, ok := e.cache.Lookup(key); ok {
		e.cacheHits.Add(1)
		return rating
	}

	value, _, shared := e.group.Do(key.String(), func() (any, error) {
		if rating, ok := e.cache.Lookup(key); ok {
			e.cacheHits.Add(1)
			return rating, nil
		}
		rating := e.fetch(ctx, key)
		e.cache.Store(key, rating)
		return rating, nil
	})
	if shared {
		e.cacheHits.Add(1)
	}
	return value.(catalog.Rating)
}

func (e *Enricher) fetch(ctx context.Context, key Key) catalog.Rating {
	e.lookups.Add(1)
	rating, err := retry.Do(ctx, e.options.Policy, func(ctx context.Context) (catalog.Rating, error) {
		return e.source.Rating(ctx, key.MediaType, key.ExternalID)
	})
	if errors.Is(err, services.ErrNotFound) {
		e.absent.Add(1)
		e.logger.Debug("no secondary match",
			logging.String(logging.FieldMediaType, key.MediaType.String()),
			logging.Int64(logging.FieldExternalID, key.ExternalID),
		)
		return catalog.Rating{}
	}
	if err != nil {
		e.failures.Add(1)
		logging.WarnWithContext(e.logger, "secondary lookup failed", "secondary_lookup_failed",
			logging.String(logging.FieldMediaType, key.MediaType.String()),
			logging.Int64(logging.FieldExternalID, key.ExternalID),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check trakt client id and connectivity"),
			logging.String(logging.FieldImpact, "title treated as missing secondary rating"),
		)
		return catalog.Rating{}
	}
	if !rating.Valid {
		e.absent.Add(1)
	}
	// A cancelled pause still yields the fetched rating.
	_ = e.pause(ctx)
	return rating
}

func (e *Enricher) pause(ctx context.Context) error {
	delay := e.options.Delay
	if e.options.Sleep != nil {
		return e.options.Sleep(ctx, delay)
	}
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// EnrichAll fills SecondaryRating for every candidate selected by eligible,
// using the configured worker count. The returned slice has the same order
// as candidates.
func (e *Enricher) EnrichAll(ctx context.Context, candidates []catalog.Candidate, eligible func(catalog.Candidate) bool) ([]catalog.Candidate, error) {
	out, err := workpool.Map(ctx, e.options.Workers, candidates, func(ctx context.Context, _ int, c catalog.Candidate) (catalog.Candidate, error) {
		if !c.HasExternalID() || (eligible != nil && !eligible(c)) {
			return c, nil
		}
		c.SecondaryRating = e.Lookup(ctx, c.MediaType, c.ExternalID)
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	stats := e.Stats()
	e.logger.Info("enrichment finished",
		logging.Int("candidates", len(candidates)),
		logging.Int64("lookups", stats.Lookups),
		logging.Int64("cache_hits", stats.CacheHits),
		logging.Int64("failures", stats.Failures),
		logging.String(logging.FieldEventType, "enrichment_finished"),
	)
	return out, nil
}

// Stats returns a snapshot of lookup counters.
func (e *Enricher) Stats() Stats {
	return Stats{
		Lookups:   e.lookups.Load(),
		CacheHits: e.cacheHits.Load(),
		Failures:  e.failures.Load(),
		Absent:    e.absent.Load(),
	}
}
