package pipeline

import (
	"context"
	"log/slog"
	"time"

	"flixlist/internal/admission"
	"flixlist/internal/catalog"
	"flixlist/internal/config"
	"flixlist/internal/enrichment"
	"flixlist/internal/imdb"
	"flixlist/internal/metrics"
	"flixlist/internal/notifications"
	"flixlist/internal/retry"
	"flixlist/internal/services"
	"flixlist/internal/tmdb"
	"flixlist/internal/trakt"
	"flixlist/internal/unogs"
)

// CatalogSource yields raw catalog items, movies before series.
type CatalogSource interface {
	FetchAll(ctx context.Context) ([]unogs.Item, error)
}

// PrimaryRatingSource resolves an IMDb rating from an IMDb id.
type PrimaryRatingSource interface {
	Rating(ctx context.Context, imdbID string) (catalog.Rating, error)
}

// Deps wires the collaborators of a run. Optional sources may be nil.
type Deps struct {
	Config *config.Config
	Logger *slog.Logger

	Catalog      CatalogSource
	Secondary    enrichment.Source
	Availability admission.AvailabilityChecker
	ReleaseDates admission.ReleaseDateSource
	IMDb         PrimaryRatingSource

	// SecondaryRetryable classifies secondary lookup errors for the retry
	// policy. Nil retries everything but permanent failures.
	SecondaryRetryable func(error) bool

	Notifier notifications.Service
	Metrics  *metrics.Recorder
	Now      func() time.Time
}

// NewDeps builds the production collaborators from cfg. Missing mandatory
// credentials are reported as configuration errors.
func NewDeps(cfg *config.Config, logger *slog.Logger) (Deps, error) {
	deps := Deps{
		Config:             cfg,
		Logger:             logger,
		Notifier:           notifications.NewService(cfg),
		Metrics:            metrics.New(),
		SecondaryRetryable: trakt.Retryable,
		Now:                time.Now,
	}

	catalogClient, err := unogs.New(unogs.Settings{
		APIKey:    cfg.Catalog.APIKey,
		BaseURL:   cfg.Catalog.BaseURL,
		Host:      cfg.Catalog.Host,
		CountryID: cfg.Catalog.CountryID,
		PageSize:  cfg.Catalog.PageSize,
		Timeout:   cfg.CatalogTimeout(),
	}, unogs.WithLogger(logger))
	if err != nil {
		return Deps{}, err
	}
	deps.Catalog = catalogClient

	traktClient, err := trakt.New(cfg.Trakt.ClientID, cfg.Trakt.BaseURL,
		trakt.WithTimeout(cfg.TraktTimeout()),
		trakt.WithBreaker(cfg.Trakt.BreakerFailures, time.Duration(cfg.Trakt.BreakerCooldownSeconds)*time.Second),
		trakt.WithLogger(logger),
	)
	if err != nil {
		return Deps{}, err
	}
	deps.Secondary = traktClient

	if cfg.TMDB.CheckAvailability || cfg.TMDB.BackfillReleaseDates {
		tmdbClient, err := tmdb.New(cfg.TMDB.APIKey, cfg.TMDB.BaseURL, cfg.TMDB.Language,
			tmdb.WithTimeout(cfg.TMDBTimeout()),
			tmdb.WithRateLimit(cfg.TMDB.RequestsPerSecond),
		)
		if err != nil {
			return Deps{}, services.Wrap(services.ErrConfiguration, "admission", "tmdb", "client setup", err)
		}
		oracle := tmdb.NewOracle(tmdbClient, cfg.TMDB.Region, cfg.TMDB.ProviderID,
			retry.Fixed(cfg.Trakt.RetryAttempts, cfg.RetryDelay()))
		if cfg.TMDB.CheckAvailability {
			deps.Availability = oracle
		}
		if cfg.TMDB.BackfillReleaseDates {
			deps.ReleaseDates = oracle
		}
	}

	if cfg.IMDb.BackfillMissing {
		imdbClient, err := imdb.New(cfg.IMDb.BaseURL, time.Duration(cfg.IMDb.TimeoutSeconds)*time.Second)
		if err != nil {
			return Deps{}, services.Wrap(services.ErrConfiguration, "imdb_backfill", "imdb", "client setup", err)
		}
		deps.IMDb = imdbClient
	}
	return deps, nil
}
