package preflight

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"flixlist/internal/config"
	"flixlist/internal/imdb"
	"flixlist/internal/tmdb"
	"flixlist/internal/trakt"
	"flixlist/internal/unogs"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	// Skipped marks checks for disabled features.
	Skipped bool
	Detail  string
}

// Options adjusts RunAll.
type Options struct {
	// Offline skips the reachability probes.
	Offline bool
	Logger  *slog.Logger
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config, opts Options) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckCredential("Catalog API key", cfg.Catalog.APIKey, true),
		CheckCredential("Trakt client id", cfg.Trakt.ClientID, true),
		CheckCredential("TMDB API key", cfg.TMDB.APIKey, cfg.TMDB.CheckAvailability || cfg.TMDB.BackfillReleaseDates),
		CheckDirectoryAccess("Output directory", filepath.Dir(cfg.FullCatalogPath())),
	}
	if cfg.Paths.LogDir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}
	if cfg.Paths.MetricsTextfile != "" {
		results = append(results, CheckDirectoryAccess("Metrics directory", filepath.Dir(cfg.Paths.MetricsTextfile)))
	}
	if opts.Offline {
		return results
	}

	results = append(results, probeCatalog(ctx, cfg, opts.Logger))
	results = append(results, probeTMDB(ctx, cfg))
	results = append(results, probeTrakt(ctx, cfg))
	results = append(results, probeIMDb(ctx, cfg))
	return results
}

// Failed reports whether any non-skipped check failed.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed && !r.Skipped {
			return true
		}
	}
	return false
}

func probeCatalog(ctx context.Context, cfg *config.Config, logger *slog.Logger) Result {
	const name = "Catalog API"
	client, err := unogs.New(unogs.Settings{
		APIKey:    cfg.Catalog.APIKey,
		BaseURL:   cfg.Catalog.BaseURL,
		Host:      cfg.Catalog.Host,
		CountryID: cfg.Catalog.CountryID,
		PageSize:  1,
		Timeout:   cfg.CatalogTimeout(),
	}, unogs.WithLogger(logger))
	if err != nil {
		return Result{Name: name, Skipped: true, Detail: "not configured"}
	}
	return CheckReachable(ctx, name, cfg.CatalogTimeout(), client.Ping)
}

func probeTMDB(ctx context.Context, cfg *config.Config) Result {
	const name = "TMDB API"
	if !cfg.TMDB.CheckAvailability && !cfg.TMDB.BackfillReleaseDates {
		return Result{Name: name, Skipped: true, Detail: "disabled"}
	}
	client, err := tmdb.New(cfg.TMDB.APIKey, cfg.TMDB.BaseURL, cfg.TMDB.Language, tmdb.WithTimeout(cfg.TMDBTimeout()))
	if err != nil {
		return Result{Name: name, Skipped: true, Detail: "not configured"}
	}
	return CheckReachable(ctx, name, cfg.TMDBTimeout(), client.Ping)
}

func probeTrakt(ctx context.Context, cfg *config.Config) Result {
	const name = "Trakt API"
	client, err := trakt.New(cfg.Trakt.ClientID, cfg.Trakt.BaseURL, trakt.WithTimeout(cfg.TraktTimeout()))
	if err != nil {
		return Result{Name: name, Skipped: true, Detail: "not configured"}
	}
	return CheckReachable(ctx, name, cfg.TraktTimeout(), client.Ping)
}

func probeIMDb(ctx context.Context, cfg *config.Config) Result {
	const name = "IMDb"
	if !cfg.IMDb.BackfillMissing {
		return Result{Name: name, Skipped: true, Detail: "backfill disabled"}
	}
	timeout := time.Duration(cfg.IMDb.TimeoutSeconds) * time.Second
	client, err := imdb.New(cfg.IMDb.BaseURL, timeout)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	return CheckReachable(ctx, name, timeout, client.Ping)
}
