package testsupport

import (
	"path/filepath"
	"testing"

	"flixlist/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with a unique temp output directory per
// test, placeholder credentials, and no retry backoff or lookup delay.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.OutputDir = filepath.Join(base, "out")
	cfgVal.Paths.ExclusionLog = filepath.Join(base, "out", "excluded_titles.log")
	cfgVal.Paths.LockFile = filepath.Join(base, "out", ".flixlist.lock")
	cfgVal.Catalog.APIKey = "test-unogs"
	cfgVal.TMDB.APIKey = "test-tmdb"
	cfgVal.Trakt.ClientID = "test-trakt"
	cfgVal.Trakt.LookupDelayMillis = 0
	cfgVal.Trakt.RetryDelayMillis = 0
	cfgVal.TMDB.RequestsPerSecond = 0

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithCatalogServer points the catalog client at a test server.
func WithCatalogServer(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Catalog.BaseURL = url
	}
}

// WithTMDBServer points the TMDB client at a test server.
func WithTMDBServer(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.TMDB.BaseURL = url
	}
}

// WithTraktServer points the Trakt client at a test server.
func WithTraktServer(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Trakt.BaseURL = url
	}
}

// WithAvailability toggles the TMDB availability gate and release date
// backfill together.
func WithAvailability(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.TMDB.CheckAvailability = enabled
		b.cfg.TMDB.BackfillReleaseDates = enabled
	}
}

// WithOverridesFile writes body to an override file and configures it.
func WithOverridesFile(body string) ConfigOption {
	return func(b *configBuilder) {
		path := filepath.Join(b.baseDir, "overrides.json")
		WriteText(b.t, path, body)
		b.cfg.Paths.Overrides = path
	}
}

// WithMetricsTextfile enables the metrics textfile inside the temp dir.
func WithMetricsTextfile() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.MetricsTextfile = filepath.Join(b.baseDir, "metrics", "flixlist.prom")
	}
}

// WithLogDir enables the file log inside the temp dir.
func WithLogDir() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.LogDir = filepath.Join(b.baseDir, "logs")
	}
}
