package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateCatalog(); err != nil {
		return err
	}
	if err := c.validateTMDB(); err != nil {
		return err
	}
	if err := c.validateTrakt(); err != nil {
		return err
	}
	if err := c.validateIMDb(); err != nil {
		return err
	}
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func configHint() string {
	defaultPath, err := DefaultConfigPath()
	if err != nil {
		defaultPath = "~/.config/flixlist/config.toml"
	}
	return defaultPath
}

func (c *Config) validateCatalog() error {
	if c.Catalog.APIKey == "" {
		return fmt.Errorf("catalog.api_key is required. Set UNOGS_API_KEY env var or edit %s (create with 'flixlist config init')", configHint())
	}
	if c.Catalog.PageSize < 1 || c.Catalog.PageSize > 100 {
		return errors.New("catalog.page_size must be between 1 and 100")
	}
	if c.Catalog.TimeoutSeconds <= 0 {
		return errors.New("catalog.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateTMDB() error {
	if c.TMDB.CheckAvailability && c.TMDB.APIKey == "" {
		return fmt.Errorf("tmdb.api_key is required when tmdb.check_availability is true. Set TMDB_API_KEY env var or edit %s", configHint())
	}
	if c.TMDB.BackfillReleaseDates && c.TMDB.APIKey == "" {
		return errors.New("tmdb.api_key is required when tmdb.backfill_release_dates is true")
	}
	if c.TMDB.TimeoutSeconds <= 0 {
		return errors.New("tmdb.timeout_seconds must be positive")
	}
	if c.TMDB.RequestsPerSecond < 0 {
		return errors.New("tmdb.requests_per_second must be >= 0")
	}
	if c.TMDB.ProviderID <= 0 {
		return errors.New("tmdb.provider_id must be positive")
	}
	return nil
}

func (c *Config) validateTrakt() error {
	if c.Trakt.ClientID == "" {
		return fmt.Errorf("trakt.client_id is required. Set TRAKT_CLIENT_ID env var or edit %s", configHint())
	}
	if c.Trakt.TimeoutSeconds <= 0 {
		return errors.New("trakt.timeout_seconds must be positive")
	}
	if c.Trakt.Workers <= 0 {
		return errors.New("trakt.workers must be positive")
	}
	if c.Trakt.RetryAttempts <= 0 {
		return errors.New("trakt.retry_attempts must be positive")
	}
	if c.Trakt.LookupDelayMillis < 0 {
		return errors.New("trakt.lookup_delay_ms must be >= 0")
	}
	if c.Trakt.RetryDelayMillis < 0 {
		return errors.New("trakt.retry_delay_ms must be >= 0")
	}
	if c.Trakt.BreakerFailures <= 0 {
		return errors.New("trakt.breaker_failures must be positive")
	}
	if c.Trakt.BreakerCooldownSeconds <= 0 {
		return errors.New("trakt.breaker_cooldown_seconds must be positive")
	}
	return nil
}

func (c *Config) validateIMDb() error {
	if !c.IMDb.BackfillMissing {
		return nil
	}
	if c.IMDb.TimeoutSeconds <= 0 {
		return errors.New("imdb.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.FullCatalog == c.Paths.RecentCatalog {
		return errors.New("paths.full_catalog and paths.recent_catalog must differ")
	}
	for _, name := range []string{c.Paths.FullCatalog, c.Paths.RecentCatalog} {
		if !strings.HasSuffix(strings.ToLower(name), ".json") {
			return fmt.Errorf("catalog output %q must use a .json extension", name)
		}
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q is not supported", c.Logging.Level)
	}
}
