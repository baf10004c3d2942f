package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeCatalog()
	c.normalizeTMDB()
	c.normalizeTrakt()
	c.normalizeIMDb()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	c.Paths.FullCatalog = strings.TrimSpace(c.Paths.FullCatalog)
	if c.Paths.FullCatalog == "" {
		c.Paths.FullCatalog = defaultFullCatalog
	}
	c.Paths.RecentCatalog = strings.TrimSpace(c.Paths.RecentCatalog)
	if c.Paths.RecentCatalog == "" {
		c.Paths.RecentCatalog = defaultRecentCatalog
	}
	c.Paths.LockFile = strings.TrimSpace(c.Paths.LockFile)
	if c.Paths.LockFile == "" {
		c.Paths.LockFile = defaultLockFile
	}
	c.Paths.ExclusionLog = strings.TrimSpace(c.Paths.ExclusionLog)
	if c.Paths.Overrides, err = expandPath(strings.TrimSpace(c.Paths.Overrides)); err != nil {
		return fmt.Errorf("paths.overrides: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.MetricsTextfile, err = expandPath(strings.TrimSpace(c.Paths.MetricsTextfile)); err != nil {
		return fmt.Errorf("paths.metrics_textfile: %w", err)
	}
	return nil
}

func (c *Config) normalizeCatalog() {
	if c.Catalog.APIKey == "" {
		if value, ok := os.LookupEnv("UNOGS_API_KEY"); ok {
			c.Catalog.APIKey = value
		}
	}
	c.Catalog.APIKey = strings.TrimSpace(c.Catalog.APIKey)
	c.Catalog.BaseURL = strings.TrimRight(strings.TrimSpace(c.Catalog.BaseURL), "/")
	if c.Catalog.BaseURL == "" {
		c.Catalog.BaseURL = defaultCatalogBaseURL
	}
	c.Catalog.Host = strings.TrimSpace(c.Catalog.Host)
	if c.Catalog.Host == "" {
		c.Catalog.Host = defaultCatalogHost
	}
	c.Catalog.CountryID = strings.TrimSpace(c.Catalog.CountryID)
	if c.Catalog.CountryID == "" {
		c.Catalog.CountryID = defaultCatalogCountryID
	}
	if c.Catalog.PageSize == 0 {
		c.Catalog.PageSize = defaultCatalogPageSize
	}
	if c.Catalog.TimeoutSeconds == 0 {
		c.Catalog.TimeoutSeconds = defaultCatalogTimeout
	}
}

func (c *Config) normalizeTMDB() {
	if c.TMDB.APIKey == "" {
		if value, ok := os.LookupEnv("TMDB_API_KEY"); ok {
			c.TMDB.APIKey = value
		}
	}
	c.TMDB.APIKey = strings.TrimSpace(c.TMDB.APIKey)
	if value, ok := os.LookupEnv("FLIXLIST_CHECK_AVAILABILITY"); ok {
		if enabled, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			c.TMDB.CheckAvailability = enabled
		}
	}
	c.TMDB.BaseURL = strings.TrimRight(strings.TrimSpace(c.TMDB.BaseURL), "/")
	if c.TMDB.BaseURL == "" {
		c.TMDB.BaseURL = defaultTMDBBaseURL
	}
	c.TMDB.Language = strings.TrimSpace(c.TMDB.Language)
	c.TMDB.Region = strings.ToUpper(strings.TrimSpace(c.TMDB.Region))
	if c.TMDB.Region == "" {
		c.TMDB.Region = defaultTMDBRegion
	}
	if c.TMDB.ProviderID == 0 {
		c.TMDB.ProviderID = defaultTMDBProviderID
	}
	if c.TMDB.TimeoutSeconds == 0 {
		c.TMDB.TimeoutSeconds = defaultTMDBTimeout
	}
}

func (c *Config) normalizeTrakt() {
	if c.Trakt.ClientID == "" {
		if value, ok := os.LookupEnv("TRAKT_CLIENT_ID"); ok {
			c.Trakt.ClientID = value
		}
	}
	c.Trakt.ClientID = strings.TrimSpace(c.Trakt.ClientID)
	c.Trakt.BaseURL = strings.TrimRight(strings.TrimSpace(c.Trakt.BaseURL), "/")
	if c.Trakt.BaseURL == "" {
		c.Trakt.BaseURL = defaultTraktBaseURL
	}
	if c.Trakt.TimeoutSeconds == 0 {
		c.Trakt.TimeoutSeconds = defaultTraktTimeout
	}
	if c.Trakt.Workers == 0 {
		c.Trakt.Workers = defaultTraktWorkers
	}
	if c.Trakt.RetryAttempts == 0 {
		c.Trakt.RetryAttempts = defaultTraktRetryAttempts
	}
	if c.Trakt.BreakerFailures == 0 {
		c.Trakt.BreakerFailures = defaultTraktBreakerFailures
	}
	if c.Trakt.BreakerCooldownSeconds == 0 {
		c.Trakt.BreakerCooldownSeconds = defaultTraktBreakerCooldown
	}
}

func (c *Config) normalizeIMDb() {
	c.IMDb.BaseURL = strings.TrimRight(strings.TrimSpace(c.IMDb.BaseURL), "/")
	if c.IMDb.BaseURL == "" {
		c.IMDb.BaseURL = defaultIMDbBaseURL
	}
	if c.IMDb.TimeoutSeconds == 0 {
		c.IMDb.TimeoutSeconds = defaultIMDbTimeout
	}
}

func (c *Config) normalizeNotifications() {
	if c.Notifications.NtfyTopic == "" {
		if value, ok := os.LookupEnv("NTFY_TOPIC"); ok {
			c.Notifications.NtfyTopic = value
		}
	}
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyRequestTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
