package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains output locations and auxiliary file paths.
type Paths struct {
	OutputDir       string `toml:"output_dir"`
	FullCatalog     string `toml:"full_catalog"`
	RecentCatalog   string `toml:"recent_catalog"`
	Overrides       string `toml:"overrides"`
	ExclusionLog    string `toml:"exclusion_log"`
	LogDir          string `toml:"log_dir"`
	MetricsTextfile string `toml:"metrics_textfile"`
	LockFile        string `toml:"lock_file"`
}

// Catalog contains configuration for the uNoGS catalog search API.
type Catalog struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Host           string `toml:"host"`
	CountryID      string `toml:"country_id"`
	PageSize       int    `toml:"page_size"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// TMDB contains configuration for The Movie Database API, which serves as the
// availability oracle and the release date source.
type TMDB struct {
	APIKey               string  `toml:"api_key"`
	BaseURL              string  `toml:"base_url"`
	Language             string  `toml:"language"`
	Region               string  `toml:"region"`
	ProviderID           int64   `toml:"provider_id"`
	CheckAvailability    bool    `toml:"check_availability"`
	BackfillReleaseDates bool    `toml:"backfill_release_dates"`
	TimeoutSeconds       int     `toml:"timeout_seconds"`
	RequestsPerSecond    float64 `toml:"requests_per_second"`
}

// Trakt contains configuration for the secondary rating source.
type Trakt struct {
	ClientID               string `toml:"client_id"`
	BaseURL                string `toml:"base_url"`
	TimeoutSeconds         int    `toml:"timeout_seconds"`
	LookupDelayMillis      int    `toml:"lookup_delay_ms"`
	Workers                int    `toml:"workers"`
	RetryAttempts          int    `toml:"retry_attempts"`
	RetryDelayMillis       int    `toml:"retry_delay_ms"`
	BreakerFailures        int    `toml:"breaker_failures"`
	BreakerCooldownSeconds int    `toml:"breaker_cooldown_seconds"`
}

// IMDb contains configuration for the optional IMDb rating backfill.
type IMDb struct {
	BackfillMissing bool   `toml:"backfill_missing"`
	BaseURL         string `toml:"base_url"`
	TimeoutSeconds  int    `toml:"timeout_seconds"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for flixlist.
//
// Configuration sections by subsystem:
//   - Paths: output files, override input, diagnostics
//   - Catalog: uNoGS candidate source
//   - TMDB: availability oracle and release date details
//   - Trakt: secondary rating lookups
//   - IMDb: optional primary rating backfill
//   - Notifications: ntfy push notification settings
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Catalog       Catalog       `toml:"catalog"`
	TMDB          TMDB          `toml:"tmdb"`
	Trakt         Trakt         `toml:"trakt"`
	IMDb          IMDb          `toml:"imdb"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/flixlist/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/flixlist/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("flixlist.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the output directory and, when configured, the log directory.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.OutputDir}
	if strings.TrimSpace(c.Paths.LogDir) != "" {
		dirs = append(dirs, c.Paths.LogDir)
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// FullCatalogPath returns the absolute path of the full catalog output file.
func (c *Config) FullCatalogPath() string {
	return c.outputFile(c.Paths.FullCatalog)
}

// RecentCatalogPath returns the absolute path of the recent catalog output file.
func (c *Config) RecentCatalogPath() string {
	return c.outputFile(c.Paths.RecentCatalog)
}

// ExclusionLogPath returns the exclusion log location, or "" when disabled.
func (c *Config) ExclusionLogPath() string {
	if strings.TrimSpace(c.Paths.ExclusionLog) == "" {
		return ""
	}
	return c.outputFile(c.Paths.ExclusionLog)
}

// LockFilePath returns the run lock location.
func (c *Config) LockFilePath() string {
	return c.outputFile(c.Paths.LockFile)
}

func (c *Config) outputFile(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Paths.OutputDir, name)
}

// CatalogTimeout returns the per-request timeout for catalog pages.
func (c *Config) CatalogTimeout() time.Duration {
	return time.Duration(c.Catalog.TimeoutSeconds) * time.Second
}

// TMDBTimeout returns the per-request timeout for TMDB calls.
func (c *Config) TMDBTimeout() time.Duration {
	return time.Duration(c.TMDB.TimeoutSeconds) * time.Second
}

// TraktTimeout returns the per-request timeout for Trakt calls.
func (c *Config) TraktTimeout() time.Duration {
	return time.Duration(c.Trakt.TimeoutSeconds) * time.Second
}

// LookupDelay returns the pause inserted after each successful rating lookup.
func (c *Config) LookupDelay() time.Duration {
	return time.Duration(c.Trakt.LookupDelayMillis) * time.Millisecond
}

// RetryDelay returns the fixed backoff between lookup attempts.
func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.Trakt.RetryDelayMillis) * time.Millisecond
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
