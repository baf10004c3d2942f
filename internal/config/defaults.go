package config

const (
	defaultOutputDir              = "."
	defaultFullCatalog            = "netflix_data.json"
	defaultRecentCatalog          = "netflix_last_month.json"
	defaultExclusionLog           = "excluded_titles.log"
	defaultLockFile               = ".flixlist.lock"
	defaultCatalogBaseURL         = "https://unogsng.p.rapidapi.com"
	defaultCatalogHost            = "unogsng.p.rapidapi.com"
	defaultCatalogCountryID       = "21"
	defaultCatalogPageSize        = 100
	defaultCatalogTimeout         = 25
	defaultTMDBBaseURL            = "https://api.themoviedb.org/3"
	defaultTMDBLanguage           = "en-US"
	defaultTMDBRegion             = "BE"
	defaultTMDBProviderID         = 8
	defaultTMDBTimeout            = 15
	defaultTMDBRequestsPerSecond  = 20
	defaultTraktBaseURL           = "https://api.trakt.tv"
	defaultTraktTimeout           = 10
	defaultTraktLookupDelayMillis = 250
	defaultTraktWorkers           = 10
	defaultTraktRetryAttempts     = 3
	defaultTraktRetryDelayMillis  = 2000
	defaultTraktBreakerFailures   = 5
	defaultTraktBreakerCooldown   = 30
	defaultIMDbBaseURL            = "https://www.imdb.com"
	defaultIMDbTimeout            = 10
	defaultNotifyRequestTimeout   = 10
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir:     defaultOutputDir,
			FullCatalog:   defaultFullCatalog,
			RecentCatalog: defaultRecentCatalog,
			ExclusionLog:  defaultExclusionLog,
			LockFile:      defaultLockFile,
		},
		Catalog: Catalog{
			BaseURL:        defaultCatalogBaseURL,
			Host:           defaultCatalogHost,
			CountryID:      defaultCatalogCountryID,
			PageSize:       defaultCatalogPageSize,
			TimeoutSeconds: defaultCatalogTimeout,
		},
		TMDB: TMDB{
			BaseURL:              defaultTMDBBaseURL,
			Language:             defaultTMDBLanguage,
			Region:               defaultTMDBRegion,
			ProviderID:           defaultTMDBProviderID,
			CheckAvailability:    true,
			BackfillReleaseDates: true,
			TimeoutSeconds:       defaultTMDBTimeout,
			RequestsPerSecond:    defaultTMDBRequestsPerSecond,
		},
		Trakt: Trakt{
			BaseURL:                defaultTraktBaseURL,
			TimeoutSeconds:         defaultTraktTimeout,
			LookupDelayMillis:      defaultTraktLookupDelayMillis,
			Workers:                defaultTraktWorkers,
			RetryAttempts:          defaultTraktRetryAttempts,
			RetryDelayMillis:       defaultTraktRetryDelayMillis,
			BreakerFailures:        defaultTraktBreakerFailures,
			BreakerCooldownSeconds: defaultTraktBreakerCooldown,
		},
		IMDb: IMDb{
			BaseURL:        defaultIMDbBaseURL,
			TimeoutSeconds: defaultIMDbTimeout,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
