// Package config loads, normalizes, and validates flixlist configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// UNOGS_API_KEY, TMDB_API_KEY and TRAKT_CLIENT_ID. Missing credentials for a
// stage that is enabled surface as validation errors before any network call
// is made.
package config
