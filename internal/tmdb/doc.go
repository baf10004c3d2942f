// Package tmdb provides the minimal TMDB API client flixlist needs.
//
// The client exposes watch-provider and movie/TV detail lookups behind an
// optional request rate limit. Oracle layers the pipeline's questions on top:
// whether a title streams on the configured provider in the configured region,
// and what its release date is, each retried with a bounded policy.
package tmdb
