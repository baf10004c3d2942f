// Package pipeline runs one catalog refresh end to end.
//
// A run fetches candidates from the catalog source, normalizes them,
// optionally backfills missing IMDb ratings, attaches secondary ratings,
// applies the admission gates, merges curated overrides, and writes the full
// and recent views. Only one run may hold the output directory at a time.
// Fatal errors (missing credentials, an empty catalog, a held lock) abort the
// run before either view is written.
package pipeline
