// Package enrichment attaches the secondary rating to candidates.
//
// Lookups are memoized per (media type, TMDB id) for the lifetime of an
// Enricher, including failed ones, and concurrent lookups of one key share a
// single upstream round trip. A fixed pause follows each successful network
// lookup; cache hits and failures do not pause.
package enrichment
