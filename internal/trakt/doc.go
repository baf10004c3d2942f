// Package trakt looks up community ratings on Trakt by TMDB id.
//
// A lookup is two requests: a search by TMDB id whose first result yields the
// Trakt id, then the ratings resource for that id. Every request passes
// through a circuit breaker so a failing upstream stops receiving traffic for
// a cooldown period instead of absorbing every worker's retries.
package trakt
