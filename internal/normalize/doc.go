// Package normalize coerces loosely typed catalog fields into catalog values.
//
// Every coercion is total: empty, null, malformed and non-positive inputs
// resolve to "absent" instead of an error. Field extraction goes through
// ordered rule lists, one per output field, so the fallback chain for each
// field is visible in one place.
package normalize
