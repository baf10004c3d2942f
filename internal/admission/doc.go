// Package admission decides which candidates enter the published catalog.
//
// Gates run in a fixed order and stop at the first failure: availability on
// the regional streaming provider, the quality benchmark, then agreement
// between the primary and secondary ratings. Admitted candidates are
// projected into catalog records.
package admission
