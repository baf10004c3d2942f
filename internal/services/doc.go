// Package services defines shared utilities consumed by the pipeline stages
// and the upstream HTTP clients.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, stage names, and titles for logging.
//   - Structured error markers plus the Wrap helper that separate fatal run
//     errors from per-title failures.
//   - StatusError, the common shape for non-2xx upstream responses, which the
//     retry policy inspects to stop on permanent failures.
package services
