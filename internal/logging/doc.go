// Package logging assembles structured slog loggers for flixlist.
//
// Console output is a single human-readable line per record with the
// component and stage pulled to the front; JSON output uses ts/level/msg keys.
// When a log directory is configured every record is also appended as JSON to
// flixlist.log so scheduled runs leave a machine-readable trail.
package logging
