// Package publish validates catalog views and writes them to disk.
package publish

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"flixlist/internal/catalog"
	"flixlist/internal/fileutil"
	"flixlist/internal/logging"
	"flixlist/internal/services"
)

// Result describes one written file.
type Result struct {
	Path    string
	Records int
	Before  string
	After   string
}

// Changed reports whether the write altered the file content.
func (r Result) Changed() bool {
	return r.Before != r.After
}

// Writer persists record views.
type Writer struct {
	logger *slog.Logger
}

// NewWriter returns a Writer.
func NewWriter(logger *slog.Logger) *Writer {
	return &Writer{logger: logging.NewComponentLogger(logger, "publish")}
}

// Validate checks every record and reports all failures at once.
func (w *Writer) Validate(records []catalog.Record) error {
	var problems []string
	for i, r := range records {
		for _, p := range r.Problems() {
			problems = append(problems, fmt.Sprintf("record %d (%q): %s", i, r.Title, p))
		}
	}
	if len(problems) > 0 {
		return services.Wrap(services.ErrValidation, "publish", "validate records", strings.Join(problems, "; "), nil)
	}
	return nil
}

// Encode renders records as a two-space indented JSON array with non-ASCII
// text written verbatim. A nil slice encodes as [].
func Encode(records []catalog.Record) ([]byte, error) {
	if records == nil {
		records = []catalog.Record{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return nil, fmt.Errorf("encode records: %w", err)
	}
	return buf.Bytes(), nil
}

// Write validates, encodes and atomically replaces path. Content hashes
// before and after the write are logged and returned.
func (w *Writer) Write(path string, records []catalog.Record) (Result, error) {
	result := Result{Path: path, Records: len(records)}
	if err := w.Validate(records); err != nil {
		return result, err
	}
	data, err := Encode(records)
	if err != nil {
		return result, err
	}
	before, err := fileutil.Hash12(path)
	if err != nil {
		return result, fmt.Errorf("hash existing %s: %w", path, err)
	}
	result.Before = before
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return result, err
	}
	after, err := fileutil.Hash12(path)
	if err != nil {
		return result, fmt.Errorf("hash written %s: %w", path, err)
	}
	result.After = after

	w.logger.Info("catalog written",
		logging.String("path", path),
		logging.Int("records", len(records)),
		logging.String("sha_before", before),
		logging.String("sha_after", after),
		logging.Bool("changed", result.Changed()),
		logging.String(logging.FieldEventType, "catalog_written"),
	)
	return result, nil
}
