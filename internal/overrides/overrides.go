// Package overrides loads hand-curated catalog records and merges them into
// the admitted set.
package overrides

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"flixlist/internal/catalog"
	"flixlist/internal/logging"
)

const recordSchema = `{
  "type": "object",
  "required": ["title"],
  "properties": {
    "title": {"type": "string", "pattern": "\\S"},
    "type": {"enum": ["Film", "Series"]},
    "imdbRating": {"oneOf": [{"type": "number", "minimum": 0, "maximum": 10}, {"enum": ["N/A"]}, {"type": "null"}]},
    "traktRating": {"oneOf": [{"type": "number", "minimum": 0, "maximum": 10}, {"type": "null"}]},
    "releaseDate": {"type": "string", "pattern": "^([0-9]{4}-[0-9]{2}-[0-9]{2})?$"},
    "dateAdded": {"type": "string", "pattern": "^([0-9]{4}-[0-9]{2}-[0-9]{2})?$"},
    "tmdb_id": {"oneOf": [{"type": "integer", "minimum": 1}, {"type": "null"}]}
  }
}`

// Schema accepts either a bare array of records or {"overrides": [...]}.
var Schema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "definitions": {"record": ` + recordSchema + `},
  "oneOf": [
    {"type": "array", "items": {"$ref": "#/definitions/record"}},
    {
      "type": "object",
      "required": ["overrides"],
      "properties": {"overrides": {"type": "array", "items": {"$ref": "#/definitions/record"}}}
    }
  ]
}`

var schemaLoader = gojsonschema.NewStringLoader(Schema)

// ValidationError lists schema violations found in an override file.
type ValidationError struct {
	Path   string
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("override file %s is invalid: %s", e.Path, strings.Join(e.Errors, "; "))
}

// Load reads the override file at path. A blank path or a missing file
// yields no overrides.
func Load(path string) ([]catalog.Record, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read override file: %w", err)
	}
	return Parse(path, data)
}

// Parse validates data against Schema and decodes the records. path is
// only used in error messages.
func Parse(path string, data []byte) ([]catalog.Record, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("parse override file %s: %w", path, err)
	}
	if !result.Valid() {
		verr := &ValidationError{Path: path}
		for _, desc := range result.Errors() {
			verr.Errors = append(verr.Errors, desc.String())
		}
		return nil, verr
	}

	var records []catalog.Record
	if data[0] == '{' {
		var wrapper struct {
			Overrides []catalog.Record `json:"overrides"`
		}
		if err := json.Unmarshal(data, &wrapper); err != nil {
			return nil, fmt.Errorf("decode override file %s: %w", path, err)
		}
		records = wrapper.Overrides
	} else if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode override file %s: %w", path, err)
	}

	// The schema only checks date shape; the record rules also reject
	// impossible calendar dates.
	verr := &ValidationError{Path: path}
	for i := range records {
		records[i].Title = strings.TrimSpace(records[i].Title)
		if records[i].Type == "" {
			records[i].Type = catalog.Movie.Label()
		}
		for _, p := range records[i].Problems() {
			verr.Errors = append(verr.Errors, fmt.Sprintf("record %d (%q): %s", i, records[i].Title, p))
		}
	}
	if len(verr.Errors) > 0 {
		return nil, verr
	}
	return records, nil
}

// Merge appends overrides whose exact title is not already present. Records
// already in admitted are never replaced; among overrides the first title
// wins. It returns the merged slice and the number of overrides added.
func Merge(admitted, overrides []catalog.Record, logger *slog.Logger) ([]catalog.Record, int) {
	logger = logging.NewComponentLogger(logger, "overrides")
	seen := make(map[string]struct{}, len(admitted)+len(overrides))
	for _, r := range admitted {
		seen[r.Title] = struct{}{}
	}
	merged := make([]catalog.Record, 0, len(admitted)+len(overrides))
	merged = append(merged, admitted...)
	added := 0
	for _, r := range overrides {
		if _, ok := seen[r.Title]; ok {
			logger.Debug("override skipped; title already present",
				logging.String(logging.FieldTitle, r.Title))
			continue
		}
		seen[r.Title] = struct{}{}
		merged = append(merged, r)
		added++
	}
	return merged, added
}
