package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"flixlist/internal/catalog"
)

// WriteText writes body to path, creating parent directories.
func WriteText(t testing.TB, path, body string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// ReadRecords decodes a published catalog file.
func ReadRecords(t testing.TB, path string) []catalog.Record {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	var records []catalog.Record
	if err := json.Unmarshal(data, &records); err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	return records
}

// Titles returns the titles of records in order.
func Titles(records []catalog.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Title
	}
	return out
}
