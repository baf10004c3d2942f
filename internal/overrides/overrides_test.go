package overrides

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"flixlist/internal/catalog"
)

func TestLoadArrayAndWrapper(t *testing.T) {
	dir := t.TempDir()
	array := filepath.Join(dir, "array.json")
	wrapper := filepath.Join(dir, "wrapper.json")
	body := `[{"title":" Arcane ","type":"Series","imdbRating":9.0,"traktRating":8.8,"releaseDate":"2021-11-06","dateAdded":"","tmdb_id":94605},
	          {"title":"Roma","imdbRating":"N/A","traktRating":7.4,"tmdb_id":null}]`
	if err := os.WriteFile(array, []byte("\xef\xbb\xbf"+body), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(wrapper, []byte(`{"overrides":`+body+`}`), 0o644); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{array, wrapper} {
		records, err := Load(path)
		if err != nil {
			t.Fatalf("Load(%s): %v", filepath.Base(path), err)
		}
		if len(records) != 2 {
			t.Fatalf("records = %+v", records)
		}
		if records[0].Title != "Arcane" || records[0].TMDBID == nil || *records[0].TMDBID != 94605 {
			t.Fatalf("first = %+v", records[0])
		}
		if records[1].Type != "Film" || records[1].IMDbRating.Valid || records[1].TMDBID != nil {
			t.Fatalf("second = %+v", records[1])
		}
	}
}

func TestLoadMissingOrBlank(t *testing.T) {
	if records, err := Load(""); err != nil || records != nil {
		t.Fatalf("Load(blank) = %v, %v", records, err)
	}
	if records, err := Load(filepath.Join(t.TempDir(), "none.json")); err != nil || records != nil {
		t.Fatalf("Load(missing) = %v, %v", records, err)
	}
}

func TestParseRejectsSchemaViolations(t *testing.T) {
	tests := map[string]string{
		"empty title":   `[{"title":"  "}]`,
		"bad type":      `[{"title":"X","type":"Movie"}]`,
		"bad date":      `[{"title":"X","releaseDate":"March 2020"}]`,
		"rating string": `[{"title":"X","imdbRating":"great"}]`,
		"not a list":    `{"title":"X"}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse("overrides.json", []byte(body))
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
		})
	}
}

func TestParseRejectsImpossibleDates(t *testing.T) {
	body := `[{"title":"Fine","releaseDate":"2024-02-29"},{"title":"Curated","type":"Film","releaseDate":"2024-02-30"}]`
	_, err := Parse("overrides.json", []byte(body))
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if len(verr.Errors) != 1 || !strings.Contains(verr.Errors[0], `record 1 ("Curated"): ReleaseDate failed datetime`) {
		t.Fatalf("errors = %q", verr.Errors)
	}
}

func TestMergeNeverOverwrites(t *testing.T) {
	admitted := []catalog.Record{{Title: "Dark", Type: "Series", TraktRating: 8.6}}
	overrides := []catalog.Record{
		{Title: "Dark", Type: "Series", TraktRating: 1.0},
		{Title: "Roma", Type: "Film"},
		{Title: "Roma", Type: "Series"},
		{Title: "dark", Type: "Film"},
	}
	merged, added := Merge(admitted, overrides, nil)
	if added != 2 {
		t.Fatalf("added = %d, want 2", added)
	}
	if len(merged) != 3 {
		t.Fatalf("merged = %+v", merged)
	}
	if merged[0].TraktRating != 8.6 {
		t.Fatalf("admitted record overwritten: %+v", merged[0])
	}
	if merged[1].Title != "Roma" || merged[1].Type != "Film" {
		t.Fatalf("first override should win: %+v", merged[1])
	}
	if merged[2].Title != "dark" {
		t.Fatalf("title match must be exact: %+v", merged[2])
	}
}
