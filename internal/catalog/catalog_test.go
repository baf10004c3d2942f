package catalog_test

import (
	"encoding/json"
	"testing"

	"flixlist/internal/catalog"
)

func TestRecordJSONShape(t *testing.T) {
	id := int64(1399)
	rec := catalog.Record{
		Title:       "Dark",
		Type:        catalog.Series.Label(),
		IMDbRating:  catalog.NewRating(8.74),
		TraktRating: 8.6,
		ReleaseDate: "2017-12-01",
		TMDBID:      &id,
	}
	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"title":"Dark","type":"Series","imdbRating":8.7,"traktRating":8.6,"releaseDate":"2017-12-01","dateAdded":"","tmdb_id":1399}`
	if string(data) != want {
		t.Fatalf("unexpected JSON\n got: %s\nwant: %s", data, want)
	}

	rec.IMDbRating = catalog.Rating{}
	rec.TMDBID = nil
	data, err = json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want = `{"title":"Dark","type":"Series","imdbRating":"N/A","traktRating":8.6,"releaseDate":"2017-12-01","dateAdded":"","tmdb_id":null}`
	if string(data) != want {
		t.Fatalf("unexpected JSON\n got: %s\nwant: %s", data, want)
	}
}

func TestRatingUnmarshalAcceptsLooseValues(t *testing.T) {
	cases := map[string]catalog.Rating{
		`8.1`:    catalog.NewRating(8.1),
		`"7.96"`: catalog.NewRating(8.0),
		`"N/A"`:  {},
		`null`:   {},
		`0`:      {},
		`-2`:     {},
	}
	for input, want := range cases {
		var got catalog.Rating
		if err := json.Unmarshal([]byte(input), &got); err != nil {
			t.Fatalf("unmarshal %s: %v", input, err)
		}
		if got != want {
			t.Errorf("unmarshal %s = %+v, want %+v", input, got, want)
		}
	}
	var bad catalog.Rating
	if err := json.Unmarshal([]byte(`"great"`), &bad); err == nil {
		t.Fatal("expected error for non-numeric rating")
	}
}

func TestParseMediaType(t *testing.T) {
	for _, input := range []string{"movie", "Film", " MOVIES "} {
		if mt, err := catalog.ParseMediaType(input); err != nil || mt != catalog.Movie {
			t.Errorf("ParseMediaType(%q) = %v, %v", input, mt, err)
		}
	}
	for _, input := range []string{"series", "tv", "Show"} {
		if mt, err := catalog.ParseMediaType(input); err != nil || mt != catalog.Series {
			t.Errorf("ParseMediaType(%q) = %v, %v", input, mt, err)
		}
	}
	if _, err := catalog.ParseMediaType("podcast"); err == nil {
		t.Fatal("expected error for unknown type")
	}
	if catalog.Series.TMDBPath() != "tv" || catalog.Series.TraktCollection() != "shows" {
		t.Fatal("unexpected series path segments")
	}
	if catalog.Movie.TMDBPath() != "movie" || catalog.Movie.TraktCollection() != "movies" {
		t.Fatal("unexpected movie path segments")
	}
}

func TestRecencyDateFallsBackToReleaseDate(t *testing.T) {
	rec := catalog.Record{ReleaseDate: "2024-01-10"}
	got, ok := rec.RecencyDate()
	if !ok || catalog.FormatDate(got) != "2024-01-10" {
		t.Fatalf("expected release date fallback, got %v %v", got, ok)
	}
	rec.DateAdded = "2024-02-01"
	got, ok = rec.RecencyDate()
	if !ok || catalog.FormatDate(got) != "2024-02-01" {
		t.Fatalf("expected dateAdded to win, got %v %v", got, ok)
	}
	if _, ok := (catalog.Record{}).RecencyDate(); ok {
		t.Fatal("expected no recency date for undated record")
	}
}

func TestRecordProblems(t *testing.T) {
	valid := catalog.Record{Title: "Dark", Type: "Series", TraktRating: 8.6, ReleaseDate: "2017-12-01"}
	if got := valid.Problems(); got != nil {
		t.Fatalf("valid record problems = %v", got)
	}

	leap := catalog.Record{Title: "Leap", Type: "Film", DateAdded: "2024-02-29"}
	if got := leap.Problems(); got != nil {
		t.Fatalf("leap day rejected: %v", got)
	}

	bad := catalog.Record{Title: "Curated", Type: "Film", ReleaseDate: "2024-02-30"}
	got := bad.Problems()
	if len(got) != 1 || got[0] != "ReleaseDate failed datetime" {
		t.Fatalf("problems = %v", got)
	}
}
