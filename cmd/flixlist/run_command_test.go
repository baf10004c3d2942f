package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"flixlist/internal/testsupport"
)

func newCatalogServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /search", func(w http.ResponseWriter, r *http.Request) {
		results := []map[string]any{}
		if r.URL.Query().Get("offset") == "0" && r.URL.Query().Get("type") != "series" {
			results = append(results,
				map[string]any{"title": "Kept Movie", "tmid": 11, "imdbrating": 8.3, "ndate": "2020-01-10"},
				map[string]any{"title": "Weak Movie", "tmid": 12, "imdbrating": 6.0},
			)
		}
		respondJSON(t, w, map[string]any{"results": results})
	})
	mux.HandleFunc("GET /search/tmdb/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "11" {
			respondJSON(t, w, []any{})
			return
		}
		respondJSON(t, w, []any{map[string]any{"type": "movie", "movie": map[string]any{"ids": map[string]any{"trakt": 77}}}})
	})
	mux.HandleFunc("GET /movies/{id}/ratings", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(t, w, map[string]any{"rating": 8.1, "votes": 120})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func respondJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("encode response: %v", err)
	}
}

func TestRunCommandPublishesCatalog(t *testing.T) {
	srv := newCatalogServer(t)
	env := setupCLITestEnv(t,
		testsupport.WithCatalogServer(srv.URL),
		testsupport.WithTraktServer(srv.URL),
		testsupport.WithAvailability(false),
	)

	out, _, err := runCLI(t, []string{"run", "--no-notify"}, env.configPath)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	requireContains(t, out, "Candidates")
	requireContains(t, out, "Rejected: BelowBenchmark")

	records := testsupport.ReadRecords(t, env.cfg.FullCatalogPath())
	if titles := testsupport.Titles(records); len(titles) != 1 || titles[0] != "Kept Movie" {
		t.Fatalf("full catalog titles = %v", titles)
	}
	// 2020 additions are outside any recent window.
	if recent := testsupport.ReadRecords(t, env.cfg.RecentCatalogPath()); len(recent) != 0 {
		t.Fatalf("recent catalog = %+v, want empty", recent)
	}
}

func TestRunCommandJSONSummary(t *testing.T) {
	srv := newCatalogServer(t)
	env := setupCLITestEnv(t,
		testsupport.WithCatalogServer(srv.URL),
		testsupport.WithTraktServer(srv.URL),
		testsupport.WithAvailability(false),
	)

	out, _, err := runCLI(t, []string{"run", "--no-notify", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("run --json: %v", err)
	}
	var view summaryView
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("decode summary: %v\n%s", err, out)
	}
	if view.Candidates != 2 || view.Admitted != 1 || view.Full != 1 {
		t.Fatalf("summary = %+v", view)
	}
	if view.Rejections["BelowBenchmark"] != 1 {
		t.Fatalf("rejections = %v", view.Rejections)
	}
	if view.Error != "" {
		t.Fatalf("unexpected error field %q", view.Error)
	}
}

func TestRunCommandFailsWithoutCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondJSON(t, w, map[string]any{"results": []any{}})
	}))
	t.Cleanup(srv.Close)
	env := setupCLITestEnv(t,
		testsupport.WithCatalogServer(srv.URL),
		testsupport.WithTraktServer(srv.URL),
		testsupport.WithAvailability(false),
	)

	_, _, err := runCLI(t, []string{"run", "--no-notify"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "no usable titles") {
		t.Fatalf("err = %v, want no-candidates failure", err)
	}
}
