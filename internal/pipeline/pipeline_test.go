package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"flixlist/internal/catalog"
	"flixlist/internal/config"
	"flixlist/internal/exclusions"
	"flixlist/internal/services"
	"flixlist/internal/testsupport"
)

var today = time.Date(2024, 3, 1, 7, 0, 0, 0, time.UTC)

type upstream struct {
	mu            sync.Mutex
	movies        []map[string]any
	series        []map[string]any
	available     map[string]bool
	firstAirDates map[string]string
	traktIDs      map[string]int64
	traktRatings  map[string]float64
	searches      map[string]int
}

func newUpstream() *upstream {
	return &upstream{
		movies: []map[string]any{
			{"title": "Admitted Movie", "tmid": 101, "imdbrating": 8.4, "release_year": 2020, "ndate": "1706745600000"},
			{"title": "Low Movie", "tmid": 102, "imdbrating": 6.1},
			{"title": "Gone Movie", "tmid": 103, "imdbrating": 8.8},
			{"title": "Split Movie", "tmid": 104, "imdbrating": 8.0},
			{"title": "Admitted Movie Again", "tmid": 101, "imdbrating": 8.1, "ndate": "2024-02-01"},
			{"title": "   "},
		},
		series: []map[string]any{
			{"title": "Old Series", "tmid": 201, "imdbrating": 9.0, "ndate": "2023-11-01"},
			{"title": "No Secondary", "tmid": 202, "imdbrating": 8.5},
		},
		available: map[string]bool{
			"movie/101": true, "movie/102": true, "movie/104": true,
			"tv/201": true, "tv/202": true,
		},
		firstAirDates: map[string]string{"201": "2019-09-20"},
		traktIDs:      map[string]int64{"101": 1001, "104": 1004, "201": 2001},
		traktRatings:  map[string]float64{"movies/1001": 8.2, "movies/1004": 5.5, "shows/2001": 8.9},
		searches:      make(map[string]int),
	}
}

func (u *upstream) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /search", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-RapidAPI-Key") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		results := []map[string]any{}
		if r.URL.Query().Get("offset") == "0" {
			if r.URL.Query().Get("type") == "series" {
				results = u.series
			} else {
				results = u.movies
			}
		}
		writeJSON(t, w, map[string]any{"results": results})
	})
	mux.HandleFunc("GET /{kind}/{id}/watch/providers", func(w http.ResponseWriter, r *http.Request) {
		key := r.PathValue("kind") + "/" + r.PathValue("id")
		flatrate := []map[string]any{{"provider_id": 337}}
		if u.available[key] {
			flatrate = append(flatrate, map[string]any{"provider_id": 8})
		}
		writeJSON(t, w, map[string]any{"results": map[string]any{"BE": map[string]any{"flatrate": flatrate}}})
	})
	mux.HandleFunc("GET /tv/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{"first_air_date": u.firstAirDates[r.PathValue("id")]})
	})
	mux.HandleFunc("GET /movie/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{"release_date": ""})
	})
	mux.HandleFunc("GET /search/tmdb/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		u.mu.Lock()
		u.searches[id]++
		u.mu.Unlock()
		traktID, ok := u.traktIDs[id]
		if !ok {
			writeJSON(t, w, []any{})
			return
		}
		kind := r.URL.Query().Get("type")
		writeJSON(t, w, []any{map[string]any{"type": kind, kind: map[string]any{"ids": map[string]any{"trakt": traktID}}}})
	})
	for _, collection := range []string{"movies", "shows"} {
		mux.HandleFunc("GET /"+collection+"/{id}/ratings", func(w http.ResponseWriter, r *http.Request) {
			rating := u.traktRatings[collection+"/"+r.PathValue("id")]
			writeJSON(t, w, map[string]any{"rating": rating, "votes": 10})
		})
	}
	return mux
}

func (u *upstream) searchCount(id string) int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.searches[id]
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("encode response: %v", err)
	}
}

func newTestDeps(t *testing.T, u *upstream, opts ...testsupport.ConfigOption) Deps {
	t.Helper()
	srv := httptest.NewServer(u.handler(t))
	t.Cleanup(srv.Close)
	opts = append([]testsupport.ConfigOption{
		testsupport.WithCatalogServer(srv.URL),
		testsupport.WithTMDBServer(srv.URL),
		testsupport.WithTraktServer(srv.URL),
	}, opts...)
	cfg := testsupport.NewConfig(t, opts...)
	deps, err := NewDeps(cfg, nil)
	if err != nil {
		t.Fatalf("NewDeps: %v", err)
	}
	deps.Now = func() time.Time { return today }
	return deps
}

func TestRunEndToEnd(t *testing.T) {
	u := newUpstream()
	deps := newTestDeps(t, u,
		testsupport.WithOverridesFile(`[
			{"title": "Admitted Movie", "type": "Film", "traktRating": 1.0},
			{"title": "Curated", "type": "Series", "imdbRating": "N/A", "traktRating": 8.0, "dateAdded": "2024-02-20"}
		]`),
		testsupport.WithMetricsTextfile(),
	)
	cfg := deps.Config

	summary, err := Run(context.Background(), deps)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	full := testsupport.ReadRecords(t, cfg.FullCatalogPath())
	wantFull := []string{"Admitted Movie", "Admitted Movie Again", "Old Series", "Curated"}
	if got := testsupport.Titles(full); !reflect.DeepEqual(got, wantFull) {
		t.Fatalf("full titles = %v, want %v", got, wantFull)
	}
	if full[0].TraktRating != 8.2 || full[0].ReleaseDate != "2020-01-01" || full[0].DateAdded != "2024-02-01" {
		t.Fatalf("admitted movie = %+v", full[0])
	}
	if full[2].ReleaseDate != "2019-09-20" || full[2].Type != "Series" {
		t.Fatalf("release date not backfilled: %+v", full[2])
	}

	recent := testsupport.ReadRecords(t, cfg.RecentCatalogPath())
	wantRecent := []string{"Admitted Movie", "Admitted Movie Again", "Curated"}
	if got := testsupport.Titles(recent); !reflect.DeepEqual(got, wantRecent) {
		t.Fatalf("recent titles = %v, want %v", got, wantRecent)
	}

	if n := u.searchCount("101"); n != 1 {
		t.Fatalf("tmdb id 101 looked up %d times, want 1", n)
	}
	if n := u.searchCount("102"); n != 0 {
		t.Fatalf("below-benchmark title looked up %d times", n)
	}

	wantReasons := map[catalog.Reason]int{
		catalog.ReasonBelowBenchmark:         1,
		catalog.ReasonNotAvailable:           1,
		catalog.ReasonInconsistentScores:     1,
		catalog.ReasonMissingSecondaryRating: 1,
	}
	if !reflect.DeepEqual(summary.Rejections, wantReasons) {
		t.Fatalf("rejections = %v", summary.Rejections)
	}
	if summary.Candidates != 7 || summary.Dropped != 1 || summary.Admitted != 3 || summary.Overrides != 1 {
		t.Fatalf("summary = %+v", summary)
	}
	if summary.RunID == "" || !summary.Changed() {
		t.Fatalf("summary = %+v", summary)
	}

	entries, err := exclusions.Read(cfg.ExclusionLogPath())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 4 || entries[0].RunID != summary.RunID {
		t.Fatalf("exclusion log = %+v", entries)
	}

	metrics, err := os.ReadFile(cfg.Paths.MetricsTextfile)
	if err != nil {
		t.Fatalf("metrics textfile: %v", err)
	}
	if !strings.Contains(string(metrics), "flixlist_admission_admitted 3") {
		t.Fatalf("metrics missing admitted gauge:\n%s", metrics)
	}
}

func TestRunSkipsOverridesWithImpossibleDates(t *testing.T) {
	u := newUpstream()
	deps := newTestDeps(t, u,
		testsupport.WithOverridesFile(`[{"title": "Curated", "type": "Film", "releaseDate": "2024-02-30"}]`),
	)
	cfg := deps.Config
	testsupport.WriteText(t, cfg.FullCatalogPath(), "[\"previous\"]\n")

	summary, err := Run(context.Background(), deps)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Overrides != 0 {
		t.Fatalf("overrides merged = %d, want 0", summary.Overrides)
	}
	full := testsupport.ReadRecords(t, cfg.FullCatalogPath())
	want := []string{"Admitted Movie", "Admitted Movie Again", "Old Series"}
	if got := testsupport.Titles(full); !reflect.DeepEqual(got, want) {
		t.Fatalf("full titles = %v, want %v", got, want)
	}
}

func TestRunIsDeterministic(t *testing.T) {
	u := newUpstream()
	deps := newTestDeps(t, u)

	if _, err := Run(context.Background(), deps); err != nil {
		t.Fatalf("first run: %v", err)
	}
	first, _ := os.ReadFile(deps.Config.FullCatalogPath())

	second, err := Run(context.Background(), deps)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second.Changed() {
		t.Fatalf("identical inputs changed outputs: %+v / %+v", second.Full, second.Recent)
	}
	again, _ := os.ReadFile(deps.Config.FullCatalogPath())
	if string(first) != string(again) {
		t.Fatal("full catalog differs between identical runs")
	}
}

func TestRunWithoutCandidatesLeavesOutputsUntouched(t *testing.T) {
	u := newUpstream()
	u.movies, u.series = nil, nil
	deps := newTestDeps(t, u)
	cfg := deps.Config
	testsupport.WriteText(t, cfg.FullCatalogPath(), "[\"previous\"]\n")

	_, err := Run(context.Background(), deps)
	if !errors.Is(err, services.ErrNoCandidates) || !services.IsFatal(err) {
		t.Fatalf("err = %v, want fatal ErrNoCandidates", err)
	}
	data, _ := os.ReadFile(cfg.FullCatalogPath())
	if string(data) != "[\"previous\"]\n" {
		t.Fatalf("full catalog touched: %q", data)
	}
	if _, err := os.Stat(cfg.RecentCatalogPath()); !os.IsNotExist(err) {
		t.Fatalf("recent catalog created: %v", err)
	}
}

func TestRunRefusesWhenLockHeld(t *testing.T) {
	deps := newTestDeps(t, newUpstream())
	if err := deps.Config.EnsureDirectories(); err != nil {
		t.Fatal(err)
	}
	held := flock.New(deps.Config.LockFilePath())
	locked, err := held.TryLock()
	if err != nil || !locked {
		t.Fatalf("TryLock = %v, %v", locked, err)
	}
	t.Cleanup(func() { _ = held.Unlock() })

	_, err = Run(context.Background(), deps)
	if !errors.Is(err, services.ErrRunInProgress) {
		t.Fatalf("err = %v, want ErrRunInProgress", err)
	}
}

func TestRunAvailabilityDisabled(t *testing.T) {
	u := newUpstream()
	deps := newTestDeps(t, u, testsupport.WithAvailability(false))

	summary, err := Run(context.Background(), deps)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Rejections[catalog.ReasonNotAvailable] != 0 {
		t.Fatalf("availability gate ran while disabled: %v", summary.Rejections)
	}
	full := testsupport.ReadRecords(t, deps.Config.FullCatalogPath())
	for _, r := range full {
		if r.Title == "Old Series" && r.ReleaseDate != "" {
			t.Fatalf("release date backfilled while disabled: %+v", r)
		}
	}
}

func TestNewDepsRequiresCredentials(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Catalog.APIKey = ""
	if _, err := NewDeps(cfg, nil); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("missing catalog key: err = %v", err)
	}

	cfg = testsupport.NewConfig(t)
	cfg.Trakt.ClientID = ""
	if _, err := NewDeps(cfg, nil); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("missing trakt id: err = %v", err)
	}

	var empty *config.Config
	if _, err := Run(context.Background(), Deps{Config: empty}); err == nil {
		t.Fatal("Run without config should fail")
	}
}
