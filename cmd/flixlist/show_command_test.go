package main

import (
	"encoding/json"
	"strings"
	"testing"

	"flixlist/internal/catalog"
	"flixlist/internal/exclusions"
	"flixlist/internal/publish"
	"flixlist/internal/testsupport"
)

func writeCatalog(t *testing.T, path string, records []catalog.Record) {
	t.Helper()
	data, err := publish.Encode(records)
	if err != nil {
		t.Fatalf("encode catalog: %v", err)
	}
	testsupport.WriteText(t, path, string(data))
}

func TestShowFullCatalog(t *testing.T) {
	env := setupCLITestEnv(t)
	writeCatalog(t, env.cfg.FullCatalogPath(), []catalog.Record{
		{Title: "Dark", Type: "Series", IMDbRating: catalog.NewRating(8.7), TraktRating: 8.6, DateAdded: "2024-02-01"},
		{Title: "Roma", Type: "Film", TraktRating: 8.1},
	})

	out, _, err := runCLI(t, []string{"show"}, env.configPath)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	requireContains(t, out, "Dark")
	requireContains(t, out, "2024-02-01")
	requireContains(t, out, "N/A")
	requireContains(t, out, "2 rows")

	out, _, err = runCLI(t, []string{"show", "full", "--limit", "1"}, env.configPath)
	if err != nil {
		t.Fatalf("show --limit: %v", err)
	}
	requireContains(t, out, "showing 1 of 2 rows")
	if strings.Contains(out, "Roma") {
		t.Fatalf("limit ignored:\n%s", out)
	}
}

func TestShowRecentJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	writeCatalog(t, env.cfg.RecentCatalogPath(), []catalog.Record{
		{Title: "Fresh & New", Type: "Film", IMDbRating: catalog.NewRating(8.2), TraktRating: 8.0, DateAdded: "2024-02-20"},
	})

	out, _, err := runCLI(t, []string{"show", "recent", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("show recent: %v", err)
	}
	var records []catalog.Record
	if err := json.Unmarshal([]byte(out), &records); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if len(records) != 1 || records[0].Title != "Fresh & New" {
		t.Fatalf("records = %+v", records)
	}
}

func TestShowMissingCatalog(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"show", "recent"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "flixlist run") {
		t.Fatalf("err = %v, want hint to run first", err)
	}
}

func TestShowExclusions(t *testing.T) {
	env := setupCLITestEnv(t)
	log, err := exclusions.Open(env.cfg.ExclusionLogPath(), "run-1")
	if err != nil {
		t.Fatalf("open exclusion log: %v", err)
	}
	if err := log.Record(catalog.Rejection{Title: "Low Movie", MediaType: catalog.Movie, ExternalID: 102, Reason: catalog.ReasonBelowBenchmark}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := log.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	out, _, err := runCLI(t, []string{"show", "exclusions"}, env.configPath)
	if err != nil {
		t.Fatalf("show exclusions: %v", err)
	}
	requireContains(t, out, "Low Movie")
	requireContains(t, out, "BelowBenchmark")
	requireContains(t, out, "102")
}

func TestShowRejectsUnknownView(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"show", "everything"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "unknown view") {
		t.Fatalf("err = %v, want unknown view", err)
	}
}
