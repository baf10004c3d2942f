package tmdb_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"flixlist/internal/catalog"
	"flixlist/internal/retry"
	"flixlist/internal/services"
	"flixlist/internal/tmdb"
)

const providersBody = `{"id":1399,"results":{
	"BE":{"flatrate":[{"provider_id":337},{"provider_id":8,"provider_name":"Netflix"}]},
	"NL":{"flatrate":[{"provider_id":119}]}
}}`

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := tmdb.New("", "https://example.com", "en-US"); err == nil {
		t.Fatal("expected error when api key missing")
	}
}

func TestGetWatchProvidersUsesTVPath(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tv/1399/watch/providers" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("api_key") != "key" {
			t.Errorf("expected api_key query parameter, got %q", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(providersBody))
	}))
	t.Cleanup(server.Close)

	client, err := tmdb.New("key", server.URL, "en-US")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	providers, err := client.GetWatchProviders(context.Background(), catalog.Series, 1399)
	if err != nil {
		t.Fatalf("GetWatchProviders returned error: %v", err)
	}
	if !providers.Streams("BE", 8) {
		t.Fatal("expected Netflix flatrate in BE")
	}
	if providers.Streams("NL", 8) || providers.Streams("FR", 8) {
		t.Fatal("expected no Netflix flatrate outside BE")
	}
}

func TestGetMovieDetailsHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"status_code":34}`))
	}))
	t.Cleanup(server.Close)

	client, err := tmdb.New("key", server.URL, "")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	_, err = client.GetMovieDetails(context.Background(), 42)
	var statusErr *services.StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 status error, got %v", err)
	}
}

func TestOracleRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(providersBody))
	}))
	t.Cleanup(server.Close)

	client, err := tmdb.New("key", server.URL, "")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	oracle := tmdb.NewOracle(client, "BE", 8, retry.Fixed(3, 0))
	ok, err := oracle.Available(context.Background(), catalog.Movie, 7)
	if err != nil {
		t.Fatalf("Available returned error: %v", err)
	}
	if !ok || calls.Load() != 3 {
		t.Fatalf("expected availability after 3 calls, got %v after %d", ok, calls.Load())
	}
}

func TestOracleDoesNotRetryNotFound(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(server.Close)

	client, _ := tmdb.New("key", server.URL, "")
	oracle := tmdb.NewOracle(client, "BE", 8, retry.Fixed(3, 0))
	if _, err := oracle.Available(context.Background(), catalog.Movie, 7); err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Fatalf("expected a single call for 404, got %d", calls.Load())
	}
}

func TestOracleReleaseDateUsesFirstAirDate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tv/66732" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("language") != "en-US" {
			t.Errorf("expected language parameter, got %q", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"id":66732,"name":"Stranger Things","first_air_date":"2016-07-15"}`))
	}))
	t.Cleanup(server.Close)

	client, _ := tmdb.New("key", server.URL, "en-US")
	oracle := tmdb.NewOracle(client, "BE", 8, retry.Fixed(1, 0))
	date, ok, err := oracle.ReleaseDate(context.Background(), catalog.Series, 66732)
	if err != nil || !ok {
		t.Fatalf("ReleaseDate returned %v %v", ok, err)
	}
	if catalog.FormatDate(date) != "2016-07-15" {
		t.Fatalf("unexpected release date %v", date)
	}
}

func TestRateLimitSpacesRequests(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":1}`))
	}))
	t.Cleanup(server.Close)

	client, _ := tmdb.New("key", server.URL, "", tmdb.WithRateLimit(20))
	start := time.Now()
	for i := 0; i < 25; i++ {
		if _, err := client.GetMovieDetails(context.Background(), 1); err != nil {
			t.Fatalf("GetMovieDetails returned error: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed < 200*time.Millisecond {
		t.Fatalf("expected limiter to slow requests beyond the burst, took %v", elapsed)
	}
}
