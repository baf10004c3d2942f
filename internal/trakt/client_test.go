package trakt_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"flixlist/internal/catalog"
	"flixlist/internal/services"
	"flixlist/internal/trakt"
)

func TestNewRequiresClientID(t *testing.T) {
	_, err := trakt.New(" ", "https://api.trakt.tv")
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestRatingSearchesThenFetches(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("trakt-api-version") != "2" || r.Header.Get("trakt-api-key") != "client" {
			t.Errorf("missing trakt headers: %v", r.Header)
		}
		switch r.URL.Path {
		case "/search/tmdb/1399":
			if r.URL.Query().Get("type") != "show" {
				t.Errorf("expected type=show, got %q", r.URL.RawQuery)
			}
			_, _ = w.Write([]byte(`[
				{"type":"show","score":1000,"show":{"title":"Game of Thrones","ids":{"trakt":1390,"tmdb":1399}}},
				{"type":"show","score":10,"show":{"title":"Other","ids":{"trakt":9999}}}
			]`))
		case "/shows/1390/ratings":
			_, _ = w.Write([]byte(`{"rating":8.96,"votes":100}`))
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)

	client, err := trakt.New("client", server.URL)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	rating, err := client.Rating(context.Background(), catalog.Series, 1399)
	if err != nil {
		t.Fatalf("Rating returned error: %v", err)
	}
	if rating != catalog.NewRating(9.0) {
		t.Fatalf("unexpected rating %+v", rating)
	}
}

func TestRatingNoSearchResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	t.Cleanup(server.Close)

	client, _ := trakt.New("client", server.URL)
	_, err := client.Rating(context.Background(), catalog.Movie, 5)
	if !errors.Is(err, trakt.ErrNoMatch) {
		t.Fatalf("expected ErrNoMatch, got %v", err)
	}
	if trakt.Retryable(err) {
		t.Fatal("a missing match should not be retried")
	}
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)

	client, _ := trakt.New("client", server.URL, trakt.WithBreaker(2, time.Minute))
	for i := 0; i < 2; i++ {
		if _, err := client.Rating(context.Background(), catalog.Movie, 5); err == nil {
			t.Fatal("expected upstream error")
		}
	}
	_, err := client.Rating(context.Background(), catalog.Movie, 5)
	if !errors.Is(err, trakt.ErrCircuitOpen) {
		t.Fatalf("expected open circuit, got %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected breaker to stop traffic after 2 calls, got %d", calls.Load())
	}
}

func TestNotFoundDoesNotTripBreaker(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(server.Close)

	client, _ := trakt.New("client", server.URL, trakt.WithBreaker(1, time.Minute))
	for i := 0; i < 3; i++ {
		_, err := client.Rating(context.Background(), catalog.Movie, 5)
		if errors.Is(err, trakt.ErrCircuitOpen) {
			t.Fatalf("404 responses should not open the circuit (attempt %d)", i)
		}
		if !services.IsPermanent(err) {
			t.Fatalf("expected permanent status error, got %v", err)
		}
	}
}
