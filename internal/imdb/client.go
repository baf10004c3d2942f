// Package imdb reads the aggregate user rating from an IMDb title page. It
// backfills the primary rating for catalog items that carry an IMDb id but no
// rating.
package imdb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"flixlist/internal/catalog"
	"flixlist/internal/normalize"
	"flixlist/internal/services"
)

const userAgent = "Mozilla/5.0 (X11; Linux x86_64) flixlist/1.0"

// ErrNoRating is returned when the page carries no usable rating.
var ErrNoRating = fmt.Errorf("%w: imdb page has no rating", services.ErrNotFound)

// Client fetches IMDb title pages.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates an IMDb client.
func New(baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("imdb base url required")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := &Client{baseURL: baseURL, httpClient: &http.Client{Timeout: timeout}}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Ping requests the site root.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("imdb ping: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))
	if resp.StatusCode >= 400 {
		return &services.StatusError{Service: "imdb", StatusCode: resp.StatusCode}
	}
	return nil
}

// Rating fetches the title page for imdbID and extracts its rating.
func (c *Client) Rating(ctx context.Context, imdbID string) (catalog.Rating, error) {
	imdbID = strings.TrimSpace(imdbID)
	if !strings.HasPrefix(imdbID, "tt") {
		return catalog.Rating{}, fmt.Errorf("invalid imdb id %q", imdbID)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/title/"+imdbID+"/", nil)
	if err != nil {
		return catalog.Rating{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return catalog.Rating{}, fmt.Errorf("imdb title page: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return catalog.Rating{}, &services.StatusError{Service: "imdb title page", StatusCode: resp.StatusCode}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return catalog.Rating{}, fmt.Errorf("read imdb title page: %w", err)
	}
	return ParseRating(body)
}

type linkedData struct {
	AggregateRating *struct {
		RatingValue any `json:"ratingValue"`
	} `json:"aggregateRating"`
}

// ParseRating extracts the rating from a title page. The JSON-LD block is
// preferred; the hero rating badge is used when the block is missing.
func ParseRating(html []byte) (catalog.Rating, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return catalog.Rating{}, fmt.Errorf("parse imdb html: %w", err)
	}

	var rating catalog.Rating
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var data linkedData
		if err := json.Unmarshal([]byte(s.Text()), &data); err != nil || data.AggregateRating == nil {
			return true
		}
		rating = normalize.Rating(data.AggregateRating.RatingValue)
		return !rating.Valid
	})
	if rating.Valid {
		return rating, nil
	}

	badge := doc.Find(`[data-testid="hero-rating-bar__aggregate-rating__score"] span`).First().Text()
	if rating = normalize.Rating(badge); rating.Valid {
		return rating, nil
	}
	return catalog.Rating{}, ErrNoRating
}
