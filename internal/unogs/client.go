// Package unogs fetches candidate titles from the uNoGS catalog search API.
package unogs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"flixlist/internal/catalog"
	"flixlist/internal/logging"
	"flixlist/internal/normalize"
	"flixlist/internal/services"
)

// maxPages stops pagination if the upstream keeps returning full pages.
const maxPages = 1000

// Item is one raw search result tagged with the media type it was fetched for.
type Item struct {
	MediaType catalog.MediaType
	Raw       normalize.Raw
}

type searchResponse struct {
	Total   json.Number     `json:"total"`
	Results []normalize.Raw `json:"results"`
}

// Client queries the catalog search endpoint.
type Client struct {
	apiKey     string
	baseURL    string
	host       string
	countryID  string
	pageSize   int
	httpClient *http.Client
	logger     *slog.Logger
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

// WithLogger attaches a logger for pagination warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logging.NewComponentLogger(logger, "unogs")
	}
}

// Settings holds the request parameters shared by every page.
type Settings struct {
	APIKey    string
	BaseURL   string
	Host      string
	CountryID string
	PageSize  int
	Timeout   time.Duration
}

// New creates a catalog client. A missing API key is a configuration error.
func New(settings Settings, opts ...Option) (*Client, error) {
	apiKey := strings.TrimSpace(settings.APIKey)
	if apiKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, "fetch", "unogs", "api key required", nil)
	}
	baseURL := strings.TrimRight(strings.TrimSpace(settings.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("unogs base url required")
	}
	timeout := settings.Timeout
	if timeout <= 0 {
		timeout = 25 * time.Second
	}
	pageSize := settings.PageSize
	if pageSize <= 0 {
		pageSize = 100
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		host:       strings.TrimSpace(settings.Host),
		countryID:  strings.TrimSpace(settings.CountryID),
		pageSize:   pageSize,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Search fetches one page of results for the media type starting at offset.
func (c *Client) Search(ctx context.Context, mediaType catalog.MediaType, offset int) ([]normalize.Raw, error) {
	endpoint, err := url.Parse(c.baseURL + "/search")
	if err != nil {
		return nil, fmt.Errorf("parse unogs url: %w", err)
	}
	params := url.Values{}
	params.Set("type", mediaType.String())
	params.Set("countrylist", c.countryID)
	params.Set("orderby", "date")
	params.Set("limit", strconv.Itoa(c.pageSize))
	params.Set("offset", strconv.Itoa(offset))
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	if c.host != "" {
		req.Header.Set("X-RapidAPI-Host", c.host)
	}
	req.Header.Set("Accept", "application/json")

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 300))
		return nil, fmt.Errorf("%w (latency=%v)", &services.StatusError{Service: "unogs search", StatusCode: resp.StatusCode, Body: string(body)}, latency)
	}

	decoder := json.NewDecoder(resp.Body)
	decoder.UseNumber()
	var payload searchResponse
	if err := decoder.Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode unogs response: %w", err)
	}
	return payload.Results, nil
}

// FetchAll pages through every media type in order and concatenates the
// results. A failing page ends pagination for that media type only.
func (c *Client) FetchAll(ctx context.Context) ([]Item, error) {
	var items []Item
	for _, mediaType := range catalog.MediaTypes {
		offset := 0
		for page := 0; page < maxPages; page++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			batch, err := c.Search(ctx, mediaType, offset)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				logging.WarnWithContext(c.logger, "catalog page failed; pagination stopped", "catalog_page_failed",
					logging.String(logging.FieldMediaType, mediaType.String()),
					logging.Int("offset", offset),
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "check UNOGS_API_KEY and RapidAPI quota"),
					logging.String(logging.FieldImpact, "remaining pages for this media type are skipped"),
				)
				break
			}
			if len(batch) == 0 {
				break
			}
			for _, raw := range batch {
				items = append(items, Item{MediaType: mediaType, Raw: raw})
			}
			offset += len(batch)
		}
		c.logger.Info("catalog media type fetched",
			logging.String(logging.FieldMediaType, mediaType.String()),
			logging.Int("offset", offset),
			logging.String(logging.FieldEventType, "catalog_fetched"),
		)
	}
	return items, nil
}

// Ping requests a single result to confirm credentials and reachability.
func (c *Client) Ping(ctx context.Context) error {
	probe := *c
	probe.pageSize = 1
	_, err := probe.Search(ctx, catalog.Movie, 0)
	return err
}
