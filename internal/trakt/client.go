package trakt

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

	gobreaker "github.com/sony/gobreaker/v2"

	"flixlist/internal/catalog"
	"flixlist/internal/logging"
	"flixlist/internal/services"
)

const apiVersion = "2"

// ErrNoMatch is returned when a TMDB id has no Trakt counterpart.
var ErrNoMatch = fmt.Errorf("%w: trakt search returned no results", services.ErrNotFound)

// ErrCircuitOpen is returned while the breaker rejects requests.
var ErrCircuitOpen = errors.New("trakt circuit open")

type ids struct {
	Trakt int64 `json:"trakt"`
	TMDB  int64 `json:"tmdb"`
}

type media struct {
	Title string `json:"title"`
	Year  int    `json:"year"`
	IDs   ids    `json:"ids"`
}

type searchResult struct {
	Type  string  `json:"type"`
	Score float64 `json:"score"`
	Movie *media  `json:"movie"`
	Show  *media  `json:"show"`
}

// Ratings models the ratings resource.
type Ratings struct {
	Rating float64 `json:"rating"`
	Votes  int64   `json:"votes"`
}

// Client calls the Trakt API.
type Client struct {
	clientID   string
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[[]byte]
	logger     *slog.Logger

	breakerFailures uint32
	breakerCooldown time.Duration
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

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// WithBreaker sets how many consecutive failures open the circuit and how
// long it stays open.
func WithBreaker(failures int, cooldown time.Duration) Option {
	return func(c *Client) {
		if failures > 0 {
			c.breakerFailures = uint32(failures)
		}
		if cooldown > 0 {
			c.breakerCooldown = cooldown
		}
	}
}

// WithLogger attaches a logger for breaker state changes.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logging.NewComponentLogger(logger, "trakt")
	}
}

// New creates a Trakt client.
func New(clientID, baseURL string, opts ...Option) (*Client, error) {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return nil, services.Wrap(services.ErrConfiguration, "enrichment", "trakt", "client id required", nil)
	}
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("trakt base url required")
	}
	client := &Client{
		clientID:        clientID,
		baseURL:         baseURL,
		httpClient:      &http.Client{Timeout: 10 * time.Second},
		logger:          logging.NewNop(),
		breakerFailures: 5,
		breakerCooldown: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(client)
	}
	client.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:    "trakt",
		Timeout: client.breakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= client.breakerFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || services.IsPermanent(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if to == gobreaker.StateOpen {
				logging.WarnWithContext(client.logger, "trakt circuit opened", "trakt_circuit_open",
					logging.String("from", from.String()),
					logging.Duration("cooldown", client.breakerCooldown),
					logging.String(logging.FieldErrorHint, "check Trakt status and TRAKT_CLIENT_ID"),
					logging.String(logging.FieldImpact, "secondary ratings resolve to absent until the circuit closes"),
				)
				return
			}
			client.logger.Info("trakt circuit state changed",
				logging.String("from", from.String()),
				logging.String("to", to.String()),
				logging.String(logging.FieldEventType, "trakt_circuit_state"),
			)
		},
	})
	return client, nil
}

// Rating resolves the Trakt community rating for a TMDB id.
func (c *Client) Rating(ctx context.Context, mediaType catalog.MediaType, tmdbID int64) (catalog.Rating, error) {
	traktID, err := c.SearchByTMDB(ctx, mediaType, tmdbID)
	if err != nil {
		return catalog.Rating{}, err
	}
	ratings, err := c.GetRatings(ctx, mediaType, traktID)
	if err != nil {
		return catalog.Rating{}, err
	}
	if ratings.Rating <= 0 {
		return catalog.Rating{}, nil
	}
	return catalog.NewRating(ratings.Rating), nil
}

// SearchByTMDB returns the Trakt id of the first search result.
func (c *Client) SearchByTMDB(ctx context.Context, mediaType catalog.MediaType, tmdbID int64) (int64, error) {
	if tmdbID <= 0 {
		return 0, errors.New("tmdb id must be positive")
	}
	params := url.Values{}
	params.Set("type", mediaType.TraktType())
	body, err := c.get(ctx, "/search/tmdb/"+strconv.FormatInt(tmdbID, 10), params, "trakt search")
	if err != nil {
		return 0, err
	}
	var results []searchResult
	if err := json.Unmarshal(body, &results); err != nil {
		return 0, fmt.Errorf("decode trakt search: %w", err)
	}
	if len(results) == 0 {
		return 0, ErrNoMatch
	}
	first := results[0].Movie
	if mediaType == catalog.Series {
		first = results[0].Show
	}
	if first == nil || first.IDs.Trakt <= 0 {
		return 0, ErrNoMatch
	}
	return first.IDs.Trakt, nil
}

// GetRatings fetches the ratings resource for a Trakt id.
func (c *Client) GetRatings(ctx context.Context, mediaType catalog.MediaType, traktID int64) (*Ratings, error) {
	path := fmt.Sprintf("/%s/%d/ratings", mediaType.TraktCollection(), traktID)
	body, err := c.get(ctx, path, nil, "trakt ratings")
	if err != nil {
		return nil, err
	}
	var ratings Ratings
	if err := json.Unmarshal(body, &ratings); err != nil {
		return nil, fmt.Errorf("decode trakt ratings: %w", err)
	}
	return &ratings, nil
}

// Ping fetches the movie genre list to confirm the client id is accepted.
// It bypasses the circuit breaker.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.do(ctx, "/genres/movies", nil, "trakt genres")
	return err
}

// Retryable reports whether a failed lookup is worth another attempt.
func Retryable(err error) bool {
	return !errors.Is(err, ErrCircuitOpen) && !errors.Is(err, services.ErrNotFound) && !services.IsPermanent(err)
}

func (c *Client) get(ctx context.Context, path string, params url.Values, op string) ([]byte, error) {
	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.do(ctx, path, params, op)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%s: %w", op, ErrCircuitOpen)
	}
	return body, err
}

func (c *Client) do(ctx context.Context, path string, params url.Values, op string) ([]byte, error) {
	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return nil, fmt.Errorf("parse trakt url: %w", err)
	}
	if len(params) > 0 {
		endpoint.RawQuery = params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("trakt-api-version", apiVersion)
	req.Header.Set("trakt-api-key", c.clientID)

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, fmt.Errorf("%s: execute request (latency=%v): %w", op, latency, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%s: read body: %w", op, err)
	}
	if resp.StatusCode != http.StatusOK {
		snippet := string(body)
		if len(snippet) > 300 {
			snippet = snippet[:300]
		}
		return nil, fmt.Errorf("%w (latency=%v)", &services.StatusError{Service: op, StatusCode: resp.StatusCode, Body: snippet}, latency)
	}
	return body, nil
}
