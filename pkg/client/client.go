// Package client provides the resilient provider HTTP client: throttled,
// retried, and classified request execution with JSON decoding.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/footdata/harvester/pkg/cache"
	"github.com/footdata/harvester/pkg/logging"
	"github.com/footdata/harvester/pkg/throttle"
)

// Prometheus metrics for client operations.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "harvester_requests_total",
		Help: "Total provider requests by status",
	}, []string{"status"})

	requestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "harvester_request_duration_seconds",
		Help:    "Provider request duration in seconds",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "harvester_errors_total",
		Help: "Total provider errors by class",
	}, []string{"class"})
)

// Config holds the client configuration. These are the recognized
// acquisition options; everything has a usable default.
type Config struct {
	// BaseURL is the provider endpoint root, e.g. "https://api.example.com/v3".
	BaseURL string

	// UserAgent identifies the harvester to the provider.
	UserAgent string

	// RequestsPerSecond is the outbound rate ceiling (must be positive).
	RequestsPerSecond float64

	// Retry is the bounded-retry policy applied per request.
	Retry RetryPolicy

	// OnRetry, if set, is invoked on every retry across all requests.
	OnRetry RetryObserver

	// PageSize is the listing page size used by pagination callers.
	PageSize int

	// Timeout is the per-attempt HTTP transport timeout.
	Timeout time.Duration

	// Cache, if non-nil, short-circuits repeated GETs for CacheTTL.
	Cache    *cache.Manager
	CacheTTL time.Duration
}

// DefaultConfig returns a safe default configuration for the given base URL.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:           baseURL,
		UserAgent:         "footdata-harvester/1.0",
		RequestsPerSecond: 3,
		Retry:             DefaultRetryPolicy(),
		PageSize:          100,
		Timeout:           30 * time.Second,
	}
}

// Client is the resilient provider client. One instance owns one Throttle;
// it must not be shared across concurrently active runs unless the caller
// intends a combined rate ceiling.
type Client struct {
	httpClient *http.Client
	throttle   *throttle.Throttle
	config     Config
	logger     zerolog.Logger
}

// New creates a new provider client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if cfg.Retry.MaxAttempts <= 0 {
		return nil, fmt.Errorf("max attempts must be positive (got %d)", cfg.Retry.MaxAttempts)
	}
	if cfg.PageSize <= 0 {
		return nil, fmt.Errorf("page size must be positive (got %d)", cfg.PageSize)
	}
	if cfg.Cache != nil && cfg.CacheTTL <= 0 {
		return nil, fmt.Errorf("cache TTL must be positive when caching is enabled")
	}

	th, err := throttle.New(cfg.RequestsPerSecond)
	if err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		throttle:   th,
		config:     cfg,
		logger:     logging.NewLogger("provider-client"),
	}, nil
}

// GetJSON performs one throttled, retried GET against the provider and
// decodes the response body into v. Path is appended to the base URL.
// Any error surviving all retries is returned; no partial result is
// synthesized.
func (c *Client) GetJSON(ctx context.Context, path string, v any) error {
	url := c.config.BaseURL + path

	start := time.Now()
	defer func() {
		requestDuration.Observe(time.Since(start).Seconds())
	}()

	if c.config.Cache != nil {
		if entry, err := c.config.Cache.Get(ctx, url); err == nil {
			c.logger.Debug().Str("url", url).Msg("Cache hit")
			return json.Unmarshal(entry.Data, v)
		} else if err != cache.ErrCacheMiss {
			c.logger.Warn().Err(err).Str("url", url).Msg("Cache get error")
		}
	}

	if err := c.throttle.Wait(ctx); err != nil {
		return err
	}

	var body []byte
	err := c.config.Retry.Do(ctx, func() error {
		var opErr error
		body, opErr = c.fetch(ctx, url)
		return opErr
	}, c.config.OnRetry)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode response from %s: %w", url, err)
	}

	if c.config.Cache != nil {
		entry := cache.NewEntry(body, http.StatusOK, c.config.CacheTTL)
		if err := c.config.Cache.Set(ctx, url, entry); err != nil {
			c.logger.Warn().Err(err).Str("url", url).Msg("Failed to cache response")
		}
	}

	return nil
}

// fetch performs a single HTTP GET attempt and classifies the outcome.
func (c *Client) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		requestsTotal.WithLabelValues("network_error").Inc()
		c.logger.Error().Err(err).Str("url", url).Msg("HTTP request failed")
		return nil, &ProviderError{Class: ErrorClassNetwork, URL: url, Err: err}
	}
	defer resp.Body.Close()

	requestsTotal.WithLabelValues(fmt.Sprintf("%d", resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		class := classifyStatus(resp.StatusCode)
		errorsTotal.WithLabelValues(string(class)).Inc()

		c.logger.Warn().
			Str("url", url).
			Int("status", resp.StatusCode).
			Str("error_class", string(class)).
			Msg("Provider request error")

		return nil, &ProviderError{
			StatusCode: resp.StatusCode,
			Class:      class,
			URL:        url,
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		return nil, &ProviderError{Class: ErrorClassNetwork, URL: url, Err: err}
	}

	return body, nil
}

// Stats exposes the underlying throttle counters for observability.
func (c *Client) Stats() throttle.Stats {
	return c.throttle.Stats()
}

// PageSize returns the configured listing page size.
func (c *Client) PageSize() int {
	return c.config.PageSize
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
