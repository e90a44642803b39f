package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/duelkeeper/duelkeeper/internal/ygo/cards"
)

const (
	defaultBaseURL      = "https://db.ygoprodeck.com/api/v7/cardinfo.php"
	defaultRateInterval = 100 * time.Millisecond // 10 req/sec, well under the API's 20 req/sec limit
	defaultTimeout      = 60 * time.Second
	defaultMaxRetries   = 3
	initialBackoff      = 1 * time.Second
	maxBackoff          = 16 * time.Second
)

// ClientConfig holds the tunables of the API client.
type ClientConfig struct {
	// BaseURL is the card API endpoint. Empty selects the public
	// ygoprodeck endpoint.
	BaseURL string

	// Timeout bounds each HTTP request. Zero selects the default.
	Timeout time.Duration

	// RateInterval is the minimum delay between requests. Zero selects
	// the default.
	RateInterval time.Duration

	// MaxRetries is the number of retries after the first attempt on
	// busy responses and transport errors. Zero disables retries;
	// negative selects the default.
	MaxRetries int
}

// DefaultClientConfig returns the client configuration used by NewClient.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		BaseURL:      defaultBaseURL,
		Timeout:      defaultTimeout,
		RateInterval: defaultRateInterval,
		MaxRetries:   defaultMaxRetries,
	}
}

// Client is a ygoprodeck API client with rate limiting and retry.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	userAgent   string
	maxRetries  int
}

// NewClient creates a ygoprodeck API client with default settings.
func NewClient() *Client {
	return NewClientWithConfig(DefaultClientConfig())
}

// NewClientWithConfig creates a client honoring the given tunables. Zero
// values fall back to the defaults, except MaxRetries where zero means no
// retries.
func NewClientWithConfig(config ClientConfig) *Client {
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	if config.Timeout <= 0 {
		config.Timeout = defaultTimeout
	}
	if config.RateInterval <= 0 {
		config.RateInterval = defaultRateInterval
	}
	if config.MaxRetries < 0 {
		config.MaxRetries = defaultMaxRetries
	}

	return &Client{
		baseURL: config.BaseURL,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		rateLimiter: rate.NewLimiter(rate.Every(config.RateInterval), 1),
		userAgent:   "DuelKeeper/1.0",
		maxRetries:  config.MaxRetries,
	}
}

// NewClientWithBaseURL creates a client against a custom endpoint. Used for
// testing and for configurable API mirrors.
func NewClientWithBaseURL(baseURL string) *Client {
	config := DefaultClientConfig()
	config.BaseURL = baseURL
	return NewClientWithConfig(config)
}

// snapshotEnvelope is the API response wrapper: {"data": [...]}.
type snapshotEnvelope struct {
	Data []*cards.Card `json:"data"`
}

// FetchSnapshot downloads the full card database for a language. The English
// database is the API default; other languages use the language parameter.
func (c *Client) FetchSnapshot(ctx context.Context, lang string) ([]*cards.Card, error) {
	requestURL := c.baseURL
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang != "" && lang != "en" {
		requestURL += "?language=" + url.QueryEscape(lang)
	}

	var envelope snapshotEnvelope
	if err := c.doRequest(ctx, requestURL, &envelope); err != nil {
		return nil, fmt.Errorf("failed to fetch card database (%s): %w", lang, err)
	}

	return envelope.Data, nil
}

// doRequest performs an HTTP GET with rate limiting and retry logic.
func (c *Client) doRequest(ctx context.Context, requestURL string, result interface{}) error {
	var lastErr error
	backoff := initialBackoff

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter error: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("HTTP request failed: %w", err)
			if attempt < c.maxRetries {
				time.Sleep(backoff)
				backoff = min(backoff*2, maxBackoff)
				continue
			}
			return lastErr
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()

		switch resp.StatusCode {
		case http.StatusOK:
			if readErr != nil {
				return fmt.Errorf("failed to read response body: %w", readErr)
			}
			if err := json.Unmarshal(body, result); err != nil {
				return fmt.Errorf("failed to parse JSON response: %w", err)
			}
			return nil

		case http.StatusTooManyRequests, http.StatusServiceUnavailable:
			lastErr = fmt.Errorf("server busy (HTTP %d)", resp.StatusCode)
			if attempt < c.maxRetries {
				time.Sleep(backoff)
				backoff = min(backoff*2, maxBackoff)
				continue
			}
			return lastErr

		default:
			return fmt.Errorf("unexpected status code %d", resp.StatusCode)
		}
	}

	return lastErr
}
