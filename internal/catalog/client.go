// Package catalog provides an HTTP client for the product-search
// provider. The provider owns retry and relevance; this client only
// performs a single bounded call and decodes the result.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopguide/shopguide-ai-platform/pkg/logging"
)

const defaultTimeout = 10 * time.Second

// Searcher is the slice of the client the dialogue engine depends on.
type Searcher interface {
	SearchProducts(ctx context.Context, keyword string, maxPrice int, offset int) ([]Product, error)
}

// Client is a catalog search API client.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *logging.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithAPIKey attaches a bearer token to every search request.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithTimeout overrides the request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient creates a catalog search client for the given base URL.
func NewClient(baseURL string, logger *logging.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type searchResponse struct {
	Products []Product `json:"products"`
	Total    int       `json:"total"`
}

// SearchProducts runs one keyword search against the provider. Zero
// results is a valid outcome and returns an empty slice, not an error.
func (c *Client) SearchProducts(ctx context.Context, keyword string, maxPrice int, offset int) ([]Product, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("catalog: base URL is not configured")
	}

	query := url.Values{}
	query.Set("q", keyword)
	if maxPrice > 0 {
		query.Set("max_price", strconv.Itoa(maxPrice))
	}
	if offset > 0 {
		query.Set("offset", strconv.Itoa(offset))
	}

	endpoint := fmt.Sprintf("%s/v1/products/search?%s", c.baseURL, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("catalog: failed to build search request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog: search request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("catalog: failed to read search response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog: search returned status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var decoded searchResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("catalog: failed to decode search response: %w", err)
	}

	c.logger.Debug("catalog search completed",
		"keyword", keyword,
		"results", len(decoded.Products),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if decoded.Products == nil {
		return []Product{}, nil
	}
	return decoded.Products, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
