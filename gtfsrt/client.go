package gtfsrt

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultAPIKeyHeader is the header the MTA feed endpoints read the key from.
const DefaultAPIKeyHeader = "x-api-key"

// HTTPError is returned when the feed endpoint answers with a non-200 status.
type HTTPError struct {
	StatusCode int
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d from %s", e.StatusCode, e.URL)
}

// Client fetches GTFS-RT protobuf payloads. It performs a single request per
// call and leaves retry decisions to the caller.
type Client struct {
	httpClient *http.Client
	timeout    time.Duration
	apiKey     string
	header     string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithAPIKey sets the key sent on every request. An empty header name falls
// back to DefaultAPIKeyHeader.
func WithAPIKey(header, key string) ClientOption {
	return func(c *Client) {
		if header == "" {
			header = DefaultAPIKeyHeader
		}
		c.header = header
		c.apiKey = key
	}
}

// WithTimeout bounds each request. It applies to a client passed through
// WithHTTPClient as well, whatever the option order, without modifying it.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient creates a new GTFS-RT HTTP client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		header:     DefaultAPIKeyHeader,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	return c
}


// Fetch downloads url and returns the raw body.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", url, err)
	}
	if c.apiKey != "" {
		req.Header.Set(c.header, c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPError{StatusCode: resp.StatusCode, URL: url}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read body from %s: %w", url, err)
	}
	return body, nil
}
