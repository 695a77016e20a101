package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

const (
	defaultRateLimit = 10.0
	defaultRateBurst = 5
	defaultUserAgent = "pbirs-connector/1.0"
	baseBackoff      = 100 * time.Millisecond
)

// ClientConfig configures the HTTP client behavior.
type ClientConfig struct {
	// BaseURL is prefixed to relative request paths.
	BaseURL string

	Auth AuthConfig

	// Timeout bounds each attempt. Zero means no client-side timeout.
	Timeout time.Duration

	// MaxRetries for 429 and 5xx answers. Zero disables retries.
	MaxRetries int

	// RateLimit in requests per second, with RateBurst tokens of headroom.
	RateLimit float64
	RateBurst int

	// Headers are set on every request.
	Headers   map[string]string
	UserAgent string

	// Transport replaces http.DefaultTransport, mostly for stubs in tests.
	Transport http.RoundTripper
}

// DefaultClientConfig returns a client config with the default rate limit
// and no retries.
func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		RateLimit: defaultRateLimit,
		RateBurst: defaultRateBurst,
		UserAgent: defaultUserAgent,
		Headers:   make(map[string]string),
		Auth:      NoAuth{},
	}
}

func (c *ClientConfig) normalize() {
	if c.RateLimit <= 0 {
		c.RateLimit = defaultRateLimit
	}
	if c.RateBurst <= 0 {
		c.RateBurst = defaultRateBurst
	}
	if c.UserAgent == "" {
		c.UserAgent = defaultUserAgent
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.Auth == nil {
		c.Auth = NoAuth{}
	}
}

// =============================================================================
// HTTP CLIENT
// =============================================================================

// Client is a rate-limited GET client. It is read-only after construction
// and safe for serial reuse.
type Client struct {
	config  *ClientConfig
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a new HTTP client with the given configuration.
func NewClient(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultClientConfig()
	}
	config.normalize()

	transport := config.Transport
	if wrapper, ok := config.Auth.(TransportWrapper); ok {
		transport = wrapper.WrapTransport(transport)
	}

	return &Client{
		config:  config,
		http:    &http.Client{Timeout: config.Timeout, Transport: transport},
		limiter: rate.NewLimiter(rate.Limit(config.RateLimit), config.RateBurst),
	}
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	URL        string
}

// ResolveURL joins a request path onto the base URL. Absolute URLs are
// returned unchanged.
func (c *Client) ResolveURL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if path == "" {
		return c.config.BaseURL
	}
	return strings.TrimSuffix(c.config.BaseURL, "/") + "/" + strings.TrimPrefix(path, "/")
}

// Get issues a GET for path. Any answer of 400 or above is returned together
// with an *HTTPError; 429 and 5xx are retried up to MaxRetries times.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	target := c.ResolveURL(path)
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	for attempt := 0; ; attempt++ {
		resp, err := c.get(ctx, target)
		if err == nil || !isRetryable(err) || attempt >= c.config.MaxRetries {
			return resp, err
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(baseBackoff << uint(attempt)):
		}
	}
}

func (c *Client) get(ctx context.Context, target string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	for k, v := range c.config.Headers {
		req.Header.Set(k, v)
	}
	c.config.Auth.Apply(req)

	httpResp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       body,
		URL:        target,
	}
	if resp.StatusCode >= 400 {
		return resp, &HTTPError{StatusCode: resp.StatusCode, Message: string(body), URL: target}
	}
	return resp, nil
}

// =============================================================================
// ERRORS
// =============================================================================

// HTTPError is an answer with status 400 or above.
type HTTPError struct {
	StatusCode int
	Message    string
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// IsRateLimited returns true if this is a rate limit error.
func (e *HTTPError) IsRateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// IsServerError returns true if this is a server error.
func (e *HTTPError) IsServerError() bool {
	return e.StatusCode >= 500
}

func isRetryable(err error) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.IsRateLimited() || httpErr.IsServerError()
	}
	return false
}
