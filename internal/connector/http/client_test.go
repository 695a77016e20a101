package http

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

func respond(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     make(http.Header),
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

// statusSequence answers with the given statuses in order, repeating the last.
func statusSequence(calls *int32, statuses ...int) http.RoundTripper {
	return roundTripFunc(func(req *http.Request) (*http.Response, error) {
		n := int(atomic.AddInt32(calls, 1)) - 1
		if n >= len(statuses) {
			n = len(statuses) - 1
		}
		return respond(statuses[n], `{"ok":true}`), nil
	})
}

func testClient(rt http.RoundTripper, retries int) *Client {
	cfg := DefaultClientConfig()
	cfg.BaseURL = "http://server/Reports/api/v2.0/"
	cfg.RateLimit = 1000
	cfg.MaxRetries = retries
	cfg.Transport = rt
	return NewClient(cfg)
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls int32
	client := testClient(statusSequence(&calls, 503, 200), 2)

	resp, err := client.Get(context.Background(), "System", nil)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestClient_NoRetryWhenDisabled(t *testing.T) {
	var calls int32
	client := testClient(statusSequence(&calls, 503, 200), 0)

	resp, err := client.Get(context.Background(), "System", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 503, resp.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.True(t, httpErr.IsServerError())
	assert.False(t, httpErr.IsRateLimited())
	assert.Equal(t, "http://server/Reports/api/v2.0/System", httpErr.URL)
}

func TestClient_ClientErrorsAreNotRetried(t *testing.T) {
	var calls int32
	client := testClient(statusSequence(&calls, 404), 3)

	_, err := client.Get(context.Background(), "Reports(x)", nil)
	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, 404, httpErr.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestHTTPError_RateLimited(t *testing.T) {
	err := &HTTPError{StatusCode: http.StatusTooManyRequests, Message: "slow down"}
	assert.True(t, err.IsRateLimited())
	assert.True(t, isRetryable(err))
	assert.Equal(t, "HTTP 429: slow down", err.Error())
	assert.False(t, isRetryable(assert.AnError))
}

func TestClient_HeadersAndUserAgent(t *testing.T) {
	var seen *http.Request
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		seen = req
		return respond(200, `{}`), nil
	})
	cfg := DefaultClientConfig()
	cfg.Transport = rt
	cfg.Headers["Accept"] = "application/json"
	client := NewClient(cfg)

	_, err := client.Get(context.Background(), "http://server/x", nil)
	require.NoError(t, err)
	require.NotNil(t, seen)
	assert.Equal(t, "application/json", seen.Header.Get("Accept"))
	assert.Equal(t, "pbirs-connector/1.0", seen.Header.Get("User-Agent"))
}

func TestClient_ResolveURL(t *testing.T) {
	client := testClient(nil, 0)

	assert.Equal(t, "http://server/Reports/api/v2.0/System", client.ResolveURL("System"))
	assert.Equal(t, "http://server/Reports/api/v2.0/System", client.ResolveURL("/System"))
	assert.Equal(t, "https://other/x", client.ResolveURL("https://other/x"))
	assert.Equal(t, "http://server/Reports/api/v2.0/", client.ResolveURL(""))
}

func TestClient_CanceledContext(t *testing.T) {
	var calls int32
	client := testClient(statusSequence(&calls, 200), 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Get(ctx, "System", nil)
	require.Error(t, err)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

// =============================================================================
// AUTH
// =============================================================================

func TestNTLMAuth_Principal(t *testing.T) {
	assert.Equal(t, `WS01\svc`, NewNTLMAuth("WS01", "svc", "pw").Principal())
	assert.Equal(t, "svc", NewNTLMAuth("", "svc", "pw").Principal())
}

func TestNTLMAuth_ApplyStagesBasicCredential(t *testing.T) {
	req, err := http.NewRequest(http.MethodGet, "http://server/", nil)
	require.NoError(t, err)

	NewNTLMAuth("WS01", "svc", "pw").Apply(req)
	user, pass, ok := req.BasicAuth()
	require.True(t, ok)
	assert.Equal(t, `WS01\svc`, user)
	assert.Equal(t, "pw", pass)
}

func TestNTLMAuth_WrapsTransport(t *testing.T) {
	var calls int32
	cfg := DefaultClientConfig()
	cfg.Auth = NewNTLMAuth("WS01", "svc", "pw")
	cfg.Transport = statusSequence(&calls, 200)
	client := NewClient(cfg)

	resp, err := client.Get(context.Background(), "http://server/System", nil)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
