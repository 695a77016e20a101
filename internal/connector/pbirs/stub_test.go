package pbirs

import (
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
)

const stubAPIPrefix = "/Reports/api/v2.0/"

// stubServer serves canned report server responses in-process and counts
// every request it sees.
type stubServer struct {
	mu     sync.Mutex
	routes map[string]stubResponse
	calls  []string
}

type stubResponse struct {
	status int
	body   string
}

func newStubServer() *stubServer {
	return &stubServer{routes: map[string]stubResponse{}}
}

// on registers a response for a resource path relative to the API root,
// e.g. "Reports(r1)".
func (s *stubServer) on(resource string, status int, body string) *stubServer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes[stubAPIPrefix+resource] = stubResponse{status: status, body: body}
	return s
}

func (s *stubServer) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func (s *stubServer) paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *stubServer) RoundTrip(req *http.Request) (*http.Response, error) {
	s.mu.Lock()
	s.calls = append(s.calls, strings.TrimPrefix(req.URL.Path, stubAPIPrefix))
	route, ok := s.routes[req.URL.Path]
	s.mu.Unlock()

	if !ok {
		route = stubResponse{status: http.StatusNotFound, body: `{"error":{"code":"NotFound"}}`}
	}
	return &http.Response{
		StatusCode: route.status,
		Status:     http.StatusText(route.status),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(route.body)),
		Request:    req,
	}, nil
}

func testConfig() *Config {
	return &Config{
		Username:                         "svc-catalog",
		Password:                         "secret",
		ReportVirtualDirectoryName:       "Reports",
		ReportServerVirtualDirectoryName: "ReportServer",
		DatasetTypeMapping:               map[string]string{"SQL": "mssql"},
		RateLimit:                        1000,
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const emptyCollection = `{"value":[]}`
