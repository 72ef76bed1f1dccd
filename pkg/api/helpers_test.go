package api

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/salqa/sal/cli/pkg/client"
	"github.com/salqa/sal/cli/pkg/events"
)

type staticTokens struct {
	mu    sync.Mutex
	token string
}

func (s *staticTokens) Token() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, nil
}

func (s *staticTokens) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}

type recordedRequest struct {
	Method      string
	Path        string
	Page        string
	Auth        string
	ContentType string
	Body        string
}

type backend struct {
	mu       sync.Mutex
	requests []recordedRequest
	tokens   *staticTokens
	signal   *events.Signal
}

func (b *backend) last() recordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.requests) == 0 {
		return recordedRequest{}
	}
	return b.requests[len(b.requests)-1]
}

// newBackend points the shared client at a test server that records every
// request and replies with status and body.
func newBackend(t *testing.T, status int, body string) *backend {
	t.Helper()
	return newBackendFunc(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	})
}

func newBackendFunc(t *testing.T, handler http.HandlerFunc) *backend {
	t.Helper()
	b := &backend{
		tokens: &staticTokens{token: "test-token"},
		signal: events.NewSignal("auth-error"),
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		b.mu.Lock()
		b.requests = append(b.requests, recordedRequest{
			Method:      r.Method,
			Path:        r.URL.Path,
			Page:        r.URL.Query().Get("page"),
			Auth:        r.Header.Get("Authorization"),
			ContentType: r.Header.Get("Content-Type"),
			Body:        string(raw),
		})
		b.mu.Unlock()
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client.Configure(client.New(client.Options{
		BaseURL:    srv.URL,
		Timeout:    5 * time.Second,
		Tokens:     b.tokens,
		AuthErrors: b.signal,
	}))
	t.Cleanup(func() { client.Configure(nil) })
	return b
}
