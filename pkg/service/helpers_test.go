package service

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/salqa/sal/cli/pkg/client"
	"github.com/salqa/sal/cli/pkg/events"
	"github.com/salqa/sal/cli/pkg/output"
	"github.com/salqa/sal/cli/pkg/query"
	"github.com/salqa/sal/cli/pkg/vote"
)

// syncBuffer is written by watcher goroutines while tests read it.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type fixedToken string

func (f fixedToken) Token() (string, error) { return string(f), nil }
func (f fixedToken) Clear() error           { return nil }

type hit struct {
	Method string
	Path   string
	Query  string
	Body   string
}

type server struct {
	mu   sync.Mutex
	hits []hit
}

func (s *server) requests() []hit {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]hit(nil), s.hits...)
}

func (s *server) count(method, path string) int {
	n := 0
	for _, h := range s.requests() {
		if h.Method == method && h.Path == path {
			n++
		}
	}
	return n
}

// startServer points the shared client at mux and records every request.
func startServer(t *testing.T, mux http.Handler, tokens client.TokenStore) *server {
	t.Helper()
	s := &server{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(raw))
		s.mu.Lock()
		s.hits = append(s.hits, hit{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery, Body: string(raw)})
		s.mu.Unlock()
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	if tokens == nil {
		tokens = fixedToken("test-token")
	}
	client.Configure(client.New(client.Options{
		BaseURL:    srv.URL,
		Timeout:    5 * time.Second,
		Tokens:     tokens,
		AuthErrors: events.NewSignal("auth-error"),
	}))
	t.Cleanup(func() { client.Configure(nil) })
	return s
}

func respond(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

// newTestEnv returns an Env that confirms everything and captures output.
func newTestEnv(t *testing.T) (*Env, *syncBuffer) {
	t.Helper()
	color.NoColor = true

	out := &syncBuffer{}
	t.Cleanup(output.SetOutput(out))

	env := &Env{
		Cache:            query.New(),
		StaleTime:        time.Minute,
		ProfileStaleTime: 10 * time.Minute,
		Confirm:          func(string) (bool, error) { return true, nil },
	}
	env.Votes = vote.NewBoard(env.voteCommitted)
	return env, out
}
