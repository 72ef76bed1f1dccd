package client

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	json "github.com/json-iterator/go"
	"github.com/salqa/sal/cli/pkg/config"
	"github.com/salqa/sal/cli/pkg/credentials"
	"github.com/salqa/sal/cli/pkg/events"
	"github.com/salqa/sal/cli/pkg/logger"
)

// UserAgent identifies the CLI to the backend.
const UserAgent = "Sal-CLI/0.1.0"

// TokenStore is where the bearer credential lives between requests.
type TokenStore interface {
	Token() (string, error)
	Clear() error
}

// Options configures a Client.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	Tokens     TokenStore
	AuthErrors *events.Signal
}

// Client is the single configured request client. Every request carries the
// stored bearer token; a 401 response clears the token and fires AuthErrors.
type Client struct {
	rest       *resty.Client
	tokens     TokenStore
	authErrors *events.Signal
}

var (
	httpClient *Client
	clientMu   sync.Mutex
)

// New creates a client from options.
func New(opts Options) *Client {
	c := &Client{
		rest:       resty.New(),
		tokens:     opts.Tokens,
		authErrors: opts.AuthErrors,
	}

	c.rest.SetBaseURL(opts.BaseURL)
	if opts.Timeout > 0 {
		c.rest.SetTimeout(opts.Timeout)
	}
	c.rest.SetHeader("User-Agent", UserAgent)
	c.rest.SetHeader("Accept", "application/json")
	c.rest.JSONMarshal = json.Marshal
	c.rest.JSONUnmarshal = json.Unmarshal

	c.rest.OnBeforeRequest(c.attachCredentials)
	c.rest.OnAfterResponse(c.interceptUnauthorized)

	return c
}

func (c *Client) attachCredentials(_ *resty.Client, req *resty.Request) error {
	req.SetHeader("X-Request-ID", uuid.NewString())

	if c.tokens == nil {
		return nil
	}
	token, err := c.tokens.Token()
	if err != nil {
		// An unreadable token file is treated as no token.
		logger.Warn("Failed to read stored token", "error", err)
		return nil
	}
	if token != "" {
		req.SetAuthToken(token)
	}

	logger.Debug("HTTP Request", "method", req.Method, "url", req.URL, "authenticated", token != "")
	return nil
}

func (c *Client) interceptUnauthorized(_ *resty.Client, resp *resty.Response) error {
	logger.Debug("HTTP Response", "status", resp.StatusCode(), "url", resp.Request.URL)

	if resp.StatusCode() != http.StatusUnauthorized {
		return nil
	}

	logger.Info("Session rejected by server, clearing stored token")
	if c.tokens != nil {
		if err := c.tokens.Clear(); err != nil {
			logger.Error("Failed to clear stored token", "error", err)
		}
	}
	if c.authErrors != nil {
		c.authErrors.Emit()
	}
	return nil
}

// R starts a new request.
func (c *Client) R() *resty.Request {
	return c.rest.R()
}

// Resty exposes the underlying client.
func (c *Client) Resty() *resty.Client {
	return c.rest
}

// Init initializes the shared client from config and the default credential store.
func Init() {
	clientMu.Lock()
	defer clientMu.Unlock()

	httpClient = New(Options{
		BaseURL:    config.GetString("api.base_url"),
		Timeout:    time.Duration(config.GetInt("api.timeout")) * time.Second,
		Tokens:     credentials.Default(),
		AuthErrors: events.AuthError,
	})
}

// Configure replaces the shared client.
func Configure(c *Client) {
	clientMu.Lock()
	defer clientMu.Unlock()
	httpClient = c
}

// GetClient returns the shared client, initializing it on first use.
func GetClient() *Client {
	clientMu.Lock()
	c := httpClient
	clientMu.Unlock()

	if c == nil {
		Init()
		clientMu.Lock()
		c = httpClient
		clientMu.Unlock()
	}
	return c
}
