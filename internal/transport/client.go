// Package transport provides the authenticated HTTP client for the
// remote configuration store. It logs in once to obtain a bearer token
// and retries transient failures with exponential backoff; everything
// above it performs each logical operation exactly once.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/agentstation/glossync/pkg/errors"
	"github.com/agentstation/glossync/pkg/logging"
)

// LoginPath is the token endpoint of the configuration store.
const LoginPath = "/token/qts/login"

// DefaultTimeout is the default timeout for HTTP requests.
const DefaultTimeout = 30 * time.Second

// DefaultMaxRetries is the default number of retry attempts for
// transient failures.
const DefaultMaxRetries = 3

// Client provides HTTP client functionality with bearer authentication
// and retry on transient failures.
type Client struct {
	http       *http.Client
	base       string
	auth       Authenticator
	maxRetries int
	backoff    func(attempt int) time.Duration
	token      string
}

// Option configures a transport client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = timeout
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithMaxRetries sets the number of retry attempts for transient failures.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		c.maxRetries = n
	}
}

// WithBackoff overrides the retry backoff schedule. Useful for tests.
func WithBackoff(fn func(attempt int) time.Duration) Option {
	return func(c *Client) {
		c.backoff = fn
	}
}

// New creates a transport client for the given store domain. A bare
// domain without a scheme is assumed to be HTTPS.
func New(domain string, opts ...Option) *Client {
	base := strings.TrimRight(domain, "/")
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "https://" + base
	}

	c := &Client{
		http:       &http.Client{Timeout: DefaultTimeout},
		base:       base,
		auth:       &BearerAuth{},
		maxRetries: DefaultMaxRetries,
		backoff: func(attempt int) time.Duration {
			return time.Duration(1<<attempt) * time.Second
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the normalized base URL of the store.
func (c *Client) BaseURL() string {
	return c.base
}

// Authenticated reports whether a login token is held.
func (c *Client) Authenticated() bool {
	return c.token != ""
}

// Login authenticates against the store and keeps the returned bearer
// token for subsequent requests.
func (c *Client) Login(ctx context.Context, username, password string) error {
	log := logging.FromContext(ctx)
	log.Debug().Str("url", c.base+LoginPath).Msg("Authenticating")

	body, err := c.do(ctx, http.MethodPost, LoginPath, map[string]any{
		"username": username,
		"password": password,
		"token":    "token",
	}, false)
	if err != nil {
		var apiErr *errors.APIError
		if stderrors.As(err, &apiErr) {
			switch apiErr.StatusCode {
			case http.StatusUnauthorized:
				return errors.NewAuthenticationError("bearer", "invalid username or password", err)
			case http.StatusForbidden:
				return errors.NewAuthenticationError("bearer", "access forbidden", err)
			}
		}
		return errors.NewAuthenticationError("bearer", "authentication failed", err)
	}

	token, _ := body["token"].(string)
	if token == "" {
		return errors.NewAuthenticationError("bearer", "no token found in authentication response", nil)
	}
	c.token = token

	log.Info().Msg("Authentication successful")
	return nil
}

// Get performs an authenticated GET request against a store path.
func (c *Client) Get(ctx context.Context, path string) (map[string]any, error) {
	return c.do(ctx, http.MethodGet, path, nil, true)
}

// Put performs an authenticated PUT request with a JSON payload.
func (c *Client) Put(ctx context.Context, path string, payload any) (map[string]any, error) {
	return c.do(ctx, http.MethodPut, path, payload, true)
}

// do performs one logical request, retrying server errors and transport
// failures with exponential backoff. Client errors are never retried.
func (c *Client) do(ctx context.Context, method, path string, payload any, requireAuth bool) (map[string]any, error) {
	log := logging.FromContext(ctx)

	if requireAuth && !c.Authenticated() {
		return nil, errors.NewAuthenticationError("bearer", "not authenticated; call Login first", nil)
	}

	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return nil, errors.WrapParse("json", path, err)
		}
	}

	url := c.base + path

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			wait := c.backoff(attempt)
			log.Debug().Dur("wait", wait).Int("attempt", attempt+1).Msg("Retrying request")
			select {
			case <-ctx.Done():
				return nil, errors.ErrCanceled
			case <-time.After(wait):
			}
		}

		result, retryable, err := c.attempt(ctx, method, url, path, body)
		if err == nil {
			return result, nil
		}
		if ctx.Err() != nil {
			return nil, errors.ErrCanceled
		}
		if !retryable {
			return nil, err
		}
		lastErr = err
		log.Warn().Err(err).Str("url", url).Msg("Transient request failure")
	}

	return nil, lastErr
}

// attempt performs one HTTP round trip. The second return value reports
// whether the failure is transient: a 5xx status or a transport error.
func (c *Client) attempt(ctx context.Context, method, url, path string, body []byte) (map[string]any, bool, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, false, errors.NewAPIError(0, path, err.Error())
	}

	req.Header.Set("Accept", "application/json")
	if method == http.MethodPost || method == http.MethodPut || method == http.MethodPatch {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		c.auth.Apply(req, c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, true, &errors.APIError{Endpoint: path, Message: err.Error(), Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, &errors.APIError{Endpoint: path, Message: err.Error(), Err: err}
	}

	if resp.StatusCode >= 400 {
		apiErr := errors.NewAPIError(resp.StatusCode, path, strings.TrimSpace(string(data)))
		return nil, resp.StatusCode >= 500, apiErr
	}

	result := map[string]any{}
	if err := json.Unmarshal(data, &result); err != nil {
		// Non-JSON bodies are preserved verbatim.
		return map[string]any{"text": string(data)}, false, nil
	}
	return result, false, nil
}
