// ABOUTME: Authenticated HTTP client for Rently business endpoints
// ABOUTME: Injects bearer tokens, encodes JSON bodies and translates upstream failures

package rently

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/2389/rently-gateway/internal/config"
)

// Options configures clients built by NewClient and Factory.
type Options struct {
	HTTPClient *http.Client
	// Limiter, when set, is waited on before every business request.
	Limiter *rate.Limiter
	Logger  *slog.Logger
}

// Request describes one upstream call.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	Header http.Header
}

// Client talks to one Rently deployment on behalf of one credential set.
type Client struct {
	runtime config.RuntimeConfig
	tokens  *TokenManager
	http    *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
	now     func() time.Time
}

// NewClient creates a client for runtime using tokens for authentication.
func NewClient(runtime config.RuntimeConfig, tokens *TokenManager, opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		runtime: runtime,
		tokens:  tokens,
		http:    httpClient,
		limiter: opts.Limiter,
		logger:  logger.With("component", "rently_client"),
		now:     time.Now,
	}
}

// Factory builds clients from resolved configuration, sharing a token pool,
// HTTP client and rate limiter.
type Factory struct {
	pool *TokenPool
	opts Options
}

// NewFactory creates a client factory backed by pool.
func NewFactory(pool *TokenPool, opts Options) *Factory {
	return &Factory{pool: pool, opts: opts}
}

// Client returns a client for res. The token manager comes from the pool so
// identical credentials share a cached token.
func (f *Factory) Client(res config.Resolved) *Client {
	return NewClient(res.Runtime, f.pool.Get(res.Auth), f.opts)
}

// bearer returns the caller-supplied token while it is valid, otherwise a
// managed one.
func (c *Client) bearer(ctx context.Context) (string, error) {
	if c.runtime.Token != "" && (c.runtime.TokenExpiry.IsZero() || c.now().Before(c.runtime.TokenExpiry)) {
		return c.runtime.Token, nil
	}
	if c.tokens == nil {
		return "", &AuthenticationError{Reason: "no token manager configured"}
	}
	return c.tokens.Token(ctx)
}

// RefreshToken forces a new managed token.
func (c *Client) RefreshToken(ctx context.Context) (string, error) {
	if c.tokens == nil {
		return "", &AuthenticationError{Reason: "no token manager configured"}
	}
	return c.tokens.Refresh(ctx)
}

// Do performs req and decodes a successful JSON response into out. A nil
// out discards the body. A 204 response leaves out untouched, except that a
// *json.RawMessage receives an empty object.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	token, err := c.bearer(ctx)
	if err != nil {
		return err
	}

	target := strings.TrimRight(c.runtime.BaseURL, "/") + req.Path
	if len(req.Query) > 0 {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, req.Path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	c.logger.Debug("upstream call",
		"method", method,
		"path", req.Path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &HTTPError{
			Status:     resp.StatusCode,
			StatusText: statusText(resp),
			Body:       decodeErrorBody(data),
		}
	}

	if resp.StatusCode == http.StatusNoContent {
		if raw, ok := out.(*json.RawMessage); ok {
			*raw = json.RawMessage("{}")
		}
		return nil
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %w", ErrParseResponse, err)
	}
	return nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query}, out)
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body}, out)
}

func decodeErrorBody(data []byte) any {
	var v any
	if err := json.Unmarshal(data, &v); err == nil {
		return v
	}
	return string(data)
}

