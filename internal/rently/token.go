// ABOUTME: OAuth2 client-credentials token cache for the Rently API
// ABOUTME: Refreshes ahead of expiry and collapses concurrent refreshes into one request

package rently

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/2389/rently-gateway/internal/config"
)

// tokenRefreshMargin is how long before expiry a cached token stops being used.
const tokenRefreshMargin = 5 * time.Minute

const defaultTokenType = "Bearer"

// TokenCache is a cached bearer token.
type TokenCache struct {
	Token     string
	ExpiresAt time.Time
	TokenType string
}

type tokenResponse struct {
	AccessToken string  `json:"access_token"`
	ExpiresIn   float64 `json:"expires_in"`
	TokenType   string  `json:"token_type"`
}

// TokenManager obtains and caches tokens for one credential set.
type TokenManager struct {
	cfg    config.AuthConfig
	http   *http.Client
	logger *slog.Logger
	now    func() time.Time

	mu    sync.Mutex
	cache *TokenCache
	group singleflight.Group
}

// NewTokenManager creates a manager for the given credentials. A nil
// httpClient uses http.DefaultClient.
func NewTokenManager(cfg config.AuthConfig, httpClient *http.Client, logger *slog.Logger) *TokenManager {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TokenManager{
		cfg:    cfg,
		http:   httpClient,
		logger: logger.With("component", "rently_token", "client_id", cfg.ClientID),
		now:    time.Now,
	}
}

// Token returns a cached token while it is more than five minutes from
// expiry, otherwise fetches a new one.
func (m *TokenManager) Token(ctx context.Context) (string, error) {
	m.mu.Lock()
	cached := m.cache
	m.mu.Unlock()

	if cached != nil && m.now().Add(tokenRefreshMargin).Before(cached.ExpiresAt) {
		m.logger.Debug("using cached token", "expires_at", cached.ExpiresAt)
		return cached.Token, nil
	}

	return m.refresh(ctx)
}

// Refresh discards the cached token and fetches a new one. It shares the
// in-flight request with concurrent callers. If the fetch fails the cache
// stays empty, so later Token calls retry instead of reusing the old token.
func (m *TokenManager) Refresh(ctx context.Context) (string, error) {
	m.mu.Lock()
	m.cache = nil
	m.mu.Unlock()

	return m.refresh(ctx)
}

// Cached returns a copy of the current cache entry, or nil.
func (m *TokenManager) Cached() *TokenCache {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cache == nil {
		return nil
	}
	c := *m.cache
	return &c
}

func (m *TokenManager) refresh(ctx context.Context) (string, error) {
	ch := m.group.DoChan("token", func() (any, error) {
		// Detached so one caller's cancellation does not fail the others.
		return m.requestToken(context.WithoutCancel(ctx))
	})

	select {
	case res := <-ch:
		if res.Shared {
			m.logger.Debug("joined in-flight token request")
		}
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (m *TokenManager) requestToken(ctx context.Context) (string, error) {
	m.logger.Debug("requesting new token")

	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {m.cfg.ClientID},
		"client_secret": {m.cfg.ClientSecret},
	}
	endpoint := strings.TrimRight(m.cfg.BaseURL, "/") + "/auth/token"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("building token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("requesting token: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading token response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		m.logger.Error("authentication failed", "status", resp.StatusCode, "response", string(body))
		return "", &AuthenticationError{
			Status:     resp.StatusCode,
			StatusText: statusText(resp),
			Body:       string(body),
		}
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", &AuthenticationError{
			Status:     resp.StatusCode,
			StatusText: statusText(resp),
			Body:       string(body),
			Reason:     "token response is not valid JSON",
		}
	}
	if tr.AccessToken == "" {
		return "", &AuthenticationError{
			Status:     resp.StatusCode,
			StatusText: statusText(resp),
			Body:       string(body),
			Reason:     "no access token received from authentication endpoint",
		}
	}

	tokenType := tr.TokenType
	if tokenType == "" {
		tokenType = defaultTokenType
	}
	cache := &TokenCache{
		Token:     tr.AccessToken,
		ExpiresAt: m.now().Add(time.Duration(tr.ExpiresIn * float64(time.Second))),
		TokenType: tokenType,
	}

	m.mu.Lock()
	m.cache = cache
	m.mu.Unlock()

	m.logger.Debug("token acquired", "expires_in", tr.ExpiresIn, "token_type", tokenType)
	return cache.Token, nil
}

// statusText returns the reason phrase of resp without the numeric prefix.
func statusText(resp *http.Response) string {
	if text := strings.TrimSpace(strings.TrimPrefix(resp.Status, fmt.Sprint(resp.StatusCode))); text != "" {
		return text
	}
	return http.StatusText(resp.StatusCode)
}
