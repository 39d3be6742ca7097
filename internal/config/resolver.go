// ABOUTME: Per-request resolution of upstream credentials and base URL
// ABOUTME: Merges request headers, environment, session fallback and defaults by fixed priority

package config

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"
)

// Request headers recognised by the resolver.
const (
	HeaderBaseURL      = "X-Rently-Base-Url"
	HeaderClientID     = "X-Rently-Client-Id"
	HeaderClientSecret = "X-Rently-Client-Secret"
)

// Environment variables recognised by the resolver.
const (
	EnvBaseURL      = "BASE_URL"
	EnvClientID     = "CLIENT_ID"
	EnvClientSecret = "CLIENT_SECRET"
)

// Source names the tier a resolved value came from.
type Source string

const (
	SourceHeaders Source = "headers"
	SourceEnv     Source = "env"
	SourceSession Source = "session"
	SourceDefault Source = "default"
)

// Explicit reports whether the value was supplied by the caller or the
// environment rather than inherited.
func (s Source) Explicit() bool {
	return s == SourceHeaders || s == SourceEnv
}

// AuthConfig is what the token endpoint needs.
type AuthConfig struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
}

// RuntimeConfig is what business calls need. Token, when set and not past
// TokenExpiry, is used as the bearer instead of asking the token manager.
type RuntimeConfig struct {
	BaseURL     string
	Token       string
	TokenExpiry time.Time
}

// Resolved is the immutable outcome of one resolution.
type Resolved struct {
	Auth          AuthConfig
	Runtime       RuntimeConfig
	AuthSource    Source
	RuntimeSource Source
}

// Fallback holds the last explicitly resolved values for one session.
// Nil fields mean nothing has been remembered yet.
type Fallback struct {
	Auth    *AuthConfig
	Runtime *RuntimeConfig
}

// Remember returns fb updated with any explicitly sourced values in r.
func (r Resolved) Remember(fb Fallback) Fallback {
	if r.AuthSource.Explicit() {
		auth := r.Auth
		fb.Auth = &auth
	}
	if r.RuntimeSource.Explicit() {
		rt := r.Runtime
		rt.Token = ""
		rt.TokenExpiry = time.Time{}
		fb.Runtime = &rt
	}
	return fb
}

// WithToken returns a copy of r whose runtime config carries a caller-supplied
// bearer token. An empty token leaves r unchanged.
func (r Resolved) WithToken(token string) Resolved {
	if token == "" {
		return r
	}
	r.Runtime.Token = token
	return r
}

// Env is a snapshot of the resolver's environment variables.
type Env map[string]string

// EnvFromOS snapshots the recognised variables from the process environment.
func EnvFromOS() Env {
	env := Env{}
	for _, key := range []string{EnvBaseURL, EnvClientID, EnvClientSecret} {
		if v, ok := os.LookupEnv(key); ok {
			env[key] = v
		}
	}
	return env
}

func (e Env) get(key string) string {
	return strings.TrimSpace(e[key])
}

// Resolver merges configuration tiers. It is safe for concurrent use; it
// holds no mutable state.
type Resolver struct {
	env      Env
	defaults AuthConfig
	logger   *slog.Logger
}

// NewResolver creates a resolver over an environment snapshot and the
// lowest-tier defaults.
func NewResolver(env Env, defaults DefaultsConfig, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	if env == nil {
		env = Env{}
	}
	return &Resolver{
		env: env,
		defaults: AuthConfig{
			BaseURL:      defaults.BaseURL,
			ClientID:     defaults.ClientID,
			ClientSecret: defaults.ClientSecret,
		},
		logger: logger,
	}
}

// Resolve computes auth and runtime configuration independently.
func (r *Resolver) Resolve(h http.Header, fb Fallback) Resolved {
	auth, authSrc := r.ResolveAuth(h, fb)
	runtime, runtimeSrc := r.ResolveRuntime(h, fb)
	return Resolved{
		Auth:          auth,
		Runtime:       runtime,
		AuthSource:    authSrc,
		RuntimeSource: runtimeSrc,
	}
}

// ResolveAuth picks the first complete credential set from headers, then
// environment, then the session fallback, then defaults.
func (r *Resolver) ResolveAuth(h http.Header, fb Fallback) (AuthConfig, Source) {
	baseURL := headerValue(h, HeaderBaseURL)
	clientID := headerValue(h, HeaderClientID)
	secret := headerValue(h, HeaderClientSecret)
	if baseURL != "" && clientID != "" && secret != "" {
		r.logger.Debug("auth config resolved", "source", SourceHeaders, "base_url", baseURL)
		return AuthConfig{BaseURL: baseURL, ClientID: clientID, ClientSecret: secret}, SourceHeaders
	}

	baseURL = r.env.get(EnvBaseURL)
	clientID = r.env.get(EnvClientID)
	secret = r.env.get(EnvClientSecret)
	if baseURL != "" && clientID != "" && secret != "" {
		r.logger.Debug("auth config resolved", "source", SourceEnv, "base_url", baseURL)
		return AuthConfig{BaseURL: baseURL, ClientID: clientID, ClientSecret: secret}, SourceEnv
	}

	if fb.Auth != nil {
		r.logger.Debug("auth config resolved", "source", SourceSession, "base_url", fb.Auth.BaseURL)
		return *fb.Auth, SourceSession
	}

	r.logger.Debug("auth config resolved", "source", SourceDefault, "base_url", r.defaults.BaseURL)
	return r.defaults, SourceDefault
}

// ResolveRuntime picks the base URL for business calls from the header,
// then environment, then the session fallback, then defaults.
func (r *Resolver) ResolveRuntime(h http.Header, fb Fallback) (RuntimeConfig, Source) {
	if baseURL := headerValue(h, HeaderBaseURL); baseURL != "" {
		r.logger.Debug("runtime config resolved", "source", SourceHeaders, "base_url", baseURL)
		return RuntimeConfig{BaseURL: baseURL}, SourceHeaders
	}

	if baseURL := r.env.get(EnvBaseURL); baseURL != "" {
		r.logger.Debug("runtime config resolved", "source", SourceEnv, "base_url", baseURL)
		return RuntimeConfig{BaseURL: baseURL}, SourceEnv
	}

	if fb.Runtime != nil {
		r.logger.Debug("runtime config resolved", "source", SourceSession, "base_url", fb.Runtime.BaseURL)
		return *fb.Runtime, SourceSession
	}

	r.logger.Debug("runtime config resolved", "source", SourceDefault, "base_url", r.defaults.BaseURL)
	return RuntimeConfig{BaseURL: r.defaults.BaseURL}, SourceDefault
}

func headerValue(h http.Header, key string) string {
	if h == nil {
		return ""
	}
	return strings.TrimSpace(h.Get(key))
}

type resolvedKey struct{}

// WithResolved attaches a resolution to the context.
func WithResolved(ctx context.Context, r Resolved) context.Context {
	return context.WithValue(ctx, resolvedKey{}, r)
}

// FromContext returns the resolution attached to ctx, if any.
func FromContext(ctx context.Context) (Resolved, bool) {
	r, ok := ctx.Value(resolvedKey{}).(Resolved)
	return r, ok
}
