// ABOUTME: Tests for per-request configuration resolution
// ABOUTME: Covers tier priority, partial header sets, session fallback and context plumbing

package config

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDefaults = DefaultsConfig{
	BaseURL:      DefaultBaseURL,
	ClientID:     DefaultClientID,
	ClientSecret: DefaultClientSecret,
}

func fullHeaders(base, id, secret string) http.Header {
	h := http.Header{}
	h.Set(HeaderBaseURL, base)
	h.Set(HeaderClientID, id)
	h.Set(HeaderClientSecret, secret)
	return h
}

func TestResolveAuth_HeadersWin(t *testing.T) {
	env := Env{EnvBaseURL: "https://env", EnvClientID: "env-id", EnvClientSecret: "env-secret"}
	r := NewResolver(env, testDefaults, nil)

	auth, src := r.ResolveAuth(fullHeaders("https://hdr", "hdr-id", "hdr-secret"), Fallback{})

	assert.Equal(t, SourceHeaders, src)
	assert.Equal(t, AuthConfig{BaseURL: "https://hdr", ClientID: "hdr-id", ClientSecret: "hdr-secret"}, auth)
}

func TestResolveAuth_PartialHeadersFallThrough(t *testing.T) {
	env := Env{EnvBaseURL: "https://env", EnvClientID: "env-id", EnvClientSecret: "env-secret"}
	r := NewResolver(env, testDefaults, nil)

	h := http.Header{}
	h.Set(HeaderBaseURL, "https://hdr")
	h.Set(HeaderClientID, "hdr-id")

	auth, src := r.ResolveAuth(h, Fallback{})

	assert.Equal(t, SourceEnv, src)
	assert.Equal(t, "env-id", auth.ClientID)
}

func TestResolveAuth_PartialEnvIgnored(t *testing.T) {
	env := Env{EnvBaseURL: "https://env", EnvClientID: "env-id"}
	r := NewResolver(env, testDefaults, nil)

	auth, src := r.ResolveAuth(http.Header{}, Fallback{})

	assert.Equal(t, SourceDefault, src)
	assert.Equal(t, DefaultClientID, auth.ClientID)
}

func TestResolveAuth_SessionBeforeDefaults(t *testing.T) {
	r := NewResolver(nil, testDefaults, nil)
	fb := Fallback{Auth: &AuthConfig{BaseURL: "https://remembered", ClientID: "rem", ClientSecret: "rem-secret"}}

	auth, src := r.ResolveAuth(nil, fb)

	assert.Equal(t, SourceSession, src)
	assert.Equal(t, "rem", auth.ClientID)
}

func TestResolveRuntime_Priority(t *testing.T) {
	tests := []struct {
		name    string
		env     Env
		header  string
		fb      Fallback
		want    string
		wantSrc Source
	}{
		{"header", Env{EnvBaseURL: "https://env"}, "https://hdr", Fallback{}, "https://hdr", SourceHeaders},
		{"env", Env{EnvBaseURL: "https://env"}, "", Fallback{}, "https://env", SourceEnv},
		{"session", nil, "", Fallback{Runtime: &RuntimeConfig{BaseURL: "https://rem"}}, "https://rem", SourceSession},
		{"default", nil, "", Fallback{}, DefaultBaseURL, SourceDefault},
		{"blank header ignored", nil, "   ", Fallback{}, DefaultBaseURL, SourceDefault},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver(tt.env, testDefaults, nil)
			h := http.Header{}
			if tt.header != "" {
				h.Set(HeaderBaseURL, tt.header)
			}
			rt, src := r.ResolveRuntime(h, tt.fb)
			assert.Equal(t, tt.wantSrc, src)
			assert.Equal(t, tt.want, rt.BaseURL)
		})
	}
}

func TestResolve_IndependentTiers(t *testing.T) {
	// Only the base URL header is present: runtime comes from headers while
	// auth needs all three and falls back to defaults.
	r := NewResolver(nil, testDefaults, nil)
	h := http.Header{}
	h.Set(HeaderBaseURL, "https://tenant.rently.com")

	res := r.Resolve(h, Fallback{})

	assert.Equal(t, SourceHeaders, res.RuntimeSource)
	assert.Equal(t, "https://tenant.rently.com", res.Runtime.BaseURL)
	assert.Equal(t, SourceDefault, res.AuthSource)
	assert.Equal(t, DefaultBaseURL, res.Auth.BaseURL)
}

func TestRemember_OnlyExplicitSources(t *testing.T) {
	r := NewResolver(nil, testDefaults, nil)

	explicit := r.Resolve(fullHeaders("https://hdr", "id", "secret"), Fallback{})
	fb := explicit.Remember(Fallback{})
	require.NotNil(t, fb.Auth)
	require.NotNil(t, fb.Runtime)
	assert.Equal(t, "https://hdr", fb.Auth.BaseURL)

	// A later header-less call in the same session inherits the remembered values.
	later := r.Resolve(http.Header{}, fb)
	assert.Equal(t, SourceSession, later.AuthSource)
	assert.Equal(t, "id", later.Auth.ClientID)
	assert.Equal(t, "https://hdr", later.Runtime.BaseURL)

	// Defaults never overwrite what was remembered.
	again := later.Remember(fb)
	assert.Equal(t, fb, again)

	// A fresh session sees only defaults.
	fresh := r.Resolve(http.Header{}, Fallback{})
	assert.Equal(t, SourceDefault, fresh.AuthSource)
}

func TestRemember_DropsCallerToken(t *testing.T) {
	r := NewResolver(Env{EnvBaseURL: "https://env"}, testDefaults, nil)
	res := r.Resolve(nil, Fallback{}).WithToken("caller-token")

	fb := res.Remember(Fallback{})

	require.NotNil(t, fb.Runtime)
	assert.Empty(t, fb.Runtime.Token)
	assert.Equal(t, "caller-token", res.Runtime.Token)
}

func TestWithToken_EmptyKeepsResolution(t *testing.T) {
	res := Resolved{Runtime: RuntimeConfig{BaseURL: "x", Token: "kept"}}
	assert.Equal(t, res, res.WithToken(""))
}

func TestEnvFromOS(t *testing.T) {
	t.Setenv(EnvBaseURL, "https://os-env")
	t.Setenv(EnvClientID, "os-id")
	t.Setenv(EnvClientSecret, "os-secret")

	env := EnvFromOS()

	assert.Equal(t, "https://os-env", env[EnvBaseURL])
	assert.Equal(t, "os-id", env[EnvClientID])
	assert.Equal(t, "os-secret", env[EnvClientSecret])
}

func TestContext_RoundTrip(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	res := Resolved{AuthSource: SourceEnv, RuntimeSource: SourceHeaders}
	got, ok := FromContext(WithResolved(context.Background(), res))
	require.True(t, ok)
	assert.Equal(t, res, got)
}
