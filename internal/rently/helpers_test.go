// ABOUTME: Shared fake Rently upstream for client and token tests
// ABOUTME: Serves /auth/token and records business calls

package rently

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/2389/rently-gateway/internal/config"
)

type fakeUpstream struct {
	*httptest.Server

	tokenCalls atomic.Int32
	expiresIn  atomic.Int64

	mu       sync.Mutex
	requests []*http.Request
	routes   map[string]http.HandlerFunc
}

func newFakeUpstream(t *testing.T) *fakeUpstream {
	t.Helper()
	f := &fakeUpstream{routes: map[string]http.HandlerFunc{}}
	f.expiresIn.Store(3600)

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/token", func(w http.ResponseWriter, r *http.Request) {
		n := f.tokenCalls.Add(1)
		_ = r.ParseForm()
		if r.PostForm.Get("grant_type") != "client_credentials" {
			http.Error(w, "bad grant", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": r.PostForm.Get("client_id") + "-token-" + strconv.Itoa(int(n)),
			"expires_in":   f.expiresIn.Load(),
			"token_type":   "Bearer",
		})
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.requests = append(f.requests, r.Clone(r.Context()))
		h := f.routes[r.URL.Path]
		f.mu.Unlock()
		if h == nil {
			http.NotFound(w, r)
			return
		}
		h(w, r)
	})

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

func (f *fakeUpstream) handle(path string, h http.HandlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[path] = h
}

func (f *fakeUpstream) lastRequest() *http.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return nil
	}
	return f.requests[len(f.requests)-1]
}

func (f *fakeUpstream) auth() config.AuthConfig {
	return config.AuthConfig{BaseURL: f.URL, ClientID: "acme", ClientSecret: "secret"}
}

func (f *fakeUpstream) client() *Client {
	tm := NewTokenManager(f.auth(), f.Client(), nil)
	return NewClient(config.RuntimeConfig{BaseURL: f.URL}, tm, Options{HTTPClient: f.Client()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
