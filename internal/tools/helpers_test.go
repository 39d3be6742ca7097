// ABOUTME: Shared fakes for tool tests
// ABOUTME: An in-memory upstream and a registry wired to it

package tools

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/2389/rently-gateway/internal/config"
	"github.com/2389/rently-gateway/internal/rently"
	"github.com/2389/rently-gateway/internal/store"
)

type fakeUpstream struct {
	mu sync.Mutex

	places     []rently.Place
	categories []rently.Category
	search     json.RawMessage
	customers  *rently.CustomerSearchResult
	bookResp   json.RawMessage
	token      string
	err        error

	lastSearch  rently.SearchParams
	lastPayload any
	searches    int
}

func (f *fakeUpstream) Places(context.Context) ([]rently.Place, error) {
	return f.places, f.err
}

func (f *fakeUpstream) Categories(context.Context) ([]rently.Category, error) {
	return f.categories, f.err
}

func (f *fakeUpstream) Search(_ context.Context, p rently.SearchParams) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastSearch = p
	f.searches++
	if f.err != nil {
		return nil, f.err
	}
	if f.search == nil {
		return json.RawMessage("[]"), nil
	}
	return f.search, nil
}

func (f *fakeUpstream) FindCustomers(context.Context, string) (*rently.CustomerSearchResult, error) {
	if f.customers == nil {
		return &rently.CustomerSearchResult{}, f.err
	}
	return f.customers, f.err
}

func (f *fakeUpstream) Book(_ context.Context, payload any) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastPayload = payload
	return f.bookResp, f.err
}

func (f *fakeUpstream) RefreshToken(context.Context) (string, error) {
	return f.token, f.err
}

type testEnv struct {
	registry *Registry
	upstream *fakeUpstream
	ledger   *store.MockStore
	// resolved records the configuration handed to the client factory.
	resolved []config.Resolved
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestEnv(t *testing.T, up *fakeUpstream, mutate ...func(*Deps)) *testEnv {
	t.Helper()
	env := &testEnv{upstream: up, ledger: store.NewMockStore()}
	deps := Deps{
		Clients: func(res config.Resolved) Upstream {
			env.resolved = append(env.resolved, res)
			return up
		},
		Ledger: env.ledger,
		Logger: discardLogger(),
		Now:    func() time.Time { return fixedNow },
	}
	for _, m := range mutate {
		m(&deps)
	}
	reg, err := New(deps)
	require.NoError(t, err)
	env.registry = reg
	return env
}

func testContext() context.Context {
	ctx := config.WithResolved(context.Background(), config.Resolved{
		Auth:          config.AuthConfig{BaseURL: "https://rently.test", ClientID: "id", ClientSecret: "secret"},
		Runtime:       config.RuntimeConfig{BaseURL: "https://rently.test"},
		AuthSource:    config.SourceDefault,
		RuntimeSource: config.SourceDefault,
	})
	return WithCaller(ctx, Caller{SessionID: "session-1", Transport: "http"})
}

func (e *testEnv) call(t *testing.T, name string, args any) *Result {
	t.Helper()
	var raw json.RawMessage
	if args != nil {
		data, err := json.Marshal(args)
		require.NoError(t, err)
		raw = data
	}
	res, err := e.registry.Call(testContext(), name, raw)
	require.NoError(t, err)
	require.NotNil(t, res)
	return res
}

// decodeText unmarshals the result text as JSON.
func decodeText(t *testing.T, res *Result) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.Text()), &out), res.Text())
	return out
}

func jsonUnmarshal(s string, v any) error {
	return json.Unmarshal([]byte(s), v)
}
