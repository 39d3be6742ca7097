// ABOUTME: Tests for the tool registry
// ABOUTME: Covers listing, schema validation, unknown tools and ledger recording

package tools

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RegistersAllTools(t *testing.T) {
	env := newTestEnv(t, &fakeUpstream{})

	var names []string
	for _, tool := range env.registry.List() {
		names = append(names, tool.Name)
	}
	assert.Equal(t, []string{
		"create_booking",
		"get_auth_token",
		"get_availability",
		"get_categories",
		"get_places",
		"rently_get_availability",
		"rently_get_places",
		"validate_search_dates",
	}, names)
}

func TestNew_RequiresClientFactory(t *testing.T) {
	_, err := New(Deps{})
	assert.Error(t, err)
}

func TestTool_InputSchema(t *testing.T) {
	env := newTestEnv(t, &fakeUpstream{})

	tool, ok := env.registry.Get("get_availability")
	require.True(t, ok)

	var schema map[string]any
	require.NoError(t, json.Unmarshal(tool.InputSchema(), &schema))
	assert.Equal(t, "object", schema["type"])
	assert.ElementsMatch(t, []any{"from", "to", "fromPlace"}, schema["required"])

	props := schema["properties"].(map[string]any)
	assert.Equal(t, true, props["onlyFullAvailability"].(map[string]any)["default"])

	places, ok := env.registry.Get("get_places")
	require.True(t, ok)
	require.NoError(t, json.Unmarshal(places.InputSchema(), &schema))
	format := schema["properties"].(map[string]any)["format"].(map[string]any)
	assert.Equal(t, []any{"raw", "formatted"}, format["enum"])
	assert.Equal(t, "formatted", format["default"])
}

func TestRegistry_UnknownTool(t *testing.T) {
	env := newTestEnv(t, &fakeUpstream{})

	_, err := env.registry.Call(testContext(), "no_such_tool", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrToolNotFound))
}

func TestRegistry_ValidationFailures(t *testing.T) {
	env := newTestEnv(t, &fakeUpstream{})

	tests := []struct {
		name string
		tool string
		args string
	}{
		{"missing required", "get_availability", `{"from":"2025-01-01"}`},
		{"wrong type", "get_availability", `{"from":"2025-01-01","to":"2025-01-05","fromPlace":5}`},
		{"enum violation", "get_places", `{"format":"xml"}`},
		{"not an object", "validate_search_dates", `["2025-01-01"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := env.registry.Call(testContext(), tt.tool, json.RawMessage(tt.args))
			require.NoError(t, err)
			assert.True(t, res.IsError)
			assert.Contains(t, res.Text(), "Invalid arguments for "+tt.tool)
		})
	}
	assert.Zero(t, env.upstream.searches)
}

func TestRegistry_RecordsToolCalls(t *testing.T) {
	env := newTestEnv(t, &fakeUpstream{})

	env.call(t, "validate_search_dates", map[string]any{"from": "2025-01-01", "to": "2025-01-10"})
	env.call(t, "validate_search_dates", map[string]any{"from": "bad", "to": "2025-01-10"})

	calls, err := env.ledger.ListToolCalls(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, calls, 2)
	assert.Equal(t, "validate_search_dates", calls[0].Tool)
	assert.True(t, calls[0].IsError)
	assert.False(t, calls[1].IsError)
	assert.Equal(t, "session-1", calls[1].SessionID)
	assert.Equal(t, "http", calls[1].Transport)
}

func TestRegistry_MissingConfiguration(t *testing.T) {
	env := newTestEnv(t, &fakeUpstream{})

	res, err := env.registry.Call(context.Background(), "get_places", nil)
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Text(), "no upstream configuration")
}

func TestRegistry_CallerTokenOverridesManagedToken(t *testing.T) {
	env := newTestEnv(t, &fakeUpstream{})

	env.call(t, "get_places", map[string]any{"token": "caller-token", "format": "raw"})
	env.call(t, "get_places", nil)

	require.Len(t, env.resolved, 2)
	assert.Equal(t, "caller-token", env.resolved[0].Runtime.Token)
	assert.Empty(t, env.resolved[1].Runtime.Token)
}

func TestRegistry_DuplicateRegistration(t *testing.T) {
	reg := NewRegistry(nil, discardLogger())
	tool, err := newTool("echo", "echo", struct{}{}, func(context.Context, struct{}) *Result {
		return textResult("ok")
	})
	require.NoError(t, err)

	require.NoError(t, reg.Register(tool))
	assert.Error(t, reg.Register(tool))

	res, err := reg.Call(context.Background(), "echo", json.RawMessage("null"))
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Text())
}
