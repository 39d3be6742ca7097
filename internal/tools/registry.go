// ABOUTME: Tool registry with schema-validated arguments and a uniform result envelope
// ABOUTME: Schemas are inferred from argument structs and every call is written to the ledger

package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/2389/rently-gateway/internal/store"
)

// ErrToolNotFound is returned by Call for an unregistered tool name.
var ErrToolNotFound = errors.New("tool not found")

// Content is one item of a tool result.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Result is the envelope every tool returns.
type Result struct {
	Content []Content `json:"content"`
	IsError bool      `json:"isError,omitempty"`
}

// Text returns the concatenated text content.
func (r *Result) Text() string {
	var buf bytes.Buffer
	for _, c := range r.Content {
		buf.WriteString(c.Text)
	}
	return buf.String()
}

func textResult(text string) *Result {
	return &Result{Content: []Content{{Type: "text", Text: text}}}
}

func errorResult(text string) *Result {
	r := textResult(text)
	r.IsError = true
	return r
}

// jsonResult renders v with two-space indentation.
func jsonResult(v any) *Result {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult(fmt.Sprintf("Error: encoding result: %v", err))
	}
	return textResult(string(data))
}

// Tool is a registered tool.
type Tool struct {
	Name        string
	Description string
	// Schema is the input schema advertised to clients.
	Schema *jsonschema.Schema

	resolved *jsonschema.Resolved
	handler  func(ctx context.Context, args json.RawMessage) *Result
}

// InputSchema returns the schema as JSON.
func (t *Tool) InputSchema() json.RawMessage {
	data, err := json.Marshal(t.Schema)
	if err != nil {
		return json.RawMessage(`{"type":"object"}`)
	}
	return data
}

// Invoke validates args and runs the handler. Empty args are treated as an
// empty object.
func (t *Tool) Invoke(ctx context.Context, args json.RawMessage) *Result {
	if len(bytes.TrimSpace(args)) == 0 || string(bytes.TrimSpace(args)) == "null" {
		args = json.RawMessage("{}")
	}

	var instance map[string]any
	if err := json.Unmarshal(args, &instance); err != nil {
		return errorResult(fmt.Sprintf("Invalid arguments for %s: arguments must be a JSON object", t.Name))
	}
	if err := t.resolved.Validate(instance); err != nil {
		return errorResult(fmt.Sprintf("Invalid arguments for %s: %v", t.Name, err))
	}
	return t.handler(ctx, args)
}

// schemaOption adjusts an inferred schema.
type schemaOption func(*jsonschema.Schema)

// withEnum restricts a property to the given values.
func withEnum(property string, values ...any) schemaOption {
	return func(s *jsonschema.Schema) {
		if p, ok := s.Properties[property]; ok {
			p.Enum = values
		}
	}
}

// withDefault documents a property's default value.
func withDefault(property string, value any) schemaOption {
	return func(s *jsonschema.Schema) {
		p, ok := s.Properties[property]
		if !ok {
			return
		}
		if data, err := json.Marshal(value); err == nil {
			p.Default = data
		}
	}
}

// newTool builds a tool whose arguments decode into A. defaults seeds the
// argument value so absent optional fields keep their default.
func newTool[A any](name, description string, defaults A, handle func(ctx context.Context, args A) *Result, opts ...schemaOption) (*Tool, error) {
	schema, err := jsonschema.For[A](nil)
	if err != nil {
		return nil, fmt.Errorf("inferring schema for %s: %w", name, err)
	}
	// Clients routinely send extra keys such as token; tolerate them.
	schema.AdditionalProperties = nil
	for _, opt := range opts {
		opt(schema)
	}

	resolved, err := schema.Resolve(nil)
	if err != nil {
		return nil, fmt.Errorf("resolving schema for %s: %w", name, err)
	}

	return &Tool{
		Name:        name,
		Description: description,
		Schema:      schema,
		resolved:    resolved,
		handler: func(ctx context.Context, raw json.RawMessage) *Result {
			args := defaults
			if err := json.Unmarshal(raw, &args); err != nil {
				return errorResult(fmt.Sprintf("Invalid arguments for %s: %v", name, err))
			}
			return handle(ctx, args)
		},
	}, nil
}

// Caller identifies who is calling a tool, for the ledger.
type Caller struct {
	SessionID string
	Transport string
	Subject   string
}

type callerKey struct{}

// WithCaller attaches caller details to the context.
func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, c)
}

func callerFrom(ctx context.Context) Caller {
	c, _ := ctx.Value(callerKey{}).(Caller)
	return c
}

// Registry holds the registered tools.
type Registry struct {
	tools  map[string]*Tool
	ledger store.Ledger
	logger *slog.Logger
	now    func() time.Time
}

// NewRegistry creates an empty registry. A nil ledger disables recording.
func NewRegistry(ledger store.Ledger, logger *slog.Logger) *Registry {
	if ledger == nil {
		ledger = store.Discard
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		tools:  make(map[string]*Tool),
		ledger: ledger,
		logger: logger.With("component", "tools"),
		now:    time.Now,
	}
}

// Register adds t. Registering a name twice is an error.
func (r *Registry) Register(t *Tool) error {
	if _, exists := r.tools[t.Name]; exists {
		return fmt.Errorf("tool %q already registered", t.Name)
	}
	r.tools[t.Name] = t
	return nil
}

// Get returns the named tool.
func (r *Registry) Get(name string) (*Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// List returns all tools sorted by name.
func (r *Registry) List() []*Tool {
	out := make([]*Tool, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Call invokes the named tool and records the call. The only error is
// ErrToolNotFound; tool failures are reported in the result.
func (r *Registry) Call(ctx context.Context, name string, args json.RawMessage) (*Result, error) {
	t, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}

	start := r.now()
	result := t.Invoke(ctx, args)
	elapsed := r.now().Sub(start)

	caller := callerFrom(ctx)
	r.logger.Debug("tool call complete",
		"tool", name,
		"session_id", caller.SessionID,
		"subject", caller.Subject,
		"is_error", result.IsError,
		"duration", elapsed,
	)

	rec := &store.ToolCall{
		SessionID: caller.SessionID,
		Transport: caller.Transport,
		Subject:   caller.Subject,
		Tool:      name,
		IsError:   result.IsError,
		Duration:  elapsed,
	}
	if err := r.ledger.RecordToolCall(context.WithoutCancel(ctx), rec); err != nil {
		r.logger.Warn("failed to record tool call", "tool", name, "error", err)
	}

	return result, nil
}
