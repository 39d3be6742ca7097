// ABOUTME: Legacy SSE transport built on the MCP Go SDK
// ABOUTME: Each SSE connection gets its own SDK server bound to the connecting request's configuration

package mcp

import (
	"context"
	"log/slog"
	"net/http"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/2389/rently-gateway/internal/config"
	"github.com/2389/rently-gateway/internal/tools"
)

// SSEConfig holds configuration for the SSE transport.
type SSEConfig struct {
	Registry *tools.Registry
	Resolver *config.Resolver
	Logger   *slog.Logger
}

// NewSSEHandler returns the handler for GET /sse and POST /sse/message.
// Configuration and caller identity are taken once from the GET that opens
// the stream; there is no session fallback on this transport.
func NewSSEHandler(cfg SSEConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "mcp_sse")

	sse := sdk.NewSSEHandler(func(r *http.Request) *sdk.Server {
		res := cfg.Resolver.Resolve(r.Header, config.Fallback{})
		subject := subjectOf(r)
		logger.Info("SSE connection opened",
			"remote_addr", r.RemoteAddr,
			"subject", subject,
			"auth_source", res.AuthSource,
			"runtime_source", res.RuntimeSource,
		)
		return newSDKServer(cfg.Registry, res, subject)
	}, nil)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		setCORSHeaders(w)
		if r.Method == http.MethodOptions {
			writePreflight(w, "GET, POST, OPTIONS")
			return
		}
		sse.ServeHTTP(w, r)
	})
}

// newSDKServer mirrors the registry onto an SDK server whose handlers carry
// res and the subject that opened the stream.
func newSDKServer(registry *tools.Registry, res config.Resolved, subject string) *sdk.Server {
	server := sdk.NewServer(&sdk.Implementation{
		Name:    ServerName,
		Version: ServerVersion,
	}, nil)

	for _, t := range registry.List() {
		name := t.Name
		server.AddTool(&sdk.Tool{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: t.Schema,
		}, func(ctx context.Context, req *sdk.CallToolRequest) (*sdk.CallToolResult, error) {
			caller := tools.Caller{Transport: TransportSSE, Subject: subject}
			if req.Session != nil {
				caller.SessionID = req.Session.ID()
			}
			ctx = config.WithResolved(ctx, res)
			ctx = tools.WithCaller(ctx, caller)

			result, err := registry.Call(ctx, name, req.Params.Arguments)
			if err != nil {
				return nil, err
			}
			return toSDKResult(result), nil
		})
	}

	return server
}

func toSDKResult(r *tools.Result) *sdk.CallToolResult {
	out := &sdk.CallToolResult{IsError: r.IsError}
	for _, c := range r.Content {
		out.Content = append(out.Content, &sdk.TextContent{Text: c.Text})
	}
	return out
}
