// ABOUTME: MCP-compatible HTTP server exposing the Rently tools over JSON-RPC 2.0
// ABOUTME: Handles sessions, per-session configuration fallback, CORS and protocol errors

package mcp

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/2389/rently-gateway/internal/auth"
	"github.com/2389/rently-gateway/internal/config"
	"github.com/2389/rently-gateway/internal/sessioncache"
	"github.com/2389/rently-gateway/internal/tools"
)

// Supported MCP protocol versions
var supportedProtocolVersions = map[string]bool{
	"2024-11-05": true,
	"2025-03-26": true,
	"2025-06-18": true,
}

// defaultProtocolVersion is advertised when the client asks for a version
// we do not speak.
const defaultProtocolVersion = "2024-11-05"

// MaxRequestBodySize is the maximum allowed size for request bodies (1MB).
const MaxRequestBodySize = 1 << 20

// SessionHeader carries the MCP session id.
const SessionHeader = "Mcp-Session-Id"

// Server identity reported by initialize.
const (
	ServerName    = "Rently MCP Server"
	ServerVersion = "1.0.0"
)

// Transport names recorded in the ledger.
const (
	TransportHTTP = "http"
	TransportSSE  = "sse"
)

// JSON-RPC 2.0 types

// JSONRPCRequest represents a JSON-RPC 2.0 request.
type JSONRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// JSONRPCResponse represents a JSON-RPC 2.0 response.
type JSONRPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *JSONRPCError   `json:"error,omitempty"`
}

// JSONRPCError represents a JSON-RPC 2.0 error object.
type JSONRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Standard JSON-RPC error codes
const (
	JSONRPCMethodNotFound = -32601
	JSONRPCInternalError  = -32603
)

// protocolError is a failure reported as a JSON-RPC error with HTTP 500.
type protocolError struct {
	code    int
	message string
}

func (e *protocolError) Error() string { return e.message }

func internalError(msg string) *protocolError {
	return &protocolError{code: JSONRPCInternalError, message: msg}
}

// MCP-specific types

// ToolInfo represents an MCP tool definition.
type ToolInfo struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema"`
}

// ListToolsResult is the result for tools/list.
type ListToolsResult struct {
	Tools []ToolInfo `json:"tools"`
}

// CallToolParams are the params for tools/call.
type CallToolParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

type initializeParams struct {
	ProtocolVersion string `json:"protocolVersion"`
}

// Session is one MCP client session. It remembers the last explicitly
// supplied upstream configuration so later requests without headers reuse it.
type Session struct {
	ID              string
	ProtocolVersion string
	CreatedAt       time.Time

	mu       sync.Mutex
	fallback config.Fallback
}

// Fallback returns the remembered configuration.
func (s *Session) Fallback() config.Fallback {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fallback
}

// remember folds the explicit parts of res into the session's fallback.
func (s *Session) remember(res config.Resolved) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fallback = res.Remember(s.fallback)
}

// Config holds configuration for the MCP server.
type Config struct {
	Registry *tools.Registry
	Resolver *config.Resolver
	Sessions *sessioncache.Cache[*Session]
	Logger   *slog.Logger
}

// Server implements the MCP JSON-RPC endpoint.
type Server struct {
	registry *tools.Registry
	resolver *config.Resolver
	sessions *sessioncache.Cache[*Session]
	logger   *slog.Logger
}

// NewServer creates a new MCP server with the given configuration.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Registry == nil {
		return nil, errors.New("registry is required")
	}
	if cfg.Resolver == nil {
		return nil, errors.New("resolver is required")
	}
	if cfg.Sessions == nil {
		return nil, errors.New("session cache is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		registry: cfg.Registry,
		resolver: cfg.Resolver,
		sessions: cfg.Sessions,
		logger:   logger.With("component", "mcp"),
	}, nil
}

// Session returns a live session by id.
func (s *Server) Session(id string) (*Session, bool) {
	return s.sessions.Get(id)
}

// ServeHTTP dispatches on method: POST carries JSON-RPC, OPTIONS answers
// CORS preflight and DELETE ends a session.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)
	switch r.Method {
	case http.MethodOptions:
		writePreflight(w, "POST, OPTIONS")
	case http.MethodPost:
		s.handlePost(w, r)
	case http.MethodDelete:
		s.handleDelete(w, r)
	default:
		w.Header().Set("Allow", "POST, OPTIONS, DELETE")
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

var allowedHeaders = []string{
	"Content-Type",
	"Authorization",
	SessionHeader,
	"Mcp-Protocol-Version",
	config.HeaderBaseURL,
	config.HeaderClientID,
	config.HeaderClientSecret,
}

func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Expose-Headers", SessionHeader)
}

func writePreflight(w http.ResponseWriter, methods string) {
	w.Header().Set("Access-Control-Allow-Methods", methods)
	w.Header().Set("Access-Control-Allow-Headers", strings.Join(allowedHeaders, ", "))
	w.Header().Set("Access-Control-Max-Age", "86400")
	w.WriteHeader(http.StatusNoContent)
}

// subjectOf returns the authenticated subject of r, or "" when the request
// did not pass through the auth gate.
func subjectOf(r *http.Request) string {
	if ac := auth.FromContext(r.Context()); ac != nil {
		return ac.Subject
	}
	return ""
}

// handleDelete terminates a session.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	sessionID := r.Header.Get(SessionHeader)
	if sessionID == "" {
		http.Error(w, "Bad Request: missing Mcp-Session-Id", http.StatusBadRequest)
		return
	}
	if !s.sessions.Delete(sessionID) {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	s.logger.Info("MCP session terminated", "session_id", sessionID)
	w.WriteHeader(http.StatusNoContent)
}

// handlePost processes JSON-RPC messages sent via HTTP POST.
func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, MaxRequestBodySize+1))
	if err != nil {
		s.sendProtocolError(w, internalError("failed to read request body"))
		return
	}
	if int64(len(body)) > MaxRequestBodySize {
		s.sendProtocolError(w, internalError("request body too large"))
		return
	}

	var req JSONRPCRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.sendProtocolError(w, internalError("invalid JSON: "+err.Error()))
		return
	}
	if req.JSONRPC != "2.0" {
		s.sendProtocolError(w, internalError("invalid JSON-RPC version"))
		return
	}

	isInitialize := req.Method == "initialize"
	isNotification := len(req.ID) == 0 || string(req.ID) == "null"
	sessionID := r.Header.Get(SessionHeader)

	if !isInitialize {
		if v := r.Header.Get("Mcp-Protocol-Version"); v != "" && !supportedProtocolVersions[v] {
			http.Error(w, "Bad Request: unsupported MCP-Protocol-Version", http.StatusBadRequest)
			return
		}
	}

	var sess *Session
	if !isInitialize {
		if sessionID == "" {
			http.Error(w, "Bad Request: missing Mcp-Session-Id", http.StatusBadRequest)
			return
		}
		var ok bool
		sess, ok = s.sessions.Get(sessionID)
		if !ok {
			// Session expired or unknown; the client must re-initialize.
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}
	}

	s.logger.Debug("MCP request",
		"method", req.Method,
		"is_notification", isNotification,
		"session_id", sessionID,
	)

	if isNotification {
		if !strings.HasPrefix(req.Method, "notifications/") {
			s.logger.Warn("received notification for non-notification method", "method", req.Method)
		}
		w.WriteHeader(http.StatusAccepted)
		return
	}

	switch req.Method {
	case "initialize":
		s.handleInitialize(w, r, req)
	case "ping":
		s.sendJSONRPCResult(w, req.ID, map[string]any{})
	case "tools/list":
		s.handleToolsList(w, req)
	case "tools/call":
		s.handleToolsCall(w, r, req, sess)
	default:
		s.sendProtocolError(w, &protocolError{code: JSONRPCMethodNotFound, message: "Unknown method: " + req.Method})
	}
}

// handleInitialize creates a session and seeds its fallback from the
// request's headers.
func (s *Server) handleInitialize(w http.ResponseWriter, r *http.Request, req JSONRPCRequest) {
	version := defaultProtocolVersion
	var params initializeParams
	if len(req.Params) > 0 && json.Unmarshal(req.Params, &params) == nil && supportedProtocolVersions[params.ProtocolVersion] {
		version = params.ProtocolVersion
	}

	sess := &Session{
		ID:              uuid.New().String(),
		ProtocolVersion: version,
		CreatedAt:       time.Now(),
	}
	sess.remember(s.resolver.Resolve(r.Header, config.Fallback{}))
	s.sessions.Put(sess.ID, sess)

	s.logger.Info("MCP session created",
		"session_id", sess.ID,
		"protocol_version", sess.ProtocolVersion,
	)

	w.Header().Set(SessionHeader, sess.ID)
	s.sendJSONRPCResult(w, req.ID, map[string]any{
		"protocolVersion": version,
		"capabilities": map[string]any{
			"tools": map[string]any{},
		},
		"serverInfo": map[string]any{
			"name":    ServerName,
			"version": ServerVersion,
		},
	})
}

// handleToolsList handles tools/list requests.
func (s *Server) handleToolsList(w http.ResponseWriter, req JSONRPCRequest) {
	registered := s.registry.List()
	result := ListToolsResult{Tools: make([]ToolInfo, len(registered))}
	for i, t := range registered {
		result.Tools[i] = ToolInfo{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: t.InputSchema(),
		}
	}

	s.logger.Debug("tools/list", "count", len(result.Tools))
	s.sendJSONRPCResult(w, req.ID, result)
}

// handleToolsCall resolves configuration for this request and runs the tool.
func (s *Server) handleToolsCall(w http.ResponseWriter, r *http.Request, req JSONRPCRequest, sess *Session) {
	var params CallToolParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			s.sendProtocolError(w, internalError("invalid params: "+err.Error()))
			return
		}
	}
	if params.Name == "" {
		s.sendProtocolError(w, internalError("tool name is required"))
		return
	}

	res := s.resolver.Resolve(r.Header, sess.Fallback())
	sess.remember(res)

	ctx := config.WithResolved(r.Context(), res)
	ctx = tools.WithCaller(ctx, tools.Caller{
		SessionID: sess.ID,
		Transport: TransportHTTP,
		Subject:   subjectOf(r),
	})

	result, err := s.registry.Call(ctx, params.Name, params.Arguments)
	if err != nil {
		if errors.Is(err, tools.ErrToolNotFound) {
			s.sendProtocolError(w, &protocolError{code: JSONRPCMethodNotFound, message: "Unknown tool: " + params.Name})
			return
		}
		s.sendProtocolError(w, internalError(err.Error()))
		return
	}

	s.logger.Debug("tools/call complete",
		"tool_name", params.Name,
		"session_id", sess.ID,
		"auth_source", res.AuthSource,
		"runtime_source", res.RuntimeSource,
		"is_error", result.IsError,
	)

	s.sendJSONRPCResult(w, req.ID, result)
}

// sendJSONRPCResult sends a successful JSON-RPC response.
func (s *Server) sendJSONRPCResult(w http.ResponseWriter, id json.RawMessage, result any) {
	resp := JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Result:  result,
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Warn("failed to encode JSON-RPC response", "error", err)
	}
}

// sendProtocolError reports err with a null id and HTTP 500.
func (s *Server) sendProtocolError(w http.ResponseWriter, err *protocolError) {
	s.logger.Warn("MCP protocol error", "code", err.code, "error", err.message)

	resp := JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      json.RawMessage("null"),
		Error: &JSONRPCError{
			Code:    err.code,
			Message: err.message,
		},
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	if encErr := json.NewEncoder(w).Encode(resp); encErr != nil {
		s.logger.Warn("failed to encode JSON-RPC error response", "error", encErr)
	}
}
