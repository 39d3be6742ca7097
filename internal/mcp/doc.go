// Package mcp exposes the Rently tools to MCP clients.
//
// # Transports
//
// Two transports are served:
//
//   - POST /mcp: stateless JSON-RPC 2.0 handled by Server. initialize opens a
//     session whose id comes back in the Mcp-Session-Id header; every later
//     request must echo it.
//   - GET /sse with POST /sse/message: the SDK's legacy SSE transport.
//
// # Configuration
//
// Upstream credentials and base URL are resolved per request from the
// X-Rently-* headers, the environment, the session's remembered values and
// the built-in defaults, in that order. On /mcp, explicitly supplied values
// are remembered on the session so later calls may omit the headers.
//
// # Errors
//
// Protocol failures (bad JSON, unknown method, unknown tool) are answered
// with HTTP 500 and a JSON-RPC error whose id is null. Tool failures are
// ordinary results with isError set.
package mcp
