// Package gateway assembles the rently-gateway server.
//
// New builds every component from a *config.Config: the SQLite ledger (or a
// discarding one when store.path is empty), the upstream token pool and
// client factory, the tool registry, the MCP session cache and both MCP
// transports. Routes:
//
//   - GET /health - liveness, always "OK", never authenticated
//   - /mcp - JSON-RPC over POST, see package mcp
//   - /sse, /sse/message - SSE transport
//
// When auth.jwt_secret is set, /mcp and the SSE routes require an HS256
// bearer token. CORS preflight requests are exempt.
//
// Run blocks until its context is canceled, then drains in-flight requests
// for server.shutdown_timeout and closes the ledger and session cache.
package gateway
