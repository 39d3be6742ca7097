// Package auth provides the optional inbound authentication gate for
// rently-gateway.
//
// When auth.jwt_secret is configured, /mcp and /sse require an HS256 JWT
// whose "sub" claim names the caller. The token is read from the
// Authorization header ("Bearer <token>") or, for clients that cannot set
// headers, from the access_token query parameter. /health is never gated.
//
// The verified subject is attached to the request context:
//
//	authCtx := auth.FromContext(r.Context())
//
// Tokens for operators are minted with the CLI:
//
//	rently-gateway jwt <subject> [ttl]
package auth
