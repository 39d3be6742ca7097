// Package config handles configuration for rently-gateway.
//
// # Configuration File
//
// The gateway's own settings come from a YAML or TOML file (chosen by
// extension). Location, in order:
//
//  1. Path from RENTLY_GATEWAY_CONFIG
//  2. $XDG_CONFIG_HOME/rently/gateway.yaml
//  3. ~/.config/rently/gateway.yaml
//
// A missing file is not an error; built-in defaults apply. Values may
// reference environment variables with ${VAR_NAME}.
//
//	server:
//	  http_addr: "0.0.0.0:8080"
//	  shutdown_timeout: "10s"
//	upstream:
//	  timeout: "30s"
//	  requests_per_second: 5
//	  defaults:
//	    base_url: "https://demo.rently.com"
//	    client_id: "${RENTLY_CLIENT_ID}"
//	    client_secret: "${RENTLY_CLIENT_SECRET}"
//	sessions:
//	  ttl: "30m"
//	  max_sessions: 10000
//	store:
//	  path: "/var/lib/rently/gateway.db"
//	auth:
//	  jwt_secret: "${RENTLY_GATEWAY_JWT_SECRET}"
//	tools:
//	  reject_past_dates: false
//	logging:
//	  level: "info"
//	  format: "text"
//
// # Resolution
//
// Every MCP request resolves two independent values with a Resolver:
//
//   - AuthConfig: X-Rently-Base-Url + X-Rently-Client-Id +
//     X-Rently-Client-Secret headers (all three), then BASE_URL +
//     CLIENT_ID + CLIENT_SECRET (all three), then the session fallback,
//     then defaults.
//   - RuntimeConfig: X-Rently-Base-Url, then BASE_URL, then the session
//     fallback, then defaults.
//
// The session fallback is whatever the same MCP session last resolved from
// headers or environment (see Resolved.Remember). The result travels with
// the request context via WithResolved and FromContext.
package config
