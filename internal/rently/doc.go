// Package rently is the client for the Rently vehicle-rental API.
//
// # Authentication
//
// Rently uses OAuth2 client credentials. A TokenManager caches one bearer
// token per credential set and refreshes it five minutes before expiry.
// Concurrent refreshes collapse into a single call to /auth/token. A
// TokenPool keeps one manager per (base URL, client id, client secret) so
// cached tokens survive across gateway requests.
//
// # Requests
//
// Client.Do builds {baseURL}{path}, injects the bearer token, encodes JSON
// bodies and translates failures:
//
//   - non-2xx responses become *HTTPError carrying the decoded body
//   - 204 responses decode as an empty object
//   - undecodable 2xx bodies wrap ErrParseResponse
//
// Typed helpers (Places, Categories, Search, FindCustomers, Book) cover the
// endpoints the gateway tools use. Probe checks connectivity with a short
// timeout and no retries.
package rently
