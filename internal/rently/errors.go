// ABOUTME: Error types returned by the Rently client
// ABOUTME: Distinguishes token endpoint failures, upstream HTTP errors and undecodable bodies

package rently

import (
	"errors"
	"fmt"
)

// ErrParseResponse is wrapped when a successful response body is not valid JSON.
var ErrParseResponse = errors.New("failed to parse response as JSON")

// AuthenticationError reports a failed client-credentials exchange.
type AuthenticationError struct {
	Status     int
	StatusText string
	Body       string
	Reason     string
}

func (e *AuthenticationError) Error() string {
	if e.Reason != "" {
		return "authentication failed: " + e.Reason
	}
	return fmt.Sprintf("authentication failed: %d %s", e.Status, e.StatusText)
}

// HTTPError reports a non-2xx response from a business endpoint. Body holds
// the decoded JSON value when the body parsed, otherwise the raw text.
type HTTPError struct {
	Status     int
	StatusText string
	Body       any
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP Error %d: %s", e.Status, e.StatusText)
}
