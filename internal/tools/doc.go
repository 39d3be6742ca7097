// Package tools implements the gateway's MCP tools.
//
// Each tool declares a Go argument struct. Its JSON Schema is inferred with
// jsonschema-go, then tightened with enums and defaults, and every call's
// arguments are validated against the resolved schema before the handler
// runs. Handlers never fail at the protocol level: upstream and validation
// failures come back as results with IsError set.
//
// Handlers read upstream configuration from the request context
// (config.FromContext); the transport resolves it once per request. Every
// call is written to the ledger with its session, transport, duration and
// outcome.
//
// Tools:
//
//	get_auth_token           force a fresh upstream token
//	get_places               locations as raw JSON or Spanish text
//	rently_get_places        locations filtered by category and city
//	get_categories           categories and their models
//	get_availability         raw availability search
//	rently_get_availability  availability grouped and priced per category
//	validate_search_dates    parse and check a pickup/return pair
//	create_booking           quotation or reservation with a summary
package tools
