// Package store provides the gateway's ledger using SQLite.
//
// The ledger records every MCP tool call (tool name, session, outcome,
// duration) and every booking or quotation the gateway creates. It is an
// audit trail only; no request path reads it back.
//
// SQLiteStore uses modernc.org/sqlite (pure Go, no cgo) in WAL mode. An
// empty store path in the configuration disables the ledger, in which case
// the gateway uses Discard. MockStore is an in-memory Ledger for tests.
package store
