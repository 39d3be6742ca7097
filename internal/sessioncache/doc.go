// Package sessioncache provides a thread-safe TTL and size bounded cache
// keyed by MCP session id.
//
// Entries expire after a period of inactivity; every Get refreshes the
// entry. When the cache is full, the least recently used entry is evicted.
// A background goroutine removes expired entries until Close is called.
package sessioncache
