// ABOUTME: Mock Ledger implementation for testing
// ABOUTME: Allows tests to run without SQLite

package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MockStore is an in-memory Ledger for tests.
type MockStore struct {
	mu        sync.Mutex
	toolCalls []ToolCall
	bookings  []BookingRecord
	closed    bool
}

// NewMockStore creates a new MockStore.
func NewMockStore() *MockStore {
	return &MockStore{}
}

// RecordToolCall stores a copy of c.
func (m *MockStore) RecordToolCall(_ context.Context, c *ToolCall) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	m.toolCalls = append(m.toolCalls, *c)
	return nil
}

// RecordBooking stores a copy of b.
func (m *MockStore) RecordBooking(_ context.Context, b *BookingRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	m.bookings = append(m.bookings, *b)
	return nil
}

// ListToolCalls returns stored tool calls, newest first.
func (m *MockStore) ListToolCalls(_ context.Context, limit int) ([]ToolCall, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return newestFirst(m.toolCalls, normalizeLimit(limit)), nil
}

// ListBookings returns stored bookings, newest first.
func (m *MockStore) ListBookings(_ context.Context, limit int) ([]BookingRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return newestFirst(m.bookings, normalizeLimit(limit)), nil
}

// Close marks the store closed.
func (m *MockStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func newestFirst[T any](items []T, limit int) []T {
	out := make([]T, 0, min(len(items), limit))
	for i := len(items) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, items[i])
	}
	return out
}
