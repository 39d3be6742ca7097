// ABOUTME: Ledger interface and record types for rently-gateway persistence
// ABOUTME: Defines ToolCall and BookingRecord rows and a no-op ledger

package store

import (
	"context"
	"time"
)

// ToolCall records one tools/call invocation.
type ToolCall struct {
	ID        string
	SessionID string
	Transport string
	Subject   string // authenticated caller, empty when auth is disabled
	Tool      string
	IsError   bool
	Duration  time.Duration
	CreatedAt time.Time
}

// BookingRecord records a booking or quotation created through the gateway.
type BookingRecord struct {
	ID             string
	BookingID      int
	IsQuotation    bool
	DocumentID     string
	Email          string
	Category       string
	FromDate       string
	ToDate         string
	Total          float64
	ConversationID string
	CreatedAt      time.Time
}

// Ledger persists tool calls and bookings.
type Ledger interface {
	RecordToolCall(ctx context.Context, c *ToolCall) error
	RecordBooking(ctx context.Context, b *BookingRecord) error
	ListToolCalls(ctx context.Context, limit int) ([]ToolCall, error)
	ListBookings(ctx context.Context, limit int) ([]BookingRecord, error)
	Close() error
}

// Discard is a Ledger that drops everything.
var Discard Ledger = discard{}

type discard struct{}

func (discard) RecordToolCall(context.Context, *ToolCall) error         { return nil }
func (discard) RecordBooking(context.Context, *BookingRecord) error     { return nil }
func (discard) ListToolCalls(context.Context, int) ([]ToolCall, error)  { return []ToolCall{}, nil }
func (discard) ListBookings(context.Context, int) ([]BookingRecord, error) {
	return []BookingRecord{}, nil
}
func (discard) Close() error { return nil }

// normalizeLimit applies default (100) and cap (1000) to list limits.
func normalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return 100
	case limit > 1000:
		return 1000
	default:
		return limit
	}
}
