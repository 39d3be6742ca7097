// ABOUTME: Tool call and booking ledger operations for SQLiteStore
// ABOUTME: Appends rows with generated ids and lists them newest first

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// timestampLayout is fixed-width so text ordering matches time ordering.
const timestampLayout = "2006-01-02T15:04:05.000000Z"

// RecordToolCall appends a tool call. ID and CreatedAt are generated if unset.
func (s *SQLiteStore) RecordToolCall(ctx context.Context, c *ToolCall) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tool_calls (id, session_id, transport, subject, tool, is_error, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		c.ID,
		c.SessionID,
		c.Transport,
		c.Subject,
		c.Tool,
		c.IsError,
		c.Duration.Milliseconds(),
		c.CreatedAt.UTC().Format(timestampLayout),
	)
	if err != nil {
		return fmt.Errorf("inserting tool call: %w", err)
	}

	s.logger.Debug("recorded tool call", "id", c.ID, "tool", c.Tool, "is_error", c.IsError)
	return nil
}

// RecordBooking appends a booking. ID and CreatedAt are generated if unset.
func (s *SQLiteStore) RecordBooking(ctx context.Context, b *BookingRecord) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}

	var conversationID *string
	if b.ConversationID != "" {
		conversationID = &b.ConversationID
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bookings (id, booking_id, is_quotation, document_id, email, category, from_date, to_date, total, conversation_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		b.ID,
		b.BookingID,
		b.IsQuotation,
		b.DocumentID,
		b.Email,
		b.Category,
		b.FromDate,
		b.ToDate,
		b.Total,
		conversationID,
		b.CreatedAt.UTC().Format(timestampLayout),
	)
	if err != nil {
		return fmt.Errorf("inserting booking: %w", err)
	}

	s.logger.Debug("recorded booking", "id", b.ID, "booking_id", b.BookingID, "is_quotation", b.IsQuotation)
	return nil
}

// ListToolCalls returns the most recent tool calls, newest first.
func (s *SQLiteStore) ListToolCalls(ctx context.Context, limit int) ([]ToolCall, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, transport, subject, tool, is_error, duration_ms, created_at
		FROM tool_calls
		ORDER BY created_at DESC
		LIMIT ?
	`, normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("querying tool calls: %w", err)
	}
	defer func() { _ = rows.Close() }()

	calls := []ToolCall{}
	for rows.Next() {
		var c ToolCall
		var durationMS int64
		var createdAt string
		if err := rows.Scan(&c.ID, &c.SessionID, &c.Transport, &c.Subject, &c.Tool, &c.IsError, &durationMS, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning tool call: %w", err)
		}
		c.Duration = time.Duration(durationMS) * time.Millisecond
		if c.CreatedAt, err = time.Parse(timestampLayout, createdAt); err != nil {
			return nil, fmt.Errorf("parsing timestamp: %w", err)
		}
		calls = append(calls, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tool calls: %w", err)
	}
	return calls, nil
}

// ListBookings returns the most recent bookings, newest first.
func (s *SQLiteStore) ListBookings(ctx context.Context, limit int) ([]BookingRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, booking_id, is_quotation, document_id, email, category, from_date, to_date, total, conversation_id, created_at
		FROM bookings
		ORDER BY created_at DESC
		LIMIT ?
	`, normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("querying bookings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	bookings := []BookingRecord{}
	for rows.Next() {
		var b BookingRecord
		var conversationID sql.NullString
		var createdAt string
		if err := rows.Scan(&b.ID, &b.BookingID, &b.IsQuotation, &b.DocumentID, &b.Email, &b.Category,
			&b.FromDate, &b.ToDate, &b.Total, &conversationID, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning booking: %w", err)
		}
		b.ConversationID = conversationID.String
		if b.CreatedAt, err = time.Parse(timestampLayout, createdAt); err != nil {
			return nil, fmt.Errorf("parsing timestamp: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating bookings: %w", err)
	}
	return bookings, nil
}
