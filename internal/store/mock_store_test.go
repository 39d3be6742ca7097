// ABOUTME: Tests for the in-memory mock ledger
// ABOUTME: Ensures it behaves like the SQLite store for ordering and limits

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ Ledger = (*MockStore)(nil)
var _ Ledger = (*SQLiteStore)(nil)

func TestMockStore_NewestFirstWithLimit(t *testing.T) {
	m := NewMockStore()
	ctx := context.Background()

	for _, tool := range []string{"a", "b", "c"} {
		require.NoError(t, m.RecordToolCall(ctx, &ToolCall{Tool: tool}))
	}
	require.NoError(t, m.RecordBooking(ctx, &BookingRecord{BookingID: 1}))

	calls, err := m.ListToolCalls(ctx, 2)
	require.NoError(t, err)
	require.Len(t, calls, 2)
	assert.Equal(t, "c", calls[0].Tool)
	assert.Equal(t, "b", calls[1].Tool)
	assert.NotEmpty(t, calls[0].ID)

	bookings, err := m.ListBookings(ctx, 0)
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, 1, bookings[0].BookingID)

	require.NoError(t, m.Close())
}
