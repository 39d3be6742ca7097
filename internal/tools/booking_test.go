// ABOUTME: Tests for the create_booking tool
// ABOUTME: Checks the result envelope, argument defaults, ledger rows and failures

package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/rently-gateway/internal/booking"
	"github.com/2389/rently-gateway/internal/rently"
)

func bookingUpstream() *fakeUpstream {
	return &fakeUpstream{
		categories: []rently.Category{{
			CategoryInfo: rently.CategoryInfo{ID: 3, Name: "Sedan"},
			Models:       []rently.Model{{ID: 70, Description: "Fiat Cronos", Category: rently.CategoryInfo{ID: 3, Name: "Sedan"}}},
		}},
		places: testPlaces(),
		bookResp: json.RawMessage(`{
			"Id": 4321,
			"IsQuotation": true,
			"Price": 120000,
			"CustomerPrice": 125000,
			"Currency": "ARS",
			"Category": {"Id": 3, "Name": "Sedan"},
			"FromDate": "2025-09-20T08:00:00",
			"ToDate": "2025-09-27T08:00:00"
		}`),
	}
}

func bookingArgs() map[string]any {
	return map[string]any{
		"idVehiculo":     "70",
		"idReserva":      "1",
		"Name":           "Ana",
		"LastName":       "García",
		"DocumentId":     "30123456",
		"EmailAddress":   "ana@example.com",
		"retiro":         "2025-09-20T08:00:00",
		"devolucion":     "2025-09-27T08:00:00",
		"conversationId": "conv-9",
	}
}

func TestCreateBooking_Quotation(t *testing.T) {
	up := bookingUpstream()
	env := newTestEnv(t, up)

	res := env.call(t, "create_booking", bookingArgs())
	require.False(t, res.IsError, res.Text())

	out := decodeText(t, res)
	assert.Equal(t, true, out["success"])
	assert.Equal(t, true, out["isQuotation"])
	assert.Equal(t, false, out["isExistingCustomer"])
	assert.Equal(t, "conv-9", out["conversationId"])
	assert.Equal(t, float64(4321), out["booking"].(map[string]any)["Id"])
	assert.Contains(t, out["message"], "*Cotización - Sedan*")
	assert.Contains(t, out["message"], "Tu número de reserva es 4321.")

	payload, ok := up.lastPayload.(booking.Payload)
	require.True(t, ok)
	assert.True(t, payload.IsQuotation)
	assert.Equal(t, 1, payload.Customer.DocumentTypeID)
	assert.Equal(t, "Oficina Centro", payload.ReturnPlace.Name)
	assert.JSONEq(t, `[]`, string(payload.Additionals))

	bookings, err := env.ledger.ListBookings(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	rec := bookings[0]
	assert.Equal(t, 4321, rec.BookingID)
	assert.True(t, rec.IsQuotation)
	assert.Equal(t, "Sedan", rec.Category)
	assert.Equal(t, 125000.0, rec.Total)
	assert.Equal(t, "ana@example.com", rec.Email)
	assert.Equal(t, "conv-9", rec.ConversationID)
}

func TestCreateBooking_ReservationWithReturnPlace(t *testing.T) {
	up := bookingUpstream()
	up.customers = &rently.CustomerSearchResult{Total: 1, Results: []rently.Customer{{
		ID: 12, Name: "Ana María", Lastname: "García", DocumentID: "30123456", EmailAddress: "ana.maria@example.com",
	}}}
	env := newTestEnv(t, up)

	args := bookingArgs()
	args["es_reserva"] = true
	args["idRetiro"] = "2"
	args["adicionales"] = `[{"Additional":{"Id":5},"Quantity":1}]`

	out := decodeText(t, env.call(t, "create_booking", args))
	assert.Equal(t, false, out["isQuotation"])
	assert.Equal(t, true, out["isExistingCustomer"])

	payload := up.lastPayload.(booking.Payload)
	assert.False(t, payload.IsQuotation)
	assert.Equal(t, "Aeroparque", payload.ReturnPlace.Name)
	assert.Equal(t, "ana.maria@example.com", payload.Customer.EmailAddress)
	assert.JSONEq(t, `[{"Additional":{"Id":5},"Quantity":1}]`, string(payload.Additionals))
}

func TestCreateBooking_UnknownModel(t *testing.T) {
	up := bookingUpstream()
	env := newTestEnv(t, up)

	args := bookingArgs()
	args["idVehiculo"] = "99"

	res := env.call(t, "create_booking", args)
	require.True(t, res.IsError)
	out := decodeText(t, res)
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "booking_creation", out["stage"])
	assert.Equal(t, "vehicle model not found for ID: 99", out["error"])
	assert.Nil(t, up.lastPayload)

	bookings, err := env.ledger.ListBookings(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, bookings)
}

func TestCreateBooking_InvalidEmail(t *testing.T) {
	up := bookingUpstream()
	env := newTestEnv(t, up)

	args := bookingArgs()
	args["EmailAddress"] = "not-an-email"

	res := env.call(t, "create_booking", args)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Text(), "EmailAddress")
	assert.Nil(t, up.lastPayload)
}

func TestCreateBooking_MissingRequired(t *testing.T) {
	env := newTestEnv(t, bookingUpstream())

	args := bookingArgs()
	delete(args, "DocumentId")

	res := env.call(t, "create_booking", args)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Text(), "Invalid arguments for create_booking")
}
