// ABOUTME: create_booking tool
// ABOUTME: Creates a quotation or reservation, records it in the ledger and returns the summary

package tools

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/2389/rently-gateway/internal/booking"
	"github.com/2389/rently-gateway/internal/store"
)

const bookingStage = "booking_creation"

type createBookingArgs struct {
	Token                   string `json:"token,omitempty" jsonschema:"Optional authentication token (will auto-refresh if not provided)"`
	IDVehiculo              string `json:"idVehiculo" jsonschema:"Vehicle model ID"`
	IDReserva               string `json:"idReserva" jsonschema:"Pickup location ID"`
	IDRetiro                string `json:"idRetiro,omitempty" jsonschema:"Return location ID (optional, defaults to pickup location)"`
	Name                    string `json:"Name" jsonschema:"Customer first name"`
	LastName                string `json:"LastName" jsonschema:"Customer last name"`
	DocumentID              string `json:"DocumentId" jsonschema:"Customer document ID"`
	DocumentTypeID          int    `json:"DocumentTypeId,omitempty" jsonschema:"Document type ID"`
	EmailAddress            string `json:"EmailAddress" jsonschema:"Customer email address"`
	Retiro                  string `json:"retiro" jsonschema:"Pickup date and time (ISO format: 2025-09-20T08:00:00)"`
	Devolucion              string `json:"devolucion" jsonschema:"Return date and time (ISO format: 2025-09-27T08:00:00)"`
	EsReserva               bool   `json:"es_reserva,omitempty" jsonschema:"true for reservation, false for quotation"`
	Adicionales             string `json:"adicionales,omitempty" jsonschema:"Additional services as JSON string array"`
	BirthDate               string `json:"BirthDate,omitempty" jsonschema:"Customer birth date"`
	DriverLicenceNumber     string `json:"DriverLicenceNumber,omitempty" jsonschema:"Driver license number"`
	DriverLicenseExpiration string `json:"DriverLicenseExpiration,omitempty" jsonschema:"Driver license expiration"`
	Address                 string `json:"Address,omitempty" jsonschema:"Customer address"`
	ZipCode                 string `json:"ZipCode,omitempty" jsonschema:"Customer zip code"`
	CellPhone               string `json:"CellPhone,omitempty" jsonschema:"Customer cell phone"`
	ConversationID          string `json:"conversationId,omitempty" jsonschema:"Conversation ID for tracking"`
	DatosAdicionales        string `json:"datos_adicionales,omitempty" jsonschema:"Additional data"`
}

func (h *handlers) createBookingTool() (*Tool, error) {
	t, err := newTool("create_booking",
		"Create a vehicle booking (quotation or reservation) with customer and vehicle details",
		createBookingArgs{DocumentTypeID: 1, Adicionales: "[]"},
		h.createBooking,
		withDefault("DocumentTypeId", 1),
		withDefault("es_reserva", false),
		withDefault("adicionales", "[]"),
	)
	if err != nil {
		return nil, err
	}
	if p := t.Schema.Properties["EmailAddress"]; p != nil {
		p.Format = "email"
	}
	return t, nil
}

func (h *handlers) createBooking(ctx context.Context, args createBookingArgs) *Result {
	if _, err := mail.ParseAddress(args.EmailAddress); err != nil {
		return errorResult(fmt.Sprintf("Invalid arguments for create_booking: EmailAddress: invalid email %q", args.EmailAddress))
	}

	up, err := h.upstream(ctx, args.Token)
	if err != nil {
		return bookingFailure(err)
	}

	req := booking.Request{
		VehicleID:               args.IDVehiculo,
		PickupPlaceID:           args.IDReserva,
		ReturnPlaceID:           args.IDRetiro,
		Name:                    args.Name,
		LastName:                args.LastName,
		DocumentID:              args.DocumentID,
		DocumentTypeID:          args.DocumentTypeID,
		EmailAddress:            args.EmailAddress,
		PickupAt:                args.Retiro,
		ReturnAt:                args.Devolucion,
		IsReservation:           args.EsReserva,
		Additionals:             args.Adicionales,
		BirthDate:               args.BirthDate,
		DriverLicenceNumber:     args.DriverLicenceNumber,
		DriverLicenseExpiration: args.DriverLicenseExpiration,
		Address:                 args.Address,
		ZipCode:                 args.ZipCode,
		CellPhone:               args.CellPhone,
		ConversationID:          args.ConversationID,
	}

	result, err := h.deps.Composer.Create(ctx, up, req)
	if err != nil {
		h.logger.Warn("booking creation failed", "vehicle_id", args.IDVehiculo, "error", err)
		return bookingFailure(err)
	}

	h.recordBooking(ctx, req, result)
	return jsonResult(result)
}

func (h *handlers) recordBooking(ctx context.Context, req booking.Request, result *booking.Result) {
	rec := &store.BookingRecord{
		IsQuotation:    result.IsQuotation,
		DocumentID:     req.DocumentID,
		Email:          req.EmailAddress,
		Category:       result.Model.Category.Name,
		FromDate:       req.PickupAt,
		ToDate:         req.ReturnAt,
		ConversationID: req.ConversationID,
	}
	if b := result.Parsed; b != nil {
		rec.BookingID = b.ID
		rec.Total = b.CustomerPrice
		if rec.Total == 0 {
			rec.Total = b.Price
		}
		if b.Category != nil && b.Category.Name != "" {
			rec.Category = b.Category.Name
		}
	}
	if err := h.deps.Ledger.RecordBooking(context.WithoutCancel(ctx), rec); err != nil {
		h.logger.Warn("failed to record booking", "booking_id", rec.BookingID, "error", err)
	}
}

func bookingFailure(err error) *Result {
	r := jsonResult(failureOutput{Error: err.Error(), Stage: bookingStage})
	r.IsError = true
	return r
}
