// ABOUTME: Booking creation flow against the Rently API
// ABOUTME: Looks up model and places, merges the customer, submits and summarises

package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/2389/rently-gateway/internal/rently"
)

var (
	ErrModelNotFound = errors.New("vehicle model not found")
	ErrPlaceNotFound = errors.New("pickup location not found")
)

// Upstream is the part of the Rently API a Composer needs.
type Upstream interface {
	Categories(ctx context.Context) ([]rently.Category, error)
	Places(ctx context.Context) ([]rently.Place, error)
	FindCustomers(ctx context.Context, filter string) (*rently.CustomerSearchResult, error)
	Book(ctx context.Context, payload any) (json.RawMessage, error)
}

// Request carries the caller's booking details.
type Request struct {
	VehicleID               string
	PickupPlaceID           string
	ReturnPlaceID           string
	Name                    string
	LastName                string
	DocumentID              string
	DocumentTypeID          int
	EmailAddress            string
	PickupAt                string
	ReturnAt                string
	IsReservation           bool
	Additionals             string
	BirthDate               string
	DriverLicenceNumber     string
	DriverLicenseExpiration string
	Address                 string
	ZipCode                 string
	CellPhone               string
	ConversationID          string
}

// Result is the outcome of a successful Create.
type Result struct {
	Success            bool            `json:"success"`
	Message            string          `json:"message"`
	Booking            json.RawMessage `json:"booking"`
	IsQuotation        bool            `json:"isQuotation"`
	IsExistingCustomer bool            `json:"isExistingCustomer"`
	ConversationID     string          `json:"conversationId,omitempty"`

	// Parsed is the decoded booking, for callers that record it.
	Parsed *rently.Booking `json:"-"`
	Model  rently.Model    `json:"-"`
}

// Composer creates bookings.
type Composer struct {
	logger *slog.Logger
	now    func() time.Time
}

// NewComposer creates a composer.
func NewComposer(logger *slog.Logger) *Composer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Composer{
		logger: logger.With("component", "booking"),
		now:    time.Now,
	}
}

// Create runs the booking flow against up.
func (c *Composer) Create(ctx context.Context, up Upstream, req Request) (*Result, error) {
	categories, err := up.Categories(ctx)
	if err != nil {
		return nil, err
	}
	model, err := FindModel(categories, req.VehicleID)
	if err != nil {
		return nil, err
	}

	places, err := up.Places(ctx)
	if err != nil {
		return nil, err
	}
	pickup, ok := FindPlace(places, req.PickupPlaceID)
	if !ok {
		return nil, fmt.Errorf("%w for ID: %s", ErrPlaceNotFound, req.PickupPlaceID)
	}
	ret := pickup
	if req.ReturnPlaceID != "" {
		if p, ok := FindPlace(places, req.ReturnPlaceID); ok {
			ret = p
		}
	}

	existing := c.lookupCustomer(ctx, up, req)
	customer := MergeCustomer(req, existing)
	payload := BuildPayload(req, *model, pickup.PlaceDetails, ret.PlaceDetails, customer, c.now())

	raw, err := up.Book(ctx, payload)
	if err != nil {
		return nil, err
	}

	parsed, err := rently.DecodeBooking(raw)
	if err != nil {
		c.logger.Warn("booking response not in expected shape", "error", err)
		parsed = &rently.Booking{}
	}

	c.logger.Info("booking created",
		"booking_id", parsed.ID,
		"is_quotation", !req.IsReservation,
		"existing_customer", existing != nil,
	)

	return &Result{
		Success:            true,
		Message:            Summary(parsed),
		Booking:            raw,
		IsQuotation:        !req.IsReservation,
		IsExistingCustomer: existing != nil,
		ConversationID:     req.ConversationID,
		Parsed:             parsed,
		Model:              *model,
	}, nil
}

// lookupCustomer finds an existing customer by document id for
// reservations. Failures are logged and treated as no match.
func (c *Composer) lookupCustomer(ctx context.Context, up Upstream, req Request) *rently.Customer {
	if !req.IsReservation {
		return nil
	}
	res, err := up.FindCustomers(ctx, req.DocumentID)
	if err != nil {
		c.logger.Warn("customer lookup failed, continuing as new customer", "error", err)
		return nil
	}
	if res == nil || len(res.Results) == 0 {
		return nil
	}
	return &res.Results[0]
}

// FindModel returns the first model across categories whose id matches.
func FindModel(categories []rently.Category, id string) (*rently.Model, error) {
	want, err := strconv.Atoi(strings.TrimSpace(id))
	if err == nil {
		for _, cat := range categories {
			for i := range cat.Models {
				if cat.Models[i].ID == want {
					return &cat.Models[i], nil
				}
			}
		}
	}
	return nil, fmt.Errorf("%w for ID: %s", ErrModelNotFound, id)
}

// FindPlace returns the place whose id matches.
func FindPlace(places []rently.Place, id string) (rently.Place, bool) {
	id = strings.TrimSpace(id)
	for _, p := range places {
		if strconv.Itoa(p.ID) == id {
			return p, true
		}
	}
	return rently.Place{}, false
}
