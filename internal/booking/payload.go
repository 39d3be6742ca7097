// ABOUTME: Booking payload assembly and customer merging
// ABOUTME: Builds the /api/booking/book request body from looked-up upstream records

package booking

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/2389/rently-gateway/internal/rently"
)

// ZeroGUID is sent as GlobalId for customers without one.
const ZeroGUID = "00000000-0000-0000-0000-000000000000"

const (
	zeroDate           = "0001-01-01T00:00:00"
	payloadCurrency    = "ARS"
	existingDefaultAge = 18
	newCustomerAge     = 30
)

// Payload is the booking request body.
type Payload struct {
	FullResponse            bool                   `json:"FullResponse"`
	IsFixedPrice            bool                   `json:"IsFixedPrice"`
	IsPriceAllInclusive     bool                   `json:"IsPriceAllInclusive"`
	ForceExchangeRate       bool                   `json:"ForceExchangeRate"`
	ID                      int                    `json:"Id"`
	Customer                rently.BookingCustomer `json:"Customer"`
	Balance                 float64                `json:"Balance"`
	TotalPayed              float64                `json:"TotalPayed"`
	IsQuotation             bool                   `json:"IsQuotation"`
	Car                     PayloadCar             `json:"Car"`
	Category                PayloadCategory        `json:"Category"`
	FromDate                string                 `json:"FromDate"`
	ToDate                  string                 `json:"ToDate"`
	DeliveryPlace           rently.PlaceDetails    `json:"DeliveryPlace"`
	ReturnPlace             rently.PlaceDetails    `json:"ReturnPlace"`
	Price                   float64                `json:"Price"`
	AgencyPrice             float64                `json:"AgencyPrice"`
	CustomerPrice           float64                `json:"CustomerPrice"`
	Currency                string                 `json:"Currency"`
	TotalDays               int                    `json:"TotalDays"`
	IlimitedKm              bool                   `json:"IlimitedKm"`
	MaxAllowedDistance      int                    `json:"MaxAllowedDistance"`
	MaxAllowedDistanceByDay int                    `json:"MaxAllowedDistanceByDay"`
	HasFranchiseModifiers   bool                   `json:"HasFranchiseModifiers"`
	AverageDayPrice         float64                `json:"AverageDayPrice"`
	PriceItems              []any                  `json:"PriceItems"`
	Additionals             json.RawMessage        `json:"Additionals"`
	CurrentStatus           int                    `json:"CurrentStatus"`
	CurrentStatusDate       string                 `json:"CurrentStatusDate"`
	IsCustomerOver25        bool                   `json:"IsCustomerOver25"`
	PrepaidAmount           float64                `json:"PrepaidAmount"`
	Attributes              map[string]any         `json:"Attributes"`
	DailyRate               float64                `json:"DailyRate"`
	HourlyRate              float64                `json:"HourlyRate"`
	ExtraDayRate            float64                `json:"ExtraDayRate"`
	ExtraHourRate           float64                `json:"ExtraHourRate"`
	IsOnRequest             bool                   `json:"IsOnRequest"`
	CreationDate            string                 `json:"CreationDate"`
	PayedByAgency           float64                `json:"PayedByAgency"`
	PayedByCustomer         float64                `json:"PayedByCustomer"`
	SalesCommision          float64                `json:"SalesCommision"`
	IsTransfer              bool                   `json:"IsTransfer"`
	IsSelfCheckin           bool                   `json:"IsSelfCheckin"`
}

// PayloadCar is the vehicle part of a booking request.
type PayloadCar struct {
	Model                 PayloadModel `json:"Model"`
	CurrentBranchOfficeID int          `json:"CurrentBranchOfficeId"`
	CurrentKms            int          `json:"CurrentKms"`
	Gasoline              int          `json:"Gasoline"`
	Year                  int          `json:"Year"`
	CreationDate          string       `json:"CreationDate"`
}

// PayloadModel is the model subset upstream expects.
type PayloadModel struct {
	rently.Franchises
	Doors           int     `json:"Doors"`
	Passengers      int     `json:"Passengers"`
	BigLuggage      int     `json:"BigLuggage"`
	SmallLuggage    int     `json:"SmallLuggage"`
	Steering        string  `json:"Steering"`
	Gearbox         string  `json:"Gearbox"`
	Multimedia      string  `json:"Multimedia"`
	AirConditioner  string  `json:"AirConditioner"`
	DailyPrice      float64 `json:"DailyPrice"`
	ModelAttributes []any   `json:"ModelAttributes"`
	LowerPrice      float64 `json:"LowerPrice"`
	CreationDate    string  `json:"CreationDate"`
	ID              int     `json:"Id"`
	SIPP            string  `json:"SIPP"`
}

// PayloadCategory is the category subset upstream expects.
type PayloadCategory struct {
	ID    int `json:"Id"`
	Order int `json:"Order"`
	rently.Franchises
}

// MergeCustomer builds the booking customer. With an existing record its
// non-empty fields win over the request's; otherwise the request supplies
// everything and defaults fill the rest.
func MergeCustomer(req Request, existing *rently.Customer) rently.BookingCustomer {
	if existing == nil {
		return rently.BookingCustomer{
			GlobalID:                ZeroGUID,
			Name:                    req.Name,
			LastName:                req.LastName,
			DocumentID:              req.DocumentID,
			DocumentTypeID:          req.DocumentTypeID,
			EmailAddress:            req.EmailAddress,
			CellPhone:               req.CellPhone,
			Address:                 req.Address,
			BirthDate:               req.BirthDate,
			ZipCode:                 req.ZipCode,
			CreditCards:             []any{},
			Memberships:             []any{},
			Age:                     newCustomerAge,
			DriverLicenceNumber:     req.DriverLicenceNumber,
			DriverLicenseExpiration: req.DriverLicenseExpiration,
			CommercialAgreements:    []any{},
		}
	}

	age := existing.Age
	if age == 0 {
		age = existingDefaultAge
	}
	documentType := existing.DocumentTypeID
	if documentType == 0 {
		documentType = req.DocumentTypeID
	}

	return rently.BookingCustomer{
		ID:                      existing.ID,
		GlobalID:                firstNonEmpty(existing.GlobalID, ZeroGUID),
		Name:                    firstNonEmpty(existing.Name, req.Name),
		LastName:                firstNonEmpty(existing.Lastname, req.LastName),
		DocumentID:              firstNonEmpty(existing.DocumentID, req.DocumentID),
		DocumentTypeID:          documentType,
		EmailAddress:            firstNonEmpty(existing.EmailAddress, req.EmailAddress),
		CellPhone:               firstNonEmpty(existing.CellPhone, req.CellPhone),
		Address:                 firstNonEmpty(existing.Address, req.Address),
		AddressNumber:           existing.AddressNumber,
		AddressDepartment:       existing.AddressDepartment,
		Country:                 existing.Country,
		BirthDate:               firstNonEmpty(existing.BirthDate, req.BirthDate),
		ZipCode:                 firstNonEmpty(existing.ZipCode, req.ZipCode),
		CreditCards:             nonNil(existing.CreditCards),
		Memberships:             nonNil(existing.Memberships),
		Age:                     age,
		DriverLicenceNumber:     firstNonEmpty(existing.DriverLicenceNumber, req.DriverLicenceNumber),
		DriverLicenseExpiration: firstNonEmpty(existing.DriverLicenseExpiration, req.DriverLicenseExpiration),
		IsCompany:               existing.IsCompany,
		IsAgency:                existing.IsAgency,
		IsProvider:              existing.IsProvider,
		IsHotel:                 existing.IsHotel,
		CommercialAgreements:    nonNil(existing.CommercialAgreements),
		HasWebLogin:             existing.HasWebLogin,
	}
}

// BuildPayload assembles the booking request. now stamps the status and
// creation dates.
func BuildPayload(req Request, model rently.Model, delivery, ret rently.PlaceDetails, customer rently.BookingCustomer, now time.Time) Payload {
	isoNow := now.UTC().Format("2006-01-02T15:04:05.000Z")

	return Payload{
		FullResponse: true,
		Customer:     customer,
		IsQuotation:  !req.IsReservation,
		Car: PayloadCar{
			Model: PayloadModel{
				Franchises:      model.Franchises,
				Doors:           model.Doors,
				Passengers:      model.Passengers,
				BigLuggage:      model.BigLuggage,
				SmallLuggage:    model.SmallLuggage,
				Steering:        model.Steering,
				Gearbox:         model.Gearbox,
				Multimedia:      model.Multimedia,
				AirConditioner:  model.AirConditioner,
				DailyPrice:      model.DailyPrice,
				ModelAttributes: model.ModelAttributes,
				LowerPrice:      model.LowerPrice,
				CreationDate:    model.CreationDate,
				ID:              model.ID,
				SIPP:            model.SIPP,
			},
			CreationDate: zeroDate,
		},
		Category: PayloadCategory{
			ID:         model.Category.ID,
			Order:      model.Category.Order,
			Franchises: model.Category.Franchises,
		},
		FromDate:          req.PickupAt,
		ToDate:            req.ReturnAt,
		DeliveryPlace:     delivery,
		ReturnPlace:       ret,
		Currency:          payloadCurrency,
		PriceItems:        []any{},
		Additionals:       ParseAdditionals(req.Additionals),
		CurrentStatusDate: isoNow,
		Attributes:        map[string]any{},
		CreationDate:      isoNow,
	}
}

// ParseAdditionals returns the caller's additionals JSON, or an empty array
// when it is blank or invalid.
func ParseAdditionals(s string) json.RawMessage {
	s = strings.TrimSpace(s)
	if s == "" || !json.Valid([]byte(s)) {
		return json.RawMessage("[]")
	}
	return json.RawMessage(s)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func nonNil(v []any) []any {
	if v == nil {
		return []any{}
	}
	return v
}
