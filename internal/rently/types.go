// ABOUTME: Upstream data transfer objects for the Rently API
// ABOUTME: Field names follow the upstream JSON contract

package rently

import "encoding/json"

// PlaceDetails is a pickup or return location without its return-place list.
type PlaceDetails struct {
	ID                        int     `json:"Id"`
	Price                     float64 `json:"Price"`
	Name                      string  `json:"Name"`
	Category                  string  `json:"Category"`
	Address                   string  `json:"Address"`
	City                      string  `json:"City"`
	Country                   string  `json:"Country"`
	BranchOfficeID            int     `json:"BranchOfficeId"`
	BranchOfficeName          string  `json:"BranchOfficeName"`
	BranchOfficeIATACode      *string `json:"BranchOfficeIATACode"`
	IsFranchise               bool    `json:"IsFranchise"`
	Latitude                  float64 `json:"Latitude"`
	Longitude                 float64 `json:"Longitude"`
	CanAddCustomAddress       bool    `json:"CanAddCustomAddress"`
	IsCustomAddress           bool    `json:"IsCustomAddress"`
	AvailableOperationOptions string  `json:"AvailableOperationOptions"`
}

// Place is a location as returned by /api/places.
type Place struct {
	AvailableReturnPlaces []int `json:"AvailableReturnPlaces"`
	PlaceDetails
}

// Brand names a vehicle manufacturer.
type Brand struct {
	Name string `json:"Name"`
}

// Franchises are the insurance excess figures attached to a category or model.
type Franchises struct {
	Franchise         float64 `json:"Franchise"`
	FranchiseDamage   float64 `json:"FranchiseDamage"`
	FranchiseRollover float64 `json:"FranchiseRollover"`
	FranchiseTheft    float64 `json:"FranchiseTheft"`
	FranchiseHail     float64 `json:"FranchiseHail"`
}

// CategoryInfo is a category as embedded in models and bookings.
type CategoryInfo struct {
	ID               int    `json:"Id"`
	Name             string `json:"Name"`
	Order            int    `json:"Order"`
	PrincipalModelID int    `json:"PrincipalModelId"`
	Franchises
	ImagePath string `json:"ImagePath"`
}

// Category is an entry of /api/categories.
type Category struct {
	Models []Model `json:"Models"`
	CategoryInfo
}

// Model is a vehicle model within a category.
type Model struct {
	ID             int    `json:"Id"`
	Name           string `json:"Name"`
	Description    string `json:"Description"`
	ImagePath      string `json:"ImagePath"`
	Brand          Brand  `json:"Brand"`
	Franchises
	Doors           int          `json:"Doors"`
	Passengers      int          `json:"Passengers"`
	BigLuggage      int          `json:"BigLuggage"`
	SmallLuggage    int          `json:"SmallLuggage"`
	Steering        string       `json:"Steering"`
	Gearbox         string       `json:"Gearbox"`
	Multimedia      string       `json:"Multimedia"`
	AirConditioner  string       `json:"AirConditioner"`
	DailyPrice      float64      `json:"DailyPrice"`
	ModelAttributes []any        `json:"ModelAttributes"`
	LowerPrice      float64      `json:"LowerPrice"`
	CreationDate    string       `json:"CreationDate"`
	Category        CategoryInfo `json:"Category"`
	SIPP            string       `json:"SIPP"`
}

// Customer is a Rently customer record. Nullable upstream strings decode
// to the empty string.
type Customer struct {
	ID                      int    `json:"Id"`
	GlobalID                string `json:"GlobalId"`
	Name                    string `json:"Name"`
	Lastname                string `json:"Lastname"`
	Firstname               string `json:"Firstname"`
	DocumentID              string `json:"DocumentId"`
	DocumentTypeID          int    `json:"DocumentTypeId"`
	EmailAddress            string `json:"EmailAddress"`
	CellPhone               string `json:"CellPhone"`
	Address                 string `json:"Address"`
	AddressNumber           string `json:"AddressNumber"`
	AddressDepartment       string `json:"AddressDepartment"`
	Country                 string `json:"Country"`
	BirthDate               string `json:"BirthDate"`
	CreditCards             []any  `json:"CreditCards"`
	Memberships             []any  `json:"Memberships"`
	Age                     int    `json:"Age"`
	DriverLicenceNumber     string `json:"DriverLicenceNumber"`
	DriverLicenseExpiration string `json:"DriverLicenseExpiration"`
	ZipCode                 string `json:"ZipCode"`
	IsCompany               bool   `json:"IsCompany"`
	IsAgency                bool   `json:"IsAgency"`
	IsProvider              bool   `json:"IsProvider"`
	IsHotel                 bool   `json:"IsHotel"`
	CommercialAgreements    []any  `json:"CommercialAgreements"`
	HasWebLogin             bool   `json:"HasWebLogin"`
}

// CustomerSearchResult is the /api/customers response page.
type CustomerSearchResult struct {
	Offset  int        `json:"Offset"`
	Limit   int        `json:"Limit"`
	Total   int        `json:"Total"`
	Results []Customer `json:"Results"`
}

// AdditionalInfo describes an extra service attached to a booking.
type AdditionalInfo struct {
	ID                    int     `json:"Id"`
	Name                  string  `json:"Name"`
	Description           string  `json:"Description"`
	ImagePath             string  `json:"ImagePath"`
	IsPriceByDay          bool    `json:"IsPriceByDay"`
	Price                 float64 `json:"Price"`
	MaxQuantityPerBooking int     `json:"MaxQuantityPerBooking"`
	Type                  string  `json:"Type"`
	Stock                 int     `json:"Stock"`
	Order                 int     `json:"Order"`
}

// BookedAdditional pairs an additional with its booked quantity.
type BookedAdditional struct {
	Additional *AdditionalInfo `json:"Additional"`
	Quantity   int             `json:"Quantity"`
}

// BookingCustomer is the customer shape sent when creating a booking.
type BookingCustomer struct {
	ID                      int    `json:"Id"`
	GlobalID                string `json:"GlobalId"`
	Name                    string `json:"Name"`
	LastName                string `json:"LastName"`
	DocumentID              string `json:"DocumentId"`
	DocumentTypeID          int    `json:"DocumentTypeId"`
	EmailAddress            string `json:"EmailAddress"`
	CellPhone               string `json:"CellPhone"`
	Address                 string `json:"Address"`
	AddressNumber           string `json:"AddressNumber"`
	AddressDepartment       string `json:"AddressDepartment"`
	Country                 string `json:"Country"`
	BirthDate               string `json:"BirthDate"`
	ZipCode                 string `json:"ZipCode"`
	CreditCards             []any  `json:"CreditCards"`
	Memberships             []any  `json:"Memberships"`
	Age                     int    `json:"Age"`
	DriverLicenceNumber     string `json:"DriverLicenceNumber"`
	DriverLicenseExpiration string `json:"DriverLicenseExpiration"`
	IsCompany               bool   `json:"IsCompany"`
	IsAgency                bool   `json:"IsAgency"`
	IsProvider              bool   `json:"IsProvider"`
	IsHotel                 bool   `json:"IsHotel"`
	CommercialAgreements    []any  `json:"CommercialAgreements"`
	HasWebLogin             bool   `json:"HasWebLogin"`
}

// Booking is the subset of a created booking the gateway reads back.
type Booking struct {
	ID            int                `json:"Id"`
	IsQuotation   bool               `json:"IsQuotation"`
	Customer      *Customer          `json:"Customer"`
	Category      *CategoryInfo      `json:"Category"`
	FromDate      string             `json:"FromDate"`
	ToDate        string             `json:"ToDate"`
	DeliveryPlace *PlaceDetails      `json:"DeliveryPlace"`
	ReturnPlace   *PlaceDetails      `json:"ReturnPlace"`
	Price         float64            `json:"Price"`
	CustomerPrice float64            `json:"CustomerPrice"`
	Currency      string             `json:"Currency"`
	Additionals   []BookedAdditional `json:"Additionals"`
	Franchises
}

// DecodeBooking reads a booking response, which upstream returns either as
// a single object or as an array whose first element is the booking.
func DecodeBooking(raw json.RawMessage) (*Booking, error) {
	var list []Booking
	if err := json.Unmarshal(raw, &list); err == nil {
		if len(list) == 0 {
			return &Booking{}, nil
		}
		return &list[0], nil
	}

	var b Booking
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// SearchParams are the query parameters of /api/search.
type SearchParams struct {
	From                   string
	To                     string
	FromPlace              string
	OnlyFullAvailability   bool
	ReturnAdditionalsPrice bool
}
