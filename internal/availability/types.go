// ABOUTME: Input and output shapes of the availability processor
// ABOUTME: Raw search records in, Spanish-keyed priced categories out

package availability

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Record is one vehicle availability entry from /api/search.
type Record struct {
	Car              Car                `json:"Car"`
	CustomerPrice    *Number            `json:"CustomerPrice"`
	PriceDetails     *PriceDetails      `json:"PriceDetails"`
	PriceItems       []PriceItem        `json:"PriceItems"`
	Additionals      []RecordAdditional `json:"Additionals"`
	AdditionalsPrice []RecordAdditional `json:"AdditionalsPrice"`
	Currency         string             `json:"Currency"`
}

// Car wraps the model of an available vehicle.
type Car struct {
	Model Model `json:"Model"`
}

// Model is the subset of a vehicle model the processor reads.
type Model struct {
	Description string    `json:"Description"`
	Brand       Brand     `json:"Brand"`
	Category    *Category `json:"Category"`
}

// Brand names the manufacturer.
type Brand struct {
	Name string `json:"Name"`
}

// Category carries the excess figures used for coverage calculations.
type Category struct {
	ID                *Int   `json:"Id"`
	Name              string `json:"Name"`
	Franchise         Number `json:"Franchise"`
	FranchiseDamage   Number `json:"FranchiseDamage"`
	FranchiseRollover Number `json:"FranchiseRollover"`
	FranchiseTheft    Number `json:"FranchiseTheft"`
	FranchiseHail     Number `json:"FranchiseHail"`
}

// PriceDetails holds the fallback customer price.
type PriceDetails struct {
	CustomerPrice *Number `json:"CustomerPrice"`
}

// PriceItem is one line of the quoted price. Type 1 lines reference an
// additional through TypeId.
type PriceItem struct {
	Description    string `json:"Description"`
	Price          Number `json:"Price"`
	IsBookingPrice bool   `json:"IsBookingPrice"`
	IsPriceByDay   bool   `json:"IsPriceByDay"`
	Currency       string `json:"Currency"`
	Type           Int    `json:"Type"`
	TypeID         Int    `json:"TypeId"`
}

// RecordAdditional is an optional extra offered with a vehicle.
type RecordAdditional struct {
	ID                    Int    `json:"Id"`
	Name                  string `json:"Name"`
	Description           string `json:"Description"`
	Price                 Number `json:"Price"`
	PriceWithoutTaxes     Number `json:"PriceWithoutTaxes"`
	DailyPrice            Number `json:"DailyPrice"`
	IsPriceByDay          bool   `json:"IsPriceByDay"`
	MaxQuantityPerBooking Int    `json:"MaxQuantityPerBooking"`
	AvailableStock        Int    `json:"AvailableStock"`
	Stock                 Int    `json:"Stock"`
	Order                 Int    `json:"Order"`
	IsRequired            bool   `json:"IsRequired"`
	IsDefault             bool   `json:"IsDefault"`
}

// Number is an upstream float that decodes leniently. Numeric strings are
// parsed; anything else that is not a number becomes 0.
type Number float64

// UnmarshalJSON never fails.
func (n *Number) UnmarshalJSON(data []byte) error {
	*n = Number(lenientFloat(data))
	return nil
}

// Int is the integer counterpart of Number. Fractions are truncated.
type Int int

// UnmarshalJSON never fails.
func (n *Int) UnmarshalJSON(data []byte) error {
	f := lenientFloat(data)
	if f > math.MaxInt32 || f < math.MinInt32 {
		f = 0
	}
	*n = Int(f)
	return nil
}

func lenientFloat(data []byte) float64 {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return 0
	}
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// Selection is a caller's request for an additional.
type Selection struct {
	ID       int `json:"id"`
	Quantity int `json:"quantity"`
}

// Additional kinds.
const (
	KindDefault = "default"
	KindPriced  = "precio"
)

// ProcessedCategory is one priced vehicle category in the processor output.
type ProcessedCategory struct {
	Name               string       `json:"nombre"`
	CategoryID         *int         `json:"categoryId"`
	BookingPrice       float64      `json:"precioBooking"`
	PriceItems         PriceSummary `json:"priceItems"`
	Additionals        []Additional `json:"adicionales"`
	AdditionalsTotal   float64      `json:"totalAdicionales"`
	OriginalFranchises Franchises   `json:"franquiciasOriginales"`
	Franchises         Franchises   `json:"franquicias"`
	Currency           string       `json:"currency"`
}

// PriceSummary lists price lines with their sum.
type PriceSummary struct {
	Items []PriceLine `json:"items"`
	Total float64     `json:"total"`
}

// PriceLine is a normalized price item.
type PriceLine struct {
	Name           string  `json:"nombre"`
	Price          float64 `json:"precio"`
	IsBookingPrice bool    `json:"isBookingPrice"`
	IsPriceByDay   bool    `json:"isPriceByDay"`
	Currency       string  `json:"currency"`
}

// Additional is a normalized additional. ID is nil when upstream sent none.
type Additional struct {
	ID                *int    `json:"id"`
	Name              string  `json:"nombre"`
	Description       string  `json:"descripcion"`
	Price             float64 `json:"precio"`
	PriceWithoutTaxes float64 `json:"precioSinImpuestos"`
	DailyPrice        float64 `json:"preciodiario"`
	IsPriceByDay      bool    `json:"isPriceByDay"`
	MaxQuantity       int     `json:"maxQuantity"`
	Stock             int     `json:"stock"`
	Order             int     `json:"order"`
	IsRequired        bool    `json:"isRequired"`
	IsDefault         bool    `json:"isDefault"`
	Kind              string  `json:"tipo"`
	Quantity          int     `json:"quantity"`
	Selected          bool    `json:"seleccionado"`
}

// Franchises are insurance excess figures.
type Franchises struct {
	Deposit  float64 `json:"deposito"`
	Damage   float64 `json:"daños"`
	Rollover float64 `json:"vuelcos"`
	Theft    float64 `json:"robo"`
	Hail     float64 `json:"granizo"`
}
