// ABOUTME: Availability processing: filter, de-duplicate, price and apply coverage rules
// ABOUTME: Pure functions over decoded search records; never fails on partial data

package availability

import (
	"encoding/json"
	"log/slog"
	"math"
	"strconv"
	"strings"
)

// Coverage additionals recognised by id or by name.
const (
	CoverageIntermediateID = 2
	CoverageMaximumID      = 22

	coverageIntermediateName = "intermedia"
	coverageMaximumName      = "máxima"
)

const defaultCurrency = "ARS"

// Decode splits a raw search payload into records. Entries that do not
// decode are skipped and logged; a payload that is not an array yields no
// records.
func Decode(raw json.RawMessage, logger *slog.Logger) []Record {
	if logger == nil {
		logger = slog.Default()
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		logger.Warn("availability payload is not a list", "error", err)
		return nil
	}

	records := make([]Record, 0, len(entries))
	for i, entry := range entries {
		var rec Record
		if err := json.Unmarshal(entry, &rec); err != nil {
			logger.Warn("skipping malformed availability record", "index", i, "error", err)
			continue
		}
		records = append(records, rec)
	}
	return records
}

// Process turns records into one ProcessedCategory per category name, in
// first-seen order. categoryFilter of zero disables filtering.
func Process(records []Record, selected []Selection, categoryFilter int) []ProcessedCategory {
	requested := make(map[int]bool, len(selected))
	for _, s := range selected {
		requested[s.ID] = true
	}

	seenKeys := make(map[string]bool)
	emitted := make(map[string]bool)
	var out []ProcessedCategory

	for _, rec := range records {
		model := rec.Car.Model
		var categoryID *int
		categoryName := ""
		if model.Category != nil {
			if model.Category.ID != nil {
				id := int(*model.Category.ID)
				categoryID = &id
			}
			categoryName = model.Category.Name
		}

		if categoryFilter != 0 && (categoryID == nil || *categoryID != categoryFilter) {
			continue
		}

		finalPrice := rec.finalPrice()
		key := model.Description + "|" + strconv.FormatFloat(finalPrice, 'f', -1, 64)
		if seenKeys[key] || categoryName == "" || emitted[categoryName] {
			continue
		}
		seenKeys[key] = true

		covered := coveredAdditionals(rec.PriceItems)

		var additionals []Additional
		for _, a := range rec.Additionals {
			if covered[int(a.ID)] {
				continue
			}
			additionals = append(additionals, normalizeAdditional(a, KindDefault))
		}
		for _, a := range rec.AdditionalsPrice {
			if !requested[int(a.ID)] || covered[int(a.ID)] {
				continue
			}
			additionals = append(additionals, normalizeAdditional(a, KindPriced))
		}
		additionals = applySelections(additionals, selected)

		original := Franchises{}
		if model.Category != nil {
			original = Franchises{
				Deposit:  float64(model.Category.Franchise),
				Damage:   float64(model.Category.FranchiseDamage),
				Rollover: float64(model.Category.FranchiseRollover),
				Theft:    float64(model.Category.FranchiseTheft),
				Hail:     float64(model.Category.FranchiseHail),
			}
		}

		currency := rec.Currency
		if currency == "" {
			currency = defaultCurrency
		}

		if additionals == nil {
			additionals = []Additional{}
		}
		emitted[categoryName] = true
		out = append(out, ProcessedCategory{
			Name:               categoryName,
			CategoryID:         categoryID,
			BookingPrice:       finalPrice,
			PriceItems:         priceSummary(rec.PriceItems, rec.Currency),
			Additionals:        additionals,
			AdditionalsTotal:   additionalsTotal(additionals),
			OriginalFranchises: original,
			Franchises:         ApplyCoverage(original, additionals),
			Currency:           currency,
		})
	}

	if out == nil {
		return []ProcessedCategory{}
	}
	return out
}

// finalPrice is CustomerPrice, else PriceDetails.CustomerPrice, else 0.
func (r Record) finalPrice() float64 {
	if r.CustomerPrice != nil {
		return float64(*r.CustomerPrice)
	}
	if r.PriceDetails != nil && r.PriceDetails.CustomerPrice != nil {
		return float64(*r.PriceDetails.CustomerPrice)
	}
	return 0
}

// coveredAdditionals returns the additional ids already charged as price lines.
func coveredAdditionals(items []PriceItem) map[int]bool {
	covered := make(map[int]bool)
	for _, item := range items {
		if item.Type == 1 && item.TypeID != 0 {
			covered[int(item.TypeID)] = true
		}
	}
	return covered
}

func priceSummary(items []PriceItem, recordCurrency string) PriceSummary {
	lines := make([]PriceLine, 0, len(items))
	total := 0.0
	for _, item := range items {
		currency := item.Currency
		if currency == "" {
			currency = recordCurrency
		}
		if currency == "" {
			currency = defaultCurrency
		}
		lines = append(lines, PriceLine{
			Name:           item.Description,
			Price:          float64(item.Price),
			IsBookingPrice: item.IsBookingPrice,
			IsPriceByDay:   item.IsPriceByDay,
			Currency:       currency,
		})
		total += float64(item.Price)
	}
	return PriceSummary{Items: lines, Total: total}
}

func normalizeAdditional(a RecordAdditional, kind string) Additional {
	var id *int
	if a.ID != 0 {
		v := int(a.ID)
		id = &v
	}
	stock := a.AvailableStock
	if stock == 0 {
		stock = a.Stock
	}
	return Additional{
		ID:                id,
		Name:              a.Name,
		Description:       a.Description,
		Price:             float64(a.Price),
		PriceWithoutTaxes: float64(a.PriceWithoutTaxes),
		DailyPrice:        float64(a.DailyPrice),
		IsPriceByDay:      a.IsPriceByDay,
		MaxQuantity:       int(a.MaxQuantityPerBooking),
		Stock:             int(stock),
		Order:             int(a.Order),
		IsRequired:        a.IsRequired,
		IsDefault:         a.IsDefault,
		Kind:              kind,
	}
}

// applySelections marks the first additional matching each selection.
func applySelections(additionals []Additional, selected []Selection) []Additional {
	for _, s := range selected {
		for i := range additionals {
			if additionals[i].ID != nil && *additionals[i].ID == s.ID {
				additionals[i].Quantity = s.Quantity
				additionals[i].Selected = true
				break
			}
		}
	}
	return additionals
}

func additionalsTotal(additionals []Additional) float64 {
	total := 0.0
	for _, a := range additionals {
		if a.Selected && a.Quantity > 0 {
			total += a.Price * float64(a.Quantity)
		}
	}
	return total
}

// ApplyCoverage adjusts excess figures for the selected coverage additional.
// Intermediate coverage halves damage; otherwise maximum coverage halves the
// deposit and clears damage, rollover and hail.
func ApplyCoverage(original Franchises, additionals []Additional) Franchises {
	adjusted := original

	if hasSelectedCoverage(additionals, CoverageIntermediateID, coverageIntermediateName) {
		adjusted.Damage = roundHalfUp(original.Damage * 0.5)
		return adjusted
	}
	if hasSelectedCoverage(additionals, CoverageMaximumID, coverageMaximumName) {
		adjusted.Deposit = roundHalfUp(original.Deposit * 0.5)
		adjusted.Damage = 0
		adjusted.Rollover = 0
		adjusted.Hail = 0
	}
	return adjusted
}

func hasSelectedCoverage(additionals []Additional, id int, name string) bool {
	for _, a := range additionals {
		if !a.Selected {
			continue
		}
		if (a.ID != nil && *a.ID == id) || strings.Contains(strings.ToLower(a.Name), name) {
			return true
		}
	}
	return false
}

func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}
