// ABOUTME: es-AR formatting helpers for booking summaries
// ABOUTME: Money, plain numbers and dd/mm/yyyy - HH:MMhs timestamps

package booking

import (
	"strings"
	"time"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var (
	printer         = message.NewPrinter(language.MustParse("es-AR"))
	defaultCurrency = currency.MustParseISO("ARS")
)

// timeLayouts are the timestamp shapes upstream and callers use.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// currencyLabel returns the ISO code for code, defaulting to ARS.
func currencyLabel(code string) string {
	unit, err := currency.ParseISO(strings.TrimSpace(code))
	if err != nil {
		return defaultCurrency.String()
	}
	return unit.String()
}

// formatPrice renders v with two decimals, e.g. "ARS $ 12.345,60".
func formatPrice(label string, v float64) string {
	return label + " $ " + printer.Sprint(number.Decimal(v, number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}

// formatAmount renders v with locale grouping, e.g. "$150.000".
func formatAmount(v float64) string {
	return "$" + printer.Sprint(number.Decimal(v))
}

func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// formatTimestamp renders s as "20/09/2025 - 08:00hs", or returns s
// unchanged when it does not parse.
func formatTimestamp(s string) string {
	t, ok := parseTimestamp(s)
	if !ok {
		return s
	}
	return t.Format("02/01/2006 - 15:04") + "hs"
}
