// ABOUTME: validate_search_dates tool
// ABOUTME: Parses a pickup/return pair in common layouts and reports the rental length

package tools

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

var (
	errInvalidDate    = errors.New("Invalid date format. Please provide valid dates.")
	errReturnOrder    = errors.New("Return date must be after pickup date.")
	errPickupInPast   = errors.New("Pickup date cannot be in the past.")
	searchDateLayouts = []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"2006-01-02",
		"02/01/2006",
	}
)

type validateDatesArgs struct {
	From string `json:"from" jsonschema:"Pickup date (various formats accepted)"`
	To   string `json:"to" jsonschema:"Return date (various formats accepted)"`
}

type formattedDates struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type validateDatesOutput struct {
	Success        bool           `json:"success"`
	FormattedDates formattedDates `json:"formattedDates"`
	Duration       string         `json:"duration"`
	Ready          bool           `json:"ready"`
}

func (h *handlers) validateSearchDatesTool() (*Tool, error) {
	return newTool("validate_search_dates",
		"Validate and format dates for availability search",
		validateDatesArgs{},
		h.validateSearchDates,
	)
}

func (h *handlers) validateSearchDates(_ context.Context, args validateDatesArgs) *Result {
	out, err := checkSearchDates(args.From, args.To, h.now(), h.deps.RejectPastDates)
	if err != nil {
		return errorResult(fmt.Sprintf("Date validation error: %v", err))
	}
	return jsonResult(out)
}

// checkSearchDates validates the pair. Times without a zone are taken as UTC.
func checkSearchDates(from, to string, now time.Time, rejectPast bool) (validateDatesOutput, error) {
	fromDate, okFrom := parseSearchDate(from)
	toDate, okTo := parseSearchDate(to)
	if !okFrom || !okTo {
		return validateDatesOutput{}, errInvalidDate
	}
	if !fromDate.Before(toDate) {
		return validateDatesOutput{}, errReturnOrder
	}
	if rejectPast && fromDate.Before(now) {
		return validateDatesOutput{}, errPickupInPast
	}

	days := int(math.Ceil(toDate.Sub(fromDate).Hours() / 24))
	return validateDatesOutput{
		Success: true,
		FormattedDates: formattedDates{
			From: fromDate.UTC().Format(time.DateOnly),
			To:   toDate.UTC().Format(time.DateOnly),
		},
		Duration: fmt.Sprintf("%d days", days),
		Ready:    true,
	}, nil
}

func parseSearchDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range searchDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
