// ABOUTME: get_availability and rently_get_availability tools
// ABOUTME: Raw availability search and the per-category priced view

package tools

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strconv"

	"github.com/2389/rently-gateway/internal/availability"
	"github.com/2389/rently-gateway/internal/rently"
)

var isoDate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

var errSearchDateFormat = errors.New("Invalid date format. Please use YYYY-MM-DD format")

type getAvailabilityArgs struct {
	Token                string `json:"token,omitempty" jsonschema:"Optional authentication token (will auto-refresh if not provided)"`
	From                 string `json:"from" jsonschema:"Pickup date in YYYY-MM-DD format"`
	To                   string `json:"to" jsonschema:"Return date in YYYY-MM-DD format"`
	FromPlace            string `json:"fromPlace" jsonschema:"Pickup location ID (use get_places to find valid IDs)"`
	OnlyFullAvailability bool   `json:"onlyFullAvailability,omitempty" jsonschema:"Only show fully available vehicles"`
}

type searchCriteria struct {
	From                 string `json:"from"`
	To                   string `json:"to"`
	FromPlace            string `json:"fromPlace"`
	OnlyFullAvailability bool   `json:"onlyFullAvailability"`
}

type availabilityOutput struct {
	Success        bool            `json:"success"`
	SearchCriteria searchCriteria  `json:"searchCriteria"`
	Results        json.RawMessage `json:"results"`
}

func (h *handlers) getAvailabilityTool() (*Tool, error) {
	return newTool("get_availability",
		"Search for vehicle availability between specified dates and location",
		getAvailabilityArgs{OnlyFullAvailability: true},
		h.getAvailability,
		withDefault("onlyFullAvailability", true),
	)
}

func (h *handlers) getAvailability(ctx context.Context, args getAvailabilityArgs) *Result {
	if !isoDate.MatchString(args.From) || !isoDate.MatchString(args.To) {
		return searchFailure(errSearchDateFormat)
	}

	up, err := h.upstream(ctx, args.Token)
	if err != nil {
		return searchFailure(err)
	}
	raw, err := up.Search(ctx, rently.SearchParams{
		From:                 args.From,
		To:                   args.To,
		FromPlace:            args.FromPlace,
		OnlyFullAvailability: args.OnlyFullAvailability,
	})
	if err != nil {
		return searchFailure(err)
	}

	return jsonResult(availabilityOutput{
		Success: true,
		SearchCriteria: searchCriteria{
			From:                 args.From,
			To:                   args.To,
			FromPlace:            args.FromPlace,
			OnlyFullAvailability: args.OnlyFullAvailability,
		},
		Results: raw,
	})
}

func searchFailure(err error) *Result {
	r := jsonResult(failureOutput{Error: err.Error()})
	r.IsError = true
	return r
}

type selectedAdditional struct {
	ID       int  `json:"id"`
	Quantity *int `json:"quantity,omitempty"`
}

type rentlyGetAvailabilityArgs struct {
	From                string               `json:"from,omitempty" jsonschema:"Pickup date in ISO format (YYYY-MM-DD)"`
	To                  string               `json:"to,omitempty" jsonschema:"Return date in ISO format (YYYY-MM-DD)"`
	FromPlace           int                  `json:"fromPlace,omitempty" jsonschema:"Pickup place ID (get from rently_get_places)"`
	IDVehiculo          int                  `json:"idVehiculo,omitempty" jsonschema:"Vehicle category ID to filter by specific category (client-side filtering)"`
	SelectedAdditionals []selectedAdditional `json:"selectedAdditionals,omitempty" jsonschema:"Pre-selected additionals with quantities for pricing calculations"`
}

type searchSummary struct {
	From                string `json:"from,omitempty"`
	To                  string `json:"to,omitempty"`
	FromPlace           int    `json:"fromPlace,omitempty"`
	SelectedAdditionals int    `json:"selectedAdditionals"`
}

type processedOutput struct {
	Total              int                              `json:"total"`
	FilteredByCategory bool                             `json:"filteredByCategory"`
	CategoryID         int                              `json:"categoryId,omitempty"`
	SearchParams       searchSummary                    `json:"searchParams"`
	Categories         []availability.ProcessedCategory `json:"categories"`
}

func (h *handlers) rentlyGetAvailabilityTool() (*Tool, error) {
	t, err := newTool("rently_get_availability",
		"Search for vehicle availability with pricing and additionals information. Includes complex processing for Argentine peso formatting and date handling.",
		rentlyGetAvailabilityArgs{},
		h.rentlyGetAvailability,
		withDefault("selectedAdditionals", []any{}),
	)
	if err != nil {
		return nil, err
	}
	if items := t.Schema.Properties["selectedAdditionals"]; items != nil && items.Items != nil {
		if q := items.Items.Properties["quantity"]; q != nil {
			q.Default = json.RawMessage("1")
		}
	}
	return t, nil
}

func (h *handlers) rentlyGetAvailability(ctx context.Context, args rentlyGetAvailabilityArgs) *Result {
	up, err := h.upstream(ctx, "")
	if err != nil {
		return toolFailure("rently_get_availability", err)
	}

	params := rently.SearchParams{
		From:                   args.From,
		To:                     args.To,
		OnlyFullAvailability:   true,
		ReturnAdditionalsPrice: true,
	}
	if args.FromPlace != 0 {
		params.FromPlace = strconv.Itoa(args.FromPlace)
	}

	raw, err := up.Search(ctx, params)
	if err != nil {
		return toolFailure("rently_get_availability", err)
	}

	selected := make([]availability.Selection, 0, len(args.SelectedAdditionals))
	for _, s := range args.SelectedAdditionals {
		qty := 1
		if s.Quantity != nil {
			qty = *s.Quantity
		}
		selected = append(selected, availability.Selection{ID: s.ID, Quantity: qty})
	}

	categories := availability.Process(availability.Decode(raw, h.logger), selected, args.IDVehiculo)
	if categories == nil {
		categories = []availability.ProcessedCategory{}
	}

	return jsonResult(processedOutput{
		Total:              len(categories),
		FilteredByCategory: args.IDVehiculo != 0,
		CategoryID:         args.IDVehiculo,
		SearchParams: searchSummary{
			From:                args.From,
			To:                  args.To,
			FromPlace:           args.FromPlace,
			SelectedAdditionals: len(selected),
		},
		Categories: categories,
	})
}
