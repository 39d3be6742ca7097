// ABOUTME: get_places and rently_get_places tools
// ABOUTME: List rental locations as raw JSON, Spanish text, or a filtered summary

package tools

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/2389/rently-gateway/internal/rently"
)

const (
	formatRaw       = "raw"
	formatFormatted = "formatted"
)

type getPlacesArgs struct {
	Token  string `json:"token,omitempty" jsonschema:"Optional authentication token (will auto-refresh if not provided)"`
	Format string `json:"format,omitempty" jsonschema:"Response format: 'raw' for JSON data, 'formatted' for human-readable text"`
}

func (h *handlers) getPlacesTool() (*Tool, error) {
	return newTool("get_places",
		"Retrieve all available rental locations with detailed information",
		getPlacesArgs{Format: formatFormatted},
		h.getPlaces,
		withEnum("format", formatRaw, formatFormatted),
		withDefault("format", formatFormatted),
	)
}

func (h *handlers) getPlaces(ctx context.Context, args getPlacesArgs) *Result {
	up, err := h.upstream(ctx, args.Token)
	if err != nil {
		return errorText(err)
	}
	places, err := up.Places(ctx)
	if err != nil {
		return errorText(err)
	}
	if places == nil {
		places = []rently.Place{}
	}

	if args.Format == formatRaw {
		return jsonResult(places)
	}
	return textResult(formatPlaces(places))
}

// formatPlaces renders the Spanish listing, one block per place.
func formatPlaces(places []rently.Place) string {
	lines := make([]string, 0, len(places)*5)
	for _, p := range places {
		returnPlaces := "No disponibles"
		if len(p.AvailableReturnPlaces) > 0 {
			ids := make([]string, len(p.AvailableReturnPlaces))
			for i, id := range p.AvailableReturnPlaces {
				ids[i] = strconv.Itoa(id)
			}
			returnPlaces = strings.Join(ids, ", ")
		}

		price := "Gratis"
		if p.Price != 0 {
			price = "$" + strconv.FormatFloat(p.Price, 'f', -1, 64)
		}

		lines = append(lines,
			fmt.Sprintf("### %s (id: %d)", p.Name, p.ID),
			fmt.Sprintf("Dirección: %s — Ciudad: %s — País: %s — Lugares de devolución (IDs): %s", p.Address, p.City, p.Country, returnPlaces),
			fmt.Sprintf("Categoría: %s — Precio: %s", p.Category, price),
			fmt.Sprintf("Opciones disponibles: %s", p.AvailableOperationOptions),
			"",
		)
	}
	return strings.Join(lines, "\n")
}

type rentlyGetPlacesArgs struct {
	Category           string `json:"category,omitempty" jsonschema:"Filter places by category"`
	City               string `json:"city,omitempty" jsonschema:"Filter places by city name (case-insensitive)"`
	IncludeCoordinates bool   `json:"includeCoordinates,omitempty" jsonschema:"Include latitude/longitude coordinates in response"`
}

type placeSummary struct {
	ID                        int          `json:"id"`
	Name                      string       `json:"name"`
	Category                  string       `json:"category"`
	Address                   string       `json:"address"`
	City                      string       `json:"city"`
	Country                   string       `json:"country"`
	Price                     float64      `json:"price"`
	BranchOffice              string       `json:"branchOffice"`
	BranchOfficeID            int          `json:"branchOfficeId"`
	IATACode                  *string      `json:"iataCode"`
	IsFranchise               bool         `json:"isFranchise"`
	CanAddCustomAddress       bool         `json:"canAddCustomAddress"`
	IsCustomAddress           bool         `json:"isCustomAddress"`
	AvailableReturnPlaces     []int        `json:"availableReturnPlaces"`
	AvailableOperationOptions string       `json:"availableOperationOptions"`
	Coordinates               *coordinates `json:"coordinates,omitempty"`
}

type coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type placeFilters struct {
	Category           string `json:"category"`
	City               string `json:"city"`
	IncludeCoordinates bool   `json:"includeCoordinates"`
}

type placesOutput struct {
	Total   int            `json:"total"`
	Filters placeFilters   `json:"filters"`
	Places  []placeSummary `json:"places"`
}

func (h *handlers) rentlyGetPlacesTool() (*Tool, error) {
	return newTool("rently_get_places",
		"Get all available places/locations for vehicle pickup and return",
		rentlyGetPlacesArgs{},
		h.rentlyGetPlaces,
		withEnum("category", "Oficinas", "Aeropuerto", "Domicilios"),
		withDefault("includeCoordinates", false),
	)
}

func (h *handlers) rentlyGetPlaces(ctx context.Context, args rentlyGetPlacesArgs) *Result {
	up, err := h.upstream(ctx, "")
	if err != nil {
		return toolFailure("rently_get_places", err)
	}
	places, err := up.Places(ctx)
	if err != nil {
		return toolFailure("rently_get_places", err)
	}

	out := placesOutput{
		Filters: placeFilters{
			Category:           orAll(args.Category),
			City:               orAll(args.City),
			IncludeCoordinates: args.IncludeCoordinates,
		},
		Places: []placeSummary{},
	}

	city := strings.ToLower(args.City)
	for _, p := range places {
		if args.Category != "" && p.Category != args.Category {
			continue
		}
		if city != "" && !strings.Contains(strings.ToLower(p.City), city) {
			continue
		}
		out.Places = append(out.Places, summarizePlace(p, args.IncludeCoordinates))
	}
	out.Total = len(out.Places)

	return jsonResult(out)
}

func summarizePlace(p rently.Place, withCoordinates bool) placeSummary {
	s := placeSummary{
		ID:                        p.ID,
		Name:                      p.Name,
		Category:                  p.Category,
		Address:                   p.Address,
		City:                      p.City,
		Country:                   p.Country,
		Price:                     p.Price,
		BranchOffice:              p.BranchOfficeName,
		BranchOfficeID:            p.BranchOfficeID,
		IATACode:                  p.BranchOfficeIATACode,
		IsFranchise:               p.IsFranchise,
		CanAddCustomAddress:       p.CanAddCustomAddress,
		IsCustomAddress:           p.IsCustomAddress,
		AvailableReturnPlaces:     p.AvailableReturnPlaces,
		AvailableOperationOptions: p.AvailableOperationOptions,
	}
	// Places without a position are listed without coordinates.
	if withCoordinates && p.Latitude != 0 && p.Longitude != 0 {
		s.Coordinates = &coordinates{Latitude: p.Latitude, Longitude: p.Longitude}
	}
	return s
}

func orAll(s string) string {
	if s == "" {
		return "all"
	}
	return s
}

type failureOutput struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Tool    string `json:"tool,omitempty"`
	Stage   string `json:"stage,omitempty"`
}

// toolFailure is the JSON error envelope used by the structured tools.
func toolFailure(tool string, err error) *Result {
	r := jsonResult(failureOutput{Error: err.Error(), Tool: tool})
	r.IsError = true
	return r
}
