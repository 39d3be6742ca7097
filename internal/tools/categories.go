// ABOUTME: get_categories tool
// ABOUTME: Lists vehicle categories with optional per-model specifications

package tools

import (
	"context"
	"strings"

	"github.com/2389/rently-gateway/internal/rently"
)

type getCategoriesArgs struct {
	Token          string `json:"token,omitempty" jsonschema:"Optional authentication token (will auto-refresh if not provided)"`
	IncludeDetails bool   `json:"includeDetails,omitempty" jsonschema:"Include detailed vehicle specifications"`
}

type categoryOutput struct {
	CategoryName string        `json:"categoryName"`
	CategoryID   int           `json:"categoryId"`
	VehicleCount int           `json:"vehicleCount"`
	Autos        []modelOutput `json:"autos,omitzero"`
}

type modelOutput struct {
	Name           string  `json:"name"`
	ID             int     `json:"id"`
	Brand          string  `json:"brand"`
	Doors          int     `json:"doors"`
	Passengers     int     `json:"passengers"`
	Steering       string  `json:"steering"`
	Gearbox        string  `json:"gearbox"`
	Multimedia     string  `json:"multimedia"`
	AirConditioner string  `json:"airConditioner"`
	ImagePath      string  `json:"imagePath"`
	Franchise      float64 `json:"franchise"`
}

func (h *handlers) getCategoriesTool() (*Tool, error) {
	return newTool("get_categories",
		"Retrieve all vehicle categories with their available models and specifications",
		getCategoriesArgs{IncludeDetails: true},
		h.getCategories,
		withDefault("includeDetails", true),
	)
}

func (h *handlers) getCategories(ctx context.Context, args getCategoriesArgs) *Result {
	up, err := h.upstream(ctx, args.Token)
	if err != nil {
		return errorText(err)
	}
	categories, err := up.Categories(ctx)
	if err != nil {
		return errorText(err)
	}

	out := make([]categoryOutput, 0, len(categories))
	for _, c := range categories {
		entry := categoryOutput{
			CategoryName: c.Name,
			CategoryID:   c.ID,
			VehicleCount: len(c.Models),
		}
		if args.IncludeDetails {
			entry.Autos = make([]modelOutput, 0, len(c.Models))
			for _, m := range c.Models {
				entry.Autos = append(entry.Autos, describeModel(m))
			}
		}
		out = append(out, entry)
	}
	return jsonResult(out)
}

func describeModel(m rently.Model) modelOutput {
	return modelOutput{
		Name:           strings.TrimSpace(m.Description),
		ID:             m.ID,
		Brand:          orDefault(m.Brand.Name, "-"),
		Doors:          m.Doors,
		Passengers:     m.Passengers,
		Steering:       orDefault(m.Steering, "–"),
		Gearbox:        orDefault(m.Gearbox, "–"),
		Multimedia:     orDefault(m.Multimedia, "–"),
		AirConditioner: orDefault(m.AirConditioner, "–"),
		ImagePath:      m.ImagePath,
		Franchise:      m.Franchise,
	}
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
