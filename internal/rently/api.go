// ABOUTME: Typed helpers for the Rently endpoints used by the gateway tools
// ABOUTME: Places, categories, availability search, customers, booking and a connectivity probe

package rently

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// ProbeTimeout bounds a connectivity check.
const ProbeTimeout = 5 * time.Second

// Places lists pickup and return locations.
func (c *Client) Places(ctx context.Context) ([]Place, error) {
	var places []Place
	if err := c.Get(ctx, "/api/places", nil, &places); err != nil {
		return nil, fmt.Errorf("listing places: %w", err)
	}
	return places, nil
}

// Categories lists vehicle categories with their models.
func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	var categories []Category
	if err := c.Get(ctx, "/api/categories", nil, &categories); err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	return categories, nil
}

// Search queries availability and returns the raw upstream payload. Empty
// dates and place are left out of the query.
func (c *Client) Search(ctx context.Context, p SearchParams) (json.RawMessage, error) {
	q := url.Values{}
	if p.From != "" {
		q.Set("searchModel.from", p.From)
	}
	if p.To != "" {
		q.Set("searchModel.to", p.To)
	}
	if p.FromPlace != "" {
		q.Set("searchModel.fromPlace", p.FromPlace)
	}
	q.Set("searchModel.onlyFullAvailability", strconv.FormatBool(p.OnlyFullAvailability))
	if p.ReturnAdditionalsPrice {
		q.Set("searchModel.returnAdditionalsPrice", "true")
	}

	var raw json.RawMessage
	if err := c.Get(ctx, "/api/search", q, &raw); err != nil {
		return nil, fmt.Errorf("searching availability: %w", err)
	}
	return raw, nil
}

// FindCustomers searches customers by free-text filter, typically a document id.
func (c *Client) FindCustomers(ctx context.Context, filter string) (*CustomerSearchResult, error) {
	var result CustomerSearchResult
	if err := c.Get(ctx, "/api/customers", url.Values{"filter": {filter}}, &result); err != nil {
		return nil, fmt.Errorf("searching customers: %w", err)
	}
	return &result, nil
}

// Book submits a booking or quotation and returns the raw upstream response.
func (c *Client) Book(ctx context.Context, payload any) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.Post(ctx, "/api/booking/book", payload, &raw); err != nil {
		return nil, fmt.Errorf("creating booking: %w", err)
	}
	return raw, nil
}

// Probe checks that a token can be obtained and /api/places answers,
// within ProbeTimeout and without retries.
func (c *Client) Probe(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, ProbeTimeout)
	defer cancel()

	if _, err := c.bearer(ctx); err != nil {
		c.logger.Warn("connection test failed", "stage", "auth", "error", err)
		return fmt.Errorf("obtaining token: %w", err)
	}
	if err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/api/places"}, nil); err != nil {
		c.logger.Warn("connection test failed", "stage", "places", "error", err)
		return fmt.Errorf("reaching /api/places: %w", err)
	}

	c.logger.Info("connection test successful", "base_url", c.runtime.BaseURL)
	return nil
}
