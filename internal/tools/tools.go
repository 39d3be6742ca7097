// ABOUTME: Dependencies shared by the Rently tools and construction of the full tool set
// ABOUTME: Resolves the per-request upstream client from the context

package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/2389/rently-gateway/internal/booking"
	"github.com/2389/rently-gateway/internal/config"
	"github.com/2389/rently-gateway/internal/rently"
	"github.com/2389/rently-gateway/internal/store"
)

// Upstream is the Rently API surface the tools use.
type Upstream interface {
	Places(ctx context.Context) ([]rently.Place, error)
	Categories(ctx context.Context) ([]rently.Category, error)
	Search(ctx context.Context, p rently.SearchParams) (json.RawMessage, error)
	FindCustomers(ctx context.Context, filter string) (*rently.CustomerSearchResult, error)
	Book(ctx context.Context, payload any) (json.RawMessage, error)
	RefreshToken(ctx context.Context) (string, error)
}

var _ Upstream = (*rently.Client)(nil)

// errNoConfig means the transport did not attach a resolution.
var errNoConfig = errors.New("no upstream configuration on request")

// Deps wires the tools to the outside world.
type Deps struct {
	// Clients returns an upstream client for a resolved configuration.
	Clients  func(res config.Resolved) Upstream
	Composer *booking.Composer
	Ledger   store.Ledger
	Logger   *slog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
	// RejectPastDates makes validate_search_dates refuse pickups before now.
	RejectPastDates bool
}

type handlers struct {
	deps   Deps
	logger *slog.Logger
	now    func() time.Time
}

// upstream returns a client for the request, honouring a caller-supplied token.
func (h *handlers) upstream(ctx context.Context, token string) (Upstream, error) {
	res, ok := config.FromContext(ctx)
	if !ok {
		return nil, errNoConfig
	}
	return h.deps.Clients(res.WithToken(token)), nil
}

// New builds a registry with every Rently tool registered.
func New(deps Deps) (*Registry, error) {
	if deps.Clients == nil {
		return nil, errors.New("client factory is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if deps.Composer == nil {
		deps.Composer = booking.NewComposer(logger)
	}
	if deps.Ledger == nil {
		deps.Ledger = store.Discard
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	h := &handlers{deps: deps, logger: logger.With("component", "tools"), now: now}
	reg := NewRegistry(deps.Ledger, logger)

	builders := []func() (*Tool, error){
		h.getAuthTokenTool,
		h.getPlacesTool,
		h.rentlyGetPlacesTool,
		h.getCategoriesTool,
		h.getAvailabilityTool,
		h.rentlyGetAvailabilityTool,
		h.validateSearchDatesTool,
		h.createBookingTool,
	}
	for _, build := range builders {
		t, err := build()
		if err != nil {
			return nil, err
		}
		if err := reg.Register(t); err != nil {
			return nil, fmt.Errorf("registering tools: %w", err)
		}
	}
	return reg, nil
}

// errorText renders err the way the text-format tools report failures.
func errorText(err error) *Result {
	return errorResult(fmt.Sprintf("Error: %v", err))
}
