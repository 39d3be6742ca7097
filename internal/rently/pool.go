// ABOUTME: Pool of token managers keyed by credential set
// ABOUTME: Lets cached tokens outlive the request that first fetched them

package rently

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/2389/rently-gateway/internal/config"
)

// TokenPool hands out one TokenManager per distinct AuthConfig.
type TokenPool struct {
	http   *http.Client
	logger *slog.Logger

	mu       sync.Mutex
	managers map[config.AuthConfig]*TokenManager
}

// NewTokenPool creates an empty pool whose managers share httpClient.
func NewTokenPool(httpClient *http.Client, logger *slog.Logger) *TokenPool {
	if logger == nil {
		logger = slog.Default()
	}
	return &TokenPool{
		http:     httpClient,
		logger:   logger,
		managers: make(map[config.AuthConfig]*TokenManager),
	}
}

// Get returns the manager for cfg, creating it on first use.
func (p *TokenPool) Get(cfg config.AuthConfig) *TokenManager {
	p.mu.Lock()
	defer p.mu.Unlock()

	if m, ok := p.managers[cfg]; ok {
		return m
	}
	m := NewTokenManager(cfg, p.http, p.logger)
	p.managers[cfg] = m
	p.logger.Debug("token manager created", "base_url", cfg.BaseURL, "client_id", cfg.ClientID)
	return m
}

// Len returns the number of managers in the pool.
func (p *TokenPool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.managers)
}
