// ABOUTME: probe and token subcommands, which talk to the Rently API directly
// ABOUTME: Upstream configuration comes from the environment, then the config file defaults

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/fatih/color"

	"github.com/2389/rently-gateway/internal/config"
	"github.com/2389/rently-gateway/internal/rently"
)

// defaultClient builds a client for the configuration a header-less request
// would resolve to.
func defaultClient(cfg *config.Config) (*rently.Client, config.Resolved) {
	logger := setupLogger(cfg.Logging, os.Stderr)
	resolver := config.NewResolver(config.EnvFromOS(), cfg.Upstream.Defaults, logger)
	res := resolver.Resolve(nil, config.Fallback{})

	httpClient := &http.Client{Timeout: cfg.Upstream.Timeout}
	factory := rently.NewFactory(rently.NewTokenPool(httpClient, logger), rently.Options{
		HTTPClient: httpClient,
		Logger:     logger,
	})
	return factory.Client(res), res
}

func runProbe(ctx context.Context) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	client, res := defaultClient(cfg)
	fmt.Printf("Probing %s (credentials from %s)\n", res.Runtime.BaseURL, res.AuthSource)

	if err := client.Probe(ctx); err != nil {
		color.Red("  ✗ unreachable")
		return err
	}
	color.Green("  ✓ reachable")
	return nil
}

func runToken(ctx context.Context) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	client, _ := defaultClient(cfg)
	token, err := client.RefreshToken(ctx)
	if err != nil {
		return fmt.Errorf("fetching token: %w", err)
	}

	fmt.Println(token)
	return nil
}
