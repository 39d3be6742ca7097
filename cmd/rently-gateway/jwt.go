// ABOUTME: jwt subcommand issuing HS256 bearer tokens for the gateway's own endpoints
// ABOUTME: Requires auth.jwt_secret in the config file

package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/2389/rently-gateway/internal/auth"
)

const defaultJWTTTL = 30 * 24 * time.Hour

// parseJWTArgs reads "<subject> [ttl]".
func parseJWTArgs(args []string) (string, time.Duration, error) {
	if len(args) < 1 || len(args) > 2 {
		return "", 0, errors.New("usage: rently-gateway jwt <subject> [ttl]")
	}

	subject := strings.TrimSpace(args[0])
	if subject == "" {
		return "", 0, errors.New("subject cannot be empty")
	}

	ttl := defaultJWTTTL
	if len(args) == 2 {
		d, err := time.ParseDuration(args[1])
		if err != nil {
			return "", 0, fmt.Errorf("parsing ttl: %w", err)
		}
		if d <= 0 {
			return "", 0, errors.New("ttl must be positive")
		}
		ttl = d
	}
	return subject, ttl, nil
}

func runJWT(args []string) error {
	subject, ttl, err := parseJWTArgs(args)
	if err != nil {
		return err
	}

	cfg, configPath, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Auth.JWTSecret == "" {
		return fmt.Errorf("jwt_secret not configured in %s", configPath)
	}

	verifier, err := auth.NewJWTVerifier([]byte(cfg.Auth.JWTSecret))
	if err != nil {
		return fmt.Errorf("creating JWT verifier: %w", err)
	}

	token, err := verifier.Generate(subject, ttl)
	if err != nil {
		return fmt.Errorf("generating token: %w", err)
	}

	fmt.Println(token)
	return nil
}
