// ABOUTME: Tests for CLI helpers: argument parsing, table output, logging and init rendering
// ABOUTME: Commands that need a live server or upstream are not exercised here

package main

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/rently-gateway/internal/auth"
	"github.com/2389/rently-gateway/internal/config"
	"github.com/2389/rently-gateway/internal/store"
)

func TestHealthURL(t *testing.T) {
	tests := []struct {
		addr string
		want string
	}{
		{"0.0.0.0:8080", "http://localhost:8080/health"},
		{":9090", "http://localhost:9090/health"},
		{"127.0.0.1:8080", "http://127.0.0.1:8080/health"},
		{"[::]:8080", "http://localhost:8080/health"},
		{"gateway.internal", "http://gateway.internal/health"},
	}
	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			assert.Equal(t, tt.want, healthURL(tt.addr))
		})
	}
}

func TestParseLimit(t *testing.T) {
	n, err := parseLimit(nil)
	require.NoError(t, err)
	assert.Equal(t, defaultListLimit, n)

	n, err = parseLimit([]string{"5"})
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	for _, bad := range [][]string{{"0"}, {"-1"}, {"abc"}, {"1", "2"}} {
		_, err := parseLimit(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseJWTArgs(t *testing.T) {
	subject, ttl, err := parseJWTArgs([]string{"claude-desktop"})
	require.NoError(t, err)
	assert.Equal(t, "claude-desktop", subject)
	assert.Equal(t, defaultJWTTTL, ttl)

	_, ttl, err = parseJWTArgs([]string{"ci", "2h"})
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, ttl)

	for _, bad := range [][]string{nil, {" "}, {"ci", "soon"}, {"ci", "-1h"}, {"a", "1h", "x"}} {
		_, _, err := parseJWTArgs(bad)
		assert.Error(t, err, bad)
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "ñañ", truncate("ñañaña", 3))
}

func TestPrintBookings(t *testing.T) {
	var buf bytes.Buffer
	printBookings(&buf, nil)
	assert.Contains(t, buf.String(), "No bookings recorded")

	buf.Reset()
	printBookings(&buf, []store.BookingRecord{
		{BookingID: 42, Category: "Economy", FromDate: "2025-07-01", ToDate: "2025-07-05", Total: 1234.5, Email: "ana@example.com", CreatedAt: time.Now()},
		{BookingID: 43, IsQuotation: true, Category: "SUV", Total: 99, CreatedAt: time.Now()},
	})
	out := buf.String()
	assert.Contains(t, out, "BOOKING")
	assert.Contains(t, out, "42")
	assert.Contains(t, out, "1234.50")
	assert.Contains(t, out, "quote")
	assert.Contains(t, out, "ana@example.com")
}

func TestPrintCalls(t *testing.T) {
	var buf bytes.Buffer
	printCalls(&buf, []store.ToolCall{
		{Tool: "get_places", Transport: "http", Subject: "ops-bot", SessionID: "0123456789abcdef", Duration: 1500 * time.Microsecond, CreatedAt: time.Now()},
		{Tool: "create_booking", Transport: "sse", IsError: true, CreatedAt: time.Now()},
	})
	out := buf.String()
	assert.Contains(t, out, "get_places")
	assert.Contains(t, out, "create_booking")
	assert.Contains(t, out, "error")
	assert.Contains(t, out, "012345678...")
	assert.Contains(t, out, "SUBJECT")
	assert.Contains(t, out, "ops-bot")
}

func TestSetupLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := setupLogger(config.LoggingConfig{Level: "warn", Format: "json"}, &buf)

	logger.Info("hidden")
	logger.Warn("shown", "tool", "get_places")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "shown", rec["msg"])
	assert.Equal(t, "get_places", rec["tool"])
}

func TestSetupLoggerText(t *testing.T) {
	var buf bytes.Buffer
	logger := setupLogger(config.LoggingConfig{Level: "debug", Format: "text"}, &buf)

	logger.With("component", "mcp").WithGroup("req").Debug("tools/call", "tool", "get_places")

	out := buf.String()
	assert.Contains(t, out, "DBG ")
	assert.Contains(t, out, "tools/call")
	assert.Contains(t, out, "component=")
	assert.Contains(t, out, "req.tool=")
	assert.Contains(t, out, "get_places")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warn"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("bogus"))
}

func TestRenderConfigLoads(t *testing.T) {
	secret, err := generateSecret()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "gateway.yaml")
	content := renderConfig(initAnswers{
		HTTPAddr:     "127.0.0.1:9000",
		BaseURL:      "https://rently.example.com",
		ClientID:     "client",
		ClientSecret: "secret",
		StorePath:    filepath.Join(t.TempDir(), "ledger.db"),
		JWTSecret:    secret,
		LogLevel:     "debug",
		LogFormat:    "json",
	})
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.HTTPAddr)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "https://rently.example.com", cfg.Upstream.Defaults.BaseURL)
	assert.Equal(t, 30*time.Minute, cfg.Sessions.TTL)
	assert.Equal(t, secret, cfg.Auth.JWTSecret)
	assert.Equal(t, "json", cfg.Logging.Format)

	verifier, err := auth.NewJWTVerifier([]byte(cfg.Auth.JWTSecret))
	require.NoError(t, err)
	token, err := verifier.Generate("tester", time.Minute)
	require.NoError(t, err)
	subject, err := verifier.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "tester", subject)
}

func TestRenderConfigWithoutAuth(t *testing.T) {
	content := renderConfig(initAnswers{HTTPAddr: ":8080", BaseURL: config.DefaultBaseURL, LogLevel: "info", LogFormat: "text"})
	assert.NotContains(t, content, "auth:")
	assert.Contains(t, content, `path: ""`)
}
