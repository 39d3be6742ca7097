// ABOUTME: init subcommand that writes a starter gateway.yaml interactively
// ABOUTME: Optionally generates a random JWT secret for the inbound auth gate

package main

import (
	"bufio"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/2389/rently-gateway/internal/config"
)

// initAnswers holds what runInit collects.
type initAnswers struct {
	HTTPAddr     string
	BaseURL      string
	ClientID     string
	ClientSecret string
	StorePath    string
	JWTSecret    string
	LogLevel     string
	LogFormat    string
}

// defaultDataPath returns the ledger location under XDG_DATA_HOME.
func defaultDataPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join("data", "ledger.db")
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}
	return filepath.Join(dataDir, "rently", "ledger.db")
}

func generateSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating JWT secret: %w", err)
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

func runInit() error {
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("rently-gateway configuration setup")
	fmt.Println("==================================")
	fmt.Println()

	outputFile := prompt(reader, "Config file path", config.Path())

	if _, err := os.Stat(outputFile); err == nil {
		overwrite := prompt(reader, "File exists. Overwrite?", "no")
		if !isYes(overwrite) {
			fmt.Println("Aborted.")
			return nil
		}
	}

	var a initAnswers

	fmt.Println("\n--- Server Configuration ---")
	a.HTTPAddr = prompt(reader, "HTTP address", "0.0.0.0:8080")

	fmt.Println("\n--- Rently API ---")
	a.BaseURL = prompt(reader, "Base URL", config.DefaultBaseURL)
	a.ClientID = prompt(reader, "Client ID", "${CLIENT_ID}")
	a.ClientSecret = prompt(reader, "Client secret", "${CLIENT_SECRET}")

	fmt.Println("\n--- Ledger ---")
	a.StorePath = prompt(reader, "SQLite ledger path (\"none\" to disable)", defaultDataPath())
	if strings.EqualFold(a.StorePath, "none") {
		a.StorePath = ""
	}

	fmt.Println("\n--- Authentication ---")
	if isYes(prompt(reader, "Require bearer tokens on /mcp and /sse?", "no")) {
		secret, err := generateSecret()
		if err != nil {
			return err
		}
		a.JWTSecret = secret
	}

	fmt.Println("\n--- Logging Configuration ---")
	a.LogLevel = prompt(reader, "Log level (debug/info/warn/error)", "info")
	a.LogFormat = prompt(reader, "Log format (text/json)", "text")

	if err := os.MkdirAll(filepath.Dir(outputFile), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(outputFile, []byte(renderConfig(a)), 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	fmt.Printf("\nConfig written to %s\n", outputFile)
	if a.JWTSecret != "" {
		fmt.Println("Issue a client token with:")
		fmt.Println("  rently-gateway jwt <name>")
	}
	fmt.Println("\nTo start the server:")
	fmt.Println("  rently-gateway serve")

	return nil
}

// renderConfig produces the YAML written by init.
func renderConfig(a initAnswers) string {
	var cfg strings.Builder
	cfg.WriteString("# rently-gateway configuration\n")
	cfg.WriteString("# Generated by rently-gateway init\n\n")

	cfg.WriteString("server:\n")
	cfg.WriteString(fmt.Sprintf("  http_addr: %q\n", a.HTTPAddr))
	cfg.WriteString("  shutdown_timeout: \"10s\"\n\n")

	cfg.WriteString("upstream:\n")
	cfg.WriteString("  timeout: \"30s\"\n")
	cfg.WriteString("  defaults:\n")
	cfg.WriteString(fmt.Sprintf("    base_url: %q\n", a.BaseURL))
	cfg.WriteString(fmt.Sprintf("    client_id: %q\n", a.ClientID))
	cfg.WriteString(fmt.Sprintf("    client_secret: %q\n\n", a.ClientSecret))

	cfg.WriteString("sessions:\n")
	cfg.WriteString("  ttl: \"30m\"\n")
	cfg.WriteString("  max_sessions: 10000\n\n")

	cfg.WriteString("store:\n")
	cfg.WriteString(fmt.Sprintf("  path: %q\n\n", a.StorePath))

	if a.JWTSecret != "" {
		cfg.WriteString("auth:\n")
		cfg.WriteString(fmt.Sprintf("  jwt_secret: %q\n\n", a.JWTSecret))
	}

	cfg.WriteString("logging:\n")
	cfg.WriteString(fmt.Sprintf("  level: %q\n", a.LogLevel))
	cfg.WriteString(fmt.Sprintf("  format: %q\n", a.LogFormat))

	return cfg.String()
}

func isYes(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "yes" || s == "y"
}

func prompt(reader *bufio.Reader, question, defaultVal string) string {
	if defaultVal != "" {
		fmt.Printf("%s [%s]: ", question, defaultVal)
	} else {
		fmt.Printf("%s: ", question)
	}

	input, err := reader.ReadString('\n')
	if err != nil {
		// On EOF or error, return default
		fmt.Println()
		return defaultVal
	}
	input = strings.TrimSpace(input)

	if input == "" {
		return defaultVal
	}
	return input
}
