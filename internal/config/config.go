// ABOUTME: Configuration loading and parsing for rently-gateway
// ABOUTME: Supports YAML or TOML files with environment variable expansion and duration parsing

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Built-in upstream defaults, the lowest resolution tier.
const (
	DefaultBaseURL      = "https://demo.rently.com"
	DefaultClientID     = "demo_client"
	DefaultClientSecret = "demo_secret"
)

const (
	defaultHTTPAddr        = "0.0.0.0:8080"
	defaultShutdownTimeout = 10 * time.Second
	defaultUpstreamTimeout = 30 * time.Second
	defaultSessionTTL      = 30 * time.Minute
	defaultMaxSessions     = 10_000
	minJWTSecretLength     = 32
)

// Config represents the complete rently-gateway configuration
type Config struct {
	Server   ServerConfig      `yaml:"server" toml:"server"`
	Upstream UpstreamConfig    `yaml:"upstream" toml:"upstream"`
	Sessions SessionsConfig    `yaml:"sessions" toml:"sessions"`
	Store    StoreConfig       `yaml:"store" toml:"store"`
	Auth     GatewayAuthConfig `yaml:"auth" toml:"auth"`
	Tools    ToolsConfig       `yaml:"tools" toml:"tools"`
	Logging  LoggingConfig     `yaml:"logging" toml:"logging"`
}

// ServerConfig holds the listener configuration
type ServerConfig struct {
	HTTPAddr        string        `yaml:"http_addr" toml:"http_addr"`
	ShutdownTimeout time.Duration `yaml:"-" toml:"-"`

	ShutdownTimeoutRaw string `yaml:"shutdown_timeout" toml:"shutdown_timeout"`
}

// UpstreamConfig controls how the Rently API is reached
type UpstreamConfig struct {
	Defaults DefaultsConfig `yaml:"defaults" toml:"defaults"`
	Timeout  time.Duration  `yaml:"-" toml:"-"`

	// RequestsPerSecond caps outbound calls per client; zero disables the limit.
	RequestsPerSecond float64 `yaml:"requests_per_second" toml:"requests_per_second"`
	Burst             int     `yaml:"burst" toml:"burst"`

	TimeoutRaw string `yaml:"timeout" toml:"timeout"`
}

// DefaultsConfig overrides the built-in demo credentials.
type DefaultsConfig struct {
	BaseURL      string `yaml:"base_url" toml:"base_url"`
	ClientID     string `yaml:"client_id" toml:"client_id"`
	ClientSecret string `yaml:"client_secret" toml:"client_secret"`
}

// SessionsConfig bounds the MCP session cache
type SessionsConfig struct {
	TTL         time.Duration `yaml:"-" toml:"-"`
	MaxSessions int           `yaml:"max_sessions" toml:"max_sessions"`

	TTLRaw string `yaml:"ttl" toml:"ttl"`
}

// StoreConfig holds the ledger database location. An empty path disables the ledger.
type StoreConfig struct {
	Path string `yaml:"path" toml:"path"`
}

// GatewayAuthConfig holds inbound authentication configuration
type GatewayAuthConfig struct {
	JWTSecret string `yaml:"jwt_secret" toml:"jwt_secret"`
}

// ToolsConfig tunes tool behaviour
type ToolsConfig struct {
	RejectPastDates bool `yaml:"reject_past_dates" toml:"reject_past_dates"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// Default returns a configuration populated with built-in defaults.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Files ending in .toml are decoded as TOML, everything else as YAML.
// Environment variables in the format ${VAR_NAME} are expanded.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := expandEnvVars(string(data))

	var cfg Config
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(expanded, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	} else {
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// LoadOrDefault behaves like Load but returns the built-in defaults when the
// file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Path returns the configuration file location.
// Priority: RENTLY_GATEWAY_CONFIG env var > XDG_CONFIG_HOME/rently/gateway.yaml > ~/.config/rently/gateway.yaml
func Path() string {
	if envPath := os.Getenv("RENTLY_GATEWAY_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "gateway.yaml"
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "rently", "gateway.yaml")
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// Unset variables expand to an empty string.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(envVarPattern.FindStringSubmatch(match)[1])
	})
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required")
	}

	u, err := url.Parse(c.Upstream.Defaults.BaseURL)
	if err != nil {
		return fmt.Errorf("upstream.defaults.base_url is not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("upstream.defaults.base_url must use http or https scheme")
	}

	if c.Upstream.RequestsPerSecond < 0 {
		return fmt.Errorf("upstream.requests_per_second must not be negative")
	}

	if c.Sessions.MaxSessions < 1 {
		return fmt.Errorf("sessions.max_sessions must be at least 1")
	}

	if c.Auth.JWTSecret != "" && len(c.Auth.JWTSecret) < minJWTSecretLength {
		return fmt.Errorf("auth.jwt_secret must be at least %d bytes", minJWTSecretLength)
	}

	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}

	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.HTTPAddr == "" {
		cfg.Server.HTTPAddr = defaultHTTPAddr
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = defaultShutdownTimeout
	}
	if cfg.Upstream.Defaults.BaseURL == "" {
		cfg.Upstream.Defaults.BaseURL = DefaultBaseURL
	}
	if cfg.Upstream.Defaults.ClientID == "" {
		cfg.Upstream.Defaults.ClientID = DefaultClientID
	}
	if cfg.Upstream.Defaults.ClientSecret == "" {
		cfg.Upstream.Defaults.ClientSecret = DefaultClientSecret
	}
	if cfg.Upstream.Timeout == 0 {
		cfg.Upstream.Timeout = defaultUpstreamTimeout
	}
	if cfg.Upstream.RequestsPerSecond > 0 && cfg.Upstream.Burst < 1 {
		cfg.Upstream.Burst = 1
	}
	if cfg.Sessions.TTL == 0 {
		cfg.Sessions.TTL = defaultSessionTTL
	}
	if cfg.Sessions.MaxSessions == 0 {
		cfg.Sessions.MaxSessions = defaultMaxSessions
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	fields := []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"server.shutdown_timeout", cfg.Server.ShutdownTimeoutRaw, &cfg.Server.ShutdownTimeout},
		{"upstream.timeout", cfg.Upstream.TimeoutRaw, &cfg.Upstream.Timeout},
		{"sessions.ttl", cfg.Sessions.TTLRaw, &cfg.Sessions.TTL},
	}

	for _, f := range fields {
		if f.raw == "" {
			continue
		}
		d, err := time.ParseDuration(f.raw)
		if err != nil {
			return fmt.Errorf("parsing %s %q: %w", f.name, f.raw, err)
		}
		*f.dst = d
	}

	return nil
}
