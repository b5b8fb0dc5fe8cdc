// ABOUTME: Configuration loading and parsing for voicegate
// ABOUTME: Supports YAML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete voicegate configuration
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Auth       AuthConfig       `yaml:"auth"`
	Challenge  ChallengeConfig  `yaml:"challenge"`
	Tenancy    TenancyConfig    `yaml:"tenancy"`
	Controller ControllerConfig `yaml:"controller"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ServerConfig holds server address configuration
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// AuthConfig holds admin API authentication configuration
type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"-"`

	// Raw string value for YAML unmarshaling
	TokenTTLRaw string `yaml:"token_ttl"`
}

// ChallengeConfig holds challenge issuance and verification settings
type ChallengeConfig struct {
	Expiry      time.Duration `yaml:"-"`
	MaxAttempts int           `yaml:"max_attempts"`
	Words       []string      `yaml:"words"`
	Numbers     []string      `yaml:"numbers"`

	// Raw string value for YAML unmarshaling
	ExpiryRaw string `yaml:"expiry"`
}

// TenancyConfig holds tenant resolution settings
type TenancyConfig struct {
	// DefaultHomeID is the home unmapped callers fall back to. Empty
	// disables the fallback, which rejects unknown callers outright.
	DefaultHomeID string `yaml:"default_home_id"`
}

// ControllerConfig holds the default home controller connection settings.
// These seed the default home's registry entry on startup.
type ControllerConfig struct {
	URL       string        `yaml:"url"`
	WebhookID string        `yaml:"webhook_id"`
	TestMode  bool          `yaml:"test_mode"`
	Timeout   time.Duration `yaml:"-"`

	// Raw string value for YAML unmarshaling
	TimeoutRaw string `yaml:"timeout"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw YAML content
	expandedData := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Parse duration fields
	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	// Match ${VAR_NAME} pattern
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		// Extract variable name from ${VAR_NAME}
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required")
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}

	if c.Challenge.MaxAttempts < 0 {
		return fmt.Errorf("challenge.max_attempts must not be negative")
	}

	if c.Challenge.Expiry < 0 {
		return fmt.Errorf("challenge.expiry must not be negative")
	}

	// A default home only works if the controller it points at is known.
	if c.Tenancy.DefaultHomeID != "" && !c.Controller.TestMode && c.Controller.URL == "" {
		return fmt.Errorf("controller.url is required when tenancy.default_home_id is set")
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	var err error

	if cfg.Auth.TokenTTLRaw != "" {
		cfg.Auth.TokenTTL, err = time.ParseDuration(cfg.Auth.TokenTTLRaw)
		if err != nil {
			return fmt.Errorf("parsing token_ttl %q: %w", cfg.Auth.TokenTTLRaw, err)
		}
	}

	if cfg.Challenge.ExpiryRaw != "" {
		cfg.Challenge.Expiry, err = time.ParseDuration(cfg.Challenge.ExpiryRaw)
		if err != nil {
			return fmt.Errorf("parsing expiry %q: %w", cfg.Challenge.ExpiryRaw, err)
		}
	}

	if cfg.Controller.TimeoutRaw != "" {
		cfg.Controller.Timeout, err = time.ParseDuration(cfg.Controller.TimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing timeout %q: %w", cfg.Controller.TimeoutRaw, err)
		}
	}

	return nil
}
