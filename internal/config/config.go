// Package config loads client configuration from an optional YAML file under
// ~/.config/maintdesk, with environment variables taking precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment overrides. Each one beats the corresponding file value.
const (
	EnvAPIURL         = "MAINTDESK_API_URL"
	EnvTimeoutSeconds = "MAINTDESK_TIMEOUT_SECONDS"
	EnvOTLPEndpoint   = "MAINTDESK_OTLP_ENDPOINT"
)

const (
	defaultBaseURL        = "http://127.0.0.1:8000"
	defaultTimeoutSeconds = 20
)

// Config is the client configuration.
type Config struct {
	// BaseURL is the backend root; paths are concatenated onto it.
	BaseURL string `yaml:"base_url"`

	// TimeoutSeconds bounds each HTTP request. Zero means the default.
	TimeoutSeconds int `yaml:"timeout_seconds"`

	// OTLPEndpoint enables trace export when set.
	OTLPEndpoint string `yaml:"otlp_endpoint"`
}

// Timeout returns the request timeout as a duration.
func (c Config) Timeout() time.Duration {
	secs := c.TimeoutSeconds
	if secs <= 0 {
		secs = defaultTimeoutSeconds
	}
	return time.Duration(secs) * time.Second
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		BaseURL:        defaultBaseURL,
		TimeoutSeconds: defaultTimeoutSeconds,
	}
}

// DefaultPath returns the CLI's config file location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "maintdesk", "config.yaml"), nil
}

// Load reads the YAML file at path (a missing file is fine), then applies
// environment overrides on top of the result.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// defaults + env only
		case err != nil:
			return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	applyEnv(&cfg)

	cfg.BaseURL = strings.TrimSuffix(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := envOr(EnvAPIURL, ""); v != "" {
		cfg.BaseURL = v
	}
	if v := envOr(EnvTimeoutSeconds, ""); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			cfg.TimeoutSeconds = secs
		}
	}
	if v := envOr(EnvOTLPEndpoint, ""); v != "" {
		cfg.OTLPEndpoint = v
	}
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
