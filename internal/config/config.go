package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/edvin/nodepool/internal/core"
)

type Config struct {
	DatabaseURL    string
	HTTPListenAddr string
	LogLevel       string
	ServiceName    string
	// DefaultsFile optionally points at a YAML file with process-wide quota
	// defaults; when unset the built-in defaults apply.
	DefaultsFile string

	Defaults core.QuotaDefaults
}

// Built-in quota fallbacks, used when no defaults file overrides them.
// There is deliberately no default session_lifetime_max: an unset max means
// no cap.
const (
	DefaultNodeQuota       = 10
	DefaultSessionLifetime = 6 * 3600
)

func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		HTTPListenAddr: getEnv("HTTP_LISTEN_ADDR", ":8080"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		ServiceName:    getEnv("SERVICE_NAME", "pool-api"),
		DefaultsFile:   getEnv("DEFAULTS_FILE", ""),
		Defaults: core.QuotaDefaults{
			NodeQuota:       DefaultNodeQuota,
			SessionLifetime: DefaultSessionLifetime,
		},
	}

	if cfg.DefaultsFile != "" {
		if err := cfg.loadDefaults(cfg.DefaultsFile); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// defaultsDoc mirrors the defaults file layout. Lifetimes are duration
// tokens ("6h") or bare second counts, matching the API's lifetime fields.
type defaultsDoc struct {
	Defaults struct {
		NodeQuota       *int64 `yaml:"node_quota"`
		SessionLifetime string `yaml:"session_lifetime"`
	} `yaml:"defaults"`
}

func (c *Config) loadDefaults(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read defaults file: %w", err)
	}

	var doc defaultsDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("parse defaults file %s: %w", path, err)
	}

	if doc.Defaults.NodeQuota != nil {
		if *doc.Defaults.NodeQuota < 0 {
			return fmt.Errorf("defaults file %s: node_quota must not be negative", path)
		}
		c.Defaults.NodeQuota = *doc.Defaults.NodeQuota
	}
	if doc.Defaults.SessionLifetime != "" {
		seconds, err := core.ParseLifetime(doc.Defaults.SessionLifetime)
		if err != nil {
			return fmt.Errorf("defaults file %s: session_lifetime: %w", path, err)
		}
		c.Defaults.SessionLifetime = seconds
	}

	return nil
}

// Validate checks that the fields the given component needs are set.
func (c *Config) Validate(component string) error {
	var missing []string

	switch component {
	case "pool-api":
		if c.DatabaseURL == "" {
			missing = append(missing, "DATABASE_URL")
		}
		if c.HTTPListenAddr == "" {
			missing = append(missing, "HTTP_LISTEN_ADDR")
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
