// Package config loads server settings from an optional YAML file with
// environment overrides. Storage and blob drivers read their own
// AUDITCORE_* variables directly, in the same style.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the server-level settings.
type Config struct {
	// Listen is the HTTP bind address.
	Listen string `yaml:"listen"`
	// Users maps username to bcrypt password hash (or plaintext password
	// when PlaintextSecrets is set).
	Users map[string]string `yaml:"users"`
	// PlaintextSecrets opts into plaintext password comparison. Dev only.
	PlaintextSecrets bool `yaml:"plaintext_secrets"`
	// SessionTTL bounds operator session lifetime.
	SessionTTL time.Duration `yaml:"session_ttl"`
	// PollInterval is advertised to clients as the table refresh cadence.
	PollInterval time.Duration `yaml:"poll_interval"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Listen:       ":8080",
		SessionTTL:   8 * time.Hour,
		PollInterval: 5 * time.Second,
	}
}

// Load reads the YAML file at path (skipped when empty) and applies
// environment overrides.
//
//	AUDITCORE_LISTEN: bind address
//	AUDITCORE_SESSION_TTL: session lifetime (Go duration)
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}
	if v := os.Getenv("AUDITCORE_LISTEN"); v != "" {
		cfg.Listen = v
	}
	if v := os.Getenv("AUDITCORE_SESSION_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse AUDITCORE_SESSION_TTL: %w", err)
		}
		cfg.SessionTTL = ttl
	}
	if cfg.Listen == "" {
		cfg.Listen = ":8080"
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 8 * time.Hour
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}
	return cfg, nil
}
