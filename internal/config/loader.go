package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// newConfig returns the zero config with the fields whose zero value is
// meaningful pre-seeded, so an absent key and an explicit zero can be told apart.
func newConfig() *TraderConfig {
	return &TraderConfig{
		Session: SessionConfig{
			ReconnectBaseDelay: DefaultReconnectBaseDelay,
		},
	}
}

// Load reads a YAML config file and expands environment variables.
// An empty path yields an empty config.
func Load(path string) (*TraderConfig, error) {
	cfg := newConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// Expand ${VAR} environment variables
	expanded := os.ExpandEnv(string(data))

	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config yaml: %w", err)
	}

	return cfg, nil
}

// LoadWithDefaults loads config, applies environment overrides, then default values.
func LoadWithDefaults(path string) (*TraderConfig, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// LoadAndValidate loads config, applies overrides and defaults, and validates.
func LoadAndValidate(path string) (*TraderConfig, error) {
	cfg, err := LoadWithDefaults(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}
