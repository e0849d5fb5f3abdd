/*
Copyright 2025 Trident Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package config provides configuration loading and management for irikit.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jplu/irikit/iri"
)

// Config represents the complete irikit configuration
type Config struct {
	Validation ValidationConfig `yaml:"validation"`
	Coercion   CoercionConfig   `yaml:"coercion"`
	Remote     RemoteConfig     `yaml:"remote"`
	Log        LogConfig        `yaml:"log"`
}

// ValidationConfig configures the local grammar check
type ValidationConfig struct {
	// Mode is "reference" (scheme optional, default) or "absolute"
	Mode string `yaml:"mode"`
	// Strict enables the RFC 3987 bidi checks
	Strict bool `yaml:"strict"`
}

// CoercionConfig configures the rewrite ladder
type CoercionConfig struct {
	// NFC normalizes inputs to Unicode NFC before the first attempt
	NFC bool `yaml:"nfc"`
}

// RemoteConfig configures the optional remote validator
type RemoteConfig struct {
	// Endpoint is the host's validate-iri command URL (empty = local grammar only)
	Endpoint string `yaml:"endpoint"`
	// Timeout bounds a single validation round trip
	Timeout time.Duration `yaml:"timeout"`
	// RetryMax is the number of retries after a failed request (default: 0)
	RetryMax int `yaml:"retry_max"`
	// RateLimit caps requests per second (0 = unlimited)
	RateLimit float64 `yaml:"rate_limit"`
}

// LogConfig configures logging
type LogConfig struct {
	// Level is one of debug, info, warn, error
	Level string `yaml:"level"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Validation: ValidationConfig{
			Mode: iri.ModeReference.String(),
		},
		Remote: RemoteConfig{
			Timeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if _, err := iri.ParseMode(c.Validation.Mode); err != nil {
		return fmt.Errorf("validation.mode: %w", err)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if c.Remote.Endpoint != "" {
		u, err := url.Parse(c.Remote.Endpoint)
		if err != nil {
			return fmt.Errorf("remote.endpoint: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("remote.endpoint must be an http or https URL")
		}
	}
	if c.Remote.Timeout < 0 {
		return fmt.Errorf("remote.timeout must not be negative")
	}
	if c.Remote.RetryMax < 0 {
		return fmt.Errorf("remote.retry_max must not be negative")
	}
	if c.Remote.RateLimit < 0 {
		return fmt.Errorf("remote.rate_limit must not be negative")
	}
	return nil
}

// Mode returns the parsed validation mode. It assumes Validate succeeded.
func (c *Config) Mode() iri.Mode {
	mode, _ := iri.ParseMode(c.Validation.Mode)
	return mode
}

// ParseLevel maps a level name to a slog level
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := &Config{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if other.Validation.Mode != "" {
		c.Validation.Mode = other.Validation.Mode
	}
	if other.Validation.Strict {
		c.Validation.Strict = true
	}

	if other.Coercion.NFC {
		c.Coercion.NFC = true
	}

	if other.Remote.Endpoint != "" {
		c.Remote.Endpoint = other.Remote.Endpoint
	}
	if other.Remote.Timeout != 0 {
		c.Remote.Timeout = other.Remote.Timeout
	}
	if other.Remote.RetryMax != 0 {
		c.Remote.RetryMax = other.Remote.RetryMax
	}
	if other.Remote.RateLimit != 0 {
		c.Remote.RateLimit = other.Remote.RateLimit
	}

	if other.Log.Level != "" {
		c.Log.Level = other.Log.Level
	}
}
