// Leadbridge - B2B Questionnaire Lead Intake Bridge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leadbridge

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/leadbridge/config.yaml",
	"/etc/leadbridge/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config with every default applied.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         3000,
			Host:         "0.0.0.0",
			Timeout:      30 * time.Second,
			Environment:  "development",
			MaxBodyBytes: 1 << 20,
		},
		Shopify: ShopifyConfig{
			APIVersion:         "2024-07",
			Timeout:            15 * time.Second,
			RequestsPerSecond:  2,
			Burst:              40,
			MetafieldNamespace: "b2b_wizard",
			MetafieldKey:       "answers",
		},
		Mail: MailConfig{
			Endpoint:        "https://api.resend.com/emails",
			From:            "no-reply@labalancia.com",
			AdminRecipients: []string{"b2b@labalancia.com"},
			Timeout:         10 * time.Second,
		},
		Idempotency: IdempotencyConfig{
			Enabled:         true,
			Backend:         "memory",
			Path:            "/data/idempotency",
			TTL:             24 * time.Hour,
			CleanupInterval: 10 * time.Minute,
		},
		Security: SecurityConfig{
			RateLimitReqs:   30,
			RateLimitWindow: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: optional config file
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment (highest priority)
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns CONFIG_PATH when it exists, otherwise the first
// existing default path, otherwise "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths lists config paths that accept comma-separated env values.
var sliceConfigPaths = []string{
	"mail.admin_recipients",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars arrive as strings while YAML may already provide a list.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		strVal, ok := val.(string)
		if !ok {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lower-cased) to koanf paths.
// The Shopify and mail names match the storefront deployment's existing env.
var envMappings = map[string]string{
	// Server
	"http_port":      "server.port",
	"http_host":      "server.host",
	"http_timeout":   "server.timeout",
	"environment":    "server.environment",
	"max_body_bytes": "server.max_body_bytes",

	// Shopify Admin API
	"shopify_store_domain":        "shopify.store_domain",
	"shopify_access_token":        "shopify.access_token",
	"shopify_api_version":         "shopify.api_version",
	"shopify_base_url":            "shopify.base_url",
	"shopify_timeout":             "shopify.timeout",
	"shopify_rps":                 "shopify.requests_per_second",
	"shopify_burst":               "shopify.burst",
	"shopify_metafield_namespace": "shopify.metafield_namespace",
	"shopify_metafield_key":       "shopify.metafield_key",

	// Mail (Resend)
	"resend_api_key":  "mail.api_key",
	"resend_endpoint": "mail.endpoint",
	"mail_from":       "mail.from",
	"mail_to_admin":   "mail.admin_recipients",
	"mail_timeout":    "mail.timeout",

	// Idempotency
	"idempotency_enabled":          "idempotency.enabled",
	"idempotency_backend":          "idempotency.backend",
	"idempotency_path":             "idempotency.path",
	"idempotency_ttl":              "idempotency.ttl",
	"idempotency_cleanup_interval": "idempotency.cleanup_interval",

	// Security
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
// Unmapped variables return "" and are skipped, so unrelated environment
// variables never leak into the configuration.
//
// Examples:
//   - SHOPIFY_STORE_DOMAIN -> shopify.store_domain
//   - RESEND_API_KEY -> mail.api_key
//   - MAIL_TO_ADMIN -> mail.admin_recipients
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
