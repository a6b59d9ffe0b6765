// Leadbridge - B2B Questionnaire Lead Intake Bridge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leadbridge

// Package config loads Leadbridge configuration.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: built-in values for every optional setting
//  2. Config File: optional YAML file (config.yaml or CONFIG_PATH)
//  3. Environment Variables: override any setting
//
// Shopify credentials are deliberately not required at load time. A missing
// store domain or access token surfaces as a configuration error on the first
// CRM call, so the intake endpoint keeps accepting leads (and sending mail)
// while the CRM side is being set up.
package config

import (
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig      `koanf:"server"`
	Shopify     ShopifyConfig     `koanf:"shopify"`
	Mail        MailConfig        `koanf:"mail"`
	Idempotency IdempotencyConfig `koanf:"idempotency"`
	Security    SecurityConfig    `koanf:"security"`
	Logging     LoggingConfig     `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         int           `koanf:"port"`
	Host         string        `koanf:"host"`
	Timeout      time.Duration `koanf:"timeout"`
	Environment  string        `koanf:"environment"`    // development, staging, production
	MaxBodyBytes int64         `koanf:"max_body_bytes"` // request body cap for POST routes
}

// ShopifyConfig holds Shopify Admin REST API settings.
type ShopifyConfig struct {
	StoreDomain string `koanf:"store_domain"` // e.g. my-store.myshopify.com
	AccessToken string `koanf:"access_token"`
	APIVersion  string `koanf:"api_version"`

	// BaseURL overrides https://{store_domain}/admin/api/{api_version}.
	BaseURL string `koanf:"base_url"`

	Timeout           time.Duration `koanf:"timeout"`
	RequestsPerSecond float64       `koanf:"requests_per_second"`
	Burst             int           `koanf:"burst"`

	MetafieldNamespace string `koanf:"metafield_namespace"`
	MetafieldKey       string `koanf:"metafield_key"`
}

// Configured reports whether credentials for the CRM are present.
func (s ShopifyConfig) Configured() bool {
	return (s.StoreDomain != "" || s.BaseURL != "") && s.AccessToken != ""
}

// MailConfig holds transactional email (Resend) settings.
type MailConfig struct {
	APIKey          string        `koanf:"api_key"`
	Endpoint        string        `koanf:"endpoint"`
	From            string        `koanf:"from"`
	AdminRecipients []string      `koanf:"admin_recipients"`
	Timeout         time.Duration `koanf:"timeout"`
}

// IdempotencyConfig controls X-Idempotency-Key replay.
type IdempotencyConfig struct {
	Enabled         bool          `koanf:"enabled"`
	Backend         string        `koanf:"backend"` // memory or badger
	Path            string        `koanf:"path"`    // badger directory
	TTL             time.Duration `koanf:"ttl"`
	CleanupInterval time.Duration `koanf:"cleanup_interval"`
}

// SecurityConfig holds request throttling settings.
type SecurityConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is json (production) or console (development).
	Format string `koanf:"format"`

	// Caller includes file:line in log entries.
	Caller bool `koanf:"caller"`
}

// Load reads configuration from defaults, optional config file and environment.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
