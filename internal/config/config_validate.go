// Leadbridge - B2B Questionnaire Lead Intake Bridge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leadbridge

package config

import (
	"fmt"
	"strings"
	"time"
)

// Validate checks that configuration values are within their allowed ranges.
// Missing Shopify or Resend credentials are not an error here.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateShopify(); err != nil {
		return err
	}

	if err := c.validateMail(); err != nil {
		return err
	}

	if err := c.validateIdempotency(); err != nil {
		return err
	}

	if err := c.validateRateLimits(); err != nil {
		return err
	}

	if err := c.validateTimeouts(); err != nil {
		return err
	}

	return c.validateLogging()
}

// ResponseMargin is reserved at the end of the server timeout for
// composing and writing the response.
const ResponseMargin = 2 * time.Second

// ReconcileBudget is the time left for the CRM step once the mail sends and
// ResponseMargin are taken out of the server timeout. It is zero when the
// timeouts leave nothing, in which case no extra bound applies.
func (c *Config) ReconcileBudget() time.Duration {
	budget := c.Server.Timeout - c.Mail.Timeout - ResponseMargin
	if budget <= 0 {
		return 0
	}
	return budget
}

// validateTimeouts checks that one CRM call and the mail sends fit inside
// the server write deadline.
func (c *Config) validateTimeouts() error {
	if c.ReconcileBudget() < c.Shopify.Timeout {
		return fmt.Errorf("HTTP_TIMEOUT (%s) must be at least SHOPIFY_TIMEOUT (%s) + MAIL_TIMEOUT (%s) + %s",
			c.Server.Timeout, c.Shopify.Timeout, c.Mail.Timeout, ResponseMargin)
	}
	return nil
}

// validateServer validates server configuration
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	if c.Server.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	return nil
}

// validateShopify validates the shape of Shopify settings that are present.
func (c *Config) validateShopify() error {
	if c.Shopify.StoreDomain != "" {
		if err := validateStoreDomain(c.Shopify.StoreDomain); err != nil {
			return err
		}
	}
	if c.Shopify.BaseURL != "" {
		if err := validateEndpointURL(c.Shopify.BaseURL, "SHOPIFY_BASE_URL"); err != nil {
			return err
		}
	}
	if c.Shopify.APIVersion == "" {
		return fmt.Errorf("SHOPIFY_API_VERSION must not be empty")
	}
	if c.Shopify.Timeout <= 0 {
		return fmt.Errorf("SHOPIFY_TIMEOUT must be positive")
	}
	if c.Shopify.RequestsPerSecond <= 0 {
		return fmt.Errorf("SHOPIFY_RPS must be positive")
	}
	if c.Shopify.Burst < 1 {
		return fmt.Errorf("SHOPIFY_BURST must be at least 1")
	}
	if c.Shopify.MetafieldNamespace == "" || c.Shopify.MetafieldKey == "" {
		return fmt.Errorf("SHOPIFY_METAFIELD_NAMESPACE and SHOPIFY_METAFIELD_KEY must not be empty")
	}
	return nil
}

// validateMail validates transactional email settings.
func (c *Config) validateMail() error {
	if err := validateEndpointURL(c.Mail.Endpoint, "RESEND_ENDPOINT"); err != nil {
		return err
	}
	if !looksLikeAddress(c.Mail.From) {
		return fmt.Errorf("MAIL_FROM must be an email address, got: %q", c.Mail.From)
	}
	for _, rcpt := range c.Mail.AdminRecipients {
		if !looksLikeAddress(rcpt) {
			return fmt.Errorf("MAIL_TO_ADMIN contains an invalid address: %q", rcpt)
		}
	}
	if c.Mail.Timeout <= 0 {
		return fmt.Errorf("MAIL_TIMEOUT must be positive")
	}
	return nil
}

// looksLikeAddress accepts "user@host" and "Name <user@host>".
func looksLikeAddress(s string) bool {
	s = strings.TrimSpace(s)
	if open := strings.LastIndex(s, "<"); open >= 0 && strings.HasSuffix(s, ">") {
		s = s[open+1 : len(s)-1]
	}
	at := strings.LastIndex(s, "@")
	return at > 0 && at < len(s)-1 && !strings.ContainsAny(s, " \t\r\n")
}

// validIdempotencyBackends defines the allowed idempotency store backends
var validIdempotencyBackends = map[string]bool{
	"memory": true,
	"badger": true,
}

// validateIdempotency validates replay store settings (only if enabled)
func (c *Config) validateIdempotency() error {
	if !c.Idempotency.Enabled {
		return nil
	}
	if !validIdempotencyBackends[c.Idempotency.Backend] {
		return fmt.Errorf("IDEMPOTENCY_BACKEND must be one of: memory, badger")
	}
	if c.Idempotency.Backend == "badger" && c.Idempotency.Path == "" {
		return fmt.Errorf("IDEMPOTENCY_PATH is required when IDEMPOTENCY_BACKEND=badger")
	}
	if c.Idempotency.TTL <= 0 {
		return fmt.Errorf("IDEMPOTENCY_TTL must be positive")
	}
	if c.Idempotency.CleanupInterval <= 0 {
		return fmt.Errorf("IDEMPOTENCY_CLEANUP_INTERVAL must be positive")
	}
	return nil
}

// Rate limit constants
const (
	minRateLimitRequests = 1           // Minimum 1 request allowed
	maxRateLimitRequests = 100000      // Maximum 100K requests per window
	minRateLimitWindow   = time.Second // Minimum 1 second window
	maxRateLimitWindow   = time.Hour   // Maximum 1 hour window
)

// validateRateLimits validates rate limiting configuration bounds.
func (c *Config) validateRateLimits() error {
	if c.Security.RateLimitDisabled {
		return nil
	}

	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

// IsProduction returns true if the application is running in production mode.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Server.Environment)
	return env == "production" || env == "prod"
}

// validLogLevels defines the allowed log levels
var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validLogFormats defines the allowed log formats
var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}
