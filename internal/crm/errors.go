// Leadbridge - B2B Questionnaire Lead Intake Bridge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leadbridge

package crm

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxErrorBodySize limits the amount of response body kept for error reporting
const maxErrorBodySize = 64 * 1024 // 64KB

// readBodyForError reads the response body for error reporting (max 64KB)
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("\n... (truncated)")...)
	}
	return body
}

// UpstreamError reports a failed Shopify Admin API call. Status is the HTTP
// status code, or 0 when no response was received (Err is then set).
type UpstreamError struct {
	Operation string
	Status    int
	Body      string
	Err       error
}

func (e *UpstreamError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("shopify %s: %v", e.Operation, e.Err)
	}
	return fmt.Sprintf("shopify %s: %d %s: %s", e.Operation, e.Status, http.StatusText(e.Status), e.Body)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Temporary reports whether retrying later could succeed.
func (e *UpstreamError) Temporary() bool {
	return e.Status == 0 || e.Status == http.StatusTooManyRequests || e.Status >= 500
}

// ConfigurationError is returned on first use when required Shopify
// settings are missing.
type ConfigurationError struct {
	Missing []string
}

func (e *ConfigurationError) Error() string {
	return "shopify client not configured: missing " + strings.Join(e.Missing, ", ")
}

// IsUpstreamStatus reports whether err is an UpstreamError with the given status.
func IsUpstreamStatus(err error, status int) bool {
	var upErr *UpstreamError
	return errors.As(err, &upErr) && upErr.Status == status
}

// IsConfigurationError reports whether err is a ConfigurationError.
func IsConfigurationError(err error) bool {
	var cfgErr *ConfigurationError
	return errors.As(err, &cfgErr)
}
