// Leadbridge - B2B Questionnaire Lead Intake Bridge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leadbridge

package config

import (
	"fmt"
	"net/url"
	"strings"
)

// validateEndpointURL validates an absolute HTTP/HTTPS endpoint.
// Paths are allowed (Resend and the Shopify Admin API both use them);
// query strings and fragments are not.
func validateEndpointURL(rawURL, fieldName string) error {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%s failed to parse URL: %w", fieldName, err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("%s scheme must be http or https, got: %s", fieldName, parsedURL.Scheme)
	}

	if parsedURL.Host == "" {
		return fmt.Errorf("%s host is required", fieldName)
	}

	if parsedURL.RawQuery != "" {
		return fmt.Errorf("%s should not contain query parameters, remove: ?%s", fieldName, parsedURL.RawQuery)
	}

	if parsedURL.Fragment != "" {
		return fmt.Errorf("%s should not contain a fragment, remove: #%s", fieldName, parsedURL.Fragment)
	}

	return nil
}

// validateStoreDomain validates a bare Shopify store hostname.
// Accepts my-store.myshopify.com, rejects https://my-store.myshopify.com/.
func validateStoreDomain(domain string) error {
	if strings.Contains(domain, "://") {
		return fmt.Errorf("SHOPIFY_STORE_DOMAIN must be a hostname without scheme, got: %s", domain)
	}
	if strings.ContainsAny(domain, "/?# ") {
		return fmt.Errorf("SHOPIFY_STORE_DOMAIN must be a bare hostname, got: %s", domain)
	}
	return nil
}
