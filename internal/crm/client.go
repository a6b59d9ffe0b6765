// Leadbridge - B2B Questionnaire Lead Intake Bridge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leadbridge

// Package crm is a small Shopify Admin REST client for customer records.
//
// Only the calls needed for lead reconciliation are implemented: search by
// email, fetch, create, partial update and metafield creation. Requests are
// paced by a token bucket sized to Shopify's leaky bucket (2 rps, burst 40)
// and guarded by a circuit breaker (see CircuitBreakerClient).
package crm

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/tomtom215/leadbridge/internal/annotation"
	"github.com/tomtom215/leadbridge/internal/config"
	"github.com/tomtom215/leadbridge/internal/logging"
	"github.com/tomtom215/leadbridge/internal/metrics"
	"github.com/tomtom215/leadbridge/internal/models"
)

const (
	accessTokenHeader = "X-Shopify-Access-Token"
	metafieldTypeJSON = "json"
)

// Client talks to one Shopify store.
type Client struct {
	baseURL     string
	accessToken string
	missing     []string
	client      *http.Client
	limiter     *rate.Limiter
}

// NewClient builds a client from configuration. Missing credentials are not
// an error here; every call returns a ConfigurationError instead.
func NewClient(cfg *config.ShopifyConfig) *Client {
	c := &Client{
		baseURL:     baseURL(cfg),
		accessToken: cfg.AccessToken,
		client:      &http.Client{Timeout: cfg.Timeout},
	}
	if cfg.StoreDomain == "" && cfg.BaseURL == "" {
		c.missing = append(c.missing, "SHOPIFY_STORE_DOMAIN")
	}
	if cfg.AccessToken == "" {
		c.missing = append(c.missing, "SHOPIFY_ACCESS_TOKEN")
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	c.limiter = rate.NewLimiter(limit, burst)
	return c
}

func baseURL(cfg *config.ShopifyConfig) string {
	if cfg.BaseURL != "" {
		return strings.TrimRight(cfg.BaseURL, "/")
	}
	if cfg.StoreDomain == "" {
		return ""
	}
	return fmt.Sprintf("https://%s/admin/api/%s", cfg.StoreDomain, cfg.APIVersion)
}

// Configured reports whether the client has the credentials it needs.
func (c *Client) Configured() bool {
	return len(c.missing) == 0
}

// FindByEmail returns the first customer whose search hit matches email.
// It returns nil, nil when there is no such customer.
func (c *Client) FindByEmail(ctx context.Context, email string) (*models.Customer, error) {
	query := url.Values{}
	query.Set("query", "email:"+email)

	var env customersEnvelope
	if err := c.do(ctx, "find_by_email", http.MethodGet, "/customers/search.json?"+query.Encode(), nil, &env); err != nil {
		return nil, err
	}
	if len(env.Customers) == 0 {
		return nil, nil
	}

	// Search is fuzzy; prefer an exact address match over rank order.
	for i := range env.Customers {
		if strings.EqualFold(env.Customers[i].Email, email) {
			return env.Customers[i].toModel(), nil
		}
	}
	return env.Customers[0].toModel(), nil
}

// Get fetches a customer by ID.
func (c *Client) Get(ctx context.Context, id int64) (*models.Customer, error) {
	var env customerEnvelope
	if err := c.do(ctx, "get", http.MethodGet, fmt.Sprintf("/customers/%d.json", id), nil, &env); err != nil {
		return nil, err
	}
	return env.Customer.toModel(), nil
}

// Create creates a customer with a verified email and marketing opt-in off.
func (c *Client) Create(ctx context.Context, in CustomerInput) (*models.Customer, error) {
	body := struct {
		Customer createCustomerWire `json:"customer"`
	}{
		Customer: createCustomerWire{
			FirstName:        in.FirstName,
			LastName:         in.LastName,
			Email:            in.Email,
			Phone:            in.Phone,
			Tags:             annotation.JoinTags(in.Tags),
			Note:             in.Note,
			VerifiedEmail:    true,
			AcceptsMarketing: false,
		},
	}

	var env customerEnvelope
	if err := c.do(ctx, "create", http.MethodPost, "/customers.json", body, &env); err != nil {
		return nil, err
	}
	return env.Customer.toModel(), nil
}

// Update sends only the fields set in upd.
func (c *Client) Update(ctx context.Context, id int64, upd CustomerUpdate) (*models.Customer, error) {
	body := struct {
		Customer updateCustomerWire `json:"customer"`
	}{Customer: upd.toWire(id)}

	var env customerEnvelope
	if err := c.do(ctx, "update", http.MethodPut, fmt.Sprintf("/customers/%d.json", id), body, &env); err != nil {
		return nil, err
	}
	return env.Customer.toModel(), nil
}

// AttachMetadata stores value as a json metafield on the customer.
func (c *Client) AttachMetadata(ctx context.Context, id int64, namespace, key string, value json.RawMessage) error {
	body := metafieldEnvelope{Metafield: metafieldWire{
		Namespace: namespace,
		Key:       key,
		Type:      metafieldTypeJSON,
		Value:     string(value),
	}}
	return c.do(ctx, "attach_metadata", http.MethodPost, fmt.Sprintf("/customers/%d/metafields.json", id), body, nil)
}

// do performs one JSON request. out may be nil when the response body is not needed.
func (c *Client) do(ctx context.Context, operation, method, path string, in, out interface{}) error {
	if !c.Configured() {
		return &ConfigurationError{Missing: append([]string(nil), c.missing...)}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return &UpstreamError{Operation: operation, Err: fmt.Errorf("rate limiter: %w", err)}
	}

	var reqBody io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("shopify %s: encode request: %w", operation, err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("shopify %s: create request: %w", operation, err)
	}
	req.Header.Set(accessTokenHeader, c.accessToken)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		metrics.RecordCRMRequest(operation, 0, time.Since(start))
		return &UpstreamError{Operation: operation, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()
	metrics.RecordCRMRequest(operation, resp.StatusCode, time.Since(start))

	logging.Ctx(ctx).Debug().
		Str("operation", operation).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("Shopify request completed")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &UpstreamError{
			Operation: operation,
			Status:    resp.StatusCode,
			Body:      string(readBodyForError(resp.Body)),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("shopify %s: decode response: %w", operation, err)
	}
	return nil
}
