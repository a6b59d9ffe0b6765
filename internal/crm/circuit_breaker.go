// Leadbridge - B2B Questionnaire Lead Intake Bridge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leadbridge

package crm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/leadbridge/internal/config"
	"github.com/tomtom215/leadbridge/internal/logging"
	"github.com/tomtom215/leadbridge/internal/metrics"
	"github.com/tomtom215/leadbridge/internal/models"
)

// BreakerName labels the Shopify breaker in logs and metrics.
const BreakerName = "shopify-admin"

// CircuitBreakerClient wraps Client so a failing Shopify store fails fast
// instead of holding every submission for the full request timeout.
//
// Configuration:
//   - Max 3 concurrent requests in half-open state
//   - 1 minute measurement window
//   - 2 minute timeout before attempting recovery
//   - Opens after 60% failure rate with minimum 10 requests
//
// Client errors (4xx other than 429) and missing configuration do not count
// as failures: they say nothing about the store's health.
type CircuitBreakerClient struct {
	client *Client
	cb     *gobreaker.CircuitBreaker[interface{}]
	name   string
}

// NewCircuitBreakerClient creates a Shopify client with circuit breaker.
func NewCircuitBreakerClient(cfg *config.ShopifyConfig) *CircuitBreakerClient {
	return wrapClient(NewClient(cfg), BreakerName)
}

func wrapClient(client *Client, cbName string) *CircuitBreakerClient {
	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0) // 0 = closed
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(cbName).Set(0)

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6
			if shouldTrip {
				logging.Warn().Str("breaker", cbName).Uint32("failures", counts.TotalFailures).Float64("failure_rate", failureRatio*100).Msg("[CIRCUIT BREAKER] Opening circuit")
			}
			return shouldTrip
		},

		IsSuccessful: isSuccessful,

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			logging.Info().Str("breaker", name).Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
	})

	return &CircuitBreakerClient{client: client, cb: cb, name: cbName}
}

// isSuccessful decides which errors count against the breaker.
func isSuccessful(err error) bool {
	if err == nil {
		return true
	}
	if IsConfigurationError(err) {
		return true
	}
	var upErr *UpstreamError
	if errors.As(err, &upErr) {
		return upErr.Status >= 400 && upErr.Status < 500 && upErr.Status != http.StatusTooManyRequests
	}
	return false
}

// execute wraps a Shopify call with circuit breaker protection.
func (cbc *CircuitBreakerClient) execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := cbc.cb.Execute(fn)

	if err != nil {
		switch {
		case errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests):
			metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "rejected").Inc()
			logging.Warn().Err(err).Str("breaker", cbc.name).Msg("[CIRCUIT BREAKER] Request rejected")
		case isSuccessful(err):
			metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "success").Inc()
		default:
			metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "failure").Inc()
			counts := cbc.cb.Counts()
			metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(cbc.name).Set(float64(counts.ConsecutiveFailures))
		}
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "success").Inc()
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(cbc.name).Set(0)
	return result, nil
}

// castResult safely type-casts the circuit breaker result with error checking
func castResult[T any](result interface{}, err error) (*T, error) {
	if err != nil {
		return nil, err
	}
	typed, ok := result.(*T)
	if !ok {
		return nil, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// stateToString converts circuit breaker state to string for logging
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Configured reports whether the wrapped client has credentials.
func (cbc *CircuitBreakerClient) Configured() bool {
	return cbc.client.Configured()
}

// State returns the breaker state as closed, half-open or open.
func (cbc *CircuitBreakerClient) State() string {
	return stateToString(cbc.cb.State())
}

// FindByEmail searches for a customer with circuit breaker protection.
// A nil customer with a nil error means no match.
func (cbc *CircuitBreakerClient) FindByEmail(ctx context.Context, email string) (*models.Customer, error) {
	return castResult[models.Customer](cbc.execute(func() (interface{}, error) {
		return cbc.client.FindByEmail(ctx, email)
	}))
}

// Get fetches a customer with circuit breaker protection.
func (cbc *CircuitBreakerClient) Get(ctx context.Context, id int64) (*models.Customer, error) {
	return castResult[models.Customer](cbc.execute(func() (interface{}, error) {
		return cbc.client.Get(ctx, id)
	}))
}

// Create creates a customer with circuit breaker protection.
func (cbc *CircuitBreakerClient) Create(ctx context.Context, in CustomerInput) (*models.Customer, error) {
	return castResult[models.Customer](cbc.execute(func() (interface{}, error) {
		return cbc.client.Create(ctx, in)
	}))
}

// Update changes a customer with circuit breaker protection.
func (cbc *CircuitBreakerClient) Update(ctx context.Context, id int64, upd CustomerUpdate) (*models.Customer, error) {
	return castResult[models.Customer](cbc.execute(func() (interface{}, error) {
		return cbc.client.Update(ctx, id, upd)
	}))
}

// AttachMetadata creates a metafield with circuit breaker protection.
func (cbc *CircuitBreakerClient) AttachMetadata(ctx context.Context, id int64, namespace, key string, value json.RawMessage) error {
	_, err := cbc.execute(func() (interface{}, error) {
		return nil, cbc.client.AttachMetadata(ctx, id, namespace, key, value)
	})
	return err
}
