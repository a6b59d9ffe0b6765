// Leadbridge - B2B Questionnaire Lead Intake Bridge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leadbridge

package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"
	"github.com/goccy/go-json"

	"github.com/tomtom215/leadbridge/internal/logging"
	"github.com/tomtom215/leadbridge/internal/metrics"
	"github.com/tomtom215/leadbridge/internal/models"
)

// RateLimiter builds per-IP limiters sharing one request budget setting.
type RateLimiter struct {
	requests int
	window   time.Duration
	disabled bool
	keyFunc  httprate.KeyFunc
}

// NewRateLimiter creates a limiter factory. A non-positive request count
// disables limiting.
func NewRateLimiter(requests int, window time.Duration, disabled bool) *RateLimiter {
	return &RateLimiter{
		requests: requests,
		window:   window,
		disabled: disabled || requests <= 0 || window <= 0,
		keyFunc:  httprate.KeyByIP,
	}
}

// Handler returns the limiting middleware for one route. Each call gets its
// own counters, so routes do not share a budget. Preflight requests are not
// counted.
func (l *RateLimiter) Handler(endpoint string) func(http.Handler) http.Handler {
	if l.disabled {
		// Return a no-op middleware when rate limiting is disabled
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	limit := httprate.Limit(
		l.requests,
		l.window,
		httprate.WithKeyFuncs(l.keyFunc),
		httprate.WithLimitHandler(limitHandler(endpoint)),
	)
	return func(next http.Handler) http.Handler {
		limited := limit(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			limited.ServeHTTP(w, r)
		})
	}
}

func limitHandler(endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metrics.APIRateLimitHits.WithLabelValues(endpoint).Inc()
		logging.Ctx(r.Context()).Warn().
			Str("endpoint", endpoint).
			Str("remote_addr", r.RemoteAddr).
			Msg("Rate limit exceeded")

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(models.ErrorResponse{OK: false, Error: models.ErrRateLimited}) //nolint:errcheck // headers already sent
	}
}
