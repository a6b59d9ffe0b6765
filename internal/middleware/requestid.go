// Leadbridge - B2B Questionnaire Lead Intake Bridge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leadbridge

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/tomtom215/leadbridge/internal/logging"
)

type contextKey string

// RequestIDKey is the context key holding the request ID.
const RequestIDKey contextKey = "request_id"

const (
	headerRequestID  = "X-Request-ID"
	headerShopOrigin = "X-Shop-Origin"

	maxRequestIDLength  = 128
	maxShopOriginLength = 255
)

// RequestID middleware generates a unique ID for each request
// and adds it to both the response header and request context.
// An upstream X-Request-ID is kept when it is short and printable.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(headerRequestID)
		if !acceptableHeaderValue(requestID, maxRequestIDLength) {
			requestID = uuid.New().String()
		}

		w.Header().Set(headerRequestID, requestID)

		ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
		ctx = logging.ContextWithRequestID(ctx, requestID)
		ctx = logging.ContextWithNewCorrelationID(ctx)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID extracts the request ID from context
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

// ShopOrigin copies the X-Shop-Origin header into the logging context.
func ShopOrigin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := strings.TrimSpace(r.Header.Get(headerShopOrigin))
		if origin == "" {
			next.ServeHTTP(w, r)
			return
		}
		if len(origin) > maxShopOriginLength {
			origin = origin[:maxShopOriginLength]
		}
		ctx := logging.ContextWithShopOrigin(r.Context(), logging.SanitizeLogValue(origin))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func acceptableHeaderValue(v string, maxLen int) bool {
	if v == "" || len(v) > maxLen {
		return false
	}
	for i := 0; i < len(v); i++ {
		if v[i] < 0x21 || v[i] > 0x7E {
			return false
		}
	}
	return true
}
