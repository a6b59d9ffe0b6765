// Leadbridge - B2B Questionnaire Lead Intake Bridge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leadbridge

package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"
)

// AllowedHeaders are the request headers a storefront may send.
var AllowedHeaders = []string{"Content-Type", "X-Idempotency-Key", "X-Shop-Origin"}

// ExposedHeaders are readable by storefront scripts.
var ExposedHeaders = []string{"X-Request-ID", "Idempotent-Replay"}

// CORS negotiates preflights for any origin via go-chi/cors. Preflights are
// passed through so each route answers OPTIONS with its own status.
func CORS() func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:     []string{"*"},
		AllowedMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:     AllowedHeaders,
		ExposedHeaders:     ExposedHeaders,
		AllowCredentials:   false,
		MaxAge:             600,
		OptionsPassthrough: true,
	})
}

// AllowMethods stamps fixed CORS headers on every response of a route,
// including errors and rate-limit rejections, whether or not the request
// carried an Origin header.
func AllowMethods(methods ...string) func(http.Handler) http.Handler {
	allowMethods := strings.Join(methods, ", ")
	allowHeaders := strings.Join(AllowedHeaders, ", ")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", "*")
			h.Set("Access-Control-Allow-Methods", allowMethods)
			h.Set("Access-Control-Allow-Headers", allowHeaders)
			next.ServeHTTP(w, r)
		})
	}
}

// SecurityHeaders adds headers appropriate for a JSON API.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}
