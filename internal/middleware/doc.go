// Leadbridge - B2B Questionnaire Lead Intake Bridge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leadbridge

/*
Package middleware provides the chi middleware stack for the Leadbridge API.

Key Components:

  - RequestID: request and correlation IDs in the response header and logging context
  - ShopOrigin: sanitized X-Shop-Origin header in the logging context
  - CORS: preflight negotiation via go-chi/cors plus fixed per-route headers
  - RateLimit: per-IP limits via go-chi/httprate with a JSON 429 body
  - PrometheusMetrics: request count, latency and in-flight gauge per route pattern

Middleware Stack:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)          // Layer 1: Request tracking
	r.Use(chimiddleware.RealIP)          // Layer 2: Client IP behind proxies
	r.Use(middleware.PrometheusMetrics)  // Layer 3: Metrics
	r.Use(chimiddleware.Recoverer)       // Layer 4: Panic recovery
	r.Use(middleware.CORS())             // Layer 5: Preflight negotiation
	r.Use(middleware.ShopOrigin)         // Layer 6: Storefront origin

	r.Route("/api/proxy/lead", func(r chi.Router) {
	    r.Use(middleware.AllowMethods("POST", "OPTIONS"))
	    r.Use(limiter.Handler("lead"))
	    ...
	})
*/
package middleware
