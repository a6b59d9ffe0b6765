// Leadbridge - B2B Questionnaire Lead Intake Bridge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leadbridge

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/leadbridge/internal/middleware"
)

// Route paths.
const (
	PathLead        = "/api/proxy/lead"
	PathLeadAlias   = "/api/lead"
	PathWizard      = "/api/wizard"
	PathCTA         = "/api/proxy/cta"
	PathHealth      = "/api/health"
	PathHealthReady = "/api/health/ready"
	PathMetrics     = "/metrics"
)

// Setup builds the chi router with all routes.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	r.Use(middleware.RequestID)         // X-Request-ID header with logging context
	r.Use(chimiddleware.RealIP)         // Client IP from X-Forwarded-For / X-Real-IP
	r.Use(middleware.PrometheusMetrics) // Request count, latency, in-flight
	r.Use(chimiddleware.Recoverer)      // Recover from panics outside handlers
	r.Use(middleware.CORS())            // Preflight negotiation; routes answer OPTIONS
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.ShopOrigin)

	r.NotFound(router.handler.NotFound)

	// ========================
	// Lead Intake
	// ========================
	lead := []func(http.Handler) http.Handler{
		middleware.AllowMethods(http.MethodPost, http.MethodOptions),
		router.limiter.Handler("lead"),
	}
	if router.replayer != nil {
		lead = append(lead, router.replayer.Middleware)
	}
	r.With(lead...).HandleFunc(PathLead, router.handler.Lead)
	r.With(lead...).HandleFunc(PathLeadAlias, router.handler.Lead)

	// ========================
	// Storefront Compatibility
	// ========================
	r.With(
		middleware.AllowMethods(http.MethodGet, http.MethodPost, http.MethodOptions),
		router.limiter.Handler("wizard"),
	).HandleFunc(PathWizard, router.handler.Wizard)

	r.With(
		middleware.AllowMethods(http.MethodPost, http.MethodOptions),
		router.limiter.Handler("cta"),
	).HandleFunc(PathCTA, router.handler.CTA)

	// ========================
	// Health and Metrics
	// ========================
	health := middleware.AllowMethods(http.MethodGet, http.MethodOptions)
	r.With(health).HandleFunc(PathHealth, router.handler.Health)
	r.With(health).HandleFunc(PathHealthReady, router.handler.Ready)
	r.Handle(PathMetrics, promhttp.Handler())

	return r
}
