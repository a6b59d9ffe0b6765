// Leadbridge - B2B Questionnaire Lead Intake Bridge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leadbridge

package api

import (
	"github.com/tomtom215/leadbridge/internal/idempotency"
	"github.com/tomtom215/leadbridge/internal/middleware"
)

// Router wires handlers and middleware into a chi router.
type Router struct {
	handler *Handler
	limiter *middleware.RateLimiter

	// replayer is nil when idempotent replay is disabled.
	replayer *idempotency.Replayer
}

// NewRouter creates a router. limiter and replayer may be nil.
func NewRouter(handler *Handler, limiter *middleware.RateLimiter, replayer *idempotency.Replayer) *Router {
	if limiter == nil {
		limiter = middleware.NewRateLimiter(0, 0, true)
	}
	return &Router{
		handler:  handler,
		limiter:  limiter,
		replayer: replayer,
	}
}
