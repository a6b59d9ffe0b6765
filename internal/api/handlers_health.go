// Leadbridge - B2B Questionnaire Lead Intake Bridge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leadbridge

package api

import (
	"net/http"

	"github.com/tomtom215/leadbridge/internal/models"
)

// Health is the liveness probe. It answers every method.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	respondJSON(w, http.StatusOK, models.HealthResponse{OK: true, Env: "up"})
}

// Ready reports which integrations are configured. It never calls them and
// always answers 200, so a missing credential does not take the service
// out of rotation.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	resp := models.ReadinessResponse{
		OK:             true,
		MailConfigured: h.cfg.MailConfigured,
		CRMBreaker:     "none",
		Idempotency:    "disabled",
		Version:        h.cfg.Version,
	}
	if h.crm != nil {
		resp.CRMConfigured = h.crm.Configured()
		resp.CRMBreaker = h.crm.State()
	}
	if h.cfg.IdempotencyBackend != "" {
		resp.Idempotency = h.cfg.IdempotencyBackend
	}

	respondJSON(w, http.StatusOK, resp)
}
