// Leadbridge - B2B Questionnaire Lead Intake Bridge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leadbridge

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/leadbridge/internal/intake"
	"github.com/tomtom215/leadbridge/internal/logging"
	"github.com/tomtom215/leadbridge/internal/metrics"
	"github.com/tomtom215/leadbridge/internal/models"
)

// errNotFound is the error code for unknown routes.
const errNotFound = "not-found"

// Submitter processes one questionnaire submission.
type Submitter interface {
	Submit(ctx context.Context, sub models.LeadSubmission) (*models.LeadResponse, error)
}

// CRMStatus reports CRM readiness without making a call.
type CRMStatus interface {
	Configured() bool
	State() string
}

// HandlerConfig holds values the handlers report or enforce.
type HandlerConfig struct {
	MaxBodyBytes       int64
	MailConfigured     bool
	IdempotencyBackend string // empty when replay is disabled
	Version            string
}

// Handler serves the Leadbridge routes.
type Handler struct {
	intake Submitter
	crm    CRMStatus
	cfg    HandlerConfig
}

// NewHandler creates a handler. crm may be nil.
func NewHandler(submitter Submitter, crm CRMStatus, cfg HandlerConfig) *Handler {
	return &Handler{
		intake: submitter,
		crm:    crm,
		cfg:    cfg,
	}
}

// Lead handles questionnaire submissions.
func (h *Handler) Lead(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusNoContent)
		return
	case http.MethodPost:
	default:
		respondError(w, http.StatusMethodNotAllowed, models.ErrMethodNotAllowed)
		return
	}

	defer func() {
		if rec := recover(); rec != nil {
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			metrics.RecordLeadSubmission("internal_error")
			logging.Ctx(r.Context()).Error().Interface("panic", rec).Msg("Lead handler panicked")
			respondError(w, http.StatusInternalServerError, models.ErrInternal)
		}
	}()

	var sub models.LeadSubmission
	if err := decodeJSONBody(w, r, h.cfg.MaxBodyBytes, &sub); err != nil {
		if errors.Is(err, errBodyTooLarge) {
			metrics.RecordLeadSubmission("payload_too_large")
			respondError(w, http.StatusRequestEntityTooLarge, models.ErrPayloadTooLarge)
			return
		}
		metrics.RecordLeadSubmission("invalid_json")
		logging.Ctx(r.Context()).Info().Err(err).Msg("Rejected malformed lead body")
		respondError(w, http.StatusBadRequest, models.ErrInvalidJSON)
		return
	}

	resp, err := h.intake.Submit(r.Context(), sub)
	if err != nil {
		var verr *intake.ValidationError
		if errors.As(err, &verr) {
			respondError(w, http.StatusBadRequest, models.ErrMissingContact)
			return
		}
		metrics.RecordLeadSubmission("internal_error")
		logging.Ctx(r.Context()).Error().Err(err).Msg("Lead submission failed")
		respondError(w, http.StatusInternalServerError, models.ErrInternal)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// Wizard handles wizard step actions.
func (h *Handler) Wizard(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
		return
	case http.MethodPost:
	default:
		respondError(w, http.StatusMethodNotAllowed, models.ErrMethodNotAllowedTitle)
		return
	}

	var req models.WizardRequest
	if err := decodeJSONBody(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		if errors.Is(err, errBodyTooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, models.ErrPayloadTooLarge)
			return
		}
		respondError(w, http.StatusBadRequest, models.ErrInvalidJSON)
		return
	}

	resp, ok := intake.WizardStep(req)
	if !ok {
		respondError(w, http.StatusBadRequest, models.ErrInvalidAction)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// CTA acknowledges storefront call-to-action events. The body is ignored.
func (h *Handler) CTA(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
		return
	case http.MethodPost:
	default:
		respondError(w, http.StatusMethodNotAllowed, models.ErrMethodNotAllowedTitle)
		return
	}

	metrics.CTAEvents.Inc()
	respondJSON(w, http.StatusOK, models.MessageResponse{OK: true, Message: "CTA recorded (compat)"})
}

// NotFound answers unknown routes.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusNotFound, errNotFound)
}
