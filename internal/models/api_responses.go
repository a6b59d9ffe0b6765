// Leadbridge - B2B Questionnaire Lead Intake Bridge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leadbridge

package models

// LeadResponse is returned for every submission that passes validation.
// OK is always true; degraded outcomes show up as a null CustomerID or
// unaccepted delivery results.
//
// Example:
//
//	{
//	  "ok": true,
//	  "customer_id": 7781234567,
//	  "customer_created": true,
//	  "mail_user": {"attempted": true, "accepted": true, "message_id": "4ef9..."},
//	  "mail_admin": {"attempted": false, "accepted": false, "detail": "RESEND_API_KEY missing"}
//	}
type LeadResponse struct {
	OK              bool           `json:"ok"`
	CustomerID      *int64         `json:"customer_id"`
	CustomerCreated bool           `json:"customer_created"`
	MailUser        DeliveryResult `json:"mail_user"`
	MailAdmin       DeliveryResult `json:"mail_admin"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// Error codes carried in ErrorResponse.Error.
const (
	ErrMissingContact   = "missing-contact"
	ErrInvalidJSON      = "invalid-json"
	ErrInternal         = "internal"
	ErrMethodNotAllowed = "Method not allowed"
	ErrRateLimited      = "rate-limited"
	ErrPayloadTooLarge  = "payload-too-large"
	ErrInvalidAction    = "Invalid action"
	// The wizard and CTA routes have always spelled this capitalised.
	ErrMethodNotAllowedTitle = "Method Not Allowed"
)

// WizardRequest is the POST body of the wizard step endpoint.
// Step may arrive as a number or a numeric string.
type WizardRequest struct {
	Action string      `json:"action" validate:"required,oneof=show-results finish-send"`
	Step   interface{} `json:"step"`
}

// WizardResponse answers a wizard step action.
type WizardResponse struct {
	OK          bool   `json:"ok"`
	Message     string `json:"message"`
	NextStep    *int   `json:"nextStep,omitempty"`
	RedirectURL string `json:"redirectUrl,omitempty"`
}

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// HealthResponse is returned by the liveness endpoint.
type HealthResponse struct {
	OK  bool   `json:"ok"`
	Env string `json:"env"`
}

// ReadinessResponse reports which integrations are configured.
// It is informational and always served with 200.
type ReadinessResponse struct {
	OK             bool   `json:"ok"`
	CRMConfigured  bool   `json:"crm_configured"`
	MailConfigured bool   `json:"mail_configured"`
	CRMBreaker     string `json:"crm_breaker"`
	Idempotency    string `json:"idempotency"`
	Version        string `json:"version,omitempty"`
}
