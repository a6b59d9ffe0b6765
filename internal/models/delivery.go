// Leadbridge - B2B Questionnaire Lead Intake Bridge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leadbridge

package models

// DeliveryResult reports what happened to one outbound email.
//
//	attempted=false                 skipped (no credential, no recipients)
//	attempted=true, accepted=true   provider accepted the message
//	attempted=true, accepted=false  provider rejected it or the call failed
type DeliveryResult struct {
	Attempted  bool   `json:"attempted"`
	Accepted   bool   `json:"accepted"`
	Detail     string `json:"detail,omitempty"`
	StatusCode int    `json:"status_code,omitempty"`
	ErrorCode  string `json:"error_code,omitempty"`
	MessageID  string `json:"message_id,omitempty"`
}

// Outcome collapses a result into a metrics label.
func (r DeliveryResult) Outcome() string {
	switch {
	case !r.Attempted:
		return "skipped"
	case r.Accepted:
		return "accepted"
	default:
		return "failed"
	}
}

// Delivery error codes.
const (
	ErrorCodeInvalidConfig    = "INVALID_CONFIG"
	ErrorCodeConnectionFailed = "CONNECTION_FAILED"
	ErrorCodeAuthFailed       = "AUTH_FAILED"
	ErrorCodeRateLimited      = "RATE_LIMITED"
	ErrorCodeContentTooLarge  = "CONTENT_TOO_LARGE"
	ErrorCodeRejected         = "REJECTED"
	ErrorCodeServerError      = "SERVER_ERROR"
	ErrorCodeTimeout          = "TIMEOUT"
	ErrorCodeUnknown          = "UNKNOWN"
)
