// Leadbridge - B2B Questionnaire Lead Intake Bridge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leadbridge

package models

import (
	"github.com/goccy/go-json"
)

// Customer is a CRM customer record keyed by email.
//
// Tags are kept deduplicated (case-insensitive, first spelling wins) and the
// note is only ever appended to.
type Customer struct {
	ID        int64    `json:"id"`
	Email     string   `json:"email"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Phone     string   `json:"phone"`
	Note      string   `json:"note"`
	Tags      []string `json:"tags"`
}

// AnnotationRequest is what a submission contributes to a customer record.
// It is derived from an AnswerSet by pure functions.
type AnnotationRequest struct {
	TagsToAdd    []string        `json:"tags_to_add"`
	NoteToAppend string          `json:"note_to_append"`
	Metadata     json.RawMessage `json:"metadata"`
}

// ReconcileResult identifies the customer a submission was attached to.
type ReconcileResult struct {
	RecordID   int64 `json:"record_id"`
	WasCreated bool  `json:"was_created"`
}
