// Leadbridge - B2B Questionnaire Lead Intake Bridge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leadbridge

// Package models defines the data shared between the intake pipeline stages:
// the submitted questionnaire, the contact extracted from it, the CRM customer
// record, derived annotations, delivery outcomes and the HTTP response bodies.
package models

import (
	"strings"
)

// ContactInfo identifies the person submitting the questionnaire.
// Values are normalized by ContactFromAnswers; all four are required.
type ContactInfo struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required"`
	Phone   string `json:"phone" validate:"required"`
	Consent bool   `json:"consent" validate:"required"`
}

// FirstName returns the first whitespace-separated token of Name.
func (c ContactInfo) FirstName() string {
	first, _ := SplitName(c.Name)
	return first
}

// LastName returns everything after the first token of Name, single-spaced.
func (c ContactInfo) LastName() string {
	_, last := SplitName(c.Name)
	return last
}

// SplitName splits a full name into first token and the remaining tokens
// joined by single spaces. The remainder may be empty.
func SplitName(name string) (first, last string) {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return "", ""
	}
	return fields[0], strings.Join(fields[1:], " ")
}

// ContactFromAnswers extracts and normalizes answers.contact. Missing or
// non-string values are tolerated; validation happens later.
func ContactFromAnswers(a AnswerSet) ContactInfo {
	raw := a.Object("contact")
	if raw == nil {
		return ContactInfo{}
	}
	return ContactInfo{
		Name:    strings.TrimSpace(Stringify(raw["name"])),
		Email:   strings.ToLower(strings.TrimSpace(Stringify(raw["email"]))),
		Phone:   strings.TrimSpace(Stringify(raw["phone"])),
		Consent: ConsentGiven(raw["consent"]),
	}
}

// LeadSubmission is the POST body of the lead endpoint.
type LeadSubmission struct {
	Answers     AnswerSet `json:"answers"`
	SummaryHTML string    `json:"summary_html"`
}
