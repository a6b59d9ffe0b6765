// Leadbridge - B2B Questionnaire Lead Intake Bridge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leadbridge

package intake

import (
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/leadbridge/internal/metrics"
	"github.com/tomtom215/leadbridge/internal/models"
	"github.com/tomtom215/leadbridge/internal/validation"
)

// Wizard step actions.
const (
	ActionShowResults = "show-results"
	ActionFinishSend  = "finish-send"

	// ThankYouPath is where the storefront sends the visitor after finish-send.
	ThankYouPath = "/pages/dziekujemy"
)

// WizardStep answers a wizard step action. ok is false for unknown actions.
func WizardStep(req models.WizardRequest) (resp models.WizardResponse, ok bool) {
	if verr := validation.ValidateStruct(&req); verr != nil {
		metrics.WizardActions.WithLabelValues("invalid").Inc()
		return models.WizardResponse{}, false
	}
	switch req.Action {
	case ActionShowResults:
		metrics.WizardActions.WithLabelValues(ActionShowResults).Inc()
		next := stepNumber(req.Step) + 1
		return models.WizardResponse{OK: true, Message: "Wyniki gotowe.", NextStep: &next}, true
	case ActionFinishSend:
		metrics.WizardActions.WithLabelValues(ActionFinishSend).Inc()
		return models.WizardResponse{OK: true, Message: "Zgłoszenie zapisane.", RedirectURL: ThankYouPath}, true
	default:
		metrics.WizardActions.WithLabelValues("invalid").Inc()
		return models.WizardResponse{}, false
	}
}

// stepNumber reads the current step; anything missing, zero or non-numeric is 1.
func stepNumber(v interface{}) int {
	var f float64
	switch s := v.(type) {
	case float64:
		f = s
	case json.Number:
		parsed, err := s.Float64()
		if err != nil {
			return 1
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 1
		}
		f = parsed
	default:
		return 1
	}
	if f == 0 || math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > math.MaxInt32 {
		return 1
	}
	return int(f)
}
