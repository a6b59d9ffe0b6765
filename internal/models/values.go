// Leadbridge - B2B Questionnaire Lead Intake Bridge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leadbridge

package models

import (
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Truthy reports whether a decoded JSON value counts as "answered".
// null, false, "", 0 and empty lists are falsy; everything else is truthy.
func Truthy(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	case json.Number:
		f, err := val.Float64()
		return err != nil || f != 0
	case float64:
		return val != 0
	case int:
		return val != 0
	case int64:
		return val != 0
	case []interface{}:
		return len(val) > 0
	default:
		return true
	}
}

// ConsentGiven reports whether a submitted consent value means "yes".
// It follows Truthy, and additionally treats the strings "false" and "0"
// (any case, surrounding whitespace ignored) as a refusal.
func ConsentGiven(v interface{}) bool {
	if s, ok := v.(string); ok {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "", "false", "0":
			return false
		}
		return true
	}
	return Truthy(v)
}

// Stringify renders a decoded JSON value as display text. Numbers keep their
// submitted literal form, lists are comma-joined and objects become compact JSON.
func Stringify(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case []interface{}:
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = Stringify(item)
		}
		return strings.Join(parts, ",")
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
