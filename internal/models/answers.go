// Leadbridge - B2B Questionnaire Lead Intake Bridge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leadbridge

package models

import (
	"bytes"
	"sort"
	"strings"

	"github.com/goccy/go-json"
)

// AnswerSet is the questionnaire payload exactly as submitted: an open
// mapping of question key to answer (string, list, number or nested object).
//
// The raw bytes are kept next to the decoded map so that anything echoed back
// out (CRM metadata, the operator email) preserves the submitter's key order
// and number formatting. An AnswerSet is never modified after decoding.
type AnswerSet struct {
	raw    json.RawMessage
	values map[string]interface{}
}

// NewAnswerSet decodes raw JSON into an AnswerSet. A null or non-object
// payload yields an empty set; a malformed object is an error.
func NewAnswerSet(raw []byte) (AnswerSet, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return AnswerSet{}, nil
	}

	if trimmed[0] != '{' {
		return AnswerSet{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	values := make(map[string]interface{})
	if err := dec.Decode(&values); err != nil {
		return AnswerSet{}, err
	}

	rawCopy := make(json.RawMessage, len(trimmed))
	copy(rawCopy, trimmed)
	return AnswerSet{raw: rawCopy, values: values}, nil
}

// MustAnswerSet is NewAnswerSet for literals in tests and examples.
func MustAnswerSet(raw string) AnswerSet {
	a, err := NewAnswerSet([]byte(raw))
	if err != nil {
		panic(err)
	}
	return a
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *AnswerSet) UnmarshalJSON(data []byte) error {
	decoded, err := NewAnswerSet(data)
	if err != nil {
		return err
	}
	*a = decoded
	return nil
}

// MarshalJSON implements json.Marshaler and returns the submitted bytes.
func (a AnswerSet) MarshalJSON() ([]byte, error) {
	if len(a.raw) == 0 {
		return []byte("{}"), nil
	}
	return a.raw, nil
}

// Raw returns the submitted JSON object ("{}" for an empty set).
func (a AnswerSet) Raw() json.RawMessage {
	b, _ := a.MarshalJSON() //nolint:errcheck // never fails
	return b
}

// Len returns the number of top-level answers.
func (a AnswerSet) Len() int {
	return len(a.values)
}

// Get returns the decoded answer for key. Numbers are json.Number.
func (a AnswerSet) Get(key string) (interface{}, bool) {
	v, ok := a.values[key]
	return v, ok
}

// Keys returns the top-level question keys in sorted order.
func (a AnswerSet) Keys() []string {
	keys := make([]string, 0, len(a.values))
	for k := range a.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Text returns the answer for key rendered as display text, or "" when the
// answer is absent or falsy.
func (a AnswerSet) Text(key string) string {
	v, ok := a.values[key]
	if !ok || !Truthy(v) {
		return ""
	}
	return Stringify(v)
}

// List returns the answer for key as display text where list answers are
// joined with ", ". Scalar answers are returned as Text would.
func (a AnswerSet) List(key string) string {
	v, ok := a.values[key]
	if !ok || !Truthy(v) {
		return ""
	}
	if items, isList := v.([]interface{}); isList {
		parts := make([]string, len(items))
		for i, item := range items {
			parts[i] = Stringify(item)
		}
		return strings.Join(parts, ", ")
	}
	return Stringify(v)
}

// Object returns the nested object stored under key, or nil.
func (a AnswerSet) Object(key string) map[string]interface{} {
	obj, _ := a.values[key].(map[string]interface{}) //nolint:errcheck // type assertion
	return obj
}

// Pretty renders the submitted answers as indented JSON (two spaces),
// keeping the submitted key order.
func (a AnswerSet) Pretty() string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, a.Raw(), "", "  "); err != nil {
		return string(a.Raw())
	}
	return buf.String()
}
