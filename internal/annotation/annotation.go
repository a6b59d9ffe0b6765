// Leadbridge - B2B Questionnaire Lead Intake Bridge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leadbridge

// Package annotation derives what a questionnaire submission writes onto a
// CRM customer: tags, an appended note and a metadata document.
//
// Everything here is a pure function of its inputs. The same AnswerSet always
// yields the same AnnotationRequest, which is what makes repeated submissions
// converge on the same tag set.
package annotation

import (
	"strings"

	"github.com/tomtom215/leadbridge/internal/models"
)

// QuizTag marks every customer that came in through the questionnaire.
const QuizTag = "B2B-QUIZ"

// snapshotPrefix starts the per-submission summary tag.
const snapshotPrefix = QuizTag + ": "

// MaxTagLength is the longest tag the CRM accepts.
const MaxTagLength = 255

// NoteHeader opens every appended note fragment.
const NoteHeader = "B2B Wizard — podsumowanie odpowiedzi:"

// Derive builds the AnnotationRequest for a submission.
func Derive(answers models.AnswerSet) models.AnnotationRequest {
	tags := []string{QuizTag}
	if snap := SnapshotTag(answers); snap != "" {
		tags = append(tags, snap)
	}
	return models.AnnotationRequest{
		TagsToAdd:    tags,
		NoteToAppend: BuildNote(answers),
		Metadata:     Metadata(answers),
	}
}

// SnapshotTag summarizes the business model, platform and volume answers as
// "B2B-QUIZ: model / platform / volume". Missing parts are skipped and "" is
// returned when none are present. Commas are replaced because the CRM stores
// tags as one comma-separated string.
func SnapshotTag(answers models.AnswerSet) string {
	parts := make([]string, 0, 3)
	for _, key := range []string{"model", "platform", "volume"} {
		if v := sanitizeTagPart(answers.Text(key)); v != "" {
			parts = append(parts, v)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return truncateTag(snapshotPrefix + strings.Join(parts, " / "))
}

// sanitizeTagPart removes characters that cannot survive inside a tag.
func sanitizeTagPart(s string) string {
	s = strings.ReplaceAll(s, ",", ";")
	s = strings.Join(strings.Fields(s), " ")
	return s
}

// truncateTag cuts a tag to MaxTagLength bytes on a rune boundary.
func truncateTag(tag string) string {
	if len(tag) <= MaxTagLength {
		return tag
	}
	cut := MaxTagLength
	for cut > 0 && !isRuneStart(tag[cut]) {
		cut--
	}
	return strings.TrimSpace(tag[:cut])
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

// BuildNote renders the human-readable answer summary appended to the
// customer note. Each line is emitted only when its answer is present.
func BuildNote(answers models.AnswerSet) string {
	lines := []string{NoteHeader}
	add := func(label, value string) {
		if value != "" {
			lines = append(lines, label+": "+value)
		}
	}

	add("Partner", answers.Text("partner"))
	add("Kanał sprzedaży", answers.Text("sales_channel"))
	add("Firma", withSuffix(answers.Text("company"), " / ", answers.Text("company_other"), ""))
	add("Sklep internetowy", withSuffix(answers.Text("has_store"), " (", answers.Text("website_url"), ")"))
	add("Platforma", withSuffix(answers.Text("platform"), " / ", answers.Text("platform_other"), ""))
	add("BaseLinker", answers.Text("baselinker"))
	add("Marketplace", answers.List("marketplaces"))
	add("Model", answers.Text("model"))
	add("Wolumen", answers.Text("volume"))
	add("Kurier", answers.List("courier"))

	return strings.Join(lines, "\n")
}

// withSuffix appends open+extra+closing to base when both are present.
func withSuffix(base, open, extra, closing string) string {
	if base == "" {
		return ""
	}
	if extra == "" {
		return base
	}
	return base + open + extra + closing
}

// Metadata returns the document stored in the customer metafield: the
// answers exactly as submitted.
func Metadata(answers models.AnswerSet) []byte {
	return answers.Raw()
}
