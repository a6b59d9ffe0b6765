// Leadbridge - B2B Questionnaire Lead Intake Bridge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leadbridge

// Package compose renders the two notification emails sent for a lead.
//
// Rendering uses html/template, so names, addresses, phone numbers and the
// pretty-printed answers are escaped. The summary HTML comes from the
// storefront and is inserted as-is.
package compose

import (
	"bytes"
	"embed"
	"html"
	"html/template"

	"github.com/tomtom215/leadbridge/internal/models"
)

const (
	// SubmitterSubject is the subject of the thank-you email.
	SubmitterSubject = "LaBalancia — Twoje rekomendacje i kolejny krok"

	// OperatorSubject is the subject of the internal notification.
	OperatorSubject = "Nowe zgłoszenie: B2B Wizard (LaBalancia)"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

var templates = template.Must(
	template.New("compose").
		Funcs(template.FuncMap{
			"deref": func(p *int64) int64 { return *p },
		}).
		ParseFS(templateFS, "templates/*.html.tmpl"),
)

// Document is a rendered email.
type Document struct {
	Subject string
	HTML    string
}

// OperatorDetails is everything shown in the operator notification.
type OperatorDetails struct {
	Contact     models.ContactInfo
	Answers     models.AnswerSet
	SummaryHTML string
	RecordID    *int64
	WasCreated  bool
	ShopOrigin  string
}

// SubmitterMessage renders the thank-you email.
func SubmitterMessage(name, summaryHTML string) Document {
	data := struct {
		Name    string
		Summary template.HTML
	}{
		Name:    name,
		Summary: template.HTML(summaryHTML), // #nosec G203 -- storefront-rendered summary
	}
	return Document{
		Subject: SubmitterSubject,
		HTML:    render("submitter.html.tmpl", data),
	}
}

// OperatorMessage renders the internal notification without a shop origin.
func OperatorMessage(contact models.ContactInfo, answers models.AnswerSet, summaryHTML string, recordID *int64, wasCreated bool) Document {
	return RenderOperator(OperatorDetails{
		Contact:     contact,
		Answers:     answers,
		SummaryHTML: summaryHTML,
		RecordID:    recordID,
		WasCreated:  wasCreated,
	})
}

// RenderOperator renders the internal notification.
func RenderOperator(d OperatorDetails) Document {
	data := struct {
		Contact    models.ContactInfo
		Answers    string
		Summary    template.HTML
		RecordID   *int64
		WasCreated bool
		ShopOrigin string
	}{
		Contact:    d.Contact,
		Answers:    d.Answers.Pretty(),
		Summary:    template.HTML(d.SummaryHTML), // #nosec G203 -- storefront-rendered summary
		RecordID:   d.RecordID,
		WasCreated: d.WasCreated,
		ShopOrigin: d.ShopOrigin,
	}
	return Document{
		Subject: OperatorSubject,
		HTML:    render("operator.html.tmpl", data),
	}
}

// render executes a named template. Execution only fails on a broken
// template, in which case the error text is rendered instead.
func render(name string, data interface{}) string {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "<pre>" + html.EscapeString(err.Error()) + "</pre>"
	}
	return buf.String()
}
