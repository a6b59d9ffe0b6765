// Leadbridge - B2B Questionnaire Lead Intake Bridge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leadbridge

package crm

import (
	"github.com/tomtom215/leadbridge/internal/annotation"
	"github.com/tomtom215/leadbridge/internal/models"
)

// Shopify Admin REST wire shapes. Nullable strings decode to "".

type customerWire struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Note      string `json:"note"`
	Tags      string `json:"tags"`
}

func (w *customerWire) toModel() *models.Customer {
	return &models.Customer{
		ID:        w.ID,
		Email:     w.Email,
		FirstName: w.FirstName,
		LastName:  w.LastName,
		Phone:     w.Phone,
		Note:      w.Note,
		Tags:      annotation.ParseTags(w.Tags),
	}
}

type customerEnvelope struct {
	Customer customerWire `json:"customer"`
}

type customersEnvelope struct {
	Customers []customerWire `json:"customers"`
}

type createCustomerWire struct {
	FirstName        string `json:"first_name,omitempty"`
	LastName         string `json:"last_name,omitempty"`
	Email            string `json:"email"`
	Phone            string `json:"phone,omitempty"`
	Tags             string `json:"tags"`
	Note             string `json:"note"`
	VerifiedEmail    bool   `json:"verified_email"`
	AcceptsMarketing bool   `json:"accepts_marketing"`
}

type updateCustomerWire struct {
	ID    int64   `json:"id"`
	Note  *string `json:"note,omitempty"`
	Tags  *string `json:"tags,omitempty"`
	Phone *string `json:"phone,omitempty"`
}

type metafieldWire struct {
	ID        int64  `json:"id,omitempty"`
	Namespace string `json:"namespace"`
	Key       string `json:"key"`
	Type      string `json:"type"`
	Value     string `json:"value"`
}

type metafieldEnvelope struct {
	Metafield metafieldWire `json:"metafield"`
}

// CustomerInput holds the fields of a new customer.
type CustomerInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Tags      []string
	Note      string
}

// CustomerUpdate holds the fields to change on an existing customer.
// Nil fields are left untouched.
type CustomerUpdate struct {
	Tags  []string
	Note  *string
	Phone *string
}

func (u CustomerUpdate) toWire(id int64) updateCustomerWire {
	w := updateCustomerWire{ID: id, Note: u.Note, Phone: u.Phone}
	if u.Tags != nil {
		joined := annotation.JoinTags(u.Tags)
		w.Tags = &joined
	}
	return w
}
