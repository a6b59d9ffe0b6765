// Leadbridge - B2B Questionnaire Lead Intake Bridge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leadbridge

// Package reconcile maps a questionnaire submitter onto a CRM customer.
//
// The engine looks the submitter up by email. A known customer gets the new
// tags merged into its tag set and the note fragment appended to its note; an
// unknown one is created with them. Either way the raw answers are attached
// as a metafield on a best-effort basis.
//
// There is no lock around lookup-then-create. Two concurrent first-time
// submissions for the same address may both create a customer; Shopify's
// email uniqueness rejects the second one.
package reconcile

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/tomtom215/leadbridge/internal/annotation"
	"github.com/tomtom215/leadbridge/internal/crm"
	"github.com/tomtom215/leadbridge/internal/logging"
	"github.com/tomtom215/leadbridge/internal/metrics"
	"github.com/tomtom215/leadbridge/internal/models"
)

// CustomerStore is the subset of the CRM client the engine needs.
type CustomerStore interface {
	FindByEmail(ctx context.Context, email string) (*models.Customer, error)
	Get(ctx context.Context, id int64) (*models.Customer, error)
	Create(ctx context.Context, in crm.CustomerInput) (*models.Customer, error)
	Update(ctx context.Context, id int64, upd crm.CustomerUpdate) (*models.Customer, error)
	AttachMetadata(ctx context.Context, id int64, namespace, key string, value json.RawMessage) error
}

// Engine reconciles contacts against a CustomerStore.
type Engine struct {
	store     CustomerStore
	namespace string
	key       string
}

// NewEngine creates an engine that stores metadata under namespace/key.
func NewEngine(store CustomerStore, namespace, key string) *Engine {
	return &Engine{store: store, namespace: namespace, key: key}
}

// Reconcile finds or creates the customer for contact and applies req.
// Lookup, create and update failures are returned; metadata failures are
// logged and dropped.
func (e *Engine) Reconcile(ctx context.Context, contact models.ContactInfo, req models.AnnotationRequest) (models.ReconcileResult, error) {
	result, err := e.upsert(ctx, contact, req)
	metrics.RecordReconcile(result.WasCreated, err)
	if err != nil {
		return models.ReconcileResult{}, err
	}

	logging.Ctx(ctx).Info().
		Int64("customer_id", result.RecordID).
		Bool("created", result.WasCreated).
		Str("email", logging.SanitizeEmail(contact.Email)).
		Msg("Customer reconciled")

	e.attachMetadata(ctx, result.RecordID, req.Metadata)
	return result, nil
}

func (e *Engine) upsert(ctx context.Context, contact models.ContactInfo, req models.AnnotationRequest) (models.ReconcileResult, error) {
	existing, err := e.store.FindByEmail(ctx, contact.Email)
	if err != nil {
		return models.ReconcileResult{}, fmt.Errorf("find customer: %w", err)
	}

	if existing == nil {
		created, err := e.store.Create(ctx, crm.CustomerInput{
			FirstName: contact.FirstName(),
			LastName:  contact.LastName(),
			Email:     contact.Email,
			Phone:     contact.Phone,
			Tags:      req.TagsToAdd,
			Note:      req.NoteToAppend,
		})
		if err != nil {
			return models.ReconcileResult{}, fmt.Errorf("create customer: %w", err)
		}
		return models.ReconcileResult{RecordID: created.ID, WasCreated: true}, nil
	}

	// Search results can lag behind writes; merge against the record itself.
	current, err := e.store.Get(ctx, existing.ID)
	if err != nil {
		return models.ReconcileResult{}, fmt.Errorf("get customer %d: %w", existing.ID, err)
	}

	note := annotation.AppendNote(current.Note, req.NoteToAppend)
	upd := crm.CustomerUpdate{
		Tags: annotation.MergeTags(current.Tags, req.TagsToAdd),
		Note: &note,
	}
	if current.Phone == "" && contact.Phone != "" {
		phone := contact.Phone
		upd.Phone = &phone
	}

	if _, err := e.store.Update(ctx, current.ID, upd); err != nil {
		return models.ReconcileResult{}, fmt.Errorf("update customer %d: %w", current.ID, err)
	}
	return models.ReconcileResult{RecordID: current.ID, WasCreated: false}, nil
}

func (e *Engine) attachMetadata(ctx context.Context, id int64, value json.RawMessage) {
	if len(value) == 0 || e.namespace == "" || e.key == "" {
		return
	}
	err := e.store.AttachMetadata(ctx, id, e.namespace, e.key, value)
	metrics.RecordMetadataAttach(err)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Int64("customer_id", id).Msg("Metafield attach failed")
	}
}
