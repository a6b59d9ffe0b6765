// Leadbridge - B2B Questionnaire Lead Intake Bridge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leadbridge

// Package intake runs one questionnaire submission end to end.
//
// Pipeline:
//  1. Validate the contact block (no side effects on failure)
//  2. Derive tags, note fragment and metadata from the answers
//  3. Reconcile the customer in the CRM
//  4. Render the submitter and operator emails
//  5. Send both emails concurrently
//
// Only step 1 can fail the request. CRM and mail problems are logged and
// reflected in the response body, which is always ok=true past validation.
package intake

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/leadbridge/internal/annotation"
	"github.com/tomtom215/leadbridge/internal/compose"
	"github.com/tomtom215/leadbridge/internal/logging"
	"github.com/tomtom215/leadbridge/internal/metrics"
	"github.com/tomtom215/leadbridge/internal/models"
	"github.com/tomtom215/leadbridge/internal/notify"
	"github.com/tomtom215/leadbridge/internal/validation"
)

// Notification audiences, used as log fields and metric labels.
const (
	AudienceSubmitter = "submitter"
	AudienceOperator  = "operator"
)

// Reconciler maps a contact onto a CRM customer.
type Reconciler interface {
	Reconcile(ctx context.Context, contact models.ContactInfo, req models.AnnotationRequest) (models.ReconcileResult, error)
}

// Mailer delivers one email and reports the outcome.
type Mailer interface {
	Send(ctx context.Context, msg notify.Message) models.DeliveryResult
}

// ValidationError is returned when the contact block is incomplete.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing contact fields: %v", e.Fields)
}

// Service processes submissions.
type Service struct {
	reconciler Reconciler
	mailer     Mailer
	operators  []string

	// reconcileBudget bounds the whole CRM step. Zero means only the
	// request context applies.
	reconcileBudget time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithReconcileBudget caps the time spent reconciling one submission,
// across all CRM calls. When it runs out the submission continues with
// customer_id null so the response still fits the server write deadline.
func WithReconcileBudget(d time.Duration) Option {
	return func(s *Service) {
		s.reconcileBudget = d
	}
}

// NewService creates a service that notifies operators at the given addresses.
func NewService(reconciler Reconciler, mailer Mailer, operators []string, opts ...Option) *Service {
	s := &Service{
		reconciler: reconciler,
		mailer:     mailer,
		operators:  operators,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit processes one submission. The only error it returns is
// *ValidationError; everything past validation degrades into the response.
func (s *Service) Submit(ctx context.Context, sub models.LeadSubmission) (*models.LeadResponse, error) {
	logger := logging.Ctx(ctx)

	contact := models.ContactFromAnswers(sub.Answers)
	if verr := validation.ValidateStruct(&contact); verr != nil {
		metrics.RecordLeadSubmission("missing_contact")
		logger.Info().Strs("fields", verr.Fields()).Msg("Submission rejected: incomplete contact")
		return nil, &ValidationError{Fields: verr.Fields()}
	}

	req := annotation.Derive(sub.Answers)

	resp := &models.LeadResponse{OK: true}

	result, err := s.reconcile(ctx, contact, req)
	if err != nil {
		logger.Error().Err(err).Str("email", logging.SanitizeEmail(contact.Email)).Msg("Customer reconciliation failed")
	} else {
		id := result.RecordID
		resp.CustomerID = &id
		resp.CustomerCreated = result.WasCreated
	}

	submitterDoc := compose.SubmitterMessage(contact.Name, sub.SummaryHTML)
	operatorDoc := compose.RenderOperator(compose.OperatorDetails{
		Contact:     contact,
		Answers:     sub.Answers,
		SummaryHTML: sub.SummaryHTML,
		RecordID:    resp.CustomerID,
		WasCreated:  resp.CustomerCreated,
		ShopOrigin:  logging.ShopOriginFromContext(ctx),
	})

	// Neither send returns an error, so the group only joins them.
	var g errgroup.Group
	g.Go(func() error {
		resp.MailUser = s.send(ctx, AudienceSubmitter, []string{contact.Email}, submitterDoc)
		return nil
	})
	g.Go(func() error {
		resp.MailAdmin = s.send(ctx, AudienceOperator, s.operators, operatorDoc)
		return nil
	})
	_ = g.Wait()

	metrics.RecordLeadSubmission("accepted")
	logger.Info().
		Bool("crm_ok", resp.CustomerID != nil).
		Bool("customer_created", resp.CustomerCreated).
		Str("mail_user", resp.MailUser.Outcome()).
		Str("mail_admin", resp.MailAdmin.Outcome()).
		Msg("Submission processed")

	return resp, nil
}

// reconcile isolates the CRM step, including panics from the client.
func (s *Service) reconcile(ctx context.Context, contact models.ContactInfo, req models.AnnotationRequest) (result models.ReconcileResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("reconcile panic: %v", r)
		}
	}()
	if s.reconcileBudget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.reconcileBudget)
		defer cancel()
	}
	return s.reconciler.Reconcile(ctx, contact, req)
}

// deliver calls the mailer, turning a panic into an attempted, failed delivery.
func (s *Service) deliver(ctx context.Context, msg notify.Message) (res models.DeliveryResult) {
	defer func() {
		if r := recover(); r != nil {
			logging.Ctx(ctx).Error().Str("panic", fmt.Sprint(r)).Msg("Mailer panicked")
			res = models.DeliveryResult{
				Attempted: true,
				ErrorCode: models.ErrorCodeUnknown,
				Detail:    "mailer failed unexpectedly",
			}
		}
	}()
	return s.mailer.Send(ctx, msg)
}

func (s *Service) send(ctx context.Context, audience string, to []string, doc compose.Document) models.DeliveryResult {
	start := time.Now()
	res := s.deliver(ctx, notify.Message{To: to, Subject: doc.Subject, HTML: doc.HTML})

	var elapsed time.Duration
	if res.Attempted {
		elapsed = time.Since(start)
	}
	metrics.RecordNotification(audience, res.Outcome(), elapsed)

	if res.Attempted && !res.Accepted {
		logging.Ctx(ctx).Warn().
			Str("audience", audience).
			Str("error_code", res.ErrorCode).
			Str("detail", logging.SanitizeLogValue(res.Detail)).
			Msg("Notification not delivered")
	}
	return res
}
