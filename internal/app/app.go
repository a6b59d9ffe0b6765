// Leadbridge - B2B Questionnaire Lead Intake Bridge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leadbridge

// Package app assembles the intake pipeline shared by the long-running
// server and the Lambda entry point.
package app

import (
	"fmt"
	"net/http"
	"runtime"

	"github.com/tomtom215/leadbridge/internal/api"
	"github.com/tomtom215/leadbridge/internal/config"
	"github.com/tomtom215/leadbridge/internal/crm"
	"github.com/tomtom215/leadbridge/internal/idempotency"
	"github.com/tomtom215/leadbridge/internal/intake"
	"github.com/tomtom215/leadbridge/internal/logging"
	"github.com/tomtom215/leadbridge/internal/metrics"
	"github.com/tomtom215/leadbridge/internal/middleware"
	"github.com/tomtom215/leadbridge/internal/notify"
	"github.com/tomtom215/leadbridge/internal/reconcile"
)

// Version is set at build time with -ldflags "-X .../internal/app.Version=...".
var Version = "dev"

// App holds the wired components.
type App struct {
	Config *config.Config
	CRM    *crm.CircuitBreakerClient
	Mailer *notify.Sender
	Intake *intake.Service

	// Idempotency is nil when replay is disabled.
	Idempotency idempotency.Store

	handler http.Handler
}

// New wires the CRM client, mailer, reconciliation engine, intake service,
// replay store and HTTP router from cfg.
func New(cfg *config.Config) (*App, error) {
	metrics.AppInfo.WithLabelValues(Version, runtime.Version()).Set(1)

	crmClient := crm.NewCircuitBreakerClient(&cfg.Shopify)
	sender := notify.NewSender(&cfg.Mail)
	engine := reconcile.NewEngine(crmClient, cfg.Shopify.MetafieldNamespace, cfg.Shopify.MetafieldKey)
	svc := intake.NewService(engine, sender, cfg.Mail.AdminRecipients,
		intake.WithReconcileBudget(cfg.ReconcileBudget()))

	if !crmClient.Configured() {
		logging.Warn().Msg("Shopify credentials missing, submissions will not reach the CRM")
	}
	if !sender.Configured() {
		logging.Warn().Msg("Resend API key missing, notification emails are disabled")
	}

	a := &App{
		Config: cfg,
		CRM:    crmClient,
		Mailer: sender,
		Intake: svc,
	}

	var replayer *idempotency.Replayer
	backend := ""
	if cfg.Idempotency.Enabled {
		store, err := idempotency.NewStore(&cfg.Idempotency)
		if err != nil {
			return nil, fmt.Errorf("init idempotency store: %w", err)
		}
		a.Idempotency = store
		replayer = idempotency.NewReplayer(store, cfg.Idempotency.TTL)
		backend = cfg.Idempotency.Backend
		if backend == "" {
			backend = idempotency.BackendMemory
		}
		logging.Info().
			Str("backend", backend).
			Dur("ttl", cfg.Idempotency.TTL).
			Msg("Idempotent replay enabled")
	}

	limiter := middleware.NewRateLimiter(
		cfg.Security.RateLimitReqs,
		cfg.Security.RateLimitWindow,
		cfg.Security.RateLimitDisabled,
	)

	handler := api.NewHandler(svc, crmClient, api.HandlerConfig{
		MaxBodyBytes:       cfg.Server.MaxBodyBytes,
		MailConfigured:     sender.Configured(),
		IdempotencyBackend: backend,
		Version:            Version,
	})
	a.handler = api.NewRouter(handler, limiter, replayer).Setup()

	return a, nil
}

// Handler returns the root HTTP handler.
func (a *App) Handler() http.Handler {
	return a.handler
}

// Close releases the replay store.
func (a *App) Close() error {
	if a.Idempotency == nil {
		return nil
	}
	if err := a.Idempotency.Close(); err != nil {
		return fmt.Errorf("close idempotency store: %w", err)
	}
	return nil
}
