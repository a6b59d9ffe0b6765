// Leadbridge - B2B Questionnaire Lead Intake Bridge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leadbridge

/*
Package api provides the HTTP surface of Leadbridge.

Routes:

  - /api/proxy/lead, /api/lead: questionnaire submission (POST, OPTIONS)
  - /api/wizard: wizard step actions (POST, OPTIONS)
  - /api/proxy/cta: CTA compatibility acknowledgement (POST, OPTIONS)
  - /api/health: liveness, any method
  - /api/health/ready: integration configuration report
  - /metrics: Prometheus exposition

Every body is JSON. Errors use the envelope {"ok": false, "error": "<code>"}
with the codes defined in the models package. Each route answers OPTIONS
itself and gates other methods with a JSON 405, so the CORS headers stamped
by middleware.AllowMethods appear on every response.

Usage Example:

	handler := api.NewHandler(intakeService, crmClient, api.HandlerConfig{
	    MaxBodyBytes:       cfg.Server.MaxBodyBytes,
	    MailConfigured:     sender.Configured(),
	    IdempotencyBackend: cfg.Idempotency.Backend,
	})
	router := api.NewRouter(handler, limiter, replayer)
	http.ListenAndServe(":3000", router.Setup())
*/
package api
