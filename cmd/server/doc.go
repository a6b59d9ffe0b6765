// Leadbridge - B2B Questionnaire Lead Intake Bridge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leadbridge

/*
Package main is the long-running HTTP entry point for Leadbridge.

Leadbridge receives questionnaire submissions from a storefront, reconciles
the submitter with a Shopify customer (find by email, merge tags and append
a note, or create), attaches the raw answers as a metafield, and sends a
confirmation email to the submitter and a summary to the operators through
Resend.

# Application Architecture

The server runs under a Suture v4 supervisor tree:

	RootSupervisor ("leadbridge")
	├── BackgroundSupervisor ("background-layer")
	│   ├── Uptime gauge
	│   └── Idempotency sweeper (when IDEMPOTENCY_ENABLED=true)
	└── APISupervisor ("api-layer")
	    └── HTTP Server

Startup order:

 1. Optional .env file (godotenv)
 2. Configuration: Koanf v2 with defaults, config.yaml and environment
 3. Logging: zerolog, JSON or console
 4. Pipeline: Shopify client with circuit breaker, Resend sender,
    reconciliation engine, intake service, optional replay store
 5. Supervisor tree and HTTP server

# Configuration

The most relevant variables:

	SHOPIFY_STORE_DOMAIN, SHOPIFY_ACCESS_TOKEN, SHOPIFY_API_VERSION
	RESEND_API_KEY, MAIL_FROM, MAIL_TO_ADMIN
	HTTP_PORT, HTTP_HOST, LOG_LEVEL, LOG_FORMAT
	IDEMPOTENCY_ENABLED, IDEMPOTENCY_BACKEND, IDEMPOTENCY_PATH

Missing Shopify or Resend credentials do not stop the server: submissions
still answer 200 with the affected fields reported as false or null.

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server drains
in-flight requests for up to 10 seconds and the replay store is closed.

# Example Usage

	export SHOPIFY_STORE_DOMAIN=example.myshopify.com
	export SHOPIFY_ACCESS_TOKEN=shpat_xxx
	export RESEND_API_KEY=re_xxx
	export MAIL_TO_ADMIN=sales@example.com,ops@example.com
	./leadbridge
*/
package main
