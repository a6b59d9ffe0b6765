// Leadbridge - B2B Questionnaire Lead Intake Bridge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leadbridge

/*
Package supervisor runs Leadbridge's long-lived services under suture v4.

The tree has two layers:

	RootSupervisor ("leadbridge")
	├── BackgroundSupervisor ("background-layer")
	│   ├── IdempotencySweeperService (when idempotency is enabled)
	│   └── UptimeService
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

A sweeper crash is restarted with backoff without touching the HTTP server.
Supervisor events are logged through sutureslog into the zerolog pipeline.

The Lambda entry point does not use the tree; each invocation is served by
the same router directly.
*/
package supervisor
