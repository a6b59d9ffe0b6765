// Leadbridge - B2B Questionnaire Lead Intake Bridge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leadbridge

/*
Package services provides suture.Service implementations for Leadbridge.

Each service implements:

	type Service interface {
	    Serve(ctx context.Context) error
	}

and fmt.Stringer, which suture uses in its event log.

# Available Services

HTTP Server (HTTPServerService):
  - Wraps *http.Server with graceful shutdown
  - Returns ctx.Err() after a clean shutdown so the supervisor does not restart it

Idempotency Sweeper (IdempotencySweeperService):
  - Runs Store.CleanupExpired on an interval (memory: drops expired entries,
    Badger: value log GC)
  - Publishes the idempotency_entries gauge
  - Returns suture.ErrDoNotRestart once the store is closed

Uptime (UptimeService):
  - Updates leadbridge_uptime_seconds
*/
package services
