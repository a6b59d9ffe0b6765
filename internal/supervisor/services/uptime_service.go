// Leadbridge - B2B Questionnaire Lead Intake Bridge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leadbridge

package services

import (
	"context"
	"time"

	"github.com/tomtom215/leadbridge/internal/metrics"
)

// UptimeService keeps the leadbridge_uptime_seconds gauge current.
type UptimeService struct {
	started  time.Time
	interval time.Duration
}

// NewUptimeService measures uptime from started.
func NewUptimeService(started time.Time, interval time.Duration) *UptimeService {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &UptimeService{started: started, interval: interval}
}

// Serve implements suture.Service.
func (u *UptimeService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(u.interval)
	defer ticker.Stop()

	for {
		metrics.AppUptime.Set(time.Since(u.started).Seconds())
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// String implements fmt.Stringer for suture event logs.
func (u *UptimeService) String() string {
	return "uptime"
}
