// Leadbridge - B2B Questionnaire Lead Intake Bridge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leadbridge

package services

import (
	"context"
	"errors"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/leadbridge/internal/idempotency"
	"github.com/tomtom215/leadbridge/internal/logging"
	"github.com/tomtom215/leadbridge/internal/metrics"
)

const defaultSweepInterval = 10 * time.Minute

// SweepableStore is the part of idempotency.Store the sweeper needs.
type SweepableStore interface {
	CleanupExpired(ctx context.Context) (int, error)
	Size(ctx context.Context) (int, error)
}

// IdempotencySweeperService periodically drops expired idempotent responses
// and publishes the store size as a gauge.
type IdempotencySweeperService struct {
	store    SweepableStore
	backend  string
	interval time.Duration
	name     string
}

// NewIdempotencySweeperService creates a sweeper. backend labels the gauge.
func NewIdempotencySweeperService(store SweepableStore, backend string, interval time.Duration) *IdempotencySweeperService {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	return &IdempotencySweeperService{
		store:    store,
		backend:  backend,
		interval: interval,
		name:     "idempotency-sweeper",
	}
}

// Serve implements suture.Service. A closed store stops the service for good.
func (s *IdempotencySweeperService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if err := s.sweep(ctx); errors.Is(err, idempotency.ErrStoreClosed) {
			return suture.ErrDoNotRestart
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (s *IdempotencySweeperService) sweep(ctx context.Context) error {
	logger := logging.WithComponent(s.name)

	removed, err := s.store.CleanupExpired(ctx)
	if err != nil {
		metrics.RecordIdempotency("cleanup", "error")
		logger.Warn().Err(err).Msg("Idempotency cleanup failed")
		return err
	}
	metrics.RecordIdempotency("cleanup", "ok")

	size, err := s.store.Size(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Idempotency size check failed")
		return err
	}
	metrics.IdempotencyEntries.WithLabelValues(s.backend).Set(float64(size))

	if removed > 0 {
		logger.Debug().Int("removed", removed).Int("remaining", size).Msg("Expired idempotent responses removed")
	}
	return nil
}

// String implements fmt.Stringer for suture event logs.
func (s *IdempotencySweeperService) String() string {
	return s.name
}
