// Leadbridge - B2B Questionnaire Lead Intake Bridge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leadbridge

// Package idempotency replays responses for retried POSTs carrying an
// X-Idempotency-Key header.
//
// A successful response is stored under its key for a TTL. A later request
// with the same key gets the stored body back with Idempotent-Replay: true
// and never reaches the CRM or the mail provider. Requests in flight with the
// same key are collapsed into one execution.
//
// Two backends are available:
//   - memory: process-local map, lost on restart
//   - badger: BadgerDB directory, entries expire through Badger's TTL
package idempotency

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/tomtom215/leadbridge/internal/config"
)

const (
	// HeaderKey carries the client-supplied idempotency key.
	HeaderKey = "X-Idempotency-Key"

	// HeaderReplay marks a replayed response.
	HeaderReplay = "Idempotent-Replay"

	// MaxKeyLength bounds accepted keys.
	MaxKeyLength = 200
)

// Backend names.
const (
	BackendMemory = "memory"
	BackendBadger = "badger"
)

// ErrStoreClosed is returned by every operation after Close.
var ErrStoreClosed = errors.New("idempotency store closed")

// Entry is a stored response.
type Entry struct {
	Key         string    `json:"key"`
	Status      int       `json:"status"`
	ContentType string    `json:"content_type"`
	Body        []byte    `json:"body"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Expired reports whether the entry is past its expiry at now.
func (e *Entry) Expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && !now.Before(e.ExpiresAt)
}

// Store persists responses by key.
type Store interface {
	// Lookup returns the live entry for key, or nil, nil.
	Lookup(ctx context.Context, key string) (*Entry, error)

	// Save stores e for ttl, replacing any previous entry.
	Save(ctx context.Context, e *Entry, ttl time.Duration) error

	// CleanupExpired removes expired entries and returns how many were removed.
	CleanupExpired(ctx context.Context) (int, error)

	// Size returns the number of live entries.
	Size(ctx context.Context) (int, error)

	// Close releases resources.
	Close() error
}

// ValidKey reports whether key is 1 to MaxKeyLength printable ASCII characters.
func ValidKey(key string) bool {
	if key == "" || len(key) > MaxKeyLength {
		return false
	}
	for i := 0; i < len(key); i++ {
		if key[i] < 0x20 || key[i] > 0x7E {
			return false
		}
	}
	return true
}

// NewStore opens the backend named in cfg.
func NewStore(cfg *config.IdempotencyConfig) (Store, error) {
	switch cfg.Backend {
	case BackendMemory, "":
		return NewMemoryStore(), nil
	case BackendBadger:
		return OpenBadgerStore(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown idempotency backend %q", cfg.Backend)
	}
}

// newEntry builds an entry for a captured response.
func newEntry(key string, status int, header http.Header, body []byte, ttl time.Duration) *Entry {
	now := time.Now().UTC()
	return &Entry{
		Key:         key,
		Status:      status,
		ContentType: header.Get("Content-Type"),
		Body:        append([]byte(nil), body...),
		CreatedAt:   now,
		ExpiresAt:   now.Add(ttl),
	}
}
