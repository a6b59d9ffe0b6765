// Leadbridge - B2B Questionnaire Lead Intake Bridge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leadbridge

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/leadbridge/internal/metrics"
	"github.com/tomtom215/leadbridge/internal/models"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func hit(h http.Handler, remote string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/lead", nil)
	req.RemoteAddr = remote
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiter_RejectsOverBudget(t *testing.T) {
	h := NewRateLimiter(2, time.Minute, false).Handler("test-lead")(okHandler())
	counter := metrics.APIRateLimitHits.WithLabelValues("test-lead")
	before := testutil.ToFloat64(counter)

	for i := 0; i < 2; i++ {
		if rec := hit(h, "192.0.2.10:5000"); rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i, rec.Code)
		}
	}

	rec := hit(h, "192.0.2.10:5000")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	var body models.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.OK || body.Error != models.ErrRateLimited {
		t.Errorf("body = %+v", body)
	}
	if d := testutil.ToFloat64(counter) - before; d != 1 {
		t.Errorf("rate limit counter delta = %v, want 1", d)
	}

	// Another client has its own budget.
	if rec := hit(h, "192.0.2.11:5000"); rec.Code != http.StatusOK {
		t.Errorf("other client status = %d, want 200", rec.Code)
	}
}

func TestRateLimiter_PreflightNotCounted(t *testing.T) {
	t.Parallel()

	h := NewRateLimiter(1, time.Minute, false).Handler("preflight")(okHandler())
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodOptions, "/api/lead", nil)
		req.RemoteAddr = "192.0.2.30:1"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("preflight %d status = %d", i, rec.Code)
		}
	}
	if rec := hit(h, "192.0.2.30:1"); rec.Code != http.StatusOK {
		t.Errorf("first POST status = %d, want 200", rec.Code)
	}
}

func TestRateLimiter_Disabled(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		requests int
		window   time.Duration
		disabled bool
	}{
		{"flag", 1, time.Minute, true},
		{"zero requests", 0, time.Minute, false},
		{"zero window", 1, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := NewRateLimiter(tt.requests, tt.window, tt.disabled).Handler("disabled")(okHandler())
			for i := 0; i < 5; i++ {
				if rec := hit(h, "192.0.2.20:1"); rec.Code != http.StatusOK {
					t.Fatalf("request %d status = %d", i, rec.Code)
				}
			}
		})
	}
}
