// Leadbridge - B2B Questionnaire Lead Intake Bridge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leadbridge

package idempotency

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/leadbridge/internal/logging"
	"github.com/tomtom215/leadbridge/internal/metrics"
)

// captured is a buffered handler response.
type captured struct {
	status int
	header http.Header
	body   []byte
}

// captureWriter buffers a response so it can be stored and fanned out.
type captureWriter struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func newCaptureWriter() *captureWriter {
	return &captureWriter{header: make(http.Header)}
}

func (c *captureWriter) Header() http.Header { return c.header }

func (c *captureWriter) WriteHeader(code int) {
	if c.status == 0 {
		c.status = code
	}
}

func (c *captureWriter) Write(b []byte) (int, error) {
	if c.status == 0 {
		c.status = http.StatusOK
	}
	return c.body.Write(b)
}

func (c *captureWriter) result() *captured {
	status := c.status
	if status == 0 {
		status = http.StatusOK
	}
	return &captured{status: status, header: c.header, body: c.body.Bytes()}
}

// Replayer is HTTP middleware serving stored responses for repeated keys.
type Replayer struct {
	store Store
	ttl   time.Duration
	group singleflight.Group
}

// NewReplayer creates a Replayer storing successful responses for ttl.
func NewReplayer(store Store, ttl time.Duration) *Replayer {
	return &Replayer{store: store, ttl: ttl}
}

// Middleware returns the chi-compatible middleware. Requests without a
// valid key, and non-POST requests, pass straight through.
func (rp *Replayer) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(HeaderKey)
		if r.Method != http.MethodPost || key == "" {
			next.ServeHTTP(w, r)
			return
		}
		logger := logging.Ctx(r.Context())
		if !ValidKey(key) {
			logger.Debug().Int("key_length", len(key)).Msg("Ignoring malformed idempotency key")
			next.ServeHTTP(w, r)
			return
		}

		entry, err := rp.store.Lookup(r.Context(), key)
		switch {
		case err != nil:
			metrics.RecordIdempotency("lookup", "error")
			logger.Warn().Err(err).Msg("Idempotency lookup failed, processing request")
		case entry != nil:
			metrics.RecordIdempotency("lookup", "hit")
			writeReplay(w, entry.Status, entry.ContentType, entry.Body)
			return
		default:
			metrics.RecordIdempotency("lookup", "miss")
		}

		ran := false
		v, _, _ := rp.group.Do(key, func() (interface{}, error) {
			ran = true
			cw := newCaptureWriter()
			next.ServeHTTP(cw, r)
			res := cw.result()
			if res.status == http.StatusOK {
				rp.save(r, key, res)
			}
			return res, nil
		})
		res := v.(*captured)

		if !ran {
			// Another request with this key produced the response.
			writeReplay(w, res.status, res.header.Get("Content-Type"), res.body)
			return
		}
		for k, vals := range res.header {
			w.Header()[k] = vals
		}
		w.WriteHeader(res.status)
		_, _ = w.Write(res.body)
	})
}

func (rp *Replayer) save(r *http.Request, key string, res *captured) {
	entry := newEntry(key, res.status, res.header, res.body, rp.ttl)
	if err := rp.store.Save(r.Context(), entry, rp.ttl); err != nil {
		metrics.RecordIdempotency("save", "error")
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Failed to store idempotent response")
		return
	}
	metrics.RecordIdempotency("save", "ok")
}

func writeReplay(w http.ResponseWriter, status int, contentType string, body []byte) {
	metrics.RecordLeadSubmission("replayed")
	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.Header().Set(HeaderReplay, "true")
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
