// Leadbridge - B2B Questionnaire Lead Intake Bridge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leadbridge

// Package notify sends transactional email through the Resend HTTP API.
//
// Send never returns an error. Every outcome, including "not configured",
// is reported as a models.DeliveryResult so callers can return it to the
// client and keep going.
package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/leadbridge/internal/config"
	"github.com/tomtom215/leadbridge/internal/logging"
	"github.com/tomtom215/leadbridge/internal/models"
)

const (
	// DetailMissingKey is reported when no API key is configured.
	DetailMissingKey = "RESEND_API_KEY missing"

	// DetailNoRecipients is reported when the message has no recipients.
	DetailNoRecipients = "no recipients"

	maxResponseBody = 4096
	userAgent       = "Leadbridge-Mailer/1.0"
)

// Message is one email to send.
type Message struct {
	To      []string
	Subject string
	HTML    string
}

type resendPayload struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// Sender posts messages to Resend.
type Sender struct {
	apiKey   string
	endpoint string
	from     string
	client   *http.Client
}

// NewSender creates a sender from mail configuration.
func NewSender(cfg *config.MailConfig) *Sender {
	return &Sender{
		apiKey:   cfg.APIKey,
		endpoint: cfg.Endpoint,
		from:     cfg.From,
		client:   &http.Client{Timeout: cfg.Timeout},
	}
}

// Configured reports whether an API key is present.
func (s *Sender) Configured() bool {
	return s.apiKey != ""
}

// Send delivers msg. Blank recipients are dropped first.
func (s *Sender) Send(ctx context.Context, msg Message) models.DeliveryResult {
	if !s.Configured() {
		return models.DeliveryResult{Detail: DetailMissingKey}
	}

	recipients := cleanRecipients(msg.To)
	if len(recipients) == 0 {
		return models.DeliveryResult{Detail: DetailNoRecipients}
	}

	result := models.DeliveryResult{Attempted: true}

	payload, err := json.Marshal(resendPayload{
		From:    s.from,
		To:      recipients,
		Subject: msg.Subject,
		HTML:    msg.HTML,
	})
	if err != nil {
		result.Detail = fmt.Sprintf("failed to marshal payload: %v", err)
		result.ErrorCode = models.ErrorCodeUnknown
		return result
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		result.Detail = fmt.Sprintf("failed to create request: %v", err)
		result.ErrorCode = models.ErrorCodeInvalidConfig
		return result
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		result.Detail = fmt.Sprintf("failed to send email: %v", err)
		result.ErrorCode = classifyHTTPError(err)
		logging.Ctx(ctx).Warn().Err(err).Str("error_code", result.ErrorCode).Msg("Resend request failed")
		return result
	}
	defer func() { _ = resp.Body.Close() }()

	result.StatusCode = resp.StatusCode

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		body = []byte("(failed to read response)")
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		result.Accepted = true
		var respData struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(body, &respData); err == nil {
			result.MessageID = respData.ID
		}
		logging.Ctx(ctx).Debug().
			Str("message_id", result.MessageID).
			Int("recipients", len(recipients)).
			Dur("duration", time.Since(start)).
			Msg("Email accepted")
		return result
	}

	result.Detail = fmt.Sprintf("resend returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	result.ErrorCode = classifyHTTPStatusCode(resp.StatusCode)
	logging.Ctx(ctx).Warn().
		Int("status", resp.StatusCode).
		Str("error_code", result.ErrorCode).
		Msg("Resend rejected email")
	return result
}

func cleanRecipients(to []string) []string {
	out := make([]string, 0, len(to))
	for _, addr := range to {
		if addr = strings.TrimSpace(addr); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}

// classifyHTTPError classifies a transport error into an error code.
func classifyHTTPError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return models.ErrorCodeTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return models.ErrorCodeTimeout
	}
	errStr := strings.ToLower(err.Error())
	if strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline") {
		return models.ErrorCodeTimeout
	}
	if strings.Contains(errStr, "connection") || strings.Contains(errStr, "refused") {
		return models.ErrorCodeConnectionFailed
	}
	return models.ErrorCodeUnknown
}

// classifyHTTPStatusCode classifies an HTTP status code into an error code.
func classifyHTTPStatusCode(code int) string {
	switch {
	case code == 401 || code == 403:
		return models.ErrorCodeAuthFailed
	case code == 429:
		return models.ErrorCodeRateLimited
	case code == 413:
		return models.ErrorCodeContentTooLarge
	case code == 400 || code == 404 || code == 422:
		return models.ErrorCodeRejected
	case code >= 500:
		return models.ErrorCodeServerError
	default:
		return models.ErrorCodeUnknown
	}
}
