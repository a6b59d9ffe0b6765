// Leadbridge - B2B Questionnaire Lead Intake Bridge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leadbridge

package api

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/leadbridge/internal/annotation"
	"github.com/tomtom215/leadbridge/internal/config"
	"github.com/tomtom215/leadbridge/internal/crm"
	"github.com/tomtom215/leadbridge/internal/idempotency"
	"github.com/tomtom215/leadbridge/internal/intake"
	"github.com/tomtom215/leadbridge/internal/middleware"
	"github.com/tomtom215/leadbridge/internal/models"
	"github.com/tomtom215/leadbridge/internal/notify"
	"github.com/tomtom215/leadbridge/internal/reconcile"
)

// fakeShopify is an in-memory Shopify Admin customers API.
type fakeShopify struct {
	mu         sync.Mutex
	nextID     int64
	customers  map[int64]map[string]interface{}
	metafields int
	requests   int
	failAll    bool
}

func newFakeShopify() *fakeShopify {
	return &fakeShopify{nextID: 1000, customers: make(map[int64]map[string]interface{})}
}

func (f *fakeShopify) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests++

	if f.failAll {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, `{"errors":"upstream down"}`)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/admin/api/2024-07")
	var body map[string]map[string]interface{}
	if raw, _ := io.ReadAll(r.Body); len(raw) > 0 {
		_ = json.Unmarshal(raw, &body)
	}

	switch {
	case r.Method == http.MethodGet && path == "/customers/search.json":
		email := strings.TrimPrefix(r.URL.Query().Get("query"), "email:")
		hits := []map[string]interface{}{}
		for _, c := range f.customers {
			if c["email"] == email {
				hits = append(hits, c)
			}
		}
		writeBody(w, http.StatusOK, map[string]interface{}{"customers": hits})
	case r.Method == http.MethodPost && path == "/customers.json":
		f.nextID++
		c := body["customer"]
		c["id"] = f.nextID
		f.customers[f.nextID] = c
		writeBody(w, http.StatusCreated, map[string]interface{}{"customer": c})
	case strings.HasSuffix(path, "/metafields.json"):
		f.metafields++
		writeBody(w, http.StatusCreated, map[string]interface{}{"metafield": body["metafield"]})
	case strings.HasPrefix(path, "/customers/"):
		id, _ := strconv.ParseInt(strings.TrimSuffix(strings.TrimPrefix(path, "/customers/"), ".json"), 10, 64)
		c, ok := f.customers[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.Method == http.MethodPut {
			for k, v := range body["customer"] {
				if k != "id" {
					c[k] = v
				}
			}
		}
		writeBody(w, http.StatusOK, map[string]interface{}{"customer": c})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeShopify) setFailAll(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failAll = v
}

func (f *fakeShopify) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests
}

func (f *fakeShopify) customer(email string) map[string]interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.customers {
		if c["email"] == email {
			return c
		}
	}
	return nil
}

func writeBody(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// fakeResend accepts every email.
type fakeResend struct {
	mu   sync.Mutex
	sent []map[string]interface{}
}

func (f *fakeResend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var msg map[string]interface{}
	_ = json.NewDecoder(r.Body).Decode(&msg)
	f.mu.Lock()
	f.sent = append(f.sent, msg)
	n := len(f.sent)
	f.mu.Unlock()
	writeBody(w, http.StatusOK, map[string]string{"id": "email_" + strconv.Itoa(n)})
}

func (f *fakeResend) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type pipeline struct {
	handler http.Handler
	shopify *fakeShopify
	resend  *fakeResend
}

func newPipeline(t *testing.T, mailKey string, replay bool) *pipeline {
	t.Helper()

	shop := newFakeShopify()
	shopSrv := httptest.NewServer(shop)
	t.Cleanup(shopSrv.Close)
	mail := &fakeResend{}
	mailSrv := httptest.NewServer(mail)
	t.Cleanup(mailSrv.Close)

	crmClient := crm.NewCircuitBreakerClient(&config.ShopifyConfig{
		BaseURL:            shopSrv.URL + "/admin/api/2024-07",
		AccessToken:        "shpat_test",
		Timeout:            5 * time.Second,
		MetafieldNamespace: "labalancia",
		MetafieldKey:       "b2b_quiz",
	})
	sender := notify.NewSender(&config.MailConfig{
		APIKey:   mailKey,
		Endpoint: mailSrv.URL + "/emails",
		From:     "LaBalancia <no-reply@labalancia.pl>",
		Timeout:  5 * time.Second,
	})
	engine := reconcile.NewEngine(crmClient, "labalancia", "b2b_quiz")
	service := intake.NewService(engine, sender, []string{"sales@labalancia.pl"})

	var replayer *idempotency.Replayer
	backend := ""
	if replay {
		replayer = idempotency.NewReplayer(idempotency.NewMemoryStore(), time.Hour)
		backend = idempotency.BackendMemory
	}
	h := NewHandler(service, crmClient, HandlerConfig{
		MaxBodyBytes:       1 << 20,
		MailConfigured:     sender.Configured(),
		IdempotencyBackend: backend,
	})
	limiter := middleware.NewRateLimiter(1000, time.Minute, false)
	return &pipeline{
		handler: NewRouter(h, limiter, replayer).Setup(),
		shopify: shop,
		resend:  mail,
	}
}

func (p *pipeline) submit(t *testing.T, body, idemKey string) (*httptest.ResponseRecorder, models.LeadResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, PathLead, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shop-Origin", "labalancia.myshopify.com")
	if idemKey != "" {
		req.Header.Set(idempotency.HeaderKey, idemKey)
	}
	rec := httptest.NewRecorder()
	p.handler.ServeHTTP(rec, req)

	var resp models.LeadResponse
	if rec.Code == http.StatusOK {
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response %s: %v", rec.Body.String(), err)
		}
	}
	return rec, resp
}

const annaLead = `{
  "answers": {
    "contact": {"name": " Anna  Kowalska ", "email": "A@X.com ", "phone": "600 100 200", "consent": "on"},
    "partner": "Allegro",
    "platform": "Shopify",
    "model": "dropshipping",
    "volume": "100-500",
    "marketplaces": ["Allegro", "Amazon"]
  },
  "summary_html": "<ul><li>Rekomendacja</li></ul>"
}`

func TestPipeline_FirstSubmissionCreatesSecondMerges(t *testing.T) {
	t.Parallel()

	p := newPipeline(t, "re_test", false)

	rec, first := p.submit(t, annaLead, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("first status = %d: %s", rec.Code, rec.Body.String())
	}
	if !first.OK || first.CustomerID == nil || !first.CustomerCreated {
		t.Fatalf("first response = %s", rec.Body.String())
	}
	if !first.MailUser.Accepted || !first.MailAdmin.Accepted {
		t.Errorf("mail results = %+v / %+v", first.MailUser, first.MailAdmin)
	}

	c := p.shopify.customer("a@x.com")
	if c == nil {
		t.Fatal("customer a@x.com not created")
	}
	if c["first_name"] != "Anna" || c["last_name"] != "Kowalska" {
		t.Errorf("name = %v %v", c["first_name"], c["last_name"])
	}
	if tags, _ := c["tags"].(string); !strings.Contains(tags, "B2B-QUIZ") {
		t.Errorf("tags = %q, want B2B-QUIZ", tags)
	}

	rec, second := p.submit(t, annaLead, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("second status = %d", rec.Code)
	}
	if second.CustomerCreated || second.CustomerID == nil || *second.CustomerID != *first.CustomerID {
		t.Errorf("second response = %s, want merge into %d", rec.Body.String(), *first.CustomerID)
	}

	c = p.shopify.customer("a@x.com")
	tags, _ := c["tags"].(string)
	seen := map[string]int{}
	for _, tag := range annotation.ParseTags(tags) {
		seen[strings.ToLower(tag)]++
	}
	for tag, n := range seen {
		if n > 1 {
			t.Errorf("tag %q appears %d times in %q", tag, n, tags)
		}
	}
	if seen["b2b-quiz"] != 1 {
		t.Errorf("tags = %q, want B2B-QUIZ once", tags)
	}
	note, _ := c["note"].(string)
	if got := strings.Count(note, annotation.NoteHeader); got != 2 {
		t.Errorf("note fragments = %d, want 2:\n%s", got, note)
	}
	if p.resend.count() != 4 {
		t.Errorf("emails sent = %d, want 4", p.resend.count())
	}
}

func TestPipeline_MailNotConfigured(t *testing.T) {
	t.Parallel()

	p := newPipeline(t, "", false)
	rec, resp := p.submit(t, annaLead, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if resp.MailUser.Attempted || resp.MailAdmin.Attempted {
		t.Errorf("mail attempted without key: %s", rec.Body.String())
	}
	if resp.MailUser.Detail != notify.DetailMissingKey {
		t.Errorf("detail = %q", resp.MailUser.Detail)
	}
	if p.resend.count() != 0 {
		t.Errorf("emails sent = %d, want 0", p.resend.count())
	}
}

func TestPipeline_CRMDownStillMails(t *testing.T) {
	t.Parallel()

	p := newPipeline(t, "re_test", false)
	p.shopify.setFailAll(true)

	rec, resp := p.submit(t, annaLead, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if resp.CustomerID != nil || resp.CustomerCreated {
		t.Errorf("response = %s, want null customer", rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"customer_id":null`) {
		t.Errorf("customer_id not null: %s", rec.Body.String())
	}
	if !resp.MailUser.Attempted || !resp.MailAdmin.Attempted {
		t.Errorf("mails not attempted: %s", rec.Body.String())
	}
}

func TestPipeline_MissingContactHasNoSideEffects(t *testing.T) {
	t.Parallel()

	p := newPipeline(t, "re_test", false)
	rec, _ := p.submit(t, `{"answers":{"contact":{"name":"Anna","email":"a@x.com","phone":"1","consent":false}}}`, "")

	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), models.ErrMissingContact) {
		t.Fatalf("response = %d %s", rec.Code, rec.Body.String())
	}
	if p.shopify.requestCount() != 0 || p.resend.count() != 0 {
		t.Errorf("side effects: shopify=%d resend=%d", p.shopify.requestCount(), p.resend.count())
	}
}

func TestPipeline_IdempotentReplay(t *testing.T) {
	t.Parallel()

	p := newPipeline(t, "re_test", true)

	rec1, first := p.submit(t, annaLead, "lead-7f3a")
	rec2, second := p.submit(t, annaLead, "lead-7f3a")

	if rec2.Header().Get(idempotency.HeaderReplay) != "true" {
		t.Error("second response not marked as replay")
	}
	if rec1.Body.String() != rec2.Body.String() {
		t.Errorf("replayed body differs:\n%s\n%s", rec1.Body.String(), rec2.Body.String())
	}
	if !second.CustomerCreated || *second.CustomerID != *first.CustomerID {
		t.Errorf("replay = %+v", second)
	}
	if p.resend.count() != 2 {
		t.Errorf("emails sent = %d, want 2", p.resend.count())
	}
	if rec2.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("replay lost CORS headers")
	}

	rec := do(p.handler, http.MethodGet, PathHealthReady, "")
	if !strings.Contains(rec.Body.String(), `"idempotency":"memory"`) || !strings.Contains(rec.Body.String(), `"crm_configured":true`) {
		t.Errorf("readiness = %s", rec.Body.String())
	}
}
