// Leadbridge - B2B Questionnaire Lead Intake Bridge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leadbridge

package crm

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/leadbridge/internal/config"
)

// recordedRequest captures what the fake store received.
type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Token  string
	Body   map[string]interface{}
}

type fakeStore struct {
	mu       sync.Mutex
	requests []recordedRequest
	handler  func(w http.ResponseWriter, r *http.Request)
}

func (f *fakeStore) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rec := recordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.Query().Get("query"),
		Token:  r.Header.Get(accessTokenHeader),
	}
	if r.Body != nil {
		raw, _ := io.ReadAll(r.Body)
		if len(raw) > 0 {
			_ = json.Unmarshal(raw, &rec.Body)
		}
	}
	f.mu.Lock()
	f.requests = append(f.requests, rec)
	f.mu.Unlock()
	f.handler(w, r)
}

func (f *fakeStore) last() recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func newTestClient(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*Client, *fakeStore) {
	t.Helper()
	store := &fakeStore{handler: handler}
	server := httptest.NewServer(store)
	t.Cleanup(server.Close)

	cfg := &config.ShopifyConfig{
		BaseURL:     server.URL + "/admin/api/2024-07",
		AccessToken: "shpat_test",
		Timeout:     5 * time.Second,
	}
	return NewClient(cfg), store
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestBaseURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  config.ShopifyConfig
		want string
	}{
		{"store domain", config.ShopifyConfig{StoreDomain: "shop.myshopify.com", APIVersion: "2024-07"}, "https://shop.myshopify.com/admin/api/2024-07"},
		{"override wins", config.ShopifyConfig{StoreDomain: "shop.myshopify.com", BaseURL: "http://localhost:9999/admin/api/x/"}, "http://localhost:9999/admin/api/x"},
		{"nothing", config.ShopifyConfig{}, ""},
	}
	for _, tt := range tests {
		if got := baseURL(&tt.cfg); got != tt.want {
			t.Errorf("%s: baseURL() = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestClient_NotConfigured(t *testing.T) {
	t.Parallel()

	client := NewClient(&config.ShopifyConfig{})
	if client.Configured() {
		t.Fatal("Configured() = true with no credentials")
	}

	_, err := client.FindByEmail(context.Background(), "a@b.pl")
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("err = %v, want ConfigurationError", err)
	}
	want := []string{"SHOPIFY_STORE_DOMAIN", "SHOPIFY_ACCESS_TOKEN"}
	if !reflect.DeepEqual(cfgErr.Missing, want) {
		t.Errorf("Missing = %v, want %v", cfgErr.Missing, want)
	}
}

func TestFindByEmail(t *testing.T) {
	t.Parallel()

	client, store := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"customers":[
			{"id":1,"email":"anna.k@firma.pl","tags":""},
			{"id":2,"email":"Anna@Firma.pl","first_name":"Anna","note":null,"phone":null,"tags":"VIP, B2B-QUIZ"}
		]}`)
	})

	c, err := client.FindByEmail(context.Background(), "anna@firma.pl")
	if err != nil {
		t.Fatalf("FindByEmail() error = %v", err)
	}
	if c == nil || c.ID != 2 {
		t.Fatalf("FindByEmail() = %+v, want exact match id 2", c)
	}
	if !reflect.DeepEqual(c.Tags, []string{"VIP", "B2B-QUIZ"}) {
		t.Errorf("Tags = %v", c.Tags)
	}
	if c.Note != "" || c.Phone != "" {
		t.Errorf("null fields should decode empty, got note=%q phone=%q", c.Note, c.Phone)
	}

	req := store.last()
	if req.Method != http.MethodGet || req.Path != "/admin/api/2024-07/customers/search.json" {
		t.Errorf("request = %s %s", req.Method, req.Path)
	}
	if req.Query != "email:anna@firma.pl" {
		t.Errorf("query = %q", req.Query)
	}
	if req.Token != "shpat_test" {
		t.Errorf("access token header = %q", req.Token)
	}
}

func TestFindByEmail_FirstHitFallback(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"customers":[{"id":7,"email":"other@firma.pl"},{"id":8,"email":"x@y.pl"}]}`)
	})

	c, err := client.FindByEmail(context.Background(), "anna@firma.pl")
	if err != nil {
		t.Fatal(err)
	}
	if c == nil || c.ID != 7 {
		t.Errorf("FindByEmail() = %+v, want first hit", c)
	}
}

func TestFindByEmail_NotFound(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"customers":[]}`)
	})

	c, err := client.FindByEmail(context.Background(), "nobody@firma.pl")
	if err != nil || c != nil {
		t.Errorf("FindByEmail() = %v, %v; want nil, nil", c, err)
	}
}

func TestCreate(t *testing.T) {
	t.Parallel()

	client, store := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, `{"customer":{"id":555,"email":"anna@firma.pl","tags":"B2B-QUIZ, B2B-QUIZ: Dropshipping"}}`)
	})

	c, err := client.Create(context.Background(), CustomerInput{
		FirstName: "Anna",
		LastName:  "Kowalska",
		Email:     "anna@firma.pl",
		Phone:     "+48 600 000 000",
		Tags:      []string{"B2B-QUIZ", "B2B-QUIZ: Dropshipping"},
		Note:      "note",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if c.ID != 555 {
		t.Errorf("ID = %d", c.ID)
	}

	req := store.last()
	if req.Method != http.MethodPost || !strings.HasSuffix(req.Path, "/customers.json") {
		t.Errorf("request = %s %s", req.Method, req.Path)
	}
	body := req.Body["customer"].(map[string]interface{})
	if body["tags"] != "B2B-QUIZ, B2B-QUIZ: Dropshipping" {
		t.Errorf("tags = %v", body["tags"])
	}
	if body["verified_email"] != true || body["accepts_marketing"] != false {
		t.Errorf("flags = verified %v marketing %v", body["verified_email"], body["accepts_marketing"])
	}
	if body["first_name"] != "Anna" || body["last_name"] != "Kowalska" {
		t.Errorf("names = %v %v", body["first_name"], body["last_name"])
	}
}

func TestUpdate_OnlyChangedFields(t *testing.T) {
	t.Parallel()

	client, store := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"customer":{"id":42,"tags":"VIP, B2B-QUIZ","note":"old\nnew"}}`)
	})

	note := "old\nnew"
	c, err := client.Update(context.Background(), 42, CustomerUpdate{
		Tags: []string{"VIP", "B2B-QUIZ"},
		Note: &note,
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if c.Note != note {
		t.Errorf("Note = %q", c.Note)
	}

	req := store.last()
	if req.Method != http.MethodPut || !strings.HasSuffix(req.Path, "/customers/42.json") {
		t.Errorf("request = %s %s", req.Method, req.Path)
	}
	body := req.Body["customer"].(map[string]interface{})
	if _, ok := body["phone"]; ok {
		t.Error("phone sent although unchanged")
	}
	if body["id"] != float64(42) || body["tags"] != "VIP, B2B-QUIZ" || body["note"] != note {
		t.Errorf("body = %v", body)
	}
}

func TestAttachMetadata(t *testing.T) {
	t.Parallel()

	client, store := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, `{"metafield":{"id":1}}`)
	})

	raw := json.RawMessage(`{"model":"Dropshipping"}`)
	if err := client.AttachMetadata(context.Background(), 42, "b2b_wizard", "answers", raw); err != nil {
		t.Fatalf("AttachMetadata() error = %v", err)
	}

	req := store.last()
	if !strings.HasSuffix(req.Path, "/customers/42/metafields.json") {
		t.Errorf("path = %s", req.Path)
	}
	mf := req.Body["metafield"].(map[string]interface{})
	if mf["namespace"] != "b2b_wizard" || mf["key"] != "answers" || mf["type"] != "json" {
		t.Errorf("metafield = %v", mf)
	}
	if mf["value"] != `{"model":"Dropshipping"}` {
		t.Errorf("value = %v, want JSON string", mf["value"])
	}
}

func TestUpstreamError(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnprocessableEntity, `{"errors":{"email":["has already been taken"]}}`)
	})

	_, err := client.Create(context.Background(), CustomerInput{Email: "dup@firma.pl"})
	var upErr *UpstreamError
	if !errors.As(err, &upErr) {
		t.Fatalf("err = %v, want UpstreamError", err)
	}
	if upErr.Status != http.StatusUnprocessableEntity || upErr.Operation != "create" {
		t.Errorf("UpstreamError = %+v", upErr)
	}
	if !strings.Contains(upErr.Body, "already been taken") {
		t.Errorf("Body = %q", upErr.Body)
	}
	if upErr.Temporary() {
		t.Error("422 should not be temporary")
	}
	if !IsUpstreamStatus(err, http.StatusUnprocessableEntity) {
		t.Error("IsUpstreamStatus() = false")
	}
}

func TestUpstreamError_Network(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client := NewClient(&config.ShopifyConfig{BaseURL: url, AccessToken: "x", Timeout: time.Second})
	_, err := client.Get(context.Background(), 1)

	var upErr *UpstreamError
	if !errors.As(err, &upErr) {
		t.Fatalf("err = %v, want UpstreamError", err)
	}
	if upErr.Status != 0 || upErr.Err == nil || !upErr.Temporary() {
		t.Errorf("UpstreamError = %+v", upErr)
	}
}

func TestReadBodyForError_Truncates(t *testing.T) {
	t.Parallel()

	big := strings.Repeat("x", maxErrorBodySize+10)
	got := readBodyForError(strings.NewReader(big))
	if !strings.HasSuffix(string(got), "... (truncated)") {
		t.Error("expected truncation marker")
	}
	small := readBodyForError(strings.NewReader("short"))
	if string(small) != "short" {
		t.Errorf("readBodyForError() = %q", small)
	}
}

func TestRateLimiter_ContextCancelled(t *testing.T) {
	t.Parallel()

	client := NewClient(&config.ShopifyConfig{
		BaseURL:           "http://127.0.0.1:1",
		AccessToken:       "x",
		RequestsPerSecond: 0.001,
		Burst:             1,
	})
	// Drain the single token.
	client.limiter.Allow()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := client.Get(ctx, 1)
	var upErr *UpstreamError
	if !errors.As(err, &upErr) || upErr.Status != 0 {
		t.Errorf("err = %v, want UpstreamError from limiter", err)
	}
}
