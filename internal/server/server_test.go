package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"rcadesk/internal/assistant"
	"rcadesk/internal/derive"
	"rcadesk/internal/domain"
	"rcadesk/internal/seed"
	"rcadesk/internal/store"
)

const testSecret = "test-secret"

type testServer struct {
	URL    string
	Store  *store.Store
	client *http.Client
	close  func()
}

func (s *testServer) Client() *http.Client { return s.client }
func (s *testServer) Close()               { s.close() }

type fakeGen struct {
	text  string
	err   error
	calls int
}

func (f *fakeGen) Generate(_ context.Context, _, _ string) (string, error) {
	f.calls++
	return f.text, f.err
}

type serverOpts struct {
	gen         assistant.Generator
	limiter     *assistant.Limiter
	allowHeader bool
}

func newTestServer(t *testing.T, opts serverOpts) (*testServer, func()) {
	t.Helper()
	now := func() time.Time { return time.Date(2024, 9, 10, 9, 30, 0, 0, time.UTC) }
	st := store.New(seed.Default(), store.Options{Now: now})
	handler, err := New(Config{
		Store:     st,
		Assistant: assistant.Assistant{Gen: opts.gen},
		Limiter:   opts.limiter,
		BasePath:  "/v0",
		Auth:      AuthConfig{JWTSecret: testSecret, TokenTTL: time.Hour, AllowActorHeader: opts.allowHeader},
		Now:       time.Now,
	})
	if err != nil {
		t.Fatalf("build handler: %v", err)
	}
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	srv := &http.Server{Handler: handler}
	go srv.Serve(ln)
	testSrv := &testServer{
		URL:    "http://" + ln.Addr().String(),
		Store:  st,
		client: &http.Client{},
		close: func() {
			srv.Shutdown(context.Background())
			ln.Close()
		},
	}
	return testSrv, func() { testSrv.Close() }
}

func doJSON(t *testing.T, client *http.Client, method, url string, body any, headers map[string]string) (*http.Response, []byte) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	res, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return res, data
}

func login(t *testing.T, srv *testServer, email, role string) map[string]string {
	t.Helper()
	res, data := doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v0/auth/login", map[string]any{
		"email": email,
		"role":  role,
	}, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("login status %d: %s", res.StatusCode, string(data))
	}
	var out LoginResponse
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal login: %v", err)
	}
	if out.Token == "" {
		t.Fatalf("expected token")
	}
	return map[string]string{"Authorization": "Bearer " + out.Token}
}

func errorCode(t *testing.T, data []byte) string {
	t.Helper()
	var env struct {
		Error apiErrorBody `json:"error"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatalf("unmarshal error envelope: %v (%s)", err, string(data))
	}
	return env.Error.Code
}

func TestHealthIsOpen(t *testing.T) {
	srv, cleanup := newTestServer(t, serverOpts{})
	defer cleanup()
	res, data := doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/health", nil, nil)
	if res.StatusCode != http.StatusOK || !strings.Contains(string(data), "ok") {
		t.Fatalf("health %d: %s", res.StatusCode, string(data))
	}
	if res.Header.Get("X-Request-Id") == "" {
		t.Fatalf("expected generated request id header")
	}
}

func TestRequestIDEchoed(t *testing.T) {
	srv, cleanup := newTestServer(t, serverOpts{})
	defer cleanup()
	res, _ := doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/health", nil, map[string]string{"X-Request-Id": "req-42"})
	if got := res.Header.Get("X-Request-Id"); got != "req-42" {
		t.Fatalf("expected echoed request id, got %q", got)
	}
}

func TestLoginRejectsWrongRole(t *testing.T) {
	srv, cleanup := newTestServer(t, serverOpts{})
	defer cleanup()
	res, data := doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v0/auth/login", map[string]any{
		"email": "moni@rosado.com",
		"role":  "contractor",
	}, nil)
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", res.StatusCode, string(data))
	}
	if code := errorCode(t, data); code != "invalid_credentials" {
		t.Fatalf("unexpected code %q", code)
	}
}

func TestRequiresAuthentication(t *testing.T) {
	srv, cleanup := newTestServer(t, serverOpts{})
	defer cleanup()
	res, data := doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/projects", nil, nil)
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", res.StatusCode, string(data))
	}
	res, _ = doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/projects", nil, map[string]string{"Authorization": "Bearer nope"})
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad token, got %d", res.StatusCode)
	}
}

func TestLegacyHeaderOnlyWhenAllowed(t *testing.T) {
	srv, cleanup := newTestServer(t, serverOpts{})
	defer cleanup()
	res, _ := doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/me", nil, map[string]string{"X-Actor-Id": "1"})
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 when header disabled, got %d", res.StatusCode)
	}

	allowed, cleanupAllowed := newTestServer(t, serverOpts{allowHeader: true})
	defer cleanupAllowed()
	res, data := doJSON(t, allowed.Client(), http.MethodGet, allowed.URL+"/v0/me", nil, map[string]string{"X-Actor-Id": "1"})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("me status %d: %s", res.StatusCode, string(data))
	}
	var me MeResponse
	if err := json.Unmarshal(data, &me); err != nil {
		t.Fatalf("unmarshal me: %v", err)
	}
	if me.User.ID != 1 || me.Source != "legacy_header" {
		t.Fatalf("unexpected principal %+v", me)
	}
}

func TestMoveProjectShowsActivity(t *testing.T) {
	srv, cleanup := newTestServer(t, serverOpts{})
	defer cleanup()
	admin := login(t, srv, "moni@rosado.com", "admin")

	res, data := doJSON(t, srv.Client(), http.MethodPatch, srv.URL+"/v0/projects/2/status", map[string]any{"status": "completed"}, admin)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("move status %d: %s", res.StatusCode, string(data))
	}
	var p domain.Project
	if err := json.Unmarshal(data, &p); err != nil {
		t.Fatalf("unmarshal project: %v", err)
	}
	if p.Status != domain.ProjectCompleted {
		t.Fatalf("expected completed, got %s", p.Status)
	}

	res, data = doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/activities?limit=1", nil, admin)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("activities status %d: %s", res.StatusCode, string(data))
	}
	var acts []domain.Activity
	if err := json.Unmarshal(data, &acts); err != nil {
		t.Fatalf("unmarshal activities: %v", err)
	}
	if len(acts) != 1 || !strings.Contains(acts[0].Description, "Affordable Housing Development") {
		t.Fatalf("expected move activity first, got %+v", acts)
	}
}

func TestInvalidStatusIsBadRequest(t *testing.T) {
	srv, cleanup := newTestServer(t, serverOpts{})
	defer cleanup()
	admin := login(t, srv, "moni@rosado.com", "admin")
	res, data := doJSON(t, srv.Client(), http.MethodPatch, srv.URL+"/v0/projects/2/status", map[string]any{"status": "archived"}, admin)
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", res.StatusCode, string(data))
	}
}

func TestUnknownProjectIsNotFound(t *testing.T) {
	srv, cleanup := newTestServer(t, serverOpts{})
	defer cleanup()
	admin := login(t, srv, "moni@rosado.com", "admin")
	before := srv.Store.Snapshot()
	res, data := doJSON(t, srv.Client(), http.MethodPatch, srv.URL+"/v0/projects/999/status", map[string]any{"status": "completed"}, admin)
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", res.StatusCode, string(data))
	}
	if code := errorCode(t, data); code != "not_found" {
		t.Fatalf("unexpected code %q", code)
	}
	if len(srv.Store.Snapshot().Activities) != len(before.Activities) {
		t.Fatalf("activity logged for unknown project")
	}
}

func TestContractorDeniedAnalytics(t *testing.T) {
	srv, cleanup := newTestServer(t, serverOpts{})
	defer cleanup()
	contractor := login(t, srv, "info@coastal.com", "contractor")
	for _, p := range []string{"/v0/analytics", "/v0/team", "/v0/clients/3", "/v0/users"} {
		res, data := doJSON(t, srv.Client(), http.MethodGet, srv.URL+p, nil, contractor)
		if res.StatusCode != http.StatusForbidden {
			t.Fatalf("%s: expected 403, got %d: %s", p, res.StatusCode, string(data))
		}
		if code := errorCode(t, data); code != "access_denied" {
			t.Fatalf("%s: unexpected code %q", p, code)
		}
	}
	res, data := doJSON(t, srv.Client(), http.MethodPatch, srv.URL+"/v0/projects/1/status", map[string]any{"status": "completed"}, contractor)
	if res.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 on move, got %d: %s", res.StatusCode, string(data))
	}
}

func TestContractorSeesOwnProjects(t *testing.T) {
	srv, cleanup := newTestServer(t, serverOpts{})
	defer cleanup()
	contractor := login(t, srv, "info@coastal.com", "contractor")
	res, data := doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/projects", nil, contractor)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("projects status %d: %s", res.StatusCode, string(data))
	}
	var projects []domain.Project
	if err := json.Unmarshal(data, &projects); err != nil {
		t.Fatalf("unmarshal projects: %v", err)
	}
	if len(projects) != 2 {
		t.Fatalf("expected 2 projects for client 3, got %d", len(projects))
	}
	for _, p := range projects {
		if p.ClientID != 3 {
			t.Fatalf("leaked project %d of client %d", p.ID, p.ClientID)
		}
	}
}

func TestDashboardPerRole(t *testing.T) {
	srv, cleanup := newTestServer(t, serverOpts{})
	defer cleanup()
	for _, tc := range []struct {
		email, role string
		admin       bool
	}{
		{"moni@rosado.com", "admin", true},
		{"info@coastal.com", "contractor", false},
	} {
		headers := login(t, srv, tc.email, tc.role)
		res, data := doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/dashboard", nil, headers)
		if res.StatusCode != http.StatusOK {
			t.Fatalf("%s dashboard %d: %s", tc.role, res.StatusCode, string(data))
		}
		var dv derive.DashboardView
		if err := json.Unmarshal(data, &dv); err != nil {
			t.Fatalf("unmarshal dashboard: %v", err)
		}
		if (dv.Admin != nil) != tc.admin || (dv.Contractor != nil) == tc.admin {
			t.Fatalf("%s: unexpected stats blocks %+v", tc.role, dv)
		}
	}
}

func TestContractorPaysOwnInvoice(t *testing.T) {
	srv, cleanup := newTestServer(t, serverOpts{})
	defer cleanup()
	contractor := login(t, srv, "info@coastal.com", "contractor")

	res, data := doJSON(t, srv.Client(), http.MethodPatch, srv.URL+"/v0/invoices/3/status", map[string]any{"status": "paid"}, contractor)
	if res.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 paying a draft, got %d: %s", res.StatusCode, string(data))
	}
	res, data = doJSON(t, srv.Client(), http.MethodPatch, srv.URL+"/v0/invoices/1/status", map[string]any{"status": "paid"}, contractor)
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for another client's invoice, got %d: %s", res.StatusCode, string(data))
	}
	res, data = doJSON(t, srv.Client(), http.MethodPatch, srv.URL+"/v0/invoices/2/status", map[string]any{"status": "paid"}, contractor)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("pay status %d: %s", res.StatusCode, string(data))
	}
	var inv domain.Invoice
	if err := json.Unmarshal(data, &inv); err != nil {
		t.Fatalf("unmarshal invoice: %v", err)
	}
	if inv.Status != domain.InvoicePaid {
		t.Fatalf("expected paid, got %s", inv.Status)
	}
}

func TestApplyAndUpload(t *testing.T) {
	srv, cleanup := newTestServer(t, serverOpts{})
	defer cleanup()
	contractor := login(t, srv, "info@coastal.com", "contractor")

	res, data := doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v0/projects/2/apply", nil, contractor)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("apply status %d: %s", res.StatusCode, string(data))
	}
	var app domain.Application
	if err := json.Unmarshal(data, &app); err != nil {
		t.Fatalf("unmarshal application: %v", err)
	}
	if app.ContractorID != 3 || app.Status != domain.ApplicationSubmitted {
		t.Fatalf("unexpected application %+v", app)
	}

	res, data = doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v0/documents", map[string]any{"size_bytes": 2048}, contractor)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("upload status %d: %s", res.StatusCode, string(data))
	}
	var doc domain.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("unmarshal document: %v", err)
	}
	if !strings.HasPrefix(doc.Name, "Document_") || doc.UploadedBy != 3 {
		t.Fatalf("unexpected document %+v", doc)
	}
}

func TestMessagingRoundTrip(t *testing.T) {
	srv, cleanup := newTestServer(t, serverOpts{})
	defer cleanup()
	contractor := login(t, srv, "info@coastal.com", "contractor")

	res, data := doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v0/conversations/1/messages", map[string]any{"text": "   "}, contractor)
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank message, got %d: %s", res.StatusCode, string(data))
	}
	res, data = doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v0/conversations/4/messages", map[string]any{"text": "hi"}, contractor)
	if res.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 messaging another contractor, got %d: %s", res.StatusCode, string(data))
	}
	res, data = doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v0/conversations/1/messages", map[string]any{"text": "Site survey is done."}, contractor)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("send status %d: %s", res.StatusCode, string(data))
	}

	res, data = doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/conversations/1/messages", nil, contractor)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("list status %d: %s", res.StatusCode, string(data))
	}
	var msgs []domain.ChatMessage
	if err := json.Unmarshal(data, &msgs); err != nil {
		t.Fatalf("unmarshal messages: %v", err)
	}
	if len(msgs) == 0 || msgs[len(msgs)-1].Text != "Site survey is done." {
		t.Fatalf("expected new message last, got %+v", msgs)
	}
}

func TestNotificationsReadAll(t *testing.T) {
	srv, cleanup := newTestServer(t, serverOpts{})
	defer cleanup()
	admin := login(t, srv, "moni@rosado.com", "admin")

	res, data := doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v0/notifications/read-all", nil, admin)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("read-all status %d: %s", res.StatusCode, string(data))
	}
	var mr MarkReadResponse
	if err := json.Unmarshal(data, &mr); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if mr.Updated != 2 {
		t.Fatalf("expected 2 updated, got %d", mr.Updated)
	}
	res, data = doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/notifications", nil, admin)
	var nr NotificationsResponse
	if err := json.Unmarshal(data, &nr); err != nil {
		t.Fatalf("unmarshal notifications: %v", err)
	}
	if res.StatusCode != http.StatusOK || nr.Unread != 0 {
		t.Fatalf("expected no unread, got %d (%d)", nr.Unread, res.StatusCode)
	}
}

func TestAssistantFallbacks(t *testing.T) {
	srv, cleanup := newTestServer(t, serverOpts{})
	defer cleanup()
	admin := login(t, srv, "moni@rosado.com", "admin")
	res, data := doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v0/assistant/ask", map[string]any{"question": "Which projects are late?"}, admin)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("ask status %d: %s", res.StatusCode, string(data))
	}
	var reply assistant.Reply
	if err := json.Unmarshal(data, &reply); err != nil {
		t.Fatalf("unmarshal reply: %v", err)
	}
	if reply.Text != assistant.ReplyUnavailable || !reply.Fallback {
		t.Fatalf("expected unavailable fallback, got %+v", reply)
	}

	gen := &fakeGen{err: errors.New("boom")}
	failing, cleanupFailing := newTestServer(t, serverOpts{gen: gen})
	defer cleanupFailing()
	admin = login(t, failing, "moni@rosado.com", "admin")
	res, data = doJSON(t, failing.Client(), http.MethodPost, failing.URL+"/v0/assistant/ask", map[string]any{"question": "Status?"}, admin)
	if err := json.Unmarshal(data, &reply); err != nil {
		t.Fatalf("unmarshal reply: %v", err)
	}
	if res.StatusCode != http.StatusOK || reply.Text != assistant.ReplyCallFailed || gen.calls != 1 {
		t.Fatalf("expected one failed call, got %d %+v calls=%d", res.StatusCode, reply, gen.calls)
	}
}

func TestAssistantRateLimited(t *testing.T) {
	gen := &fakeGen{text: "Draft text"}
	srv, cleanup := newTestServer(t, serverOpts{gen: gen, limiter: assistant.NewLimiter(1)})
	defer cleanup()
	admin := login(t, srv, "moni@rosado.com", "admin")

	res, data := doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v0/conversations/3/draft", nil, admin)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("draft status %d: %s", res.StatusCode, string(data))
	}
	res, data = doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v0/assistant/ask", map[string]any{"question": "again"}, admin)
	if res.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d: %s", res.StatusCode, string(data))
	}
	if gen.calls != 1 {
		t.Fatalf("expected generator called once, got %d", gen.calls)
	}
}

func TestOpenAPIServed(t *testing.T) {
	srv, cleanup := newTestServer(t, serverOpts{})
	defer cleanup()
	res, data := doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/openapi.json", nil, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("openapi status %d", res.StatusCode)
	}
	if !strings.Contains(string(data), "/v0/assistant/ask") || !strings.Contains(string(data), "bearerAuth") {
		t.Fatalf("openapi missing expected content")
	}
}
