package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ariefcatur/gametrust/internal/admin"
	"github.com/ariefcatur/gametrust/internal/auth"
	"github.com/ariefcatur/gametrust/internal/disputes"
	"github.com/ariefcatur/gametrust/internal/drafts"
	"github.com/ariefcatur/gametrust/internal/listings"
	"github.com/ariefcatur/gametrust/internal/logger"
	"github.com/ariefcatur/gametrust/internal/users"
)

type memDisputes struct {
	mu    sync.Mutex
	items map[string]disputes.Dispute
	order []string
}

func (m *memDisputes) Insert(_ context.Context, d disputes.Dispute) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[d.ID] = d
	m.order = append(m.order, d.ID)
	return nil
}

func (m *memDisputes) Get(_ context.Context, id string) (disputes.Dispute, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.items[id]
	if !ok {
		return disputes.Dispute{}, disputes.ErrNotFound
	}
	return d, nil
}

func (m *memDisputes) List(_ context.Context) ([]disputes.Dispute, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]disputes.Dispute, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.items[id])
	}
	return out, nil
}

func (m *memDisputes) Update(_ context.Context, d disputes.Dispute, expected disputes.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.items[d.ID].Status != expected {
		return disputes.ErrConflict
	}
	m.items[d.ID] = d
	return nil
}

func (m *memDisputes) AddMessage(_ context.Context, msg disputes.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.items[msg.DisputeID]
	if !ok {
		return disputes.ErrNotFound
	}
	if d.Status.Terminal() {
		return disputes.ErrInvalidTransition
	}
	d.Messages = append(d.Messages, msg)
	m.items[d.ID] = d
	return nil
}

func (m *memDisputes) AddEvidence(_ context.Context, id string, party disputes.Party, at time.Time) (disputes.Dispute, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.items[id]
	if !ok {
		return disputes.Dispute{}, disputes.ErrNotFound
	}
	if !d.Status.Active() {
		return disputes.Dispute{}, disputes.ErrInvalidTransition
	}
	if party == disputes.PartyBuyer {
		d.BuyerEvidence++
	} else {
		d.SellerEvidence++
	}
	d.UpdatedAt = at
	m.items[id] = d
	return d, nil
}

type memListings struct {
	mu    sync.Mutex
	items map[string]listings.Listing
}

func (m *memListings) Insert(_ context.Context, l listings.Listing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[l.ID] = l
	return nil
}

func (m *memListings) Get(_ context.Context, id string) (listings.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.items[id]
	if !ok {
		return listings.Listing{}, listings.ErrNotFound
	}
	return l, nil
}

func (m *memListings) List(_ context.Context) ([]listings.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]listings.Listing, 0, len(m.items))
	for _, l := range m.items {
		out = append(out, l)
	}
	return out, nil
}

func (m *memListings) ListBySeller(ctx context.Context, seller string) ([]listings.Listing, error) {
	all, _ := m.List(ctx)
	return listings.Apply(all, listings.Filter{Seller: seller}), nil
}

func (m *memListings) Search(ctx context.Context, q listings.Query) ([]listings.Listing, int, error) {
	all, _ := m.List(ctx)
	active := listings.Apply(all, listings.Filter{Status: listings.StatusActive})
	return active, len(active), nil
}

func (m *memListings) Update(_ context.Context, l listings.Listing, expected listings.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.items[l.ID].Status != expected {
		return listings.ErrConflict
	}
	m.items[l.ID] = l
	return nil
}

func (m *memListings) IncrementViews(_ context.Context, id string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l := m.items[id]
	l.Views++
	m.items[id] = l
	return l.Views, nil
}

type memDrafts struct {
	mu sync.Mutex
	m  map[string]drafts.Draft
}

func (s *memDrafts) Load(_ context.Context, seller string) (drafts.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.m[seller]
	if !ok {
		return drafts.Draft{}, drafts.ErrNotFound
	}
	return d, nil
}

func (s *memDrafts) Save(_ context.Context, d drafts.Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[d.Seller] = d
	return nil
}

func (s *memDrafts) Delete(_ context.Context, seller string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, seller)
	return nil
}

type testServer struct {
	srv      *httptest.Server
	disputes *disputes.Service
	listings *listings.Service
	issuer   *auth.Issuer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ls := &listings.Service{Store: &memListings{items: map[string]listings.Listing{}}}
	ds := &disputes.Service{Store: &memDisputes{items: map[string]disputes.Dispute{}}}
	iss := auth.NewIssuer("test-secret")
	api := &API{
		Disputes: ds,
		Listings: ls,
		Drafts:   &drafts.Service{Store: &memDrafts{m: map[string]drafts.Draft{}}, Listings: ls},
		Auth:     iss,
		Log:      logger.Discard(),
	}
	r := NewRouter()
	api.Register(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &testServer{srv: srv, disputes: ds, listings: ls, issuer: iss}
}

func (ts *testServer) token(t *testing.T, role string) string {
	t.Helper()
	tok, err := ts.issuer.NewToken("tester", role, time.Hour)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	return tok
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req, err := http.NewRequest(method, ts.srv.URL+path, &buf)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do %s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	var out bytes.Buffer
	_, _ = out.ReadFrom(resp.Body)
	return resp, out.Bytes()
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	resp, body := ts.do(t, http.MethodGet, "/healthz", "", nil)
	if resp.StatusCode != http.StatusOK || string(body) != "ok" {
		t.Fatalf("healthz = %d %q", resp.StatusCode, body)
	}
}

func TestDisputeFlowOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	mod := ts.token(t, auth.RoleModerator)

	resp, body := ts.do(t, http.MethodPost, "/disputes", "", disputes.OpenInput{
		OrderID: "ORD-9", Buyer: "alice", Seller: "bob", AmountCents: 120_000, Reason: "credentials changed",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("open = %d %s", resp.StatusCode, body)
	}
	var d disputes.Dispute
	if err := json.Unmarshal(body, &d); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if d.Priority != disputes.PriorityUrgent {
		t.Fatalf("priority = %s", d.Priority)
	}

	resp, _ = ts.do(t, http.MethodPost, "/admin/disputes/"+d.ID+"/investigate", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("no token = %d", resp.StatusCode)
	}
	resp, body = ts.do(t, http.MethodPost, "/admin/disputes/"+d.ID+"/investigate", mod, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("investigate = %d %s", resp.StatusCode, body)
	}
	resp, body = ts.do(t, http.MethodPost, "/admin/disputes/"+d.ID+"/resolve", mod,
		map[string]string{"in_favor_of": "seller", "note": "logs show buyer error"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("resolve = %d %s", resp.StatusCode, body)
	}
	resp, _ = ts.do(t, http.MethodPost, "/admin/disputes/"+d.ID+"/cancel", mod, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("cancel after resolve = %d, want 409", resp.StatusCode)
	}
	resp, _ = ts.do(t, http.MethodPost, "/disputes/"+d.ID+"/messages", "",
		map[string]string{"sender": "alice", "role": "buyer", "body": "but why"})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("message on closed dispute = %d, want 409", resp.StatusCode)
	}

	resp, body = ts.do(t, http.MethodGet, "/admin/disputes?status=resolved_seller", mod, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list = %d", resp.StatusCode)
	}
	var page admin.Page[disputes.Dispute]
	if err := json.Unmarshal(body, &page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if page.Total != 1 || page.Items[0].ResolvedBy != "tester" {
		t.Fatalf("page = %+v", page)
	}
}

func TestOpenDisputeValidation(t *testing.T) {
	ts := newTestServer(t)
	resp, _ := ts.do(t, http.MethodPost, "/disputes", "", map[string]any{"order_id": "x"})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}
	req, _ := http.NewRequest(http.MethodPost, ts.srv.URL+"/disputes", bytes.NewBufferString("{nope"))
	r, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	r.Body.Close()
	if r.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad json = %d, want 400", r.StatusCode)
	}
}

func TestBulkListingsAndRoles(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()
	var ids []string
	for i := range 3 {
		l, err := ts.listings.Create(ctx, listings.NewListing{
			Title: fmt.Sprintf("Account %d", i), Game: "Valorant", Seller: "bob", PriceCents: 1_000,
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		ids = append(ids, l.ID)
	}
	mod := ts.token(t, auth.RoleModerator)

	resp, body := ts.do(t, http.MethodPost, "/admin/listings/bulk", mod, map[string]any{"action": "approve", "ids": ids})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("bulk = %d %s", resp.StatusCode, body)
	}
	var res admin.BulkResult
	_ = json.Unmarshal(body, &res)
	if res.Requested != 3 || len(res.Succeeded) != 3 {
		t.Fatalf("bulk result = %+v", res)
	}

	resp, _ = ts.do(t, http.MethodPost, "/admin/listings/bulk", mod, map[string]any{"action": "approve", "ids": []string{}})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("empty selection = %d, want 422", resp.StatusCode)
	}

	resp, body = ts.do(t, http.MethodGet, "/listings", "", nil)
	var page admin.Page[listings.Listing]
	_ = json.Unmarshal(body, &page)
	if resp.StatusCode != http.StatusOK || page.Total != 3 {
		t.Fatalf("browse = %d %+v", resp.StatusCode, page)
	}

	resp, _ = ts.do(t, http.MethodGet, "/admin/revenue/summary", mod, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("moderator on revenue = %d, want 403", resp.StatusCode)
	}
	resp, _ = ts.do(t, http.MethodPost, "/admin/listings/"+ids[0]+"/explode", mod, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown action = %d, want 404", resp.StatusCode)
	}
}

func TestDraftWizardOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	resp, _ := ts.do(t, http.MethodGet, "/drafts/bob", "", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing draft = %d", resp.StatusCode)
	}

	d := drafts.Draft{Step: 1, Title: "Short", Game: "Dota 2", Platform: "PC"}
	resp, _ = ts.do(t, http.MethodPut, "/drafts/bob", "", d)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("put = %d", resp.StatusCode)
	}
	resp, body := ts.do(t, http.MethodPost, "/drafts/bob/validate?step=1", "", nil)
	var v validateResp
	_ = json.Unmarshal(body, &v)
	if resp.StatusCode != http.StatusOK || v.Valid || v.Fields["title"] == "" {
		t.Fatalf("validate = %d %+v", resp.StatusCode, v)
	}
	// Without ?step the draft's own step is checked and reported.
	d.Step = 2
	ts.do(t, http.MethodPut, "/drafts/bob", "", d)
	resp, body = ts.do(t, http.MethodPost, "/drafts/bob/validate", "", nil)
	v = validateResp{}
	_ = json.Unmarshal(body, &v)
	if resp.StatusCode != http.StatusOK || v.Step != 2 || v.Fields["description"] == "" {
		t.Fatalf("validate current step = %d %+v", resp.StatusCode, v)
	}

	resp, body = ts.do(t, http.MethodPost, "/drafts/bob/submit", "", nil)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("submit incomplete = %d", resp.StatusCode)
	}
	var fe struct {
		Fields map[string]string `json:"fields"`
	}
	_ = json.Unmarshal(body, &fe)
	if fe.Fields["description"] == "" || fe.Fields["images"] == "" {
		t.Fatalf("fields = %v", fe.Fields)
	}

	d = drafts.Draft{
		Step: 4, Title: "Immortal Dota account", Game: "Dota 2", Platform: "PC",
		Description: "Original owner, email access, no bans, plenty of arcanas and battle pass levels.",
		PriceCents:  30_000, Images: []string{"https://cdn.example.com/a.png"},
	}
	ts.do(t, http.MethodPut, "/drafts/bob", "", d)
	resp, body = ts.do(t, http.MethodPost, "/drafts/bob/submit", "", nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("submit = %d %s", resp.StatusCode, body)
	}
	var l listings.Listing
	_ = json.Unmarshal(body, &l)
	if l.Status != listings.StatusPending || l.Seller != "bob" {
		t.Fatalf("listing = %+v", l)
	}
	resp, _ = ts.do(t, http.MethodGet, "/drafts/bob", "", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("draft after submit = %d", resp.StatusCode)
	}
}

func TestWriteErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{users.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("wrapped: %w", listings.ErrInvalidTransition), http.StatusConflict},
		{users.ErrExists, http.StatusConflict},
		{fmt.Errorf("%w: bad", disputes.ErrValidation), http.StatusUnprocessableEntity},
		{drafts.Errors{"title": "required"}, http.StatusUnprocessableEntity},
		{admin.ErrEmptySelection, http.StatusUnprocessableEntity},
		{errors.New("db exploded"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		writeError(rec, httptest.NewRequest(http.MethodGet, "/", nil), logger.Discard(), tc.err)
		if rec.Code != tc.want {
			t.Errorf("%v -> %d, want %d", tc.err, rec.Code, tc.want)
		}
	}
	rec := httptest.NewRecorder()
	writeError(rec, httptest.NewRequest(http.MethodGet, "/", nil), logger.Discard(), errors.New("secret dsn"))
	if bytes.Contains(rec.Body.Bytes(), []byte("secret")) {
		t.Fatal("internal errors must not leak")
	}
}
