package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ariefcatur/gametrust/internal/auth"
	"github.com/ariefcatur/gametrust/internal/logger"
	"github.com/ariefcatur/gametrust/internal/redisx"
	"github.com/ariefcatur/gametrust/internal/users"
	"github.com/redis/go-redis/v9"
)

// memRedis covers the commands a Snapshot issues.
type memRedis struct {
	redis.Cmdable
	mu sync.Mutex
	m  map[string]string
}

func newMemRedis() *memRedis { return &memRedis{m: map[string]string{}} }

func (r *memRedis) Get(_ context.Context, key string) *redis.StringCmd {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.m[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (r *memRedis) Set(_ context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		r.m[key] = string(v)
	case string:
		r.m[key] = v
	}
	return redis.NewStatusResult("OK", nil)
}

func (r *memRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := r.m[k]; ok {
			delete(r.m, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (r *memRedis) has(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.m[key]
	return ok
}

type memUsers struct {
	mu    sync.Mutex
	items []users.User
}

func (m *memUsers) Insert(_ context.Context, u users.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.items {
		if strings.EqualFold(x.Username, u.Username) {
			return users.ErrExists
		}
	}
	m.items = append(m.items, u)
	return nil
}

func (m *memUsers) Get(_ context.Context, id string) (users.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.items {
		if u.ID == id {
			return u, nil
		}
	}
	return users.User{}, users.ErrNotFound
}

func (m *memUsers) GetByUsername(_ context.Context, name string) (users.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.items {
		if u.Username == name {
			return u, nil
		}
	}
	return users.User{}, users.ErrNotFound
}

func (m *memUsers) List(context.Context) ([]users.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]users.User(nil), m.items...), nil
}

func (m *memUsers) Update(context.Context, users.User, users.Status) error { return nil }

func (m *memUsers) AddTotals(context.Context, string, int64, int64, time.Time) error { return nil }

func TestUserListSnapshotFollowsRegistrations(t *testing.T) {
	rdb := newMemRedis()
	iss := auth.NewIssuer("test-secret")
	api := &API{
		Users:     &users.Service{Store: &memUsers{}},
		Auth:      iss,
		Snapshots: NewSnapshots(rdb, time.Minute, logger.Discard()),
		Log:       logger.Discard(),
	}
	r := NewRouter()
	api.Register(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	ts := &testServer{srv: srv, issuer: iss}
	adminTok := ts.token(t, auth.RoleAdmin)

	total := func() int {
		t.Helper()
		resp, body := ts.do(t, http.MethodGet, "/admin/users", adminTok, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("list users = %d %s", resp.StatusCode, body)
		}
		var page struct {
			Total int `json:"total"`
		}
		_ = json.Unmarshal(body, &page)
		return page.Total
	}

	if n := total(); n != 0 {
		t.Fatalf("total = %d", n)
	}
	if !rdb.has(redisx.KeySnapshotUsers) {
		t.Fatal("list should fill the snapshot")
	}

	resp, _ := ts.do(t, http.MethodPost, "/users", "", users.RegisterInput{Username: "new_buyer", Email: "nb@x.io"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register = %d", resp.StatusCode)
	}
	if rdb.has(redisx.KeySnapshotUsers) {
		t.Fatal("registration should drop the snapshot")
	}
	if n := total(); n != 1 {
		t.Fatalf("total after register = %d, want 1", n)
	}

	resp, _ = ts.do(t, http.MethodPost, "/users", "", users.RegisterInput{Username: "x", Email: "bad"})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("bad register = %d", resp.StatusCode)
	}
	if !rdb.has(redisx.KeySnapshotUsers) {
		t.Fatal("a rejected write must keep the snapshot")
	}
}

func TestInvalidatingMiddleware(t *testing.T) {
	rdb := newMemRedis()
	api := &API{Snapshots: NewSnapshots(rdb, time.Minute, logger.Discard()), Log: logger.Discard()}
	keys := []string{redisx.KeySnapshotDisputes, redisx.KeySnapshotListings, redisx.KeySnapshotUsers}

	cases := []struct {
		method string
		status int
		drop   bool
	}{
		{http.MethodGet, http.StatusOK, false},
		{http.MethodHead, http.StatusOK, false},
		{http.MethodPost, http.StatusCreated, true},
		{http.MethodPost, http.StatusNoContent, true},
		{http.MethodPost, http.StatusConflict, false},
		{http.MethodPost, http.StatusUnprocessableEntity, false},
		{http.MethodPut, http.StatusInternalServerError, false},
	}
	for _, tc := range cases {
		for _, k := range keys {
			rdb.Set(context.Background(), k, "[]", 0)
		}
		h := api.invalidating(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(tc.status)
		}))
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(tc.method, "/", nil))
		for _, k := range keys {
			if rdb.has(k) == tc.drop {
				t.Errorf("%s %d: key %s present=%v", tc.method, tc.status, k, rdb.has(k))
			}
		}
	}
}
