package verifications

import (
	"context"
	"errors"
	"sync"
	"testing"
)

type fakeStore struct {
	mu    sync.Mutex
	reqs  map[string]Request
	order []string
}

func (f *fakeStore) Insert(_ context.Context, v Request) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.reqs == nil {
		f.reqs = map[string]Request{}
	}
	f.reqs[v.ID] = v
	f.order = append(f.order, v.ID)
	return nil
}

func (f *fakeStore) Get(_ context.Context, id string) (Request, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.reqs[id]
	if !ok {
		return Request{}, ErrNotFound
	}
	return v, nil
}

func (f *fakeStore) List(_ context.Context) ([]Request, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Request, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, f.reqs[id])
	}
	return out, nil
}

func (f *fakeStore) Update(_ context.Context, v Request, expected Status) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.reqs[v.ID]
	if !ok {
		return ErrNotFound
	}
	if cur.Status != expected {
		return ErrConflict
	}
	f.reqs[v.ID] = v
	return nil
}

type fakeVerifier struct {
	verified []string
	err      error
}

func (f *fakeVerifier) MarkVerified(_ context.Context, username, _ string) error {
	if f.err != nil {
		return f.err
	}
	f.verified = append(f.verified, username)
	return nil
}

func submit(t *testing.T, svc *Service, typ Type, who string, score int) Request {
	t.Helper()
	v, err := svc.Submit(context.Background(), SubmitInput{
		Type: typ, Submitter: who, RiskScore: score,
		Documents: []Document{{Name: "passport.jpg", Kind: "id", URL: "https://cdn.example.com/p.jpg"}},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	return v
}

func TestRiskLevel(t *testing.T) {
	cases := map[int]Risk{0: RiskLow, 29: RiskLow, 30: RiskMedium, 69: RiskMedium, 70: RiskHigh, 100: RiskHigh}
	for score, want := range cases {
		if got := RiskLevel(score); got != want {
			t.Errorf("RiskLevel(%d) = %s, want %s", score, got, want)
		}
	}
	if ClampScore(-5) != 0 || ClampScore(250) != 100 || ClampScore(42) != 42 {
		t.Error("ClampScore out of range")
	}
}

func TestSubmitValidation(t *testing.T) {
	svc := &Service{Store: &fakeStore{}}
	ctx := context.Background()
	docs := []Document{{Name: "a"}}
	bad := []SubmitInput{
		{Type: "selfie", Submitter: "a", Documents: docs},
		{Type: TypeIdentity, Documents: docs},
		{Type: TypeIdentity, Submitter: "a"},
		{Type: TypeIdentity, Submitter: "a", Documents: []Document{{Name: " "}}},
	}
	for i, in := range bad {
		if _, err := svc.Submit(ctx, in); !errors.Is(err, ErrValidation) {
			t.Errorf("case %d: expected ErrValidation, got %v", i, err)
		}
	}
	v := submit(t, svc, TypePaymentMethod, "kim", 180)
	if v.RiskScore != 100 || v.Risk != RiskHigh || v.Status != StatusPending {
		t.Fatalf("unexpected %+v", v)
	}
}

func TestApproveIdentityMarksVerified(t *testing.T) {
	users := &fakeVerifier{}
	svc := &Service{Store: &fakeStore{}, Users: users}
	ctx := context.Background()

	id := submit(t, svc, TypeIdentity, "lena", 10)
	if _, err := svc.StartReview(ctx, id.ID, "mod"); err != nil {
		t.Fatalf("review: %v", err)
	}
	got, err := svc.Approve(ctx, id.ID, "mod", "looks fine")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if got.Status != StatusApproved || got.ReviewedAt == nil || got.ReviewedBy != "mod" {
		t.Fatalf("unexpected %+v", got)
	}
	if len(users.verified) != 1 || users.verified[0] != "lena" {
		t.Fatalf("verified = %v", users.verified)
	}

	pay := submit(t, svc, TypePaymentMethod, "lena", 10)
	if _, err := svc.Approve(ctx, pay.ID, "mod", ""); err != nil {
		t.Fatalf("approve payment: %v", err)
	}
	if len(users.verified) != 1 {
		t.Fatalf("payment approval must not verify the user: %v", users.verified)
	}
}

func TestApproveHookFailureKeepsRequestOpen(t *testing.T) {
	users := &fakeVerifier{err: errors.New("db down")}
	svc := &Service{Store: &fakeStore{}, Users: users}
	ctx := context.Background()
	v := submit(t, svc, TypeSellerUpgrade, "mo", 50)
	if _, err := svc.Approve(ctx, v.ID, "mod", ""); err == nil {
		t.Fatal("expected hook error")
	}
	got, _ := svc.Get(ctx, v.ID)
	if got.Status != StatusPending {
		t.Fatalf("status = %s, want pending", got.Status)
	}
}

func TestRejectNeedsReasonAndIsTerminal(t *testing.T) {
	svc := &Service{Store: &fakeStore{}}
	ctx := context.Background()
	v := submit(t, svc, TypeAccountOwnership, "nia", 80)

	if _, err := svc.Reject(ctx, v.ID, "mod", ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("reject without reason: %v", err)
	}
	if _, err := svc.Reject(ctx, v.ID, "mod", "blurry screenshot"); err != nil {
		t.Fatalf("reject: %v", err)
	}
	for _, action := range []string{ActionReview, ActionApprove, ActionReject} {
		if _, err := svc.Transition(ctx, v.ID, action, "mod", "again"); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("%s after reject: %v", action, err)
		}
	}
}

func TestListAndBulk(t *testing.T) {
	svc := &Service{Store: &fakeStore{}}
	ctx := context.Background()
	low := submit(t, svc, TypeIdentity, "omar", 5)
	high := submit(t, svc, TypeIdentity, "pia", 95)
	submit(t, svc, TypePaymentMethod, "quinn", 50)

	got, _ := svc.List(ctx, Filter{Risk: RiskHigh})
	if len(got) != 1 || got[0].ID != high.ID {
		t.Fatalf("risk filter = %+v", got)
	}
	got, _ = svc.List(ctx, Filter{Type: TypeIdentity})
	if len(got) != 2 {
		t.Fatalf("type filter = %+v", got)
	}

	res, err := svc.Bulk(ctx, ActionReview, "mod", "", []string{low.ID, high.ID})
	if err != nil || len(res.Succeeded) != 2 {
		t.Fatalf("bulk review: %+v %v", res, err)
	}
	got, _ = svc.List(ctx, Filter{Status: StatusUnderReview})
	if len(got) != 2 {
		t.Fatalf("under review = %+v", got)
	}
	if _, err := svc.Bulk(ctx, ActionReject, "mod", "", []string{low.ID}); !errors.Is(err, ErrValidation) {
		t.Fatalf("bulk reject without reason: %v", err)
	}
}
