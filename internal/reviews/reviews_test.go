package reviews

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

type fakeStore struct{ reviews []Review }

func (f *fakeStore) Insert(_ context.Context, r Review) error {
	f.reviews = append([]Review{r}, f.reviews...)
	return nil
}

func (f *fakeStore) ListBySeller(_ context.Context, seller string) ([]Review, error) {
	var out []Review
	for _, r := range f.reviews {
		if strings.EqualFold(r.Seller, seller) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) Recent(_ context.Context, limit int) ([]Review, error) {
	if len(f.reviews) > limit {
		return f.reviews[:limit], nil
	}
	return f.reviews, nil
}

func decode(t *testing.T, raw string) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
	return m
}

func TestToTestimonial(t *testing.T) {
	cases := []struct {
		raw  string
		want Testimonial
	}{
		{`{}`, Testimonial{Name: "Anonymous", Rating: 5}},
		{`{"reviewer":"sam","comment":"fast trade","rating":4}`, Testimonial{Name: "sam", Text: "fast trade", Rating: 4}},
		{`{"username":"  ","author":"kai","content":"ok","rating":"3"}`, Testimonial{Name: "kai", Text: "ok", Rating: 3}},
		{`{"name":"lou","text":"wow","rating":11}`, Testimonial{Name: "lou", Text: "wow", Rating: 5}},
		{`{"author":{"username":"nested"},"rating":-2}`, Testimonial{Name: "nested", Rating: 1}},
		{`{"reviewer":42,"rating":"five"}`, Testimonial{Name: "Anonymous", Rating: 5}},
		{`{"reviewer":"x","rating":3.6}`, Testimonial{Name: "x", Rating: 4}},
		{`{"reviewer":"inf","rating":"Infinity"}`, Testimonial{Name: "inf", Rating: 5}},
		{`{"reviewer":"ninf","rating":"-Inf"}`, Testimonial{Name: "ninf", Rating: 5}},
	}
	for _, tc := range cases {
		if got := ToTestimonial(decode(t, tc.raw)); got != tc.want {
			t.Errorf("ToTestimonial(%s) = %+v, want %+v", tc.raw, got, tc.want)
		}
	}

	got := ToTestimonial(decode(t, `{"comment":"dated","created_at":"2026-01-02T03:04:05Z"}`))
	if got.Date.IsZero() || got.Date.Year() != 2026 {
		t.Fatalf("date not parsed: %+v", got)
	}
}

func TestCreateValidation(t *testing.T) {
	svc := &Service{Store: &fakeStore{}}
	ctx := context.Background()
	bad := []CreateInput{
		{Seller: "bob", Rating: 5},
		{Seller: "bob", Reviewer: "BOB", Rating: 5},
		{Seller: "bob", Reviewer: "amy", Rating: 0},
		{Seller: "bob", Reviewer: "amy", Rating: 6},
		{Seller: "bob", Reviewer: "amy", Rating: 3, Comment: strings.Repeat("x", 1001)},
	}
	for i, in := range bad {
		if _, err := svc.Create(ctx, in); !errors.Is(err, ErrValidation) {
			t.Errorf("case %d: expected ErrValidation, got %v", i, err)
		}
	}
}

func TestTestimonialsPreferHighRatings(t *testing.T) {
	store := &fakeStore{}
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	i := 0
	svc := &Service{Store: store, Now: func() time.Time { i++; return base.Add(time.Duration(i) * time.Hour) }}
	ctx := context.Background()
	for _, in := range []CreateInput{
		{Seller: "bob", Reviewer: "a", Rating: 3, Comment: "fine"},
		{Seller: "bob", Reviewer: "b", Rating: 5, Comment: "older five"},
		{Seller: "bob", Reviewer: "c", Rating: 5, Comment: ""},
		{Seller: "bob", Reviewer: "d", Rating: 5, Comment: "newer five"},
	} {
		if _, err := svc.Create(ctx, in); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	got, err := svc.Testimonials(ctx, 2)
	if err != nil {
		t.Fatalf("testimonials: %v", err)
	}
	if len(got) != 2 || got[0].Text != "newer five" || got[1].Text != "older five" {
		t.Fatalf("testimonials = %+v", got)
	}
}

func TestImport(t *testing.T) {
	store := &fakeStore{}
	svc := &Service{Store: store}
	records := []map[string]any{
		decode(t, `{"seller":"zed","username":"amy","content":"legit","rating":"4"}`),
		decode(t, `{"comment":"no seller here"}`),
		decode(t, `{"author":"ben","comment":"uses default"}`),
	}
	res, err := svc.Import(context.Background(), "", records)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if res.Imported != 1 || res.Skipped[1] != "no seller" || res.Skipped[2] != "no seller" {
		t.Fatalf("result = %+v", res)
	}

	res, _ = svc.Import(context.Background(), "yan", records[1:])
	if res.Imported != 2 {
		t.Fatalf("with default seller = %+v", res)
	}

	self := []map[string]any{
		decode(t, `{"seller":"bob","reviewer":"bob","rating":5}`),
		decode(t, `{"reviewer":"BOB","comment":"me again"}`),
	}
	res, _ = svc.Import(context.Background(), "bob", self)
	if res.Imported != 0 || res.Skipped[0] == "" || res.Skipped[1] == "" {
		t.Fatalf("self reviews must be skipped, got %+v", res)
	}
	if got, _ := svc.ListBySeller(context.Background(), "bob"); len(got) != 0 {
		t.Fatalf("self review stored: %+v", got)
	}
	if got, _ := svc.ListBySeller(context.Background(), "zed"); len(got) != 1 || got[0].Reviewer != "amy" || got[0].Rating != 4 {
		t.Fatalf("imported review = %+v", got)
	}
}

func TestSummarize(t *testing.T) {
	st := Summarize([]Review{{Rating: 5}, {Rating: 4}, {Rating: 4}})
	if st.Count != 3 || st.Average != 4.33 {
		t.Fatalf("stats = %+v", st)
	}
	if Summarize(nil) != (Stats{}) {
		t.Fatal("empty stats")
	}
}
