package reviews

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

type Store interface {
	Insert(ctx context.Context, r Review) error
	ListBySeller(ctx context.Context, seller string) ([]Review, error)
	Recent(ctx context.Context, limit int) ([]Review, error)
}

type Service struct {
	Store Store
	Now   func() time.Time
}

const (
	maxComment         = 1000
	DefaultTestimonial = 6
	testimonialPool    = 200
)

type CreateInput struct {
	ListingID string `json:"listing_id"`
	Seller    string `json:"seller"`
	Reviewer  string `json:"reviewer"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Review, error) {
	in.Seller = strings.TrimSpace(in.Seller)
	in.Reviewer = strings.TrimSpace(in.Reviewer)
	in.Comment = strings.TrimSpace(in.Comment)
	if err := check(in.Seller, in.Reviewer, in.Rating, in.Comment); err != nil {
		return Review{}, err
	}
	r := Review{
		ID:        uuid.NewString(),
		ListingID: strings.TrimSpace(in.ListingID),
		Seller:    in.Seller,
		Reviewer:  in.Reviewer,
		Rating:    in.Rating,
		Comment:   in.Comment,
		CreatedAt: s.now(),
	}
	if err := s.Store.Insert(ctx, r); err != nil {
		return Review{}, err
	}
	return r, nil
}

// check holds the rules every stored review obeys, whichever way it arrives.
func check(seller, reviewer string, rating int, comment string) error {
	switch {
	case seller == "" || reviewer == "":
		return fmt.Errorf("%w: seller and reviewer are required", ErrValidation)
	case strings.EqualFold(seller, reviewer):
		return fmt.Errorf("%w: sellers cannot review themselves", ErrValidation)
	case rating < 1 || rating > 5:
		return fmt.Errorf("%w: rating must be between 1 and 5", ErrValidation)
	case utf8.RuneCountInString(comment) > maxComment:
		return fmt.Errorf("%w: comment is longer than %d characters", ErrValidation, maxComment)
	}
	return nil
}

func (s *Service) ListBySeller(ctx context.Context, seller string) ([]Review, error) {
	return s.Store.ListBySeller(ctx, strings.TrimSpace(seller))
}

func (s *Service) Recent(ctx context.Context, limit int) ([]Review, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.Store.Recent(ctx, limit)
}

// Testimonials picks the best rated of the recent reviews that have a comment.
// Ties keep the newest first.
func (s *Service) Testimonials(ctx context.Context, limit int) ([]Testimonial, error) {
	if limit <= 0 {
		limit = DefaultTestimonial
	}
	recent, err := s.Store.Recent(ctx, testimonialPool)
	if err != nil {
		return nil, err
	}
	withText := make([]Review, 0, len(recent))
	for _, r := range recent {
		if r.Comment != "" {
			withText = append(withText, r)
		}
	}
	sort.SliceStable(withText, func(i, j int) bool { return withText[i].Rating > withText[j].Rating })
	if len(withText) > limit {
		withText = withText[:limit]
	}
	out := make([]Testimonial, 0, len(withText))
	for _, r := range withText {
		out = append(out, fromReview(r))
	}
	return out, nil
}

type ImportResult struct {
	Imported int            `json:"imported"`
	Skipped  map[int]string `json:"skipped,omitempty"`
}

// Import stores review-like records from an external feed. Each record is coerced
// the same way testimonials are; a record needs a seller (its own or the default).
func (s *Service) Import(ctx context.Context, defaultSeller string, records []map[string]any) (ImportResult, error) {
	res := ImportResult{}
	skip := func(i int, reason string) {
		if res.Skipped == nil {
			res.Skipped = map[int]string{}
		}
		res.Skipped[i] = reason
	}
	for i, rec := range records {
		seller := firstString(rec, []string{"seller", "seller_username"})
		if seller == "" {
			seller = strings.TrimSpace(defaultSeller)
		}
		if seller == "" {
			skip(i, "no seller")
			continue
		}
		t := ToTestimonial(rec)
		created := t.Date
		if created.IsZero() {
			created = s.now()
		}
		listingID, _ := rec["listing_id"].(string)
		r := Review{
			ID:        uuid.NewString(),
			ListingID: listingID,
			Seller:    seller,
			Reviewer:  t.Name,
			Rating:    t.Rating,
			Comment:   truncate(t.Text, maxComment),
			CreatedAt: created,
		}
		if err := check(r.Seller, r.Reviewer, r.Rating, r.Comment); err != nil {
			skip(i, err.Error())
			continue
		}
		if err := s.Store.Insert(ctx, r); err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			skip(i, err.Error())
			continue
		}
		res.Imported++
	}
	return res, nil
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}
