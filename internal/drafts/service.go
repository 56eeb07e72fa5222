package drafts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ariefcatur/gametrust/internal/activity"
	"github.com/ariefcatur/gametrust/internal/listings"
)

type ListingCreator interface {
	Create(ctx context.Context, in listings.NewListing) (listings.Listing, error)
}

type Service struct {
	Store    Store
	Autosave *Autosaver // optional, writes go straight to Store without it
	Listings ListingCreator
	Activity activity.Sink
	Now      func() time.Time
}

// Get returns the newest draft, preferring one not yet flushed.
func (s *Service) Get(ctx context.Context, seller string) (Draft, error) {
	seller = strings.TrimSpace(seller)
	if s.Autosave != nil {
		if d, ok := s.Autosave.Get(seller); ok {
			return d, nil
		}
	}
	return s.Store.Load(ctx, seller)
}

// Save stores work in progress. Only the step number is checked, fields may be incomplete.
func (s *Service) Save(ctx context.Context, seller string, d Draft) (Draft, error) {
	seller = strings.TrimSpace(seller)
	if seller == "" {
		return Draft{}, Errors{"seller": "seller is required"}
	}
	if d.Step == 0 {
		d.Step = StepBasics
	}
	if d.Step < StepBasics || d.Step > StepReview {
		return Draft{}, Errors{"step": fmt.Sprintf("step must be between %d and %d", StepBasics, StepReview)}
	}
	d.Seller = seller
	d.UpdatedAt = s.now()
	if s.Autosave != nil {
		s.Autosave.Put(d)
		return d, nil
	}
	if err := s.Store.Save(ctx, d); err != nil {
		return Draft{}, err
	}
	return d, nil
}

func (s *Service) Delete(ctx context.Context, seller string) error {
	seller = strings.TrimSpace(seller)
	if s.Autosave != nil {
		s.Autosave.Discard(seller)
	}
	return s.Store.Delete(ctx, seller)
}

// Validate checks the stored draft for one step, or for the draft's current step when step is 0.
// It returns the step that was checked.
func (s *Service) Validate(ctx context.Context, seller string, step int) (int, Errors, error) {
	d, err := s.Get(ctx, seller)
	if err != nil {
		return 0, nil, err
	}
	if step == 0 {
		step = d.Step
	}
	return step, ValidateStep(d, step), nil
}

// Submit turns a complete draft into a pending listing and removes the draft.
func (s *Service) Submit(ctx context.Context, seller string) (listings.Listing, error) {
	d, err := s.Get(ctx, seller)
	if err != nil {
		return listings.Listing{}, err
	}
	if err := Validate(d).Err(); err != nil {
		return listings.Listing{}, err
	}
	l, err := s.Listings.Create(ctx, listings.NewListing{
		Title:        strings.TrimSpace(d.Title),
		Description:  strings.TrimSpace(d.Description),
		Game:         d.Game,
		Platform:     d.Platform,
		Seller:       d.Seller,
		PriceCents:   d.PriceCents,
		Images:       d.Images,
		AccountLevel: d.AccountLevel,
		Rank:         d.Rank,
		Region:       d.Region,
	})
	if err != nil {
		return listings.Listing{}, err
	}
	if err := s.Delete(ctx, d.Seller); err != nil && !errors.Is(err, ErrNotFound) {
		return l, fmt.Errorf("listing %s created, draft not removed: %w", l.ID, err)
	}
	if s.Activity != nil {
		s.Activity.Record(ctx, activity.Entry{
			Action:     "draft.submit",
			TargetType: activity.TargetDraft,
			TargetID:   d.Seller,
			Actor:      d.Seller,
			Details:    l.ID,
		})
	}
	return l, nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}
