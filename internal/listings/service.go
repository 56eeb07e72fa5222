package listings

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ariefcatur/gametrust/internal/activity"
	"github.com/ariefcatur/gametrust/internal/admin"
	"github.com/google/uuid"
)

type Store interface {
	Insert(ctx context.Context, l Listing) error
	Get(ctx context.Context, id string) (Listing, error)
	List(ctx context.Context) ([]Listing, error)
	ListBySeller(ctx context.Context, seller string) ([]Listing, error)
	Search(ctx context.Context, q Query) ([]Listing, int, error)
	Update(ctx context.Context, l Listing, expected Status) error
	IncrementViews(ctx context.Context, id string) (int, error)
}

type Service struct {
	Store    Store
	Activity activity.Sink
	Now      func() time.Time
}

// Create inserts a listing awaiting moderation.
func (s *Service) Create(ctx context.Context, in NewListing) (Listing, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Seller = strings.TrimSpace(in.Seller)
	in.Game = strings.TrimSpace(in.Game)
	switch {
	case in.Title == "":
		return Listing{}, fmt.Errorf("%w: title is required", ErrValidation)
	case in.Seller == "":
		return Listing{}, fmt.Errorf("%w: seller is required", ErrValidation)
	case in.Game == "":
		return Listing{}, fmt.Errorf("%w: game is required", ErrValidation)
	case in.PriceCents <= 0:
		return Listing{}, fmt.Errorf("%w: price must be positive", ErrValidation)
	}
	images := in.Images
	if images == nil {
		images = []string{}
	}

	now := s.now()
	l := Listing{
		ID:           uuid.NewString(),
		Title:        in.Title,
		Description:  strings.TrimSpace(in.Description),
		Game:         in.Game,
		Platform:     strings.TrimSpace(in.Platform),
		Seller:       in.Seller,
		PriceCents:   in.PriceCents,
		Images:       images,
		AccountLevel: in.AccountLevel,
		Rank:         strings.TrimSpace(in.Rank),
		Region:       strings.TrimSpace(in.Region),
		Status:       StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Store.Insert(ctx, l); err != nil {
		return Listing{}, err
	}
	s.record(ctx, "listing.create", l.ID, l.Seller, l.Title)
	return l, nil
}

func (s *Service) Get(ctx context.Context, id string) (Listing, error) {
	return s.Store.Get(ctx, id)
}

// GetPublic hides listings that are not on sale.
func (s *Service) GetPublic(ctx context.Context, id string) (Listing, error) {
	l, err := s.Store.Get(ctx, id)
	if err != nil {
		return Listing{}, err
	}
	if l.Status != StatusActive {
		return Listing{}, ErrNotFound
	}
	return l, nil
}

// View returns an active listing and counts the visit.
func (s *Service) View(ctx context.Context, id string) (Listing, error) {
	l, err := s.GetPublic(ctx, id)
	if err != nil {
		return Listing{}, err
	}
	views, err := s.Store.IncrementViews(ctx, id)
	if err != nil {
		return Listing{}, err
	}
	l.Views = views
	return l, nil
}

func (s *Service) List(ctx context.Context, f Filter) ([]Listing, error) {
	all, err := s.Store.List(ctx)
	if err != nil {
		return nil, err
	}
	return Apply(all, f), nil
}

func Apply(all []Listing, f Filter) []Listing {
	byStatus := admin.FilterByStatus(all, f.Status)
	out := make([]Listing, 0, len(byStatus))
	for _, l := range byStatus {
		if f.Match(l) {
			out = append(out, l)
		}
	}
	return out
}

func (s *Service) ListBySeller(ctx context.Context, seller string) ([]Listing, error) {
	return s.Store.ListBySeller(ctx, seller)
}

// Browse searches the public catalogue.
func (s *Service) Browse(ctx context.Context, q Query) (admin.Page[Listing], error) {
	q, err := Normalize(q)
	if err != nil {
		return admin.Page[Listing]{}, err
	}
	items, total, err := s.Store.Search(ctx, q)
	if err != nil {
		return admin.Page[Listing]{}, err
	}
	if items == nil {
		items = []Listing{}
	}
	return admin.Page[Listing]{Items: items, Page: q.Page, PerPage: q.PerPage, Total: total}, nil
}

// Normalize trims a browse query and fills paging and sort defaults.
func Normalize(q Query) (Query, error) {
	q.Text = strings.TrimSpace(q.Text)
	q.Game = strings.TrimSpace(q.Game)
	q.Platform = strings.TrimSpace(q.Platform)
	if q.MinPriceCents < 0 || q.MaxPriceCents < 0 {
		return q, fmt.Errorf("%w: price bounds must not be negative", ErrValidation)
	}
	if q.MaxPriceCents > 0 && q.MinPriceCents > q.MaxPriceCents {
		return q, fmt.Errorf("%w: min price exceeds max price", ErrValidation)
	}
	switch q.Sort {
	case SortNewest, SortPriceAsc, SortPriceDesc, SortPopular:
	case "":
		q.Sort = SortNewest
	default:
		return q, fmt.Errorf("%w: unknown sort %q", ErrValidation, q.Sort)
	}
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Page > admin.MaxPage {
		q.Page = admin.MaxPage
	}
	if q.PerPage <= 0 {
		q.PerPage = admin.DefaultPerPage
	}
	if q.PerPage > admin.MaxPerPage {
		q.PerPage = admin.MaxPerPage
	}
	return q, nil
}

func (s *Service) Approve(ctx context.Context, id, actor string) (Listing, error) {
	return s.mutate(ctx, id, ActionApprove, actor, "", func(l *Listing) error {
		return moveTo(l, StatusActive)
	})
}

func (s *Service) Reject(ctx context.Context, id, actor, reason string) (Listing, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return Listing{}, fmt.Errorf("%w: reject reason is required", ErrValidation)
	}
	return s.mutate(ctx, id, ActionReject, actor, reason, func(l *Listing) error {
		if err := moveTo(l, StatusRejected); err != nil {
			return err
		}
		l.RejectReason = reason
		return nil
	})
}

func (s *Service) Flag(ctx context.Context, id, actor, reason string) (Listing, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return Listing{}, fmt.Errorf("%w: flag reason is required", ErrValidation)
	}
	return s.mutate(ctx, id, ActionFlag, actor, reason, func(l *Listing) error {
		if l.Status.Terminal() {
			return fmt.Errorf("%w: listing is %s", ErrInvalidTransition, l.Status)
		}
		l.Flagged = true
		l.FlagReason = reason
		return nil
	})
}

func (s *Service) Unflag(ctx context.Context, id, actor string) (Listing, error) {
	return s.mutate(ctx, id, ActionUnflag, actor, "", func(l *Listing) error {
		l.Flagged = false
		l.FlagReason = ""
		return nil
	})
}

func (s *Service) Remove(ctx context.Context, id, actor, reason string) (Listing, error) {
	return s.mutate(ctx, id, ActionRemove, actor, strings.TrimSpace(reason), func(l *Listing) error {
		return moveTo(l, StatusRemoved)
	})
}

func (s *Service) MarkSold(ctx context.Context, id, actor string) (Listing, error) {
	return s.mutate(ctx, id, ActionSold, actor, "", func(l *Listing) error {
		return moveTo(l, StatusSold)
	})
}

// Bulk applies approve, reject, flag or remove to every id. Reject and flag use reason.
func (s *Service) Bulk(ctx context.Context, action, actor, reason string, ids []string) (admin.BulkResult, error) {
	if !BulkActions[action] {
		return admin.BulkResult{Action: action}, fmt.Errorf("%w: unknown action %q", ErrValidation, action)
	}
	if (action == ActionReject || action == ActionFlag) && strings.TrimSpace(reason) == "" {
		return admin.BulkResult{Action: action}, fmt.Errorf("%w: %s requires a reason", ErrValidation, action)
	}
	return admin.ApplyBulk(ctx, action, admin.NewSelection(ids...), func(ctx context.Context, id string) error {
		var err error
		switch action {
		case ActionApprove:
			_, err = s.Approve(ctx, id, actor)
		case ActionReject:
			_, err = s.Reject(ctx, id, actor, reason)
		case ActionFlag:
			_, err = s.Flag(ctx, id, actor, reason)
		case ActionRemove:
			_, err = s.Remove(ctx, id, actor, reason)
		}
		return err
	})
}

func moveTo(l *Listing, next Status) error {
	if !CanTransition(l.Status, next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, l.Status, next)
	}
	l.Status = next
	return nil
}

func (s *Service) mutate(ctx context.Context, id, action, actor, details string, fn func(l *Listing) error) (Listing, error) {
	l, err := s.Store.Get(ctx, id)
	if err != nil {
		return Listing{}, err
	}
	prev := l.Status
	if err := fn(&l); err != nil {
		return Listing{}, err
	}
	l.UpdatedAt = s.now()
	if err := s.Store.Update(ctx, l, prev); err != nil {
		return Listing{}, err
	}
	s.record(ctx, "listing."+action, l.ID, actor, details)
	return l, nil
}

func (s *Service) record(ctx context.Context, action, id, actor, details string) {
	if s.Activity == nil {
		return
	}
	s.Activity.Record(ctx, activity.Entry{
		Action:     action,
		TargetType: activity.TargetListing,
		TargetID:   id,
		Actor:      actor,
		Details:    details,
	})
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}
