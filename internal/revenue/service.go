package revenue

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/ariefcatur/gametrust/internal/activity"
	"github.com/ariefcatur/gametrust/internal/admin"
	"github.com/ariefcatur/gametrust/internal/logger"
	"github.com/google/uuid"
)

type Store interface {
	Insert(ctx context.Context, txs ...Transaction) error
	Get(ctx context.Context, id string) (Transaction, error)
	List(ctx context.Context) ([]Transaction, error)
}

// UserTotals keeps per-user spend and earnings in step with completed sales.
type UserTotals interface {
	RecordTransaction(ctx context.Context, buyer, seller string, amountCents int64) error
}

// ListingCloser marks the sold listing off the catalogue.
type ListingCloser interface {
	MarkSold(ctx context.Context, id, actor string) error
}

type ListingCloserFunc func(ctx context.Context, id, actor string) error

func (f ListingCloserFunc) MarkSold(ctx context.Context, id, actor string) error { return f(ctx, id, actor) }

type Service struct {
	Store          Store
	CommissionRate float64
	Users          UserTotals    // optional
	Listings       ListingCloser // optional
	Activity       activity.Sink
	Log            *slog.Logger
	Now            func() time.Time
}

type RecordInput struct {
	Type        Type      `json:"type"`
	AmountCents int64     `json:"amount_cents"`
	Currency    string    `json:"currency"`
	ListingID   string    `json:"listing_id"`
	Buyer       string    `json:"buyer"`
	Seller      string    `json:"seller"`
	Status      Status    `json:"status"`
	OccurredAt  time.Time `json:"occurred_at"`
}

var currencyRe = regexp.MustCompile(`^[A-Z]{3}$`)

// Record stores a transaction. A sale is stored together with its commission,
// and once completed it updates user totals and closes the listing.
func (s *Service) Record(ctx context.Context, actor string, in RecordInput) ([]Transaction, error) {
	if in.Status == "" {
		in.Status = StatusCompleted
	}
	in.Currency = strings.ToUpper(strings.TrimSpace(in.Currency))
	if in.Currency == "" {
		in.Currency = "USD"
	}
	switch {
	case !in.Type.Valid():
		return nil, fmt.Errorf("%w: unknown type %q", ErrValidation, in.Type)
	case !in.Status.Valid():
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, in.Status)
	case in.AmountCents <= 0:
		return nil, fmt.Errorf("%w: amount must be positive", ErrValidation)
	case !currencyRe.MatchString(in.Currency):
		return nil, fmt.Errorf("%w: currency must be a 3 letter code", ErrValidation)
	case in.Type == TypeSale && (in.Buyer == "" || in.Seller == ""):
		return nil, fmt.Errorf("%w: a sale needs buyer and seller", ErrValidation)
	}
	if in.OccurredAt.IsZero() {
		in.OccurredAt = s.now()
	}

	base := Transaction{
		ID:          uuid.NewString(),
		Type:        in.Type,
		AmountCents: in.AmountCents,
		Currency:    in.Currency,
		ListingID:   strings.TrimSpace(in.ListingID),
		Buyer:       strings.TrimSpace(in.Buyer),
		Seller:      strings.TrimSpace(in.Seller),
		Status:      in.Status,
		OccurredAt:  in.OccurredAt,
	}
	txs := []Transaction{base}
	if base.Type == TypeSale {
		if c := Commission(base.AmountCents, s.CommissionRate); c > 0 {
			comm := base
			comm.ID = uuid.NewString()
			comm.Type = TypeCommission
			comm.AmountCents = c
			txs = append(txs, comm)
		}
	}
	if err := s.Store.Insert(ctx, txs...); err != nil {
		return nil, err
	}
	for _, t := range txs {
		s.record(ctx, t, actor)
	}

	if base.Type == TypeSale && base.Status == StatusCompleted {
		s.afterSale(ctx, base, actor)
	}
	return txs, nil
}

// afterSale runs the side effects of a completed sale. Failures are logged, the sale stays recorded.
func (s *Service) afterSale(ctx context.Context, t Transaction, actor string) {
	if s.Users != nil {
		if err := s.Users.RecordTransaction(ctx, t.Buyer, t.Seller, t.AmountCents); err != nil {
			s.log().Warn("user totals not updated", slog.String("tx", t.ID), logger.Err(err))
		}
	}
	if s.Listings != nil && t.ListingID != "" {
		if err := s.Listings.MarkSold(ctx, t.ListingID, actor); err != nil {
			s.log().Warn("listing not marked sold", slog.String("listing", t.ListingID), logger.Err(err))
		}
	}
}

func (s *Service) Get(ctx context.Context, id string) (Transaction, error) {
	return s.Store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, f Filter) ([]Transaction, error) {
	all, err := s.Store.List(ctx)
	if err != nil {
		return nil, err
	}
	byStatus := admin.FilterByStatus(all, f.Status)
	out := make([]Transaction, 0, len(byStatus))
	for _, t := range byStatus {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out, nil
}

// Summary aggregates every transaction in [from, to).
func (s *Service) Summary(ctx context.Context, from, to time.Time) (Summary, error) {
	if !from.IsZero() && !to.IsZero() && !from.Before(to) {
		return Summary{}, fmt.Errorf("%w: from must be before to", ErrValidation)
	}
	txs, err := s.List(ctx, Filter{From: from, To: to})
	if err != nil {
		return Summary{}, err
	}
	return Summarize(txs), nil
}

func (s *Service) record(ctx context.Context, t Transaction, actor string) {
	if s.Activity == nil {
		return
	}
	s.Activity.Record(ctx, activity.Entry{
		Action:     "transaction." + string(t.Type),
		TargetType: activity.TargetTransaction,
		TargetID:   t.ID,
		Actor:      actor,
		Details:    fmt.Sprintf("%d %s %s", t.AmountCents, t.Currency, t.Status),
	})
}

func (s *Service) log() *slog.Logger {
	if s.Log != nil {
		return s.Log
	}
	return logger.Discard()
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}
