package disputes

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
	Insert(ctx context.Context, d Dispute) error
	Get(ctx context.Context, id string) (Dispute, error)
	List(ctx context.Context) ([]Dispute, error)
	Update(ctx context.Context, d Dispute, expected Status) error
	AddMessage(ctx context.Context, m Message) error
	// AddEvidence increments one side's counter in place while the dispute is active.
	AddEvidence(ctx context.Context, id string, party Party, at time.Time) (Dispute, error)
}

type Service struct {
	Store    Store
	Activity activity.Sink
	Now      func() time.Time
}

type OpenInput struct {
	OrderID      string `json:"order_id"`
	ListingID    string `json:"listing_id"`
	ListingTitle string `json:"listing_title"`
	Buyer        string `json:"buyer"`
	Seller       string `json:"seller"`
	AmountCents  int64  `json:"amount_cents"`
	Reason       string `json:"reason"`
	Description  string `json:"description"`
}

func (s *Service) Open(ctx context.Context, in OpenInput) (Dispute, error) {
	in.OrderID = strings.TrimSpace(in.OrderID)
	in.Buyer = strings.TrimSpace(in.Buyer)
	in.Seller = strings.TrimSpace(in.Seller)
	in.Reason = strings.TrimSpace(in.Reason)
	switch {
	case in.OrderID == "":
		return Dispute{}, fmt.Errorf("%w: order_id is required", ErrValidation)
	case in.Buyer == "" || in.Seller == "":
		return Dispute{}, fmt.Errorf("%w: buyer and seller are required", ErrValidation)
	case in.Buyer == in.Seller:
		return Dispute{}, fmt.Errorf("%w: buyer and seller must differ", ErrValidation)
	case in.AmountCents <= 0:
		return Dispute{}, fmt.Errorf("%w: amount must be positive", ErrValidation)
	case in.Reason == "":
		return Dispute{}, fmt.Errorf("%w: reason is required", ErrValidation)
	}

	now := s.now()
	d := Dispute{
		ID:           uuid.NewString(),
		OrderID:      in.OrderID,
		ListingID:    strings.TrimSpace(in.ListingID),
		ListingTitle: strings.TrimSpace(in.ListingTitle),
		Buyer:        in.Buyer,
		Seller:       in.Seller,
		AmountCents:  in.AmountCents,
		Reason:       in.Reason,
		Description:  strings.TrimSpace(in.Description),
		Status:       StatusOpen,
		Priority:     PriorityForAmount(in.AmountCents),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Store.Insert(ctx, d); err != nil {
		return Dispute{}, err
	}
	s.record(ctx, "dispute.open", d.ID, d.Buyer, "order "+d.OrderID)
	return d, nil
}

func (s *Service) Get(ctx context.Context, id string) (Dispute, error) {
	return s.Store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, f Filter) ([]Dispute, error) {
	all, err := s.Store.List(ctx)
	if err != nil {
		return nil, err
	}
	return Apply(all, f), nil
}

// Apply filters an already loaded dispute list.
func Apply(all []Dispute, f Filter) []Dispute {
	byStatus := admin.FilterByStatus(all, f.Status)
	out := make([]Dispute, 0, len(byStatus))
	for _, d := range byStatus {
		if f.Match(d) {
			out = append(out, d)
		}
	}
	return out
}

func (s *Service) Investigate(ctx context.Context, id, actor, note string) (Dispute, error) {
	return s.Transition(ctx, id, ActionInvestigate, actor, note)
}

func (s *Service) ResolveForBuyer(ctx context.Context, id, actor, note string) (Dispute, error) {
	return s.Transition(ctx, id, ActionResolveBuyer, actor, note)
}

func (s *Service) ResolveForSeller(ctx context.Context, id, actor, note string) (Dispute, error) {
	return s.Transition(ctx, id, ActionResolveSeller, actor, note)
}

func (s *Service) Cancel(ctx context.Context, id, actor, note string) (Dispute, error) {
	return s.Transition(ctx, id, ActionCancel, actor, note)
}

// Transition applies a named action to one dispute.
func (s *Service) Transition(ctx context.Context, id, action, actor, note string) (Dispute, error) {
	next, ok := TargetFor(action)
	if !ok {
		return Dispute{}, fmt.Errorf("%w: unknown action %q", ErrValidation, action)
	}
	d, err := s.Store.Get(ctx, id)
	if err != nil {
		return Dispute{}, err
	}
	if !CanTransition(d.Status, next) {
		return Dispute{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, d.Status, next)
	}

	prev := d.Status
	now := s.now()
	d.Status = next
	d.UpdatedAt = now
	if next.Terminal() {
		d.Resolution = strings.TrimSpace(note)
		d.ResolvedBy = actor
		d.ResolvedAt = &now
	}
	if err := s.Store.Update(ctx, d, prev); err != nil {
		return Dispute{}, err
	}
	s.record(ctx, "dispute."+action, d.ID, actor, note)
	return d, nil
}

func (s *Service) AddMessage(ctx context.Context, id, sender string, role Party, body string) (Message, error) {
	body = strings.TrimSpace(body)
	sender = strings.TrimSpace(sender)
	if body == "" {
		return Message{}, fmt.Errorf("%w: message body is required", ErrValidation)
	}
	if sender == "" {
		return Message{}, fmt.Errorf("%w: sender is required", ErrValidation)
	}
	switch role {
	case PartyBuyer, PartySeller, PartyAdmin:
	default:
		return Message{}, fmt.Errorf("%w: unknown sender role %q", ErrValidation, role)
	}

	m := Message{
		ID:         uuid.NewString(),
		DisputeID:  id,
		Sender:     sender,
		SenderRole: role,
		Body:       body,
		CreatedAt:  s.now(),
	}
	if err := s.Store.AddMessage(ctx, m); err != nil {
		return Message{}, err
	}
	return m, nil
}

// AddEvidence bumps the evidence counter for one side of an active dispute.
func (s *Service) AddEvidence(ctx context.Context, id string, party Party) (Dispute, error) {
	if party != PartyBuyer && party != PartySeller {
		return Dispute{}, fmt.Errorf("%w: evidence party must be buyer or seller", ErrValidation)
	}
	d, err := s.Store.AddEvidence(ctx, id, party, s.now())
	if err != nil {
		return Dispute{}, err
	}
	s.record(ctx, "dispute.evidence", d.ID, string(party), "")
	return d, nil
}

func (s *Service) Bulk(ctx context.Context, action, actor string, ids []string) (admin.BulkResult, error) {
	if _, ok := TargetFor(action); !ok {
		return admin.BulkResult{Action: action}, fmt.Errorf("%w: unknown action %q", ErrValidation, action)
	}
	return admin.ApplyBulk(ctx, action, admin.NewSelection(ids...), func(ctx context.Context, id string) error {
		_, err := s.Transition(ctx, id, action, actor, "bulk "+action)
		return err
	})
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	all, err := s.Store.List(ctx)
	if err != nil {
		return Stats{}, err
	}
	return Summarize(all), nil
}

func Summarize(all []Dispute) Stats {
	st := Stats{Total: len(all), ByStatus: map[Status]int{}}
	for _, d := range all {
		st.ByStatus[d.Status]++
		if d.Status.Active() {
			st.Open++
			st.OpenAmountCents += d.AmountCents
		}
	}
	return st
}

func (s *Service) record(ctx context.Context, action, id, actor, details string) {
	if s.Activity == nil {
		return
	}
	s.Activity.Record(ctx, activity.Entry{
		Action:     action,
		TargetType: activity.TargetDispute,
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
