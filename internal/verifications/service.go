package verifications

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
	Insert(ctx context.Context, v Request) error
	Get(ctx context.Context, id string) (Request, error)
	List(ctx context.Context) ([]Request, error)
	Update(ctx context.Context, v Request, expected Status) error
}

// UserVerifier marks an account verified once an identity check passes.
type UserVerifier interface {
	MarkVerified(ctx context.Context, username, actor string) error
}

type Service struct {
	Store    Store
	Users    UserVerifier // optional
	Activity activity.Sink
	Now      func() time.Time
}

type SubmitInput struct {
	Type      Type       `json:"type"`
	Submitter string     `json:"submitter"`
	Documents []Document `json:"documents"`
	RiskScore int        `json:"risk_score"`
}

func (s *Service) Submit(ctx context.Context, in SubmitInput) (Request, error) {
	in.Submitter = strings.TrimSpace(in.Submitter)
	switch {
	case !in.Type.Valid():
		return Request{}, fmt.Errorf("%w: unknown type %q", ErrValidation, in.Type)
	case in.Submitter == "":
		return Request{}, fmt.Errorf("%w: submitter is required", ErrValidation)
	case len(in.Documents) == 0:
		return Request{}, fmt.Errorf("%w: at least one document is required", ErrValidation)
	}
	for i, d := range in.Documents {
		if strings.TrimSpace(d.Name) == "" {
			return Request{}, fmt.Errorf("%w: document %d has no name", ErrValidation, i)
		}
	}

	score := ClampScore(in.RiskScore)
	v := Request{
		ID:          uuid.NewString(),
		Type:        in.Type,
		Submitter:   in.Submitter,
		Documents:   in.Documents,
		RiskScore:   score,
		Risk:        RiskLevel(score),
		Status:      StatusPending,
		SubmittedAt: s.now(),
	}
	if err := s.Store.Insert(ctx, v); err != nil {
		return Request{}, err
	}
	s.record(ctx, "verification.submit", v.ID, v.Submitter, string(v.Type))
	return v, nil
}

func (s *Service) Get(ctx context.Context, id string) (Request, error) {
	return s.Store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, f Filter) ([]Request, error) {
	all, err := s.Store.List(ctx)
	if err != nil {
		return nil, err
	}
	byStatus := admin.FilterByStatus(all, f.Status)
	out := make([]Request, 0, len(byStatus))
	for _, v := range byStatus {
		if f.Match(v) {
			out = append(out, v)
		}
	}
	return out, nil
}

func (s *Service) StartReview(ctx context.Context, id, actor string) (Request, error) {
	return s.Transition(ctx, id, ActionReview, actor, "")
}

func (s *Service) Approve(ctx context.Context, id, actor, notes string) (Request, error) {
	return s.Transition(ctx, id, ActionApprove, actor, notes)
}

func (s *Service) Reject(ctx context.Context, id, actor, reason string) (Request, error) {
	return s.Transition(ctx, id, ActionReject, actor, reason)
}

// Transition moves a request along its review workflow. Rejections need a reason.
// Approving an identity or seller upgrade marks the submitter verified first, so a
// failed hook leaves the request open for another attempt.
func (s *Service) Transition(ctx context.Context, id, action, actor, notes string) (Request, error) {
	next, ok := TargetFor(action)
	if !ok {
		return Request{}, fmt.Errorf("%w: unknown action %q", ErrValidation, action)
	}
	notes = strings.TrimSpace(notes)
	if next == StatusRejected && notes == "" {
		return Request{}, fmt.Errorf("%w: reject reason is required", ErrValidation)
	}
	v, err := s.Store.Get(ctx, id)
	if err != nil {
		return Request{}, err
	}
	if !CanTransition(v.Status, next) {
		return Request{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, v.Status, next)
	}

	if next == StatusApproved && v.Type.GrantsVerified() && s.Users != nil {
		if err := s.Users.MarkVerified(ctx, v.Submitter, actor); err != nil {
			return Request{}, fmt.Errorf("mark %s verified: %w", v.Submitter, err)
		}
	}

	prev := v.Status
	v.Status = next
	if notes != "" {
		v.Notes = notes
	}
	if next.Terminal() {
		now := s.now()
		v.ReviewedAt = &now
	}
	v.ReviewedBy = actor
	if err := s.Store.Update(ctx, v, prev); err != nil {
		return Request{}, err
	}
	s.record(ctx, "verification."+action, v.ID, actor, notes)
	return v, nil
}

func (s *Service) Bulk(ctx context.Context, action, actor, notes string, ids []string) (admin.BulkResult, error) {
	next, ok := TargetFor(action)
	if !ok {
		return admin.BulkResult{Action: action}, fmt.Errorf("%w: unknown action %q", ErrValidation, action)
	}
	if next == StatusRejected && strings.TrimSpace(notes) == "" {
		return admin.BulkResult{Action: action}, fmt.Errorf("%w: reject reason is required", ErrValidation)
	}
	return admin.ApplyBulk(ctx, action, admin.NewSelection(ids...), func(ctx context.Context, id string) error {
		_, err := s.Transition(ctx, id, action, actor, notes)
		return err
	})
}

func (s *Service) record(ctx context.Context, action, id, actor, details string) {
	if s.Activity == nil {
		return
	}
	s.Activity.Record(ctx, activity.Entry{
		Action:     action,
		TargetType: activity.TargetVerification,
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
