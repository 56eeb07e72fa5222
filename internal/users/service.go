package users

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/ariefcatur/gametrust/internal/activity"
	"github.com/ariefcatur/gametrust/internal/admin"
	"github.com/google/uuid"
)

type Store interface {
	Insert(ctx context.Context, u User) error
	Get(ctx context.Context, id string) (User, error)
	GetByUsername(ctx context.Context, username string) (User, error)
	List(ctx context.Context) ([]User, error)
	Update(ctx context.Context, u User, expected Status) error
	AddTotals(ctx context.Context, username string, spent, earned int64, at time.Time) error
}

type Service struct {
	Store    Store
	Activity activity.Sink
	Now      func() time.Time
}

var usernameRe = regexp.MustCompile(`^[A-Za-z0-9_]{3,30}$`)

type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
}

// Register creates a buyer or seller account. Sellers wait for activation.
func (s *Service) Register(ctx context.Context, in RegisterInput) (User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if in.Role == "" {
		in.Role = RoleBuyer
	}
	switch {
	case !usernameRe.MatchString(in.Username):
		return User{}, fmt.Errorf("%w: username must be 3-30 letters, digits or underscores", ErrValidation)
	case !strings.Contains(in.Email, "@"):
		return User{}, fmt.Errorf("%w: email is invalid", ErrValidation)
	case in.Role != RoleBuyer && in.Role != RoleSeller:
		return User{}, fmt.Errorf("%w: role must be buyer or seller", ErrValidation)
	}

	status := StatusActive
	if in.Role == RoleSeller {
		status = StatusPending
	}
	now := s.now()
	u := User{
		ID:           uuid.NewString(),
		Username:     in.Username,
		Email:        in.Email,
		Role:         in.Role,
		Status:       status,
		JoinedAt:     now,
		LastActiveAt: now,
	}
	if err := s.Store.Insert(ctx, u); err != nil {
		return User{}, err
	}
	s.record(ctx, "user.register", u.ID, u.Username, string(u.Role))
	return u, nil
}

func (s *Service) Get(ctx context.Context, id string) (User, error) {
	return s.Store.Get(ctx, id)
}

func (s *Service) GetByUsername(ctx context.Context, username string) (User, error) {
	return s.Store.GetByUsername(ctx, strings.TrimSpace(username))
}

func (s *Service) List(ctx context.Context, f Filter) ([]User, error) {
	all, err := s.Store.List(ctx)
	if err != nil {
		return nil, err
	}
	return Apply(all, f), nil
}

func Apply(all []User, f Filter) []User {
	byStatus := admin.FilterByStatus(all, f.Status)
	out := make([]User, 0, len(byStatus))
	for _, u := range byStatus {
		if f.Match(u) {
			out = append(out, u)
		}
	}
	return out
}

func (s *Service) Suspend(ctx context.Context, id, actor, reason string) (User, error) {
	return s.Transition(ctx, id, ActionSuspend, actor, reason)
}

func (s *Service) Ban(ctx context.Context, id, actor, reason string) (User, error) {
	return s.Transition(ctx, id, ActionBan, actor, reason)
}

func (s *Service) Activate(ctx context.Context, id, actor string) (User, error) {
	return s.Transition(ctx, id, ActionActivate, actor, "")
}

func (s *Service) Transition(ctx context.Context, id, action, actor, reason string) (User, error) {
	next, ok := TargetFor(action)
	if !ok {
		return User{}, fmt.Errorf("%w: unknown action %q", ErrValidation, action)
	}
	u, err := s.Store.Get(ctx, id)
	if err != nil {
		return User{}, err
	}
	if !CanTransition(u.Status, next) {
		return User{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, u.Status, next)
	}
	prev := u.Status
	u.Status = next
	if err := s.Store.Update(ctx, u, prev); err != nil {
		return User{}, err
	}
	s.record(ctx, "user."+action, u.ID, actor, strings.TrimSpace(reason))
	return u, nil
}

func (s *Service) ChangeRole(ctx context.Context, id string, role Role, actor string) (User, error) {
	if !role.Valid() {
		return User{}, fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}
	u, err := s.Store.Get(ctx, id)
	if err != nil {
		return User{}, err
	}
	if u.Role == role {
		return u, nil
	}
	from := u.Role
	u.Role = role
	if err := s.Store.Update(ctx, u, u.Status); err != nil {
		return User{}, err
	}
	s.record(ctx, "user.role", u.ID, actor, fmt.Sprintf("%s -> %s", from, role))
	return u, nil
}

// MarkVerified flags a user as verified. Already verified users are left alone.
func (s *Service) MarkVerified(ctx context.Context, username, actor string) error {
	u, err := s.Store.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if u.Verified {
		return nil
	}
	u.Verified = true
	if err := s.Store.Update(ctx, u, u.Status); err != nil {
		return err
	}
	s.record(ctx, "user.verified", u.ID, actor, "")
	return nil
}

// RecordTransaction adds a completed sale to the buyer's spend and the seller's earnings.
func (s *Service) RecordTransaction(ctx context.Context, buyer, seller string, amountCents int64) error {
	if amountCents <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	now := s.now()
	var errs []error
	if buyer != "" {
		if err := s.Store.AddTotals(ctx, buyer, amountCents, 0, now); err != nil {
			errs = append(errs, fmt.Errorf("buyer %s: %w", buyer, err))
		}
	}
	if seller != "" {
		if err := s.Store.AddTotals(ctx, seller, 0, amountCents, now); err != nil {
			errs = append(errs, fmt.Errorf("seller %s: %w", seller, err))
		}
	}
	return errors.Join(errs...)
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

func (s *Service) record(ctx context.Context, action, id, actor, details string) {
	if s.Activity == nil {
		return
	}
	s.Activity.Record(ctx, activity.Entry{
		Action:     action,
		TargetType: activity.TargetUser,
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
