package users

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrNotFound          = errors.New("user not found")
	ErrExists            = errors.New("user: username already taken")
	ErrInvalidTransition = errors.New("user: invalid status transition")
	ErrConflict          = errors.New("user: modified concurrently")
	ErrValidation        = errors.New("user: invalid input")
)

type User struct {
	ID                string    `json:"id"`
	Username          string    `json:"username"`
	Email             string    `json:"email"`
	Role              Role      `json:"role"`
	Status            Status    `json:"status"`
	Verified          bool      `json:"verified"`
	TotalTransactions int       `json:"total_transactions"`
	TotalSpentCents   int64     `json:"total_spent_cents"`
	TotalEarnedCents  int64     `json:"total_earned_cents"`
	JoinedAt          time.Time `json:"joined_at"`
	LastActiveAt      time.Time `json:"last_active_at"`
}

func (u User) StatusValue() Status { return u.Status }

type Filter struct {
	Role   Role
	Status Status
	Query  string
}

func (f Filter) Match(u User) bool {
	if f.Role != "" && u.Role != f.Role {
		return false
	}
	if f.Status != "" && u.Status != f.Status {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		hay := strings.ToLower(u.ID + " " + u.Username + " " + u.Email)
		if !strings.Contains(hay, q) {
			return false
		}
	}
	return true
}
