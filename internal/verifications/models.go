package verifications

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrNotFound          = errors.New("verification request not found")
	ErrInvalidTransition = errors.New("verification: invalid status transition")
	ErrConflict          = errors.New("verification: modified concurrently")
	ErrValidation        = errors.New("verification: invalid input")
)

type Type string

const (
	TypeIdentity         Type = "identity"
	TypeAccountOwnership Type = "account_ownership"
	TypePaymentMethod    Type = "payment_method"
	TypeSellerUpgrade    Type = "seller_upgrade"
)

func (t Type) Valid() bool {
	switch t {
	case TypeIdentity, TypeAccountOwnership, TypePaymentMethod, TypeSellerUpgrade:
		return true
	}
	return false
}

// GrantsVerified reports whether approving this type marks the submitter verified.
func (t Type) GrantsVerified() bool {
	return t == TypeIdentity || t == TypeSellerUpgrade
}

type Risk string

const (
	RiskLow    Risk = "low"
	RiskMedium Risk = "medium"
	RiskHigh   Risk = "high"
)

func RiskLevel(score int) Risk {
	switch {
	case score >= 70:
		return RiskHigh
	case score >= 30:
		return RiskMedium
	default:
		return RiskLow
	}
}

func ClampScore(score int) int {
	return max(0, min(100, score))
}

type Document struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
	URL  string `json:"url"`
}

type Request struct {
	ID          string     `json:"id"`
	Type        Type       `json:"type"`
	Submitter   string     `json:"submitter"`
	Documents   []Document `json:"documents"`
	RiskScore   int        `json:"risk_score"`
	Risk        Risk       `json:"risk"`
	Status      Status     `json:"status"`
	Notes       string     `json:"notes,omitempty"`
	ReviewedBy  string     `json:"reviewed_by,omitempty"`
	SubmittedAt time.Time  `json:"submitted_at"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
}

func (r Request) StatusValue() Status { return r.Status }

type Filter struct {
	Status    Status
	Type      Type
	Risk      Risk
	Submitter string
}

func (f Filter) Match(r Request) bool {
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if f.Type != "" && r.Type != f.Type {
		return false
	}
	if f.Risk != "" && RiskLevel(r.RiskScore) != f.Risk {
		return false
	}
	if f.Submitter != "" && !strings.EqualFold(r.Submitter, f.Submitter) {
		return false
	}
	return true
}
