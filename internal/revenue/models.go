package revenue

import (
	"errors"
	"time"
)

var (
	ErrNotFound   = errors.New("transaction not found")
	ErrValidation = errors.New("revenue: invalid input")
)

type Type string

const (
	TypeSale       Type = "sale"
	TypeCommission Type = "commission"
	TypeRefund     Type = "refund"
	TypePayout     Type = "payout"
	TypeFee        Type = "fee"
)

func (t Type) Valid() bool {
	switch t {
	case TypeSale, TypeCommission, TypeRefund, TypePayout, TypeFee:
		return true
	}
	return false
}

type Status string

const (
	StatusCompleted Status = "completed"
	StatusPending   Status = "pending"
	StatusFailed    Status = "failed"
)

func (s Status) Valid() bool {
	return s == StatusCompleted || s == StatusPending || s == StatusFailed
}

type Transaction struct {
	ID          string    `json:"id"`
	Type        Type      `json:"type"`
	AmountCents int64     `json:"amount_cents"`
	Currency    string    `json:"currency"`
	ListingID   string    `json:"listing_id,omitempty"`
	Buyer       string    `json:"buyer,omitempty"`
	Seller      string    `json:"seller,omitempty"`
	Status      Status    `json:"status"`
	OccurredAt  time.Time `json:"occurred_at"`
}

func (t Transaction) StatusValue() Status { return t.Status }

// Filter selects transactions. From is inclusive, To exclusive; zero times are open ends.
type Filter struct {
	Type   Type
	Status Status
	From   time.Time
	To     time.Time
}

func (f Filter) Match(t Transaction) bool {
	if f.Type != "" && t.Type != f.Type {
		return false
	}
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	return inRange(t.OccurredAt, f.From, f.To)
}

func inRange(at, from, to time.Time) bool {
	if !from.IsZero() && at.Before(from) {
		return false
	}
	if !to.IsZero() && !at.Before(to) {
		return false
	}
	return true
}

type MonthPoint struct {
	Month           string `json:"month"`
	SalesCents      int64  `json:"sales_cents"`
	CommissionCents int64  `json:"commission_cents"`
	NetCents        int64  `json:"net_cents"`
}

type Summary struct {
	GrossSalesCents int64        `json:"gross_sales_cents"`
	CommissionCents int64        `json:"commission_cents"`
	FeesCents       int64        `json:"fees_cents"`
	RefundsCents    int64        `json:"refunds_cents"`
	PayoutsCents    int64        `json:"payouts_cents"`
	NetRevenueCents int64        `json:"net_revenue_cents"`
	Completed       int          `json:"completed"`
	Pending         int          `json:"pending"`
	Failed          int          `json:"failed"`
	Monthly         []MonthPoint `json:"monthly"`
}
