package disputes

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrNotFound          = errors.New("dispute not found")
	ErrInvalidTransition = errors.New("dispute: invalid status transition")
	ErrConflict          = errors.New("dispute: modified concurrently")
	ErrValidation        = errors.New("dispute: invalid input")
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// PriorityForAmount ranks a dispute by the money at stake.
func PriorityForAmount(cents int64) Priority {
	switch {
	case cents >= 100_000:
		return PriorityUrgent
	case cents >= 50_000:
		return PriorityHigh
	case cents >= 10_000:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

type Party string

const (
	PartyBuyer  Party = "buyer"
	PartySeller Party = "seller"
	PartyAdmin  Party = "admin"
)

type Dispute struct {
	ID             string     `json:"id"`
	OrderID        string     `json:"order_id"`
	ListingID      string     `json:"listing_id,omitempty"`
	ListingTitle   string     `json:"listing_title,omitempty"`
	Buyer          string     `json:"buyer"`
	Seller         string     `json:"seller"`
	AmountCents    int64      `json:"amount_cents"`
	Reason         string     `json:"reason"`
	Description    string     `json:"description,omitempty"`
	Status         Status     `json:"status"`
	Priority       Priority   `json:"priority"`
	BuyerEvidence  int        `json:"buyer_evidence"`
	SellerEvidence int        `json:"seller_evidence"`
	Messages       []Message  `json:"messages,omitempty"`
	Resolution     string     `json:"resolution,omitempty"`
	ResolvedBy     string     `json:"resolved_by,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`
}

func (d Dispute) StatusValue() Status { return d.Status }

type Message struct {
	ID         string    `json:"id"`
	DisputeID  string    `json:"dispute_id"`
	Sender     string    `json:"sender"`
	SenderRole Party     `json:"sender_role"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
}

type Filter struct {
	Status   Status
	Priority Priority
	Query    string
}

func (f Filter) Match(d Dispute) bool {
	if f.Status != "" && d.Status != f.Status {
		return false
	}
	if f.Priority != "" && d.Priority != f.Priority {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		hay := strings.ToLower(strings.Join([]string{d.ID, d.OrderID, d.Buyer, d.Seller, d.Reason, d.ListingTitle}, " "))
		if !strings.Contains(hay, q) {
			return false
		}
	}
	return true
}

type Stats struct {
	Total           int            `json:"total"`
	ByStatus        map[Status]int `json:"by_status"`
	Open            int            `json:"open"`
	OpenAmountCents int64          `json:"open_amount_cents"`
}
