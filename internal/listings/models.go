package listings

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrNotFound          = errors.New("listing not found")
	ErrInvalidTransition = errors.New("listing: invalid status transition")
	ErrConflict          = errors.New("listing: modified concurrently")
	ErrValidation        = errors.New("listing: invalid input")
)

type Listing struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Game         string    `json:"game"`
	Platform     string    `json:"platform"`
	Seller       string    `json:"seller"`
	PriceCents   int64     `json:"price_cents"`
	Images       []string  `json:"images"`
	AccountLevel int       `json:"account_level"`
	Rank         string    `json:"rank,omitempty"`
	Region       string    `json:"region,omitempty"`
	Status       Status    `json:"status"`
	Flagged      bool      `json:"flagged"`
	FlagReason   string    `json:"flag_reason,omitempty"`
	RejectReason string    `json:"reject_reason,omitempty"`
	Views        int       `json:"views"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (l Listing) StatusValue() Status { return l.Status }

// Filter narrows the admin listing view.
type Filter struct {
	Status  Status
	Flagged *bool
	Seller  string
	Query   string
}

func (f Filter) Match(l Listing) bool {
	if f.Status != "" && l.Status != f.Status {
		return false
	}
	if f.Flagged != nil && l.Flagged != *f.Flagged {
		return false
	}
	if f.Seller != "" && !strings.EqualFold(l.Seller, f.Seller) {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		hay := strings.ToLower(strings.Join([]string{l.ID, l.Title, l.Game, l.Seller}, " "))
		if !strings.Contains(hay, q) {
			return false
		}
	}
	return true
}

// Sort orders for the public catalogue.
const (
	SortNewest    = "newest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortPopular   = "popular"
)

// Query is a public browse request. Only active listings are ever returned.
type Query struct {
	Text          string
	Game          string
	Platform      string
	MinPriceCents int64
	MaxPriceCents int64
	Sort          string
	Page          int
	PerPage       int
}

type NewListing struct {
	Title        string
	Description  string
	Game         string
	Platform     string
	Seller       string
	PriceCents   int64
	Images       []string
	AccountLevel int
	Rank         string
	Region       string
}
