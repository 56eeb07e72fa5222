package sellers

import (
	"context"
	"fmt"
	"time"

	"github.com/ariefcatur/gametrust/internal/listings"
	"github.com/ariefcatur/gametrust/internal/reviews"
	"github.com/ariefcatur/gametrust/internal/users"
	"golang.org/x/sync/errgroup"
)

const recentReviews = 5

type UserSource interface {
	GetByUsername(ctx context.Context, username string) (users.User, error)
}

type ListingSource interface {
	ListBySeller(ctx context.Context, seller string) ([]listings.Listing, error)
}

type ReviewSource interface {
	ListBySeller(ctx context.Context, seller string) ([]reviews.Review, error)
}

type Profile struct {
	Username         string             `json:"username"`
	Role             users.Role         `json:"role"`
	Status           users.Status       `json:"status"`
	Verified         bool               `json:"verified"`
	JoinedAt         time.Time          `json:"joined_at"`
	Rating           reviews.Stats      `json:"rating"`
	ActiveCount      int                `json:"active_count"`
	SoldCount        int                `json:"sold_count"`
	TotalEarnedCents int64              `json:"total_earned_cents"`
	Listings         []listings.Listing `json:"listings"`
	RecentReviews    []reviews.Review   `json:"recent_reviews"`
}

type Service struct {
	Users    UserSource
	Listings ListingSource
	Reviews  ReviewSource
}

// Profile assembles the public page of a seller. Banned accounts are hidden.
func (s *Service) Profile(ctx context.Context, username string) (Profile, error) {
	u, err := s.Users.GetByUsername(ctx, username)
	if err != nil {
		return Profile{}, err
	}
	if u.Status == users.StatusBanned {
		return Profile{}, users.ErrNotFound
	}

	var (
		ls []listings.Listing
		rs []reviews.Review
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		ls, err = s.Listings.ListBySeller(gctx, u.Username)
		if err != nil {
			return fmt.Errorf("seller listings: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		rs, err = s.Reviews.ListBySeller(gctx, u.Username)
		if err != nil {
			return fmt.Errorf("seller reviews: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Profile{}, err
	}
	return Build(u, ls, rs), nil
}

// Build derives a profile from already loaded data. Reviews are expected newest first.
func Build(u users.User, ls []listings.Listing, rs []reviews.Review) Profile {
	p := Profile{
		Username:         u.Username,
		Role:             u.Role,
		Status:           u.Status,
		Verified:         u.Verified,
		JoinedAt:         u.JoinedAt,
		Rating:           reviews.Summarize(rs),
		TotalEarnedCents: u.TotalEarnedCents,
		Listings:         []listings.Listing{},
	}
	for _, l := range ls {
		switch l.Status {
		case listings.StatusActive:
			p.ActiveCount++
			p.Listings = append(p.Listings, l)
		case listings.StatusSold:
			p.SoldCount++
		}
	}
	n := min(len(rs), recentReviews)
	p.RecentReviews = append([]reviews.Review{}, rs[:n]...)
	return p
}
