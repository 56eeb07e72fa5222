package reviews

import (
	"errors"
	"time"
)

var ErrValidation = errors.New("review: invalid input")

type Review struct {
	ID        string    `json:"id"`
	ListingID string    `json:"listing_id,omitempty"`
	Seller    string    `json:"seller"`
	Reviewer  string    `json:"reviewer"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// Testimonial is the public quote shape shown on the landing page.
type Testimonial struct {
	Name   string    `json:"name"`
	Text   string    `json:"text"`
	Rating int       `json:"rating"`
	Date   time.Time `json:"date,omitzero"`
}

type Stats struct {
	Count   int     `json:"count"`
	Average float64 `json:"average"`
}

func Summarize(rs []Review) Stats {
	if len(rs) == 0 {
		return Stats{}
	}
	total := 0
	for _, r := range rs {
		total += r.Rating
	}
	avg := float64(total) / float64(len(rs))
	return Stats{Count: len(rs), Average: float64(int(avg*100+0.5)) / 100}
}
