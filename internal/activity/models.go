package activity

import (
	"context"
	"time"
)

const (
	TargetDispute      = "dispute"
	TargetListing      = "listing"
	TargetUser         = "user"
	TargetVerification = "verification"
	TargetTransaction  = "transaction"
	TargetDraft        = "draft"
)

const EventActivityRecorded = "ActivityRecorded"

// Entry is one line in the admin activity log.
type Entry struct {
	ID         string    `json:"id"`
	Action     string    `json:"action"`
	TargetType string    `json:"target_type"`
	TargetID   string    `json:"target_id"`
	Actor      string    `json:"actor"`
	Details    string    `json:"details,omitempty"`
	At         time.Time `json:"at"`
}

// Sink receives activity entries. Recording never fails the caller's operation.
type Sink interface {
	Record(ctx context.Context, e Entry)
}

// Nop discards entries.
type Nop struct{}

func (Nop) Record(context.Context, Entry) {}
