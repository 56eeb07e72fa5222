package redisx

import "time"

const (
	// Admin list snapshots, the server-side twin of the old browser storage keys.
	KeySnapshotDisputes = "admin_disputes"
	KeySnapshotListings = "admin_listings"
	KeySnapshotUsers    = "admin_users"

	// Listing wizard draft: listing_draft:{seller} -> draft JSON
	KeyListingDraft = "listing_draft:%s"

	// Capped list of recent activity entries (newest first).
	KeyActivityLog = "adminActivityLog"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLSnapshot = 2 * time.Minute
	TTLDraft    = 7 * 24 * time.Hour
	TTLDedup    = 48 * time.Hour
)
