package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/ariefcatur/gametrust/internal/activity"
	"github.com/ariefcatur/gametrust/internal/auth"
	"github.com/ariefcatur/gametrust/internal/disputes"
	"github.com/ariefcatur/gametrust/internal/drafts"
	"github.com/ariefcatur/gametrust/internal/listings"
	"github.com/ariefcatur/gametrust/internal/revenue"
	"github.com/ariefcatur/gametrust/internal/reviews"
	"github.com/ariefcatur/gametrust/internal/sellers"
	"github.com/ariefcatur/gametrust/internal/users"
	"github.com/ariefcatur/gametrust/internal/verifications"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(15 * time.Second))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

type ActivityFeed interface {
	Recent(ctx context.Context, limit int) ([]activity.Entry, error)
}

// API holds every service the HTTP surface talks to.
type API struct {
	Disputes      *disputes.Service
	Listings      *listings.Service
	Users         *users.Service
	Verifications *verifications.Service
	Revenue       *revenue.Service
	Reviews       *reviews.Service
	Sellers       *sellers.Service
	Drafts        *drafts.Service
	Feed          ActivityFeed
	Auth          *auth.Issuer
	Snapshots     *Snapshots // optional
	Log           *slog.Logger
}

func (a *API) Register(r chi.Router) {
	r.Get("/listings", a.browseListings)
	r.Get("/listings/{id}", a.viewListing)
	r.Get("/sellers/{username}", a.sellerProfile)
	r.Get("/testimonials", a.testimonials)
	r.Get("/reviews", a.listReviews)
	r.Post("/reviews", a.createReview)
	r.Post("/verifications", a.submitVerification)

	r.Route("/drafts/{seller}", func(r chi.Router) {
		r.Get("/", a.getDraft)
		r.Put("/", a.putDraft)
		r.Delete("/", a.deleteDraft)
		r.Post("/validate", a.validateDraft)
		r.With(a.invalidating).Post("/submit", a.submitDraft)
	})

	r.Group(func(r chi.Router) {
		r.Use(a.invalidating)
		r.Post("/users", a.registerUser)
		r.Post("/disputes", a.openDispute)
		r.Post("/disputes/{id}/messages", a.postDisputeMessage)
		r.Post("/disputes/{id}/evidence", a.addEvidence)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(a.Auth.RequireRole(auth.RoleAdmin, auth.RoleModerator))
		r.Use(a.invalidating)

		r.Get("/disputes", a.adminListDisputes)
		r.Get("/disputes/stats", a.disputeStats)
		r.Get("/disputes/{id}", a.adminGetDispute)
		r.Post("/disputes/bulk", a.bulkDisputes)
		r.Post("/disputes/{id}/investigate", a.investigateDispute)
		r.Post("/disputes/{id}/resolve", a.resolveDispute)
		r.Post("/disputes/{id}/cancel", a.cancelDispute)
		r.Post("/disputes/{id}/messages", a.adminDisputeMessage)

		r.Get("/listings", a.adminListListings)
		r.Post("/listings/bulk", a.bulkListings)
		r.Post("/listings/{id}/{action}", a.moderateListing)

		r.Get("/users", a.adminListUsers)
		r.Get("/users/{id}", a.adminGetUser)
		r.Post("/users/bulk", a.bulkUsers)
		r.Post("/users/{id}/{action}", a.userAction)

		r.Get("/verifications", a.adminListVerifications)
		r.Post("/verifications/bulk", a.bulkVerifications)
		r.Post("/verifications/{id}/{action}", a.verificationAction)

		r.Post("/reviews/import", a.importReviews)
		r.Get("/activity", a.recentActivity)

		r.Group(func(r chi.Router) {
			r.Use(a.Auth.RequireRole(auth.RoleAdmin))
			r.Post("/users/{id}/role", a.changeRole)
			r.Get("/revenue/transactions", a.listTransactions)
			r.Post("/revenue/transactions", a.recordTransaction)
			r.Get("/revenue/summary", a.revenueSummary)
		})
	})
}

func actor(r *http.Request) string {
	if a, ok := auth.ActorFrom(r.Context()); ok {
		return a.Name
	}
	return ""
}
