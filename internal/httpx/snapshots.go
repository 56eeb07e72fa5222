package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/ariefcatur/gametrust/internal/disputes"
	"github.com/ariefcatur/gametrust/internal/listings"
	"github.com/ariefcatur/gametrust/internal/redisx"
	"github.com/ariefcatur/gametrust/internal/users"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
)

// Snapshots caches the unfiltered admin lists in Redis.
type Snapshots struct {
	Disputes *redisx.Snapshot[[]disputes.Dispute]
	Listings *redisx.Snapshot[[]listings.Listing]
	Users    *redisx.Snapshot[[]users.User]
}

func NewSnapshots(rdb redis.Cmdable, ttl time.Duration, log *slog.Logger) *Snapshots {
	return &Snapshots{
		Disputes: redisx.NewSnapshot[[]disputes.Dispute](rdb, redisx.KeySnapshotDisputes, ttl, log),
		Listings: redisx.NewSnapshot[[]listings.Listing](rdb, redisx.KeySnapshotListings, ttl, log),
		Users:    redisx.NewSnapshot[[]users.User](rdb, redisx.KeySnapshotUsers, ttl, log),
	}
}

func (s *Snapshots) InvalidateAll(ctx context.Context) {
	s.Disputes.Invalidate(ctx)
	s.Listings.Invalidate(ctx)
	s.Users.Invalidate(ctx)
}

// cached serves from snap when present and refills it from load on a miss.
func cached[T any](ctx context.Context, snap *redisx.Snapshot[[]T], load func(context.Context) ([]T, error)) ([]T, error) {
	if snap != nil {
		if v, ok := snap.Load(ctx); ok {
			return v, nil
		}
	}
	v, err := load(ctx)
	if err != nil {
		return nil, err
	}
	if snap != nil {
		snap.Save(ctx, v)
	}
	return v, nil
}

// invalidating drops every admin snapshot after a successful write.
func (a *API) invalidating(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.Snapshots == nil || r.Method == http.MethodGet || r.Method == http.MethodHead {
			next.ServeHTTP(w, r)
			return
		}
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		if ww.Status() < 300 {
			a.Snapshots.InvalidateAll(context.WithoutCancel(r.Context()))
		}
	})
}

func (a *API) snapDisputes() *redisx.Snapshot[[]disputes.Dispute] {
	if a.Snapshots == nil {
		return nil
	}
	return a.Snapshots.Disputes
}

func (a *API) snapListings() *redisx.Snapshot[[]listings.Listing] {
	if a.Snapshots == nil {
		return nil
	}
	return a.Snapshots.Listings
}

func (a *API) snapUsers() *redisx.Snapshot[[]users.User] {
	if a.Snapshots == nil {
		return nil
	}
	return a.Snapshots.Users
}
