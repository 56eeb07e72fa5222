package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"strings"
)

type ctxKey struct{}

// Actor is the authenticated operator behind a request.
type Actor struct {
	Name string
	Role string
}

func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, ctxKey{}, a)
}

func ActorFrom(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(ctxKey{}).(Actor)
	return a, ok
}

// RequireRole rejects requests without a valid bearer token (401) or whose
// role is not listed (403). The actor is stored in the request context.
func (i *Issuer) RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			tokenStr, ok := strings.CutPrefix(h, "Bearer ")
			if !ok || tokenStr == "" {
				deny(w, http.StatusUnauthorized, "missing bearer token")
				return
			}
			claims, err := i.Parse(tokenStr)
			if err != nil {
				deny(w, http.StatusUnauthorized, "invalid token")
				return
			}
			if !slices.Contains(roles, claims.Role) {
				deny(w, http.StatusForbidden, ErrForbidden.Error())
				return
			}
			ctx := WithActor(r.Context(), Actor{Name: claims.Subject, Role: claims.Role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func deny(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
