package httpx

import (
	"context"
	"net/http"

	"github.com/ariefcatur/gametrust/internal/disputes"
	"github.com/ariefcatur/gametrust/internal/listings"
	"github.com/ariefcatur/gametrust/internal/users"
	"github.com/ariefcatur/gametrust/internal/verifications"
	"github.com/go-chi/chi/v5"
)

type bulkReq struct {
	Action string   `json:"action"`
	IDs    []string `json:"ids"`
	Reason string   `json:"reason"`
}

type noteReq struct {
	Note   string `json:"note"`
	Reason string `json:"reason"`
}

func (n noteReq) text() string {
	if n.Note != "" {
		return n.Note
	}
	return n.Reason
}

// optionalBody decodes a JSON body when one is sent.
func optionalBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.ContentLength == 0 {
		return true
	}
	return decode(w, r, v)
}

// disputes

func (a *API) adminListDisputes(w http.ResponseWriter, r *http.Request) {
	p, err := paging(r)
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	all, err := cached(r.Context(), a.snapDisputes(), func(ctx context.Context) ([]disputes.Dispute, error) {
		return a.Disputes.List(ctx, disputes.Filter{})
	})
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	q := r.URL.Query()
	f := disputes.Filter{
		Status:   disputes.Status(q.Get("status")),
		Priority: disputes.Priority(q.Get("priority")),
		Query:    q.Get("q"),
	}
	writeJSON(w, http.StatusOK, paginate(disputes.Apply(all, f), p))
}

func (a *API) disputeStats(w http.ResponseWriter, r *http.Request) {
	st, err := a.Disputes.Stats(r.Context())
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (a *API) adminGetDispute(w http.ResponseWriter, r *http.Request) {
	d, err := a.Disputes.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (a *API) disputeTransition(w http.ResponseWriter, r *http.Request, action string) {
	var req noteReq
	if !optionalBody(w, r, &req) {
		return
	}
	d, err := a.Disputes.Transition(r.Context(), chi.URLParam(r, "id"), action, actor(r), req.text())
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (a *API) investigateDispute(w http.ResponseWriter, r *http.Request) {
	a.disputeTransition(w, r, disputes.ActionInvestigate)
}

func (a *API) cancelDispute(w http.ResponseWriter, r *http.Request) {
	a.disputeTransition(w, r, disputes.ActionCancel)
}

func (a *API) resolveDispute(w http.ResponseWriter, r *http.Request) {
	var req struct {
		InFavorOf disputes.Party `json:"in_favor_of"`
		Note      string         `json:"note"`
	}
	if !decode(w, r, &req) {
		return
	}
	var (
		d   disputes.Dispute
		err error
	)
	switch req.InFavorOf {
	case disputes.PartyBuyer:
		d, err = a.Disputes.ResolveForBuyer(r.Context(), chi.URLParam(r, "id"), actor(r), req.Note)
	case disputes.PartySeller:
		d, err = a.Disputes.ResolveForSeller(r.Context(), chi.URLParam(r, "id"), actor(r), req.Note)
	default:
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "in_favor_of must be buyer or seller"})
		return
	}
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (a *API) adminDisputeMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Body string `json:"body"`
	}
	if !decode(w, r, &req) {
		return
	}
	m, err := a.Disputes.AddMessage(r.Context(), chi.URLParam(r, "id"), actor(r), disputes.PartyAdmin, req.Body)
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (a *API) bulkDisputes(w http.ResponseWriter, r *http.Request) {
	var req bulkReq
	if !decode(w, r, &req) {
		return
	}
	res, err := a.Disputes.Bulk(r.Context(), req.Action, actor(r), req.IDs)
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// listings

func (a *API) adminListListings(w http.ResponseWriter, r *http.Request) {
	p, err := paging(r)
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	flagged, err := queryBool(r, "flagged")
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	all, err := cached(r.Context(), a.snapListings(), func(ctx context.Context) ([]listings.Listing, error) {
		return a.Listings.List(ctx, listings.Filter{})
	})
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	q := r.URL.Query()
	f := listings.Filter{
		Status:  listings.Status(q.Get("status")),
		Flagged: flagged,
		Seller:  q.Get("seller"),
		Query:   q.Get("q"),
	}
	writeJSON(w, http.StatusOK, paginate(listings.Apply(all, f), p))
}

func (a *API) moderateListing(w http.ResponseWriter, r *http.Request) {
	var req noteReq
	if !optionalBody(w, r, &req) {
		return
	}
	id, who, reason := chi.URLParam(r, "id"), actor(r), req.text()
	var (
		l   listings.Listing
		err error
	)
	switch chi.URLParam(r, "action") {
	case listings.ActionApprove:
		l, err = a.Listings.Approve(r.Context(), id, who)
	case listings.ActionReject:
		l, err = a.Listings.Reject(r.Context(), id, who, reason)
	case listings.ActionFlag:
		l, err = a.Listings.Flag(r.Context(), id, who, reason)
	case listings.ActionUnflag:
		l, err = a.Listings.Unflag(r.Context(), id, who)
	case listings.ActionRemove:
		l, err = a.Listings.Remove(r.Context(), id, who, reason)
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown action"})
		return
	}
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (a *API) bulkListings(w http.ResponseWriter, r *http.Request) {
	var req bulkReq
	if !decode(w, r, &req) {
		return
	}
	res, err := a.Listings.Bulk(r.Context(), req.Action, actor(r), req.Reason, req.IDs)
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// users

func (a *API) adminListUsers(w http.ResponseWriter, r *http.Request) {
	p, err := paging(r)
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	all, err := cached(r.Context(), a.snapUsers(), func(ctx context.Context) ([]users.User, error) {
		return a.Users.List(ctx, users.Filter{})
	})
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	q := r.URL.Query()
	f := users.Filter{
		Role:   users.Role(q.Get("role")),
		Status: users.Status(q.Get("status")),
		Query:  q.Get("q"),
	}
	writeJSON(w, http.StatusOK, paginate(users.Apply(all, f), p))
}

func (a *API) adminGetUser(w http.ResponseWriter, r *http.Request) {
	u, err := a.Users.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (a *API) userAction(w http.ResponseWriter, r *http.Request) {
	var req noteReq
	if !optionalBody(w, r, &req) {
		return
	}
	action := chi.URLParam(r, "action")
	if _, ok := users.TargetFor(action); !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown action"})
		return
	}
	u, err := a.Users.Transition(r.Context(), chi.URLParam(r, "id"), action, actor(r), req.text())
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (a *API) changeRole(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Role users.Role `json:"role"`
	}
	if !decode(w, r, &req) {
		return
	}
	u, err := a.Users.ChangeRole(r.Context(), chi.URLParam(r, "id"), req.Role, actor(r))
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (a *API) bulkUsers(w http.ResponseWriter, r *http.Request) {
	var req bulkReq
	if !decode(w, r, &req) {
		return
	}
	res, err := a.Users.Bulk(r.Context(), req.Action, actor(r), req.IDs)
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// verifications

func (a *API) adminListVerifications(w http.ResponseWriter, r *http.Request) {
	p, err := paging(r)
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	q := r.URL.Query()
	vs, err := a.Verifications.List(r.Context(), verifications.Filter{
		Status:    verifications.Status(q.Get("status")),
		Type:      verifications.Type(q.Get("type")),
		Risk:      verifications.Risk(q.Get("risk")),
		Submitter: q.Get("submitter"),
	})
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, paginate(vs, p))
}

func (a *API) verificationAction(w http.ResponseWriter, r *http.Request) {
	var req noteReq
	if !optionalBody(w, r, &req) {
		return
	}
	action := chi.URLParam(r, "action")
	if _, ok := verifications.TargetFor(action); !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown action"})
		return
	}
	v, err := a.Verifications.Transition(r.Context(), chi.URLParam(r, "id"), action, actor(r), req.text())
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (a *API) bulkVerifications(w http.ResponseWriter, r *http.Request) {
	var req bulkReq
	if !decode(w, r, &req) {
		return
	}
	res, err := a.Verifications.Bulk(r.Context(), req.Action, actor(r), req.Reason, req.IDs)
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
