package httpx

import (
	"net/http"
	"strings"

	"github.com/ariefcatur/gametrust/internal/disputes"
	"github.com/ariefcatur/gametrust/internal/listings"
	"github.com/ariefcatur/gametrust/internal/reviews"
	"github.com/ariefcatur/gametrust/internal/users"
	"github.com/ariefcatur/gametrust/internal/verifications"
	"github.com/go-chi/chi/v5"
)

func (a *API) browseListings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	minPrice, err := queryInt64(r, "min_price")
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	maxPrice, err := queryInt64(r, "max_price")
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	p, err := paging(r)
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	page, err := a.Listings.Browse(r.Context(), listings.Query{
		Text:          q.Get("q"),
		Game:          q.Get("game"),
		Platform:      q.Get("platform"),
		MinPriceCents: minPrice,
		MaxPriceCents: maxPrice,
		Sort:          q.Get("sort"),
		Page:          p.page,
		PerPage:       p.perPage,
	})
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (a *API) viewListing(w http.ResponseWriter, r *http.Request) {
	l, err := a.Listings.View(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (a *API) sellerProfile(w http.ResponseWriter, r *http.Request) {
	p, err := a.Sellers.Profile(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *API) testimonials(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	ts, err := a.Reviews.Testimonials(r.Context(), limit)
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, ts)
}

func (a *API) listReviews(w http.ResponseWriter, r *http.Request) {
	var (
		rs  []reviews.Review
		err error
	)
	if seller := strings.TrimSpace(r.URL.Query().Get("seller")); seller != "" {
		rs, err = a.Reviews.ListBySeller(r.Context(), seller)
	} else {
		var limit int
		if limit, err = queryInt(r, "limit"); err == nil {
			rs, err = a.Reviews.Recent(r.Context(), limit)
		}
	}
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	if rs == nil {
		rs = []reviews.Review{}
	}
	writeJSON(w, http.StatusOK, rs)
}

func (a *API) createReview(w http.ResponseWriter, r *http.Request) {
	var in reviews.CreateInput
	if !decode(w, r, &in) {
		return
	}
	rv, err := a.Reviews.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, rv)
}

func (a *API) registerUser(w http.ResponseWriter, r *http.Request) {
	var in users.RegisterInput
	if !decode(w, r, &in) {
		return
	}
	u, err := a.Users.Register(r.Context(), in)
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (a *API) submitVerification(w http.ResponseWriter, r *http.Request) {
	var in verifications.SubmitInput
	if !decode(w, r, &in) {
		return
	}
	v, err := a.Verifications.Submit(r.Context(), in)
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

func (a *API) openDispute(w http.ResponseWriter, r *http.Request) {
	var in disputes.OpenInput
	if !decode(w, r, &in) {
		return
	}
	d, err := a.Disputes.Open(r.Context(), in)
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

type messageReq struct {
	Sender string         `json:"sender"`
	Role   disputes.Party `json:"role"`
	Body   string         `json:"body"`
}

// postDisputeMessage lets buyer or seller talk on the thread.
func (a *API) postDisputeMessage(w http.ResponseWriter, r *http.Request) {
	var req messageReq
	if !decode(w, r, &req) {
		return
	}
	if req.Role == disputes.PartyAdmin {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "admin messages go through /admin"})
		return
	}
	m, err := a.Disputes.AddMessage(r.Context(), chi.URLParam(r, "id"), req.Sender, req.Role, req.Body)
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (a *API) addEvidence(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Party disputes.Party `json:"party"`
	}
	if !decode(w, r, &req) {
		return
	}
	d, err := a.Disputes.AddEvidence(r.Context(), chi.URLParam(r, "id"), req.Party)
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}
