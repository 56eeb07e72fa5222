package httpx

import (
	"net/http"

	"github.com/ariefcatur/gametrust/internal/activity"
	"github.com/ariefcatur/gametrust/internal/revenue"
)

func (a *API) listTransactions(w http.ResponseWriter, r *http.Request) {
	p, err := paging(r)
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	from, err := queryTime(r, "from")
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	to, err := queryTime(r, "to")
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	q := r.URL.Query()
	txs, err := a.Revenue.List(r.Context(), revenue.Filter{
		Type:   revenue.Type(q.Get("type")),
		Status: revenue.Status(q.Get("status")),
		From:   from,
		To:     to,
	})
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, paginate(txs, p))
}

func (a *API) recordTransaction(w http.ResponseWriter, r *http.Request) {
	var in revenue.RecordInput
	if !decode(w, r, &in) {
		return
	}
	txs, err := a.Revenue.Record(r.Context(), actor(r), in)
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, txs)
}

func (a *API) revenueSummary(w http.ResponseWriter, r *http.Request) {
	from, err := queryTime(r, "from")
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	to, err := queryTime(r, "to")
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	sum, err := a.Revenue.Summary(r.Context(), from, to)
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (a *API) recentActivity(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	entries, err := a.Feed.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	if entries == nil {
		entries = []activity.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (a *API) importReviews(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Seller  string           `json:"seller"`
		Records []map[string]any `json:"records"`
	}
	if !decode(w, r, &req) {
		return
	}
	res, err := a.Reviews.Import(r.Context(), req.Seller, req.Records)
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
