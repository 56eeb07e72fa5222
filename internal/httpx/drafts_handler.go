package httpx

import (
	"net/http"

	"github.com/ariefcatur/gametrust/internal/drafts"
	"github.com/go-chi/chi/v5"
)

func (a *API) getDraft(w http.ResponseWriter, r *http.Request) {
	d, err := a.Drafts.Get(r.Context(), chi.URLParam(r, "seller"))
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// putDraft is the autosave target; the wizard calls it on every change.
func (a *API) putDraft(w http.ResponseWriter, r *http.Request) {
	var d drafts.Draft
	if !decode(w, r, &d) {
		return
	}
	saved, err := a.Drafts.Save(r.Context(), chi.URLParam(r, "seller"), d)
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (a *API) deleteDraft(w http.ResponseWriter, r *http.Request) {
	if err := a.Drafts.Delete(r.Context(), chi.URLParam(r, "seller")); err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type validateResp struct {
	Step   int           `json:"step"`
	Valid  bool          `json:"valid"`
	Fields drafts.Errors `json:"fields,omitempty"`
}

func (a *API) validateDraft(w http.ResponseWriter, r *http.Request) {
	step, err := queryInt(r, "step")
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	step, errs, err := a.Drafts.Validate(r.Context(), chi.URLParam(r, "seller"), step)
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, validateResp{Step: step, Valid: len(errs) == 0, Fields: errs})
}

func (a *API) submitDraft(w http.ResponseWriter, r *http.Request) {
	l, err := a.Drafts.Submit(r.Context(), chi.URLParam(r, "seller"))
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, l)
}
