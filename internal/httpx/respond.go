package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ariefcatur/gametrust/internal/admin"
	"github.com/ariefcatur/gametrust/internal/disputes"
	"github.com/ariefcatur/gametrust/internal/drafts"
	"github.com/ariefcatur/gametrust/internal/listings"
	"github.com/ariefcatur/gametrust/internal/logger"
	"github.com/ariefcatur/gametrust/internal/revenue"
	"github.com/ariefcatur/gametrust/internal/reviews"
	"github.com/ariefcatur/gametrust/internal/users"
	"github.com/ariefcatur/gametrust/internal/verifications"
	"github.com/go-chi/chi/v5/middleware"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

var (
	notFound = []error{
		disputes.ErrNotFound, listings.ErrNotFound, users.ErrNotFound,
		verifications.ErrNotFound, revenue.ErrNotFound, drafts.ErrNotFound,
	}
	conflict = []error{
		disputes.ErrInvalidTransition, disputes.ErrConflict,
		listings.ErrInvalidTransition, listings.ErrConflict,
		users.ErrInvalidTransition, users.ErrConflict, users.ErrExists,
		verifications.ErrInvalidTransition, verifications.ErrConflict,
	}
	invalid = []error{
		disputes.ErrValidation, listings.ErrValidation, users.ErrValidation,
		verifications.ErrValidation, revenue.ErrValidation, reviews.ErrValidation,
		admin.ErrEmptySelection, errBadQuery,
	}
)

var errBadQuery = errors.New("invalid query parameter")

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// writeError maps domain errors to status codes. Unknown errors are logged and hidden.
func writeError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	var fields drafts.Errors
	switch {
	case errors.As(err, &fields):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"error": "validation failed", "fields": fields})
	case isAny(err, notFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case isAny(err, conflict):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case isAny(err, invalid):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	default:
		log.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			logger.Err(err),
		)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return false
	}
	return true
}

func queryInt(r *http.Request, name string) (int, error) {
	s := strings.TrimSpace(r.URL.Query().Get(name))
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.Join(errBadQuery, errors.New(name+" must be an integer"))
	}
	return n, nil
}

func queryInt64(r *http.Request, name string) (int64, error) {
	s := strings.TrimSpace(r.URL.Query().Get(name))
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, errors.Join(errBadQuery, errors.New(name+" must be an integer"))
	}
	return n, nil
}

func queryBool(r *http.Request, name string) (*bool, error) {
	s := strings.TrimSpace(r.URL.Query().Get(name))
	if s == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return nil, errors.Join(errBadQuery, errors.New(name+" must be true or false"))
	}
	return &b, nil
}

// queryTime accepts RFC 3339 timestamps or plain dates.
func queryTime(r *http.Request, name string) (time.Time, error) {
	s := strings.TrimSpace(r.URL.Query().Get(name))
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, errors.Join(errBadQuery, errors.New(name+" must be a date"))
	}
	return t, nil
}

type pageParams struct{ page, perPage int }

func paging(r *http.Request) (pageParams, error) {
	page, err := queryInt(r, "page")
	if err != nil {
		return pageParams{}, err
	}
	per, err := queryInt(r, "per_page")
	if err != nil {
		return pageParams{}, err
	}
	return pageParams{page: page, perPage: per}, nil
}

func paginate[T any](items []T, p pageParams) admin.Page[T] {
	return admin.Paginate(items, p.page, p.perPage)
}
