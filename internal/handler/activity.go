package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/activity"
)

// ActivityHandler serves the change history of variants.
type ActivityHandler struct {
	store activity.Store
}

// NewActivityHandler creates a new ActivityHandler.
func NewActivityHandler(store activity.Store) *ActivityHandler {
	return &ActivityHandler{store: store}
}

// Routes mounts the history endpoints on r.
func (h *ActivityHandler) Routes(r chi.Router) {
	r.Route("/activity", func(r chi.Router) {
		r.Get("/variants/{id}", h.GetVariantActivity)
		r.Get("/search", h.SearchActivity)
	})
}

// ActivityResponse is one page of history entries.
type ActivityResponse struct {
	Items      []activity.Entry `json:"items"`
	Total      int              `json:"total"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

func (h *ActivityHandler) GetVariantActivity(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUID(w, r, "id")
	if !ok {
		return
	}
	q := r.URL.Query()
	opts := activity.QueryOptions{
		MinWeight: q.Get("min_weight"),
		Cursor:    q.Get("cursor"),
	}
	if v := q.Get("categories"); v != "" {
		opts.Categories = strings.Split(v, ",")
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			opts.Limit = n
		}
	}
	var err error
	if opts.Since, err = parseTimeParam(q.Get("since")); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_PARAM", "since: "+err.Error())
		return
	}
	if opts.Until, err = parseTimeParam(q.Get("until")); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_PARAM", "until: "+err.Error())
		return
	}

	entries, next, total, err := h.store.QueryByVariant(r.Context(), id, opts)
	if err != nil {
		if errors.Is(err, activity.ErrInvalidCursor) {
			writeError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
			return
		}
		serviceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ActivityResponse{Items: nonNilEntries(entries), Total: total, NextCursor: next})
}

func (h *ActivityHandler) SearchActivity(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := q.Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "INVALID_PARAM", "q is required")
		return
	}
	opts := activity.SearchOptions{
		EventType: q.Get("event_type"),
		Actor:     q.Get("actor"),
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			opts.Limit = n
		}
	}
	var err error
	if opts.Since, err = parseTimeParam(q.Get("since")); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_PARAM", "since: "+err.Error())
		return
	}

	entries, total, err := h.store.Search(r.Context(), query, opts)
	if err != nil {
		serviceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ActivityResponse{Items: nonNilEntries(entries), Total: total})
}

// parseTimeParam parses an optional RFC 3339 query parameter.
func parseTimeParam(v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func nonNilEntries(e []activity.Entry) []activity.Entry {
	if e == nil {
		return []activity.Entry{}
	}
	return e
}
