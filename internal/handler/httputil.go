// Package handler implements the REST endpoints of the variant service.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/payload"
	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/service"
	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/store"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error  string               `json:"error"`
	Code   string               `json:"code"`
	Fields []payload.FieldError `json:"fields,omitempty"`
}

// writeJSON marshals v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("writeJSON encode error")
	}
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Error: message, Code: code})
}

// decodeJSON decodes the request body into v.
func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// parseUUID extracts and validates a UUID path parameter.
func parseUUID(w http.ResponseWriter, r *http.Request, paramName string) (string, bool) {
	raw := chi.URLParam(r, paramName)
	id, err := uuid.Parse(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "invalid UUID: "+raw)
		return "", false
	}
	return id.String(), true
}

// Pagination holds parsed pagination parameters.
type Pagination struct {
	Limit  int
	Offset int
}

// parsePagination extracts page_size and offset from query params.
func parsePagination(r *http.Request) Pagination {
	p := Pagination{Limit: store.DefaultLimit, Offset: 0}
	if v := r.URL.Query().Get("page_size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			p.Limit = n
		}
	}
	if p.Limit > store.MaxLimit {
		p.Limit = store.MaxLimit
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			p.Offset = n
		}
	}
	return p
}

// serviceErrorToHTTP maps service and store errors to HTTP responses.
func serviceErrorToHTTP(w http.ResponseWriter, r *http.Request, err error) {
	var verr *payload.ValidationError
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: verr.Error(), Code: "VALIDATION_ERROR", Fields: verr.Fields})
	default:
		log.Error().Err(err).Str("request_id", middleware.GetReqID(r.Context())).Msg("internal error")
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// parseAuditContext extracts audit metadata from request headers. The
// correlation id falls back to the request id.
func parseAuditContext(w http.ResponseWriter, r *http.Request) (service.Audit, bool) {
	actor := r.Header.Get("X-Actor")
	if actor == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ACTOR", "X-Actor header is required")
		return service.Audit{}, false
	}
	source := r.Header.Get("X-Source")
	if source == "" {
		source = "user"
	}
	info := service.Audit{
		Actor:         actor,
		Source:        source,
		CorrelationID: r.Header.Get("X-Correlation-ID"),
	}
	if info.CorrelationID == "" {
		info.CorrelationID = middleware.GetReqID(r.Context())
	}
	return info, true
}
