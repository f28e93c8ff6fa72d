package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/catalog"
	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/service"
	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/store"
	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/types"
)

// VariantHandler implements HTTP handlers for vehicle variants and the
// attribute schema.
type VariantHandler struct {
	svc      *service.VariantService
	registry *catalog.Registry
}

// NewVariantHandler creates a new VariantHandler.
func NewVariantHandler(svc *service.VariantService, reg *catalog.Registry) *VariantHandler {
	return &VariantHandler{svc: svc, registry: reg}
}

// Routes mounts the variant and schema endpoints on r.
func (h *VariantHandler) Routes(r chi.Router) {
	r.Get("/schema", h.GetSchema)
	r.Route("/variants", func(r chi.Router) {
		r.Post("/", h.CreateVariant)
		r.Get("/", h.ListVariants)
		r.Get("/{id}", h.GetVariant)
		r.Put("/{id}", h.UpdateVariant)
		r.Delete("/{id}", h.DeleteVariant)
	})
}

// ListResponse is one page of variants.
type ListResponse struct {
	Items    []*types.VariantRecord `json:"items"`
	Total    int                    `json:"total"`
	PageSize int                    `json:"page_size"`
	Offset   int                    `json:"offset"`
}

func (h *VariantHandler) GetSchema(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.registry.Document())
}

func (h *VariantHandler) CreateVariant(w http.ResponseWriter, r *http.Request) {
	audit, ok := parseAuditContext(w, r)
	if !ok {
		return
	}
	var req types.WirePayload
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}
	rec, err := h.svc.Create(r.Context(), audit, &req)
	if err != nil {
		serviceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (h *VariantHandler) GetVariant(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUID(w, r, "id")
	if !ok {
		return
	}
	rec, err := h.svc.Get(r.Context(), id)
	if err != nil {
		serviceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *VariantHandler) ListVariants(w http.ResponseWriter, r *http.Request) {
	pg := parsePagination(r)
	items, total, err := h.svc.List(r.Context(), store.ListOptions{
		ModelID: r.URL.Query().Get("model_id"),
		Limit:   pg.Limit,
		Offset:  pg.Offset,
	})
	if err != nil {
		serviceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ListResponse{Items: items, Total: total, PageSize: pg.Limit, Offset: pg.Offset})
}

func (h *VariantHandler) UpdateVariant(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUID(w, r, "id")
	if !ok {
		return
	}
	audit, ok := parseAuditContext(w, r)
	if !ok {
		return
	}
	var req types.WirePayload
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}
	rec, err := h.svc.Update(r.Context(), audit, id, &req)
	if err != nil {
		serviceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *VariantHandler) DeleteVariant(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUID(w, r, "id")
	if !ok {
		return
	}
	audit, ok := parseAuditContext(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), audit, id); err != nil {
		serviceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
