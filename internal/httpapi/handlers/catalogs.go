package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/example/auditplus/internal/ports/primary"
)

type catalogBody struct {
	Type        string `json:"type"`
	Value       string `json:"value"`
	Description string `json:"description"`
}

func (h *Handler) ListCatalog(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.Catalogs.ListEntries(r.Context(), primary.CatalogFilters{
		Type:            r.URL.Query().Get("type"),
		IncludeInactive: queryBool(r, "inactive"),
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *Handler) CreateCatalogEntry(w http.ResponseWriter, r *http.Request) {
	var body catalogBody
	if err := decodeJSON(r, &body); err != nil {
		badRequest(w, err)
		return
	}
	entry, err := h.svc.Catalogs.CreateEntry(r.Context(), primary.CreateCatalogEntryRequest{
		Type:        body.Type,
		Value:       body.Value,
		Description: body.Description,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (h *Handler) DeactivateCatalogEntry(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Catalogs.DeactivateEntry(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ActivateCatalogEntry(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Catalogs.ActivateEntry(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListWeights(w http.ResponseWriter, r *http.Request) {
	weights, err := h.svc.Weights.ListWeights(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, weights)
}

// UpdateWeights takes a factor to weight object holding all five factors.
func (h *Handler) UpdateWeights(w http.ResponseWriter, r *http.Request) {
	var body map[string]float64
	if err := decodeJSON(r, &body); err != nil {
		badRequest(w, err)
		return
	}
	if err := h.svc.Weights.UpdateWeights(r.Context(), body); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.ListWeights(w, r)
}
