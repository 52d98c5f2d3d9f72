package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"medstock/m/internal/pharmacy"
)

func (h *Handler) pharmacyInventory(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Pharmacy.Inventory(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

func (h *Handler) pharmacyAddStock(w http.ResponseWriter, r *http.Request) {
	var req pharmacy.AddStockInput
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	item, err := h.svc.Pharmacy.AddStock(r.Context(), req)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, item)
}

func (h *Handler) pharmacyAdjustStock(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Delta int64 `json:"delta"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	item, err := h.svc.Pharmacy.AdjustStock(r.Context(), chi.URLParam(r, "id"), payload.Delta)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, item)
}

func (h *Handler) pharmacySales(w http.ResponseWriter, r *http.Request) {
	sales, err := h.svc.Pharmacy.Purchases(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, sales)
}

func (h *Handler) pharmacyCreateSale(w http.ResponseWriter, r *http.Request) {
	var req pharmacy.SaleInput
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	sale, err := h.svc.Pharmacy.RecordSale(r.Context(), req)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, sale)
}

// Reports
func (h *Handler) salesSummary(period pharmacy.Period) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := h.svc.Pharmacy.SalesSummary(r.Context(), period)
		if err != nil {
			h.respondServiceError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, summary)
	}
}
