package api

import (
	"fmt"
	"net/http"
	"strings"

	"medstock/m/domain"
	"medstock/m/internal/oversight"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func facilityFilter(r *http.Request) oversight.Filter {
	q := r.URL.Query()
	return oversight.Filter{
		State:       strings.TrimSpace(q.Get("state")),
		LGA:         strings.TrimSpace(q.Get("lga")),
		Status:      domain.FacilityStatus(strings.TrimSpace(q.Get("status"))),
		StockStatus: domain.StockStatus(strings.TrimSpace(q.Get("stock_status"))),
	}
}

func (h *Handler) oversightFacilities(w http.ResponseWriter, r *http.Request) {
	facilities, err := h.svc.Oversight.Facilities(r.Context(), facilityFilter(r))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, facilities)
}

func (h *Handler) oversightSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.Oversight.Summary(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

func (h *Handler) oversightExport(w http.ResponseWriter, r *http.Request) {
	data, err := h.svc.Oversight.ExportXLSX(r.Context(), facilityFilter(r))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="facilities.xlsx"`)
	w.Header().Set("Content-Length", fmt.Sprint(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
