package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"medstock/m/domain"
	"medstock/m/internal/phc"
	"medstock/m/internal/state"
)

const defaultExpiryDays = 30

// Patients

func (h *Handler) phcPatients(w http.ResponseWriter, r *http.Request) {
	patients, err := h.svc.PHC.Patients(r.Context(), strings.TrimSpace(r.URL.Query().Get("query")))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, patients)
}

func (h *Handler) phcPatient(w http.ResponseWriter, r *http.Request) {
	patient, err := h.svc.PHC.Patient(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, patient)
}

func (h *Handler) phcCreatePatient(w http.ResponseWriter, r *http.Request) {
	var req phc.PatientInput
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	patient, err := h.svc.PHC.CreatePatient(r.Context(), req)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, patient)
}

// Inventory

func (h *Handler) phcInventory(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.PHC.Inventory(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

func (h *Handler) phcRestock(w http.ResponseWriter, r *http.Request) {
	var req phc.RestockInput
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	item, err := h.svc.PHC.Restock(r.Context(), req)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, item)
}

func (h *Handler) phcExpiring(w http.ResponseWriter, r *http.Request) {
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	if days <= 0 {
		days = defaultExpiryDays
	}
	items, err := h.svc.PHC.ExpiringSoon(r.Context(), time.Duration(days)*24*time.Hour)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

func (h *Handler) phcMasterlist(w http.ResponseWriter, r *http.Request) {
	drugs, err := h.svc.PHC.Masterlist(r.Context(), strings.TrimSpace(r.URL.Query().Get("query")))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, drugs)
}

// Dispensing

func (h *Handler) phcDispenses(w http.ResponseWriter, r *http.Request) {
	records, err := h.svc.PHC.Dispenses(r.Context(), r.URL.Query().Get("patient_id"))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, records)
}

func (h *Handler) phcDispense(w http.ResponseWriter, r *http.Request) {
	var req state.DispenseInput
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	record, err := h.svc.PHC.Dispense(r.Context(), req)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, record)
}

// Staff and settings

func (h *Handler) phcStaff(w http.ResponseWriter, r *http.Request) {
	staff, err := h.svc.PHC.Staff(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, staff)
}

func (h *Handler) phcAddStaff(w http.ResponseWriter, r *http.Request) {
	var req phc.StaffInput
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	member, err := h.svc.PHC.AddStaff(r.Context(), req)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, member)
}

func (h *Handler) phcVerifyPIN(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		PIN string `json:"pin"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.PHC.VerifyStaffPIN(r.Context(), chi.URLParam(r, "id"), payload.PIN); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "verified"})
}

func (h *Handler) phcSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.svc.PHC.Settings(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, settings)
}

func (h *Handler) phcUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req domain.Settings
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	settings, err := h.svc.PHC.UpdateSettings(r.Context(), req)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, settings)
}
