package http

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"madrasa-backend/internal/service"
)

// PaymentHandler serves the family payment ledger endpoints
type PaymentHandler struct {
	payment service.PaymentService
}

func pathID(r *http.Request, name string) (int32, bool) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || id <= 0 {
		return 0, false
	}
	return int32(id), true
}

func (h *PaymentHandler) GetDetails(w http.ResponseWriter, r *http.Request) {
	familyID, ok := pathID(r, "familyId")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid family id", nil)
		return
	}

	details, err := h.payment.GetDetails(r.Context(), familyID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, details)
}

func (h *PaymentHandler) AddLine(w http.ResponseWriter, r *http.Request) {
	familyID, ok := pathID(r, "familyId")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid family id", nil)
		return
	}
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing bearer token", nil)
		return
	}

	var in service.PaymentLineInput
	if !decodeJSON(w, r, &in) {
		return
	}

	result, err := h.payment.AddLine(r.Context(), familyID, claims.UserID, in)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, result)
}

func (h *PaymentHandler) ModifyLine(w http.ResponseWriter, r *http.Request) {
	familyID, ok := pathID(r, "familyId")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid family id", nil)
		return
	}
	lineID, ok := pathID(r, "ligneId")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid line id", nil)
		return
	}
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing bearer token", nil)
		return
	}

	var in service.PaymentLineUpdate
	if !decodeJSON(w, r, &in) {
		return
	}

	result, err := h.payment.ModifyLine(r.Context(), familyID, lineID, claims.UserID, in)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *PaymentHandler) DeleteLine(w http.ResponseWriter, r *http.Request) {
	familyID, ok := pathID(r, "familyId")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid family id", nil)
		return
	}
	lineID, ok := pathID(r, "ligneId")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid line id", nil)
		return
	}

	result, err := h.payment.DeleteLine(r.Context(), familyID, lineID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}
