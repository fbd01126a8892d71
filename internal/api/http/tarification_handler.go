package http

import (
	"net/http"

	"madrasa-backend/internal/domain"
	"madrasa-backend/internal/service"
)

// TarificationHandler serves tarif and reduction management plus the
// family price calculator.
type TarificationHandler struct {
	tarification service.TarificationService
	calculator   service.TarifCalculatorService
}

func (h *TarificationHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing bearer token", nil)
		return
	}

	list, err := h.tarification.ListTarification(r.Context(), claims.SchoolID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

// Calculer prices a family against hypothetical enrollments without
// touching the database state.
func (h *TarificationHandler) Calculer(w http.ResponseWriter, r *http.Request) {
	var in struct {
		FamilyID     int32                    `json:"family_id"`
		Inscriptions []domain.EnrollmentInput `json:"inscriptions"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}
	if in.FamilyID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid family id", nil)
		return
	}

	tarifs, err := h.calculator.ComputeFamilyTotal(r.Context(), in.FamilyID, in.Inscriptions)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tarifs)
}

// FamilyTarifs prices a family against its current active enrollments
func (h *TarificationHandler) FamilyTarifs(w http.ResponseWriter, r *http.Request) {
	familyID, ok := pathID(r, "familyId")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid family id", nil)
		return
	}

	tarifs, err := h.calculator.ComputeFamilyTotal(r.Context(), familyID, nil)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tarifs)
}

func (h *TarificationHandler) SetTarif(w http.ResponseWriter, r *http.Request) {
	cursusID, ok := pathID(r, "cursusId")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid cursus id", nil)
		return
	}
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing bearer token", nil)
		return
	}

	var in struct {
		Prix int32 `json:"prix"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}

	tarif, err := h.tarification.SetTarif(r.Context(), cursusID, in.Prix, claims.UserID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tarif)
}

func (h *TarificationHandler) CreateReductionFamiliale(w http.ResponseWriter, r *http.Request) {
	cursusID, ok := pathID(r, "cursusId")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid cursus id", nil)
		return
	}

	var in service.ReductionFamilialeInput
	if !decodeJSON(w, r, &in) {
		return
	}

	rule, err := h.tarification.CreateReductionFamiliale(r.Context(), cursusID, in)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, rule)
}

func (h *TarificationHandler) UpdateReductionFamiliale(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid reduction id", nil)
		return
	}

	var in service.ReductionFamilialeInput
	if !decodeJSON(w, r, &in) {
		return
	}

	if err := h.tarification.UpdateReductionFamiliale(r.Context(), id, in); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, nil)
}

func (h *TarificationHandler) RemoveReductionFamiliale(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid reduction id", nil)
		return
	}

	if err := h.tarification.RemoveReductionFamiliale(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, nil)
}

func (h *TarificationHandler) CreateReductionMultiCursus(w http.ResponseWriter, r *http.Request) {
	cursusID, ok := pathID(r, "cursusId")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid cursus id", nil)
		return
	}

	var in service.ReductionMultiCursusInput
	if !decodeJSON(w, r, &in) {
		return
	}

	rule, err := h.tarification.CreateReductionMultiCursus(r.Context(), cursusID, in)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, rule)
}

func (h *TarificationHandler) UpdateReductionMultiCursus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid reduction id", nil)
		return
	}

	var in struct {
		Pourcentage float64 `json:"pourcentage_reduction"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}

	if err := h.tarification.UpdateReductionMultiCursus(r.Context(), id, in.Pourcentage); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, nil)
}

func (h *TarificationHandler) RemoveReductionMultiCursus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid reduction id", nil)
		return
	}

	if err := h.tarification.RemoveReductionMultiCursus(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, nil)
}
