package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"madrasa-backend/internal/domain"
	"madrasa-backend/internal/logger"
)

// envelope is the uniform response shape for every endpoint
type envelope struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	body := envelope{Status: "success", Data: data}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string, fields interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	body := envelope{Status: "error", Message: message, Errors: fields}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Failed to encode error response", "error", err)
	}
}

// respondServiceError maps domain errors onto HTTP statuses
func respondServiceError(w http.ResponseWriter, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		respondError(w, http.StatusUnprocessableEntity, "validation failed", verr.Fields)
	case errors.Is(err, domain.ErrOverpayment):
		respondError(w, http.StatusUnprocessableEntity, "le montant total payé dépasserait le montant dû", nil)
	case errors.Is(err, domain.ErrCircularDependency):
		respondError(w, http.StatusUnprocessableEntity, "réduction circulaire entre cursus", nil)
	case errors.Is(err, domain.ErrNotFound):
		respondError(w, http.StatusNotFound, "resource not found", nil)
	default:
		logger.Error("Request failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error", nil)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", nil)
		return false
	}
	return true
}
