package http

import (
	"net/http"
	"strconv"

	"madrasa-backend/internal/domain"
	"madrasa-backend/internal/service"
)

// StatisticsHandler serves payment statistics projections
type StatisticsHandler struct {
	statistics service.StatisticsService
}

func (h *StatisticsHandler) PaymentStats(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing bearer token", nil)
		return
	}

	stats, err := h.statistics.PaymentStats(r.Context(), claims.SchoolID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

func (h *StatisticsHandler) UnpaidFamilies(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing bearer token", nil)
		return
	}

	unpaid, err := h.statistics.UnpaidFamilies(r.Context(), claims.SchoolID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, unpaid)
}

func (h *StatisticsHandler) SearchPayments(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing bearer token", nil)
		return
	}

	q := r.URL.Query()
	page := queryInt(q.Get("page"), 1)
	pageSize := queryInt(q.Get("page_size"), 20)
	ptype := domain.PaymentType(q.Get("type"))

	rows, total, err := h.statistics.SearchPayments(r.Context(), claims.SchoolID, q.Get("q"), ptype, page, pageSize)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"resultats": rows,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

func (h *StatisticsHandler) RevenueByMonth(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing bearer token", nil)
		return
	}

	revenue, err := h.statistics.RevenueByMonth(r.Context(), claims.SchoolID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, revenue)
}

func queryInt(raw string, fallback int32) int32 {
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || v <= 0 {
		return fallback
	}
	return int32(v)
}
