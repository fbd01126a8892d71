package http

import (
	"net/http"
	"strconv"

	"madrasa-backend/internal/service"
)

// NotificationHandler serves in-app notifications
type NotificationHandler struct {
	notifications service.NotificationService
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing bearer token", nil)
		return
	}

	q := r.URL.Query()
	limit := queryInt(q.Get("limit"), 20)
	var offset int32
	if v, err := strconv.ParseInt(q.Get("offset"), 10, 32); err == nil && v > 0 {
		offset = int32(v)
	}

	list, err := h.notifications.List(r.Context(), claims.UserID, limit, offset)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (h *NotificationHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing bearer token", nil)
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid notification id", nil)
		return
	}

	if err := h.notifications.MarkAsRead(r.Context(), id, claims.UserID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, nil)
}
