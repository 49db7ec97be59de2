package handler

import (
	"net/http"
)

// GetCounter returns the caller's counter, creating the zero row on first
// access so the client never sees a 404 here.
func (h *Handler) GetCounter(w http.ResponseWriter, r *http.Request) {
	counter, err := h.storage.GetOrCreateCounter(r.Context(), userID(r))
	if err != nil {
		storageError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": counter})
}

func (h *Handler) UpdateCounter(w http.ResponseWriter, r *http.Request) {
	var req counterRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	counter, err := h.storage.UpsertCounter(r.Context(), userID(r), *req.Value)
	if err != nil {
		storageError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": counter})
}
