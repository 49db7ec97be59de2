package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kkkatsube/picc/internal/repository/storage"
)

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}

func (h *Handler) ListCanvases(w http.ResponseWriter, r *http.Request) {
	canvases, err := h.storage.ListCanvases(r.Context(), userID(r))
	if err != nil {
		storageError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": canvases})
}

func (h *Handler) CreateCanvas(w http.ResponseWriter, r *http.Request) {
	var req canvasRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	canvas, err := h.storage.CreateCanvas(r.Context(), userID(r), storage.CanvasUpdate{
		Name:   req.Name,
		Memo:   req.Memo,
		Width:  req.Width,
		Height: req.Height,
	})
	if err != nil {
		storageError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"data": canvas})
}

func (h *Handler) GetCanvas(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, "Not found", http.StatusNotFound)
		return
	}

	canvas, err := h.storage.GetCanvas(r.Context(), userID(r), id)
	if err != nil {
		storageError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": canvas})
}

func (h *Handler) UpdateCanvas(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, "Not found", http.StatusNotFound)
		return
	}

	var req canvasRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	canvas, err := h.storage.UpdateCanvas(r.Context(), userID(r), id, storage.CanvasUpdate{
		Name:   req.Name,
		Memo:   req.Memo,
		Width:  req.Width,
		Height: req.Height,
	})
	if err != nil {
		storageError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": canvas})
}

func (h *Handler) DeleteCanvas(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, "Not found", http.StatusNotFound)
		return
	}

	if err := h.storage.DeleteCanvas(r.Context(), userID(r), id); err != nil {
		storageError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Canvas deleted successfully"})
}
