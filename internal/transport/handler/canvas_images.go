package handler

import (
	"net/http"

	"github.com/kkkatsube/picc/internal/entities"
	"github.com/kkkatsube/picc/internal/geometry"
	"github.com/kkkatsube/picc/internal/probe"
	"github.com/kkkatsube/picc/internal/repository/storage"
)

func (h *Handler) ListCanvasImages(w http.ResponseWriter, r *http.Request) {
	canvas, ok := h.ownedCanvas(w, r)
	if !ok {
		return
	}

	images, err := h.storage.ListCanvasImages(r.Context(), canvas.ID)
	if err != nil {
		storageError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": images})
}

// CreateCanvasImage stores a newly dropped image. Missing dimensions are
// probed from the URL; a missing size is derived so the display width is
// 30% of the canvas.
func (h *Handler) CreateCanvasImage(w http.ResponseWriter, r *http.Request) {
	canvas, ok := h.ownedCanvas(w, r)
	if !ok {
		return
	}

	var req storeCanvasImageRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	if err := probe.CheckURL(req.AddPictureURL, h.allowPrivateURLs()); err != nil {
		writeFieldErrors(w, http.StatusUnprocessableEntity,
			fieldError("add_picture_url", err.Error()))
		return
	}

	width, height := 0, 0
	if req.Width != nil {
		width = *req.Width
	}
	if req.Height != nil {
		height = *req.Height
	}
	if req.Width == nil || req.Height == nil {
		dims, err := h.prober.Measure(r.Context(), req.AddPictureURL)
		if err != nil {
			writeJSON(w, http.StatusUnprocessableEntity, APIError{
				Message: "Failed to fetch image from URL",
				Errors:  fieldError("add_picture_url", "Unable to retrieve image dimensions"),
			})
			return
		}
		if req.Width == nil {
			width = dims.Width
		}
		if req.Height == nil {
			height = dims.Height
		}
	}

	size := geometry.DefaultScale
	if req.Size != nil {
		size = *req.Size
	} else if canvas.Width != nil {
		size = geometry.DropScale(*canvas.Width, width)
	}

	create := storage.CanvasImageCreate{
		URI:    req.AddPictureURL,
		Width:  width,
		Height: height,
		Size:   size,
	}
	if req.X != nil {
		create.X = *req.X
	}
	if req.Y != nil {
		create.Y = *req.Y
	}

	img, err := h.storage.CreateCanvasImage(r.Context(), canvas.ID, create)
	if err != nil {
		storageError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"data": img})
}

func (h *Handler) GetCanvasImage(w http.ResponseWriter, r *http.Request) {
	canvas, ok := h.ownedCanvas(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, "Not found", http.StatusNotFound)
		return
	}

	img, err := h.storage.GetCanvasImage(r.Context(), canvas.ID, id)
	if err != nil {
		storageError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": img})
}

func (h *Handler) UpdateCanvasImage(w http.ResponseWriter, r *http.Request) {
	canvas, ok := h.ownedCanvas(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, "Not found", http.StatusNotFound)
		return
	}

	var req updateCanvasImageRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	current, err := h.storage.GetCanvasImage(r.Context(), canvas.ID, id)
	if err != nil {
		storageError(w, err)
		return
	}

	if fields := degenerateCropFields(current, req); len(fields) > 0 {
		writeFieldErrors(w, http.StatusUnprocessableEntity, fields)
		return
	}

	img, err := h.storage.UpdateCanvasImage(r.Context(), canvas.ID, id, storage.CanvasImageUpdate{
		URI:    req.URI,
		X:      req.X,
		Y:      req.Y,
		Width:  req.Width,
		Height: req.Height,
		Left:   req.Left,
		Right:  req.Right,
		Top:    req.Top,
		Bottom: req.Bottom,
		Size:   req.Size,
	})
	if err != nil {
		storageError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": img})
}

func (h *Handler) DeleteCanvasImage(w http.ResponseWriter, r *http.Request) {
	canvas, ok := h.ownedCanvas(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, "Not found", http.StatusNotFound)
		return
	}

	if err := h.storage.DeleteCanvasImage(r.Context(), canvas.ID, id); err != nil {
		storageError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Canvas image deleted successfully"})
}

// ownedCanvas resolves {canvasId} against the caller; a miss has already
// been written as a 404.
func (h *Handler) ownedCanvas(w http.ResponseWriter, r *http.Request) (entities.Canvas, bool) {
	canvasID, ok := pathID(r, "canvasId")
	if !ok {
		writeError(w, "Not found", http.StatusNotFound)
		return entities.Canvas{}, false
	}

	canvas, err := h.storage.GetCanvas(r.Context(), userID(r), canvasID)
	if err != nil {
		storageError(w, err)
		return entities.Canvas{}, false
	}
	return canvas, true
}

// degenerateCropFields applies the partial update to the stored rectangle
// and rejects it when the crop would invert: the insets must always leave a
// visible area. Returned keys are the offending request fields.
func degenerateCropFields(current entities.CanvasImage, req updateCanvasImageRequest) map[string][]string {
	pick := func(override *int, stored *int) int {
		if override != nil {
			return *override
		}
		if stored != nil {
			return *stored
		}
		return 0
	}

	width := pick(req.Width, current.Width)
	height := pick(req.Height, current.Height)
	left := pick(req.Left, current.Left)
	right := pick(req.Right, current.Right)
	top := pick(req.Top, current.Top)
	bottom := pick(req.Bottom, current.Bottom)

	if geometry.ValidCrop(width, height, left, right, top, bottom) {
		return nil
	}

	fields := map[string][]string{}
	const msg = "crop insets must leave a visible area"
	for name, provided := range map[string]bool{
		"left":   req.Left != nil,
		"right":  req.Right != nil,
		"top":    req.Top != nil,
		"bottom": req.Bottom != nil,
		"width":  req.Width != nil,
		"height": req.Height != nil,
	} {
		if provided {
			fields[name] = []string{msg}
		}
	}
	if len(fields) == 0 {
		// update touched nothing crop-related yet the stored state is
		// already degenerate; refuse with a body-level message
		fields["body"] = []string{msg}
	}
	return fields
}

func (h *Handler) allowPrivateURLs() bool {
	return h.cfg != nil && h.cfg.Probe.AllowPrivate
}
