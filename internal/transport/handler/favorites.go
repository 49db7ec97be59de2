package handler

import (
	"net/http"

	"github.com/getsentry/sentry-go"

	"github.com/kkkatsube/picc/internal/entities"
	"github.com/kkkatsube/picc/internal/probe"
	"github.com/kkkatsube/picc/internal/thumbs"
)

func (h *Handler) ListCarousels(w http.ResponseWriter, r *http.Request) {
	carousels, err := h.storage.ListCarousels(r.Context(), userID(r))
	if err != nil {
		storageError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": carousels})
}

func (h *Handler) CreateCarousel(w http.ResponseWriter, r *http.Request) {
	var req carouselRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	carousel, err := h.storage.CreateCarousel(r.Context(), userID(r), req.Name)
	if err != nil {
		storageError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"data": carousel})
}

func (h *Handler) GetCarousel(w http.ResponseWriter, r *http.Request) {
	carousel, ok := h.ownedCarousel(w, r, "id")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": carousel})
}

func (h *Handler) UpdateCarousel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, "Not found", http.StatusNotFound)
		return
	}

	var req carouselRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	carousel, err := h.storage.UpdateCarousel(r.Context(), userID(r), id, req.Name)
	if err != nil {
		storageError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": carousel})
}

func (h *Handler) DeleteCarousel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, "Not found", http.StatusNotFound)
		return
	}

	if err := h.storage.DeleteCarousel(r.Context(), userID(r), id); err != nil {
		storageError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Carousel deleted successfully"})
}

// ReorderCarousels renumbers the caller's carousels to match the submitted
// order. The id list must be a full permutation of what the caller owns;
// anything else comes back as a 422 naming the offending ids.
func (h *Handler) ReorderCarousels(w http.ResponseWriter, r *http.Request) {
	var req reorderCarouselsRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.storage.ReorderCarousels(r.Context(), userID(r), req.CarouselIDs); err != nil {
		storageError(w, err)
		return
	}

	carousels, err := h.storage.ListCarousels(r.Context(), userID(r))
	if err != nil {
		storageError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": carousels})
}

func (h *Handler) ListCarouselImages(w http.ResponseWriter, r *http.Request) {
	carousel, ok := h.ownedCarousel(w, r, "carouselId")
	if !ok {
		return
	}

	images, err := h.storage.ListCarouselImages(r.Context(), carousel.ID)
	if err != nil {
		storageError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": images})
}

func (h *Handler) CreateCarouselImage(w http.ResponseWriter, r *http.Request) {
	carousel, ok := h.ownedCarousel(w, r, "carouselId")
	if !ok {
		return
	}

	var req carouselImageRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	if err := probe.CheckURL(req.ImageURL, h.allowPrivateURLs()); err != nil {
		writeFieldErrors(w, http.StatusUnprocessableEntity,
			fieldError("image_url", err.Error()))
		return
	}

	img, err := h.storage.CreateCarouselImage(r.Context(), carousel.ID, req.ImageURL)
	if err != nil {
		storageError(w, err)
		return
	}

	// thumbnail generation is best effort; a queue outage must not block
	// the save
	if h.thumbs != nil {
		if err := h.thumbs.EnqueueThumb(r.Context(), thumbs.ThumbJob{ImageURL: img.ImageURL}); err != nil {
			sentry.CaptureException(err)
		}
	}

	writeJSON(w, http.StatusCreated, map[string]any{"data": img})
}

// ReorderCarouselImages renumbers images within one carousel; same
// full-permutation contract as ReorderCarousels.
func (h *Handler) ReorderCarouselImages(w http.ResponseWriter, r *http.Request) {
	carousel, ok := h.ownedCarousel(w, r, "carouselId")
	if !ok {
		return
	}

	var req reorderImagesRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.storage.ReorderCarouselImages(r.Context(), carousel.ID, req.ImageIDs); err != nil {
		storageError(w, err)
		return
	}

	images, err := h.storage.ListCarouselImages(r.Context(), carousel.ID)
	if err != nil {
		storageError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": images})
}

// DeleteFavoritesImage is addressed by image id alone; ownership is resolved
// through the parent carousel.
func (h *Handler) DeleteFavoritesImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, "Not found", http.StatusNotFound)
		return
	}

	if err := h.storage.DeleteFavoritesImage(r.Context(), userID(r), id); err != nil {
		storageError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Image removed from favorites"})
}

func (h *Handler) ownedCarousel(w http.ResponseWriter, r *http.Request, param string) (entities.FavoritesCarousel, bool) {
	id, ok := pathID(r, param)
	if !ok {
		writeError(w, "Not found", http.StatusNotFound)
		return entities.FavoritesCarousel{}, false
	}

	carousel, err := h.storage.GetCarousel(r.Context(), userID(r), id)
	if err != nil {
		storageError(w, err)
		return entities.FavoritesCarousel{}, false
	}
	return carousel, true
}
