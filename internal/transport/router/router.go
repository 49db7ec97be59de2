package router

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kkkatsube/picc/internal/transport/handler"
)

func NewRouter(h *handler.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)

		r.Post("/auth/register", h.Register)
		r.Post("/auth/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(h.Authenticate)

			r.Post("/auth/logout", h.Logout)
			r.Get("/auth/user", h.CurrentUser)

			r.Get("/counter", h.GetCounter)
			r.Put("/counter", h.UpdateCounter)

			r.Route("/canvases", func(r chi.Router) {
				r.Get("/", h.ListCanvases)
				r.Post("/", h.CreateCanvas)
				r.Get("/{id}", h.GetCanvas)
				r.Put("/{id}", h.UpdateCanvas)
				r.Delete("/{id}", h.DeleteCanvas)

				r.Route("/{canvasId}/images", func(r chi.Router) {
					r.Get("/", h.ListCanvasImages)
					r.Post("/", h.CreateCanvasImage)
					r.Get("/{id}", h.GetCanvasImage)
					r.Put("/{id}", h.UpdateCanvasImage)
					r.Delete("/{id}", h.DeleteCanvasImage)
				})
			})

			r.Route("/favorites", func(r chi.Router) {
				r.Route("/carousels", func(r chi.Router) {
					r.Get("/", h.ListCarousels)
					r.Post("/", h.CreateCarousel)
					r.Put("/reorder", h.ReorderCarousels)
					r.Get("/{id}", h.GetCarousel)
					r.Put("/{id}", h.UpdateCarousel)
					r.Delete("/{id}", h.DeleteCarousel)

					r.Route("/{carouselId}/images", func(r chi.Router) {
						r.Get("/", h.ListCarouselImages)
						r.Post("/", h.CreateCarouselImage)
						r.Put("/reorder", h.ReorderCarouselImages)
					})
				})

				r.Delete("/images/{id}", h.DeleteFavoritesImage)
			})
		})
	})

	return r
}
