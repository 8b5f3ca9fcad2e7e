package auth

import (
	"github.com/alleghenyre/propsearch/internal/middleware"
	"github.com/go-chi/chi/v5"
)

func SetupRoutes(h *Handler, fetcher middleware.SessionFetcher) *chi.Mux {
	r := chi.NewRouter()

	r.Post("/register", h.RegisterHandler)
	r.Post("/login", h.LoginHandler)

	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionMiddleware(fetcher))
		r.Post("/logout", h.LogoutHandler)
		r.Get("/me", h.MeHandler)
	})

	return r
}
