package property

import (
	"github.com/go-chi/chi/v5"
)

// Register adds the search routes to r. Callers mount r under a mode prefix
// ("/properties" for hosted, "/local" for local) behind session middleware.
func (h *Handler) Register(r chi.Router) {
	r.Post("/search", h.Search)
	r.Get("/municipalities", h.ListMunicipalities)
	r.Get("/property-types", h.ListPropertyTypes)
	r.Get("/count", h.CountProperties)
	r.Post("/refresh", h.Refresh)
	r.Delete("/", h.ClearAll)
	r.Get("/{parid}", h.GetProperty)
}
