package importer

import "github.com/go-chi/chi/v5"

// Register adds the import routes. Callers mount r under /import behind
// admin middleware.
func (h *Handler) Register(r chi.Router) {
	r.Post("/", h.ImportBatch)
	r.Post("/populate", h.Populate)
	r.Get("/runs", h.ListRuns)
	r.Get("/runs/{id}", h.GetRun)
}
