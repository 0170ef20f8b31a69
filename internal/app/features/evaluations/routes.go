// internal/app/features/evaluations/routes.go
package evaluations

import "github.com/go-chi/chi/v5"

// Routes mounts the evaluation pages and actions. All routes assume the
// signed-in middleware wraps this router.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)
	r.Get("/new", h.ServeNew)
	r.Post("/", h.HandleCreate)

	return r
}
