// internal/app/features/calendar/routes.go
package calendar

import "github.com/go-chi/chi/v5"

// Routes mounts the calendar pages. All routes assume the signed-in
// middleware wraps this router.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeRoot)
	r.Get("/day", h.ServeDay)
	r.Get("/month", h.ServeMonth)

	return r
}
