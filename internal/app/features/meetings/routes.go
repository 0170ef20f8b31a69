// internal/app/features/meetings/routes.go
package meetings

import "github.com/go-chi/chi/v5"

// Routes mounts the meeting pages and actions. All routes assume the
// signed-in middleware wraps this router.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)
	r.Get("/new", h.ServeNew)
	r.Post("/", h.HandleCreate)

	r.Route("/{meetingID}", func(r chi.Router) {
		r.Get("/", h.ServeView)
		r.Get("/edit", h.ServeEdit)
		r.Get("/ics", h.ServeICS)
		r.Post("/", h.HandleUpdate)
		r.Post("/delete", h.HandleDelete)

		r.Post("/participants", h.HandleAddParticipant)
		r.Post("/participants/{userID}/remove", h.HandleRemoveParticipant)
	})

	return r
}
