// internal/app/features/teams/routes.go
package teams

import "github.com/go-chi/chi/v5"

// Routes mounts the team pages and actions. All routes assume the
// signed-in middleware wraps this router.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)
	r.Get("/new", h.ServeNew)
	r.Post("/", h.HandleCreate)

	r.Route("/{teamID}", func(r chi.Router) {
		r.Get("/", h.ServeView)
		r.Get("/edit", h.ServeEdit)
		r.Post("/", h.HandleUpdate)
		r.Post("/delete", h.HandleDelete)

		r.Post("/members", h.HandleAddMember)
		r.Post("/members/{userID}/remove", h.HandleRemoveMember)
		r.Post("/members/{userID}/role", h.HandleSetMemberRole)
	})

	return r
}
