// internal/app/features/tasks/routes.go
package tasks

import "github.com/go-chi/chi/v5"

// Routes mounts the task pages and actions. All routes assume the
// signed-in middleware wraps this router.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)
	r.Get("/new", h.ServeNew)
	r.Post("/", h.HandleCreate)

	r.Route("/{taskID}", func(r chi.Router) {
		r.Get("/", h.ServeView)
		r.Get("/edit", h.ServeEdit)
		r.Post("/", h.HandleUpdate)
		r.Post("/status", h.HandleSetStatus)
		r.Post("/delete", h.HandleDelete)

		r.Post("/comments", h.HandleAddComment)
		r.Post("/comments/{commentID}/delete", h.HandleDeleteComment)
	})

	return r
}
