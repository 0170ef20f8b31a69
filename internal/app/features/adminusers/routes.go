// internal/app/features/adminusers/routes.go
package adminusers

import "github.com/go-chi/chi/v5"

// Routes mounts the admin user management pages. The caller wraps this
// router in the admin-role middleware.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)
	r.Get("/new", h.ServeNew)
	r.Post("/", h.HandleCreate)

	r.Route("/{userID}", func(r chi.Router) {
		r.Get("/edit", h.ServeEdit)
		r.Post("/", h.HandleUpdate)
		r.Post("/status", h.HandleSetStatus)
		r.Post("/password", h.HandleSetPassword)
		r.Post("/delete", h.HandleDelete)
	})

	return r
}
