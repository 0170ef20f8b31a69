// internal/app/features/api/routes.go
package api

import "github.com/go-chi/chi/v5"

// Routes mounts the /api/v1 endpoints. Auth is checked per-handler so
// unauthenticated callers get a 401 JSON body instead of a login redirect.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/calendar/day", h.ServeCalendarDay)
	r.Get("/calendar/month", h.ServeCalendarMonth)

	r.Get("/tasks", h.ServeTasks)
	r.Post("/tasks", h.HandleCreateTask)

	r.Get("/meetings", h.ServeMeetings)
	r.Post("/meetings", h.HandleCreateMeeting)
	r.Get("/meetings/conflicts", h.ServeConflicts)

	return r
}
