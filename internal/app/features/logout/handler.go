// internal/app/features/logout/handler.go
package logout

import (
	"context"
	"net/http"

	"github.com/dalemusser/teamhub/internal/app/system/auditlog"
	"github.com/dalemusser/teamhub/internal/app/system/auth"
	"github.com/dalemusser/teamhub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Handler holds dependencies for signing out.
type Handler struct {
	SM       *auth.SessionManager
	AuditLog *auditlog.Logger
	Log      *zap.Logger
}

// NewHandler constructs a logout Handler.
func NewHandler(sm *auth.SessionManager, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		SM:       sm,
		AuditLog: audit,
		Log:      logger,
	}
}

// Serve clears the session and sends the visitor to the landing page.
// Works for GET and POST so a plain nav link can sign out.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if u, ok := auth.CurrentUser(r); ok {
		h.AuditLog.Logout(ctx, r, u.ID)
	}

	if err := h.SM.SignOut(w, r); err != nil {
		h.Log.Warn("logout: clear session", zap.Error(err))
	}

	// HTMX requests need a client-side redirect header instead of a 3xx.
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/")
		w.WriteHeader(http.StatusOK)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}
