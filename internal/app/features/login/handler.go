// internal/app/features/login/handler.go
package login

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	uierrors "github.com/dalemusser/teamhub/internal/app/features/errors"
	users "github.com/dalemusser/teamhub/internal/app/store/users"
	"github.com/dalemusser/teamhub/internal/app/system/auditlog"
	"github.com/dalemusser/teamhub/internal/app/system/auth"
	"github.com/dalemusser/teamhub/internal/app/system/authutil"
	"github.com/dalemusser/teamhub/internal/app/system/ratelimit"
	"github.com/dalemusser/teamhub/internal/app/system/status"
	"github.com/dalemusser/teamhub/internal/app/system/timeouts"
	"github.com/dalemusser/teamhub/internal/app/system/viewdata"
	"github.com/dalemusser/teamhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// genericFailMsg deliberately does not reveal whether the email exists.
const genericFailMsg = "Invalid email or password."

// Handler holds dependencies for the login feature.
type Handler struct {
	Users    *users.Store
	SM       *auth.SessionManager
	Limiter  *ratelimit.LoginLimiter
	AuditLog *auditlog.Logger
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
}

// NewHandler constructs a login Handler.
func NewHandler(db *mongo.Database, sm *auth.SessionManager, limiter *ratelimit.LoginLimiter, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Users:    users.New(db),
		SM:       sm,
		Limiter:  limiter,
		AuditLog: audit,
		Log:      logger,
		ErrLog:   uierrors.NewErrorLogger(logger),
	}
}

// loginPageData is the view model for the login page.
type loginPageData struct {
	viewdata.BaseVM
	Email     string
	ReturnURL string
	Error     string
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /login – sign-in form                                                   |
*─────────────────────────────────────────────────────────────────────────────*/

// ShowLogin renders the sign-in form. Already-signed-in users are sent
// to the dashboard.
func (h *Handler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	if _, signedIn := auth.CurrentUser(r); signedIn {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	data := loginPageData{
		BaseVM:    viewdata.NewBaseVM(r, "Sign in", "/"),
		ReturnURL: urlutil.SafeReturn(query.Get(r, "return"), "", ""),
	}

	templates.Render(w, r, "login", data)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /login – credential check and session start                            |
*─────────────────────────────────────────────────────────────────────────────*/

// SubmitLogin authenticates an email + password pair and starts a session.
//
// Users whose auth method is "google" are redirected to the Google OAuth
// flow; "trust" users are signed in on email match alone (dev/test only).
func (h *Handler) SubmitLogin(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "login: parse form", err,
			"The sign-in form could not be read.", "/login")
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	returnURL := urlutil.SafeReturn(strings.TrimSpace(r.FormValue("return")), "", "")

	if email == "" {
		h.renderFail(w, r, http.StatusBadRequest, email, returnURL, "Email is required.")
		return
	}

	if ok, limitType, msg := h.Limiter.Check(r, email); !ok {
		h.AuditLog.LoginFailedRateLimit(ctx, r, email, limitType)
		h.renderFail(w, r, http.StatusTooManyRequests, email, returnURL, msg)
		return
	}

	user, err := h.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			h.AuditLog.LoginFailedUserNotFound(ctx, r, email)
			h.renderFail(w, r, http.StatusUnauthorized, email, returnURL, genericFailMsg)
			return
		}
		h.ErrLog.LogServerError(w, r, "login: lookup user", err,
			"Sign-in is unavailable right now. Please try again.", "/login")
		return
	}

	if user.Status == status.Disabled {
		h.AuditLog.LoginFailedUserDisabled(ctx, r, user.ID, user.Email)
		h.renderFail(w, r, http.StatusForbidden, email, returnURL,
			"This account has been disabled. Contact an administrator.")
		return
	}

	switch user.AuthMethod {
	case models.AuthMethodPassword:
		if password == "" || !authutil.CheckPassword(password, user.PasswordHash) {
			h.AuditLog.LoginFailedWrongPassword(ctx, r, user.ID, user.Email)
			h.renderFail(w, r, http.StatusUnauthorized, email, returnURL, genericFailMsg)
			return
		}

	case models.AuthMethodGoogle:
		// Password boxes don't apply; hand off to the OAuth flow.
		dest := "/auth/google"
		if returnURL != "" {
			dest += "?return=" + url.QueryEscape(returnURL)
		}
		http.Redirect(w, r, dest, http.StatusSeeOther)
		return

	case models.AuthMethodTrust:
		// Trust sign-in matches on email alone. Only enabled in
		// development configurations.

	default:
		h.Log.Warn("login: unknown auth method",
			zap.String("email", user.Email),
			zap.String("auth_method", user.AuthMethod))
		h.renderFail(w, r, http.StatusUnauthorized, email, returnURL, genericFailMsg)
		return
	}

	h.finishSignIn(ctx, w, r, user, returnURL)
}

// finishSignIn starts the session for an authenticated user.
func (h *Handler) finishSignIn(ctx context.Context, w http.ResponseWriter, r *http.Request, user *models.User, returnURL string) {
	su := &auth.SessionUser{
		ID:    user.ID.Hex(),
		Name:  user.FullName,
		Email: user.Email,
		Role:  user.Role,
	}
	if err := h.SM.SignIn(w, r, su); err != nil {
		h.ErrLog.LogServerError(w, r, "login: start session", err,
			"Sign-in is unavailable right now. Please try again.", "/login")
		return
	}

	h.Limiter.ResetEmail(user.Email)
	h.AuditLog.LoginSuccess(ctx, r, user.ID, user.AuthMethod, user.Email)

	dest := returnURL
	if dest == "" {
		dest = "/dashboard"
	}
	http.Redirect(w, r, dest, http.StatusSeeOther)
}

// renderFail re-renders the sign-in form with an error message.
func (h *Handler) renderFail(w http.ResponseWriter, r *http.Request, code int, email, returnURL, msg string) {
	w.WriteHeader(code)
	templates.Render(w, r, "login", loginPageData{
		BaseVM:    viewdata.NewBaseVM(r, "Sign in", "/"),
		Email:     email,
		ReturnURL: returnURL,
		Error:     msg,
	})
}
