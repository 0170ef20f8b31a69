// internal/app/features/profile/profile.go
package profile

import (
	"context"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/teamhub/internal/app/features/errors"
	userstore "github.com/dalemusser/teamhub/internal/app/store/users"
	"github.com/dalemusser/teamhub/internal/app/system/authutil"
	"github.com/dalemusser/teamhub/internal/app/system/authz"
	"github.com/dalemusser/teamhub/internal/app/system/timeouts"
	"github.com/dalemusser/teamhub/internal/app/system/timezones"
	"github.com/dalemusser/teamhub/internal/app/system/viewdata"
	"github.com/dalemusser/teamhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
)

// profileData is the view model for the profile page.
type profileData struct {
	viewdata.BaseVM

	FullName   string
	Email      string
	AuthMethod string
	TimeZone   string
	TimeZones  []timezones.Zone

	// Password section (only shown for password auth)
	ShowPasswordSection bool
	PasswordRules       string

	Error   string
	Success string
}

// ServeProfile renders the user's profile page.
func (h *Handler) ServeProfile(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	usrStore := userstore.New(h.DB)
	user, err := usrStore.GetByID(ctx, uid)
	if err != nil {
		uierrors.RenderNotFound(w, r, "User not found.", "/")
		return
	}

	data := newProfileData(r, user)

	switch r.URL.Query().Get("success") {
	case "password":
		data.Success = "Password changed successfully."
	case "profile":
		data.Success = "Profile saved."
	}

	templates.Render(w, r, "profile", data)
}

// HandleUpdateProfile processes the name/time-zone form.
func (h *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "profile: parse form failed", err, "Invalid form data.", "/profile")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	usrStore := userstore.New(h.DB)
	user, err := usrStore.GetByID(ctx, uid)
	if err != nil {
		uierrors.RenderNotFound(w, r, "User not found.", "/")
		return
	}

	fullName := strings.TrimSpace(r.FormValue("full_name"))
	timeZone := strings.TrimSpace(r.FormValue("time_zone"))

	if fullName == "" {
		renderProfileWithError(w, r, user, "Name is required.")
		return
	}
	if timeZone != "" && !timezones.IsValid(timeZone) {
		renderProfileWithError(w, r, user, "Unknown time zone.")
		return
	}

	if err := usrStore.UpdateProfile(ctx, uid, fullName, timeZone); err != nil {
		h.ErrLog.LogServerError(w, r, "profile: update failed", err, "Failed to save profile.", "/profile")
		return
	}

	http.Redirect(w, r, "/profile?success=profile", http.StatusSeeOther)
}

// HandleChangePassword processes the password change form.
func (h *Handler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "profile: parse form failed", err, "Invalid form data.", "/profile")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	usrStore := userstore.New(h.DB)
	user, err := usrStore.GetByID(ctx, uid)
	if err != nil {
		uierrors.RenderNotFound(w, r, "User not found.", "/")
		return
	}

	// Only allow password change for password auth users
	if user.AuthMethod != models.AuthMethodPassword {
		renderProfileWithError(w, r, user, "Password change is only available for password authentication.")
		return
	}

	currentPassword := r.FormValue("current_password")
	newPassword := r.FormValue("new_password")
	confirmPassword := r.FormValue("confirm_password")

	if user.PasswordHash == "" || !authutil.CheckPassword(currentPassword, user.PasswordHash) {
		renderProfileWithError(w, r, user, "Current password is incorrect.")
		return
	}

	if err := authutil.ValidatePassword(newPassword); err != nil {
		renderProfileWithError(w, r, user, err.Error())
		return
	}

	if newPassword != confirmPassword {
		renderProfileWithError(w, r, user, "New passwords do not match.")
		return
	}

	// Don't allow reusing the current password
	if authutil.CheckPassword(newPassword, user.PasswordHash) {
		renderProfileWithError(w, r, user, "New password cannot be the same as your current password.")
		return
	}

	hash, err := authutil.HashPassword(newPassword)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "profile: hash password failed", err, "Failed to update password.", "/profile")
		return
	}

	if err := usrStore.SetPasswordHash(ctx, uid, hash); err != nil {
		h.ErrLog.LogServerError(w, r, "profile: update password failed", err, "Failed to update password.", "/profile")
		return
	}

	h.AuditLog.PasswordChanged(ctx, r, uid)

	http.Redirect(w, r, "/profile?success=password", http.StatusSeeOther)
}

func newProfileData(r *http.Request, user *models.User) profileData {
	tz := user.TimeZone
	if tz == "" {
		tz = "UTC"
	}
	return profileData{
		BaseVM:              viewdata.NewBaseVM(r, "Profile", "/"),
		FullName:            user.FullName,
		Email:               user.Email,
		AuthMethod:          formatAuthMethod(user.AuthMethod),
		TimeZone:            tz,
		TimeZones:           timezones.All(),
		ShowPasswordSection: user.AuthMethod == models.AuthMethodPassword,
		PasswordRules:       authutil.PasswordRules(),
	}
}

// renderProfileWithError re-renders the profile page with an error message.
func renderProfileWithError(w http.ResponseWriter, r *http.Request, user *models.User, errMsg string) {
	data := newProfileData(r, user)
	data.Error = errMsg
	templates.Render(w, r, "profile", data)
}

// formatAuthMethod returns a human-readable label for the auth method.
func formatAuthMethod(method string) string {
	switch method {
	case models.AuthMethodPassword:
		return "Password"
	case models.AuthMethodGoogle:
		return "Google"
	case models.AuthMethodTrust:
		return "Trusted"
	default:
		return method
	}
}
