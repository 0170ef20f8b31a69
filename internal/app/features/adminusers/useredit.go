// internal/app/features/adminusers/useredit.go
package adminusers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/teamhub/internal/app/features/errors"
	membershipstore "github.com/dalemusser/teamhub/internal/app/store/memberships"
	userstore "github.com/dalemusser/teamhub/internal/app/store/users"
	"github.com/dalemusser/teamhub/internal/app/system/authutil"
	"github.com/dalemusser/teamhub/internal/app/system/authz"
	"github.com/dalemusser/teamhub/internal/app/system/formutil"
	"github.com/dalemusser/teamhub/internal/app/system/inputval"
	"github.com/dalemusser/teamhub/internal/app/system/status"
	"github.com/dalemusser/teamhub/internal/app/system/timeouts"
	"github.com/dalemusser/teamhub/internal/app/system/timezones"
	"github.com/dalemusser/teamhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// ServeEdit renders the Edit User form.
// GET /admin/users/{userID}/edit
func (h *Handler) ServeEdit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	user, ok := h.loadUser(ctx, w, r)
	if !ok {
		return
	}

	data := userFormData{
		UserID:        user.ID.Hex(),
		FullName:      user.FullName,
		Email:         user.Email,
		Role:          user.Role,
		Status:        user.Status,
		AuthMethod:    user.AuthMethod,
		TimeZone:      user.TimeZone,
		Roles:         models.AllRoles,
		AuthMethods:   models.AllAuthMethods,
		TimeZones:     timezones.All(),
		PasswordRules: authutil.PasswordRules(),
		IsDisabled:    user.Status == status.Disabled,
		IsPassword:    user.AuthMethod == models.AuthMethodPassword,
	}
	formutil.SetBase(&data.Base, r, "Edit User", "/admin/users")

	templates.Render(w, r, "admin_user_edit", data)
}

// HandleUpdate processes the Edit User form submission. Demoting the last
// active admin is rejected.
// POST /admin/users/{userID}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	actorRole, _, actorID, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "adminusers: parse edit form", err, "Invalid form data.", "/admin/users")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	user, ok := h.loadUser(ctx, w, r)
	if !ok {
		return
	}

	fullName := strings.TrimSpace(r.FormValue("full_name"))
	email := strings.TrimSpace(r.FormValue("email"))
	newRole := strings.TrimSpace(r.FormValue("role"))
	newStatus := strings.TrimSpace(r.FormValue("status"))

	data := userFormData{
		UserID:        user.ID.Hex(),
		FullName:      fullName,
		Email:         email,
		Role:          newRole,
		Status:        newStatus,
		AuthMethod:    user.AuthMethod,
		TimeZone:      user.TimeZone,
		Roles:         models.AllRoles,
		AuthMethods:   models.AllAuthMethods,
		TimeZones:     timezones.All(),
		PasswordRules: authutil.PasswordRules(),
		IsDisabled:    user.Status == status.Disabled,
		IsPassword:    user.AuthMethod == models.AuthMethodPassword,
	}
	formutil.SetBase(&data.Base, r, "Edit User", "/admin/users")

	renderError := func(msg string) {
		data.SetError(msg)
		templates.Render(w, r, "admin_user_edit", data)
	}

	if res := inputval.Validate(createUserInput{FullName: fullName, Email: email}); res.HasErrors() {
		renderError(res.First())
		return
	}
	if !models.IsValidRole(newRole) {
		renderError("Unknown role.")
		return
	}
	if !status.IsValid(newStatus) {
		renderError("Unknown status.")
		return
	}

	store := userstore.New(h.DB)

	// The system must always keep one active admin.
	if user.Role == models.RoleAdmin && (newRole != models.RoleAdmin || newStatus == status.Disabled) {
		admins, err := store.CountAdmins(ctx)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "adminusers: count admins", err,
				"The user could not be updated.", "/admin/users")
			return
		}
		if admins <= 1 {
			renderError("The last active admin cannot be demoted or disabled.")
			return
		}
	}

	var changed []string
	if fullName != user.FullName {
		changed = append(changed, "full_name")
	}
	if !strings.EqualFold(email, user.Email) {
		changed = append(changed, "email")
	}
	if newRole != user.Role {
		changed = append(changed, "role")
	}
	if newStatus != user.Status {
		changed = append(changed, "status")
	}

	err := store.UpdateUser(ctx, user.ID, userstore.Update{
		FullName: fullName,
		Email:    email,
		Role:     newRole,
		Status:   newStatus,
	})
	if err != nil {
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			renderError("A user with that email already exists.")
			return
		}
		h.ErrLog.LogServerError(w, r, "adminusers: update", err,
			"The user could not be updated.", "/admin/users")
		return
	}

	if len(changed) > 0 {
		h.AuditLog.UserUpdated(ctx, r, actorID, user.ID, actorRole, strings.Join(changed, ","))
	}

	http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
}

// HandleSetStatus enables or disables an account.
// POST /admin/users/{userID}/status
func (h *Handler) HandleSetStatus(w http.ResponseWriter, r *http.Request) {
	actorRole, _, actorID, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "adminusers: parse status form", err, "Invalid form data.", "/admin/users")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	user, ok := h.loadUser(ctx, w, r)
	if !ok {
		return
	}

	newStatus := strings.TrimSpace(r.FormValue("status"))
	if !status.IsValid(newStatus) {
		h.ErrLog.LogBadRequest(w, r, "adminusers: bad status", nil,
			"Unknown status.", "/admin/users")
		return
	}

	if user.ID == actorID && newStatus == status.Disabled {
		uierrors.RenderForbidden(w, r, "You cannot disable your own account.", "/admin/users")
		return
	}

	store := userstore.New(h.DB)
	if user.Role == models.RoleAdmin && newStatus == status.Disabled {
		admins, err := store.CountAdmins(ctx)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "adminusers: count admins", err,
				"The account status could not be changed.", "/admin/users")
			return
		}
		if admins <= 1 {
			uierrors.RenderForbidden(w, r, "The last active admin cannot be disabled.", "/admin/users")
			return
		}
	}

	if err := store.SetStatus(ctx, user.ID, newStatus); err != nil {
		h.ErrLog.LogServerError(w, r, "adminusers: set status", err,
			"The account status could not be changed.", "/admin/users")
		return
	}

	if newStatus == status.Disabled {
		h.AuditLog.UserDisabled(ctx, r, actorID, user.ID, actorRole)
	} else {
		h.AuditLog.UserEnabled(ctx, r, actorID, user.ID, actorRole)
	}

	http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
}

// HandleSetPassword sets a new password on a password account.
// POST /admin/users/{userID}/password
func (h *Handler) HandleSetPassword(w http.ResponseWriter, r *http.Request) {
	_, _, actorID, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "adminusers: parse password form", err, "Invalid form data.", "/admin/users")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	user, ok := h.loadUser(ctx, w, r)
	if !ok {
		return
	}

	if user.AuthMethod != models.AuthMethodPassword {
		uierrors.RenderForbidden(w, r, "This account does not sign in with a password.", "/admin/users")
		return
	}

	password := r.FormValue("password")
	if err := authutil.ValidatePassword(password); err != nil {
		h.ErrLog.LogBadRequest(w, r, "adminusers: weak password", nil,
			err.Error(), "/admin/users/"+user.ID.Hex()+"/edit")
		return
	}

	hash, err := authutil.HashPassword(password)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "adminusers: hash password", err,
			"The password could not be set.", "/admin/users")
		return
	}
	if err := userstore.New(h.DB).SetPasswordHash(ctx, user.ID, hash); err != nil {
		h.ErrLog.LogServerError(w, r, "adminusers: set password", err,
			"The password could not be set.", "/admin/users")
		return
	}

	h.AuditLog.PasswordChanged(ctx, r, user.ID)
	h.Log.Info("admin set user password",
		zap.String("target_user_id", user.ID.Hex()),
		zap.String("actor_id", actorID.Hex()))

	http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
}

// HandleDelete deletes an account and its team memberships. The user's
// tasks, comments, and evaluations are kept for the historical record.
// POST /admin/users/{userID}/delete
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	actorRole, _, actorID, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	user, ok := h.loadUser(ctx, w, r)
	if !ok {
		return
	}

	if user.ID == actorID {
		uierrors.RenderForbidden(w, r, "You cannot delete your own account.", "/admin/users")
		return
	}
	if user.Role == models.RoleAdmin {
		admins, err := userstore.New(h.DB).CountAdmins(ctx)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "adminusers: count admins", err,
				"The user could not be deleted.", "/admin/users")
			return
		}
		if admins <= 1 {
			uierrors.RenderForbidden(w, r, "The last active admin cannot be deleted.", "/admin/users")
			return
		}
	}

	if _, err := membershipstore.New(h.DB).DeleteByUser(ctx, user.ID); err != nil {
		h.ErrLog.LogServerError(w, r, "adminusers: delete memberships", err,
			"The user could not be deleted.", "/admin/users")
		return
	}
	if _, err := userstore.New(h.DB).Delete(ctx, user.ID); err != nil {
		h.ErrLog.LogServerError(w, r, "adminusers: delete user", err,
			"The user could not be deleted.", "/admin/users")
		return
	}

	h.AuditLog.UserDeleted(ctx, r, actorID, user.ID, actorRole, user.Role)

	http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
}
