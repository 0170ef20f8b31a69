// internal/app/features/adminusers/usernew.go
package adminusers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/teamhub/internal/app/features/errors"
	userstore "github.com/dalemusser/teamhub/internal/app/store/users"
	"github.com/dalemusser/teamhub/internal/app/system/authutil"
	"github.com/dalemusser/teamhub/internal/app/system/authz"
	"github.com/dalemusser/teamhub/internal/app/system/formutil"
	"github.com/dalemusser/teamhub/internal/app/system/inputval"
	"github.com/dalemusser/teamhub/internal/app/system/timeouts"
	"github.com/dalemusser/teamhub/internal/app/system/timezones"
	"github.com/dalemusser/teamhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
)

// createUserInput defines validation rules for creating a user.
type createUserInput struct {
	FullName string `validate:"required,max=200" label:"Full name"`
	Email    string `validate:"required,email,max=320" label:"Email"`
}

// userFormData is the view model for the new/edit user forms.
type userFormData struct {
	formutil.Base

	UserID     string
	FullName   string
	Email      string
	Role       string
	Status     string
	AuthMethod string
	TimeZone   string

	Roles         []string
	AuthMethods   []string
	TimeZones     []timezones.Zone
	PasswordRules string

	// Edit page only.
	IsDisabled bool
	IsPassword bool
}

// ServeNew renders the Create User form.
// GET /admin/users/new
func (h *Handler) ServeNew(w http.ResponseWriter, r *http.Request) {
	data := userFormData{
		Role:          models.RoleMember,
		AuthMethod:    models.AuthMethodPassword,
		TimeZone:      "UTC",
		Roles:         models.AllRoles,
		AuthMethods:   models.AllAuthMethods,
		TimeZones:     timezones.All(),
		PasswordRules: authutil.PasswordRules(),
	}
	formutil.SetBase(&data.Base, r, "Create User", "/admin/users")

	templates.Render(w, r, "admin_user_new", data)
}

// HandleCreate processes the Create User form submission. Password accounts
// require an initial password; google and trust accounts sign in without one.
// POST /admin/users
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	role, _, actorID, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "adminusers: parse form", err, "Invalid form data.", "/admin/users")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	fullName := strings.TrimSpace(r.FormValue("full_name"))
	email := strings.TrimSpace(r.FormValue("email"))
	newRole := strings.TrimSpace(r.FormValue("role"))
	authMethod := strings.TrimSpace(r.FormValue("auth_method"))
	timeZone := strings.TrimSpace(r.FormValue("time_zone"))
	password := r.FormValue("password")

	data := userFormData{
		FullName:      fullName,
		Email:         email,
		Role:          newRole,
		AuthMethod:    authMethod,
		TimeZone:      timeZone,
		Roles:         models.AllRoles,
		AuthMethods:   models.AllAuthMethods,
		TimeZones:     timezones.All(),
		PasswordRules: authutil.PasswordRules(),
	}
	formutil.SetBase(&data.Base, r, "Create User", "/admin/users")

	renderError := func(msg string) {
		data.SetError(msg)
		templates.Render(w, r, "admin_user_new", data)
	}

	if res := inputval.Validate(createUserInput{FullName: fullName, Email: email}); res.HasErrors() {
		renderError(res.First())
		return
	}
	if !models.IsValidRole(newRole) {
		renderError("Unknown role.")
		return
	}
	if !models.IsValidAuthMethod(authMethod) {
		renderError("Unknown authentication method.")
		return
	}
	if timeZone != "" && !timezones.IsValid(timeZone) {
		renderError("Unknown time zone.")
		return
	}

	user := models.User{
		FullName:   fullName,
		Email:      email,
		Role:       newRole,
		AuthMethod: authMethod,
		TimeZone:   timeZone,
	}

	if authMethod == models.AuthMethodPassword {
		if err := authutil.ValidatePassword(password); err != nil {
			renderError(err.Error())
			return
		}
		hash, err := authutil.HashPassword(password)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "adminusers: hash password", err,
				"The user could not be created.", "/admin/users")
			return
		}
		user.PasswordHash = hash
	}

	created, err := userstore.New(h.DB).Create(ctx, user)
	if err != nil {
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			renderError("A user with that email already exists.")
			return
		}
		h.ErrLog.LogServerError(w, r, "adminusers: create", err,
			"The user could not be created.", "/admin/users")
		return
	}

	h.AuditLog.UserCreated(ctx, r, actorID, created.ID, role, created.Role, created.AuthMethod)

	http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
}
