// internal/app/features/teams/teamnew.go
package teams

import (
	"context"
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/teamhub/internal/app/features/errors"
	membershipstore "github.com/dalemusser/teamhub/internal/app/store/memberships"
	teamstore "github.com/dalemusser/teamhub/internal/app/store/teams"
	"github.com/dalemusser/teamhub/internal/app/system/authz"
	"github.com/dalemusser/teamhub/internal/app/system/formutil"
	"github.com/dalemusser/teamhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/teamhub/internal/app/system/inputval"
	"github.com/dalemusser/teamhub/internal/app/system/timeouts"
	"github.com/dalemusser/teamhub/internal/app/system/txn"
	"github.com/dalemusser/teamhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/dalemusser/waffle/pantry/templates"
)

// createTeamInput defines validation rules for creating a team.
type createTeamInput struct {
	Name string `validate:"required,max=200" label:"Name"`
}

// newTeamData is the view model for the Add Team form.
type newTeamData struct {
	formutil.Base
	Name        string
	Description string
}

// ServeNew renders the Add Team page.
// GET /teams/new
func (h *Handler) ServeNew(w http.ResponseWriter, r *http.Request) {
	_, _, _, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}
	if !authz.CanCreateTeam(r) {
		uierrors.RenderForbidden(w, r, "You do not have access to create teams.",
			httpnav.ResolveBackURL(r, "/teams"))
		return
	}

	var data newTeamData
	formutil.SetBase(&data.Base, r, "Add Team", "/teams")
	templates.Render(w, r, "team_new", data)
}

// HandleCreate processes the Add Team form submission.
// POST /teams
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	role, _, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}
	if !authz.CanCreateTeam(r) {
		uierrors.RenderForbidden(w, r, "You do not have access to create teams.",
			httpnav.ResolveBackURL(r, "/teams"))
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "teams: parse create form", err, "Invalid form data.", "/teams")
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	description := htmlsanitize.Sanitize(strings.TrimSpace(r.FormValue("description")))

	data := newTeamData{Name: name, Description: description}
	formutil.SetBase(&data.Base, r, "Add Team", "/teams")

	if res := inputval.Validate(createTeamInput{Name: name}); res.HasErrors() {
		data.SetError(res.First())
		templates.Render(w, r, "team_new", data)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	tmStore := teamstore.New(h.DB)
	msStore := membershipstore.New(h.DB)

	var team models.Team
	err := txn.Run(ctx, h.DB, h.Log, func(ctx context.Context) error {
		var err error
		team, err = tmStore.Create(ctx, models.Team{
			Name:        name,
			Description: description,
			Status:      "active",
		})
		if err != nil {
			return err
		}
		// The creator manages the team they created.
		return msStore.Add(ctx, team.ID, uid, models.TeamRoleManager)
	})
	if err != nil {
		if errors.Is(err, teamstore.ErrDuplicateTeamName) {
			data.SetError("A team with this name already exists.")
			templates.Render(w, r, "team_new", data)
			return
		}
		h.ErrLog.LogServerError(w, r, "teams: create", err,
			"The team could not be created.", "/teams")
		return
	}

	h.AuditLog.TeamCreated(ctx, r, uid, team.ID, role, team.Name)

	http.Redirect(w, r, "/teams/"+team.ID.Hex(), http.StatusSeeOther)
}
