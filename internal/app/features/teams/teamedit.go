// internal/app/features/teams/teamedit.go
package teams

import (
	"context"
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/teamhub/internal/app/features/errors"
	teamstore "github.com/dalemusser/teamhub/internal/app/store/teams"
	"github.com/dalemusser/teamhub/internal/app/system/authz"
	"github.com/dalemusser/teamhub/internal/app/system/formutil"
	"github.com/dalemusser/teamhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/teamhub/internal/app/system/inputval"
	"github.com/dalemusser/teamhub/internal/app/system/status"
	"github.com/dalemusser/teamhub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/templates"
)

// editTeamData is the view model for the Edit Team form.
type editTeamData struct {
	formutil.Base
	TeamID      string
	Name        string
	Description string
	Status      string
}

// ServeEdit renders the Edit Team page.
// GET /teams/{teamID}/edit
func (h *Handler) ServeEdit(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	team, ok := h.loadTeamForManage(ctx, w, r, uid)
	if !ok {
		return
	}

	data := editTeamData{
		TeamID:      team.ID.Hex(),
		Name:        team.Name,
		Description: team.Description,
		Status:      team.Status,
	}
	formutil.SetBase(&data.Base, r, "Edit Team", "/teams/"+team.ID.Hex())

	templates.Render(w, r, "team_edit", data)
}

// HandleUpdate processes the Edit Team form submission.
// POST /teams/{teamID}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	role, _, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "teams: parse edit form", err, "Invalid form data.", "/teams")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	team, ok := h.loadTeamForManage(ctx, w, r, uid)
	if !ok {
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	description := htmlsanitize.Sanitize(strings.TrimSpace(r.FormValue("description")))
	stat := strings.TrimSpace(r.FormValue("status"))
	if stat == "" {
		stat = team.Status
	}

	data := editTeamData{
		TeamID:      team.ID.Hex(),
		Name:        name,
		Description: description,
		Status:      stat,
	}
	formutil.SetBase(&data.Base, r, "Edit Team", "/teams/"+team.ID.Hex())

	if res := inputval.Validate(createTeamInput{Name: name}); res.HasErrors() {
		data.SetError(res.First())
		templates.Render(w, r, "team_edit", data)
		return
	}
	if !status.IsValid(stat) {
		data.SetError("Status must be active or disabled.")
		templates.Render(w, r, "team_edit", data)
		return
	}

	if err := teamstore.New(h.DB).UpdateInfo(ctx, team.ID, name, description, stat); err != nil {
		if errors.Is(err, teamstore.ErrDuplicateTeamName) {
			data.SetError("A team with this name already exists.")
			templates.Render(w, r, "team_edit", data)
			return
		}
		h.ErrLog.LogServerError(w, r, "teams: update", err,
			"The team could not be updated.", "/teams/"+team.ID.Hex())
		return
	}

	var changed []string
	if team.Name != name {
		changed = append(changed, "name")
	}
	if team.Description != description {
		changed = append(changed, "description")
	}
	if team.Status != stat {
		changed = append(changed, "status")
	}
	h.AuditLog.TeamUpdated(ctx, r, uid, team.ID, role, strings.Join(changed, ","))

	http.Redirect(w, r, "/teams/"+team.ID.Hex(), http.StatusSeeOther)
}
