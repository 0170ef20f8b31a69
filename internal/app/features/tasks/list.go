// internal/app/features/tasks/list.go
package tasks

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/teamhub/internal/app/features/errors"
	membershipstore "github.com/dalemusser/teamhub/internal/app/store/memberships"
	taskstore "github.com/dalemusser/teamhub/internal/app/store/tasks"
	teamstore "github.com/dalemusser/teamhub/internal/app/store/teams"
	"github.com/dalemusser/teamhub/internal/app/system/authz"
	"github.com/dalemusser/teamhub/internal/app/system/timeouts"
	"github.com/dalemusser/teamhub/internal/app/system/viewdata"
	"github.com/dalemusser/teamhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// listData is the view model for the task list page.
type listData struct {
	viewdata.BaseVM

	Tasks []models.Task

	// Filters
	TeamID   string
	TeamName string
	Status   string
	Mine     bool

	MyTeams []models.Team
}

// ServeList renders the task list, filtered by team, status, or "mine".
// GET /tasks
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	teamHex := query.Get(r, "team")
	stat := query.Get(r, "status")
	if stat != "" && !models.IsValidTaskStatus(stat) {
		stat = ""
	}
	mine := query.Get(r, "mine") == "1"

	data := listData{
		BaseVM: viewdata.NewBaseVM(r, "Tasks", "/"),
		TeamID: teamHex,
		Status: stat,
		Mine:   mine,
	}

	tkStore := taskstore.New(h.DB)
	msStore := membershipstore.New(h.DB)
	tmStore := teamstore.New(h.DB)

	teamIDs, err := msStore.TeamIDsByUser(ctx, uid)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "tasks: list memberships", err,
			"Tasks could not be loaded.", "/")
		return
	}
	if len(teamIDs) > 0 {
		data.MyTeams, err = tmStore.GetByIDs(ctx, teamIDs)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "tasks: load teams", err,
				"Tasks could not be loaded.", "/")
			return
		}
	}

	switch {
	case mine:
		data.Tasks, err = tkStore.ListByAssignee(ctx, uid, stat)

	case teamHex != "":
		teamID, idErr := primitive.ObjectIDFromHex(teamHex)
		if idErr != nil {
			uierrors.RenderNotFound(w, r, "Team not found.", "/tasks")
			return
		}
		// Non-admins only see tasks of teams they belong to.
		if !authz.IsAdmin(r) {
			isMember, memberErr := msStore.Exists(ctx, teamID, uid)
			if memberErr != nil {
				h.ErrLog.LogServerError(w, r, "tasks: membership check", memberErr,
					"Tasks could not be loaded.", "/")
				return
			}
			if !isMember {
				uierrors.RenderForbidden(w, r, "You are not a member of this team.", "/tasks")
				return
			}
		}
		team, teamErr := tmStore.GetByID(ctx, teamID)
		if teamErr == nil {
			data.TeamName = team.Name
		}
		data.Tasks, err = tkStore.ListByTeam(ctx, teamID, stat)

	default:
		// Tasks across all my teams, assigned-or-not.
		var all []models.Task
		for _, teamID := range teamIDs {
			teamTasks, listErr := tkStore.ListByTeam(ctx, teamID, stat)
			if listErr != nil {
				err = listErr
				break
			}
			all = append(all, teamTasks...)
		}
		data.Tasks = all
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "tasks: list", err,
			"Tasks could not be loaded.", "/")
		return
	}

	templates.Render(w, r, "task_list", data)
}
