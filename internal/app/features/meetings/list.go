// internal/app/features/meetings/list.go
package meetings

import (
	"context"
	"net/http"
	"time"

	uierrors "github.com/dalemusser/teamhub/internal/app/features/errors"
	meetingstore "github.com/dalemusser/teamhub/internal/app/store/meetings"
	membershipstore "github.com/dalemusser/teamhub/internal/app/store/memberships"
	teamstore "github.com/dalemusser/teamhub/internal/app/store/teams"
	"github.com/dalemusser/teamhub/internal/app/system/authz"
	"github.com/dalemusser/teamhub/internal/app/system/timeouts"
	"github.com/dalemusser/teamhub/internal/app/system/viewdata"
	"github.com/dalemusser/teamhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const listLimit = 100

// listData is the view model for the meeting list page.
type listData struct {
	viewdata.BaseVM

	Meetings []models.Meeting
	Now      time.Time

	// Filters
	TeamID   string
	TeamName string

	MyTeams []models.Team
}

// ServeList renders the meeting list, filtered by team.
// GET /meetings
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	teamHex := query.Get(r, "team")
	loc := h.userLocation(ctx, uid)

	data := listData{
		BaseVM: viewdata.NewBaseVM(r, "Meetings", "/"),
		Now:    time.Now().In(loc),
		TeamID: teamHex,
	}

	mtStore := meetingstore.New(h.DB)
	msStore := membershipstore.New(h.DB)
	tmStore := teamstore.New(h.DB)

	teamIDs, err := msStore.TeamIDsByUser(ctx, uid)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "meetings: list memberships", err,
			"Meetings could not be loaded.", "/")
		return
	}
	if len(teamIDs) > 0 {
		data.MyTeams, err = tmStore.GetByIDs(ctx, teamIDs)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "meetings: load teams", err,
				"Meetings could not be loaded.", "/")
			return
		}
	}

	switch {
	case teamHex != "":
		teamID, idErr := primitive.ObjectIDFromHex(teamHex)
		if idErr != nil {
			uierrors.RenderNotFound(w, r, "Team not found.", "/meetings")
			return
		}
		if !h.requireTeamMember(ctx, w, r, teamID, uid) {
			return
		}
		team, teamErr := tmStore.GetByID(ctx, teamID)
		if teamErr == nil {
			data.TeamName = team.Name
		}
		data.Meetings, err = mtStore.ListByTeam(ctx, teamID, listLimit)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "meetings: list by team", err,
				"Meetings could not be loaded.", "/")
			return
		}
	default:
		for _, teamID := range teamIDs {
			list, listErr := mtStore.ListByTeam(ctx, teamID, listLimit)
			if listErr != nil {
				h.ErrLog.LogServerError(w, r, "meetings: list by team", listErr,
					"Meetings could not be loaded.", "/")
				return
			}
			data.Meetings = append(data.Meetings, list...)
		}
	}

	for i := range data.Meetings {
		data.Meetings[i] = localizeTimes(data.Meetings[i], loc)
	}

	templates.Render(w, r, "meeting_list", data)
}
