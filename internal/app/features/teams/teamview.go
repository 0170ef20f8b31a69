// internal/app/features/teams/teamview.go
package teams

import (
	"context"
	"errors"
	"net/http"
	"sort"

	uierrors "github.com/dalemusser/teamhub/internal/app/features/errors"
	meetingstore "github.com/dalemusser/teamhub/internal/app/store/meetings"
	membershipstore "github.com/dalemusser/teamhub/internal/app/store/memberships"
	taskstore "github.com/dalemusser/teamhub/internal/app/store/tasks"
	teamstore "github.com/dalemusser/teamhub/internal/app/store/teams"
	userstore "github.com/dalemusser/teamhub/internal/app/store/users"
	"github.com/dalemusser/teamhub/internal/app/system/authz"
	"github.com/dalemusser/teamhub/internal/app/system/timeouts"
	"github.com/dalemusser/teamhub/internal/app/system/viewdata"
	"github.com/dalemusser/teamhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// recentMeetingsLimit caps the meeting list on the team page.
const recentMeetingsLimit = 10

// memberRow is one member on the team page.
type memberRow struct {
	UserID   primitive.ObjectID
	FullName string
	Email    string
	TeamRole string
}

// viewData is the view model for the team detail page.
type viewData struct {
	viewdata.BaseVM

	Team       models.Team
	Members    []memberRow
	TaskCounts map[string]int
	Meetings   []models.Meeting

	CanManage bool
	IsMember  bool
}

// teamIDFromURL parses the {teamID} route parameter.
func teamIDFromURL(r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "teamID"))
	return id, err == nil
}

// ServeView renders one team's detail page.
// GET /teams/{teamID}
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	teamID, ok := teamIDFromURL(r)
	if !ok {
		uierrors.RenderNotFound(w, r, "Team not found.", "/teams")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	team, err := teamstore.New(h.DB).GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			uierrors.RenderNotFound(w, r, "Team not found.", "/teams")
			return
		}
		h.ErrLog.LogServerError(w, r, "teams: load team", err,
			"The team could not be loaded.", "/teams")
		return
	}

	msStore := membershipstore.New(h.DB)
	members, err := msStore.ListByTeam(ctx, teamID, "")
	if err != nil {
		h.ErrLog.LogServerError(w, r, "teams: list members", err,
			"The team could not be loaded.", "/teams")
		return
	}

	userIDs := make([]primitive.ObjectID, len(members))
	roleByUser := make(map[primitive.ObjectID]string, len(members))
	isMember := false
	isTeamManager := false
	for i, m := range members {
		userIDs[i] = m.UserID
		roleByUser[m.UserID] = m.Role
		if m.UserID == uid {
			isMember = true
			isTeamManager = m.Role == models.TeamRoleManager
		}
	}

	memberUsers, err := userstore.New(h.DB).GetByIDs(ctx, userIDs)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "teams: load member users", err,
			"The team could not be loaded.", "/teams")
		return
	}

	rows := make([]memberRow, 0, len(memberUsers))
	for _, u := range memberUsers {
		rows = append(rows, memberRow{
			UserID:   u.ID,
			FullName: u.FullName,
			Email:    u.Email,
			TeamRole: roleByUser[u.ID],
		})
	}
	// Managers first, then by name.
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].TeamRole != rows[j].TeamRole {
			return rows[i].TeamRole == models.TeamRoleManager
		}
		return rows[i].FullName < rows[j].FullName
	})

	taskCounts, err := taskstore.New(h.DB).CountByTeamAndStatus(ctx, teamID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "teams: task counts", err,
			"The team could not be loaded.", "/teams")
		return
	}

	teamMeetings, err := meetingstore.New(h.DB).ListByTeam(ctx, teamID, recentMeetingsLimit)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "teams: list meetings", err,
			"The team could not be loaded.", "/teams")
		return
	}

	data := viewData{
		BaseVM:     viewdata.NewBaseVM(r, team.Name, "/teams"),
		Team:       team,
		Members:    rows,
		TaskCounts: taskCounts,
		Meetings:   teamMeetings,
		CanManage:  authz.CanManageTeam(r, isTeamManager),
		IsMember:   isMember,
	}

	templates.Render(w, r, "team_view", data)
}

// loadTeamForManage loads the team and checks the caller may manage it.
// Renders an error page and returns ok=false when not.
func (h *Handler) loadTeamForManage(ctx context.Context, w http.ResponseWriter, r *http.Request, uid primitive.ObjectID) (models.Team, bool) {
	teamID, ok := teamIDFromURL(r)
	if !ok {
		uierrors.RenderNotFound(w, r, "Team not found.", "/teams")
		return models.Team{}, false
	}

	team, err := teamstore.New(h.DB).GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			uierrors.RenderNotFound(w, r, "Team not found.", "/teams")
			return models.Team{}, false
		}
		h.ErrLog.LogServerError(w, r, "teams: load team", err,
			"The team could not be loaded.", "/teams")
		return models.Team{}, false
	}

	isTeamManager, err := membershipstore.New(h.DB).IsTeamManager(ctx, teamID, uid)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "teams: manager check", err,
			"The team could not be loaded.", "/teams")
		return models.Team{}, false
	}
	if !authz.CanManageTeam(r, isTeamManager) {
		uierrors.RenderForbidden(w, r, "You do not have access to manage this team.",
			httpnav.ResolveBackURL(r, "/teams/"+teamID.Hex()))
		return models.Team{}, false
	}

	return team, true
}
