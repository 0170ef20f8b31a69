// internal/app/features/teams/list.go
package teams

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/teamhub/internal/app/features/errors"
	membershipstore "github.com/dalemusser/teamhub/internal/app/store/memberships"
	teamstore "github.com/dalemusser/teamhub/internal/app/store/teams"
	"github.com/dalemusser/teamhub/internal/app/system/authz"
	"github.com/dalemusser/teamhub/internal/app/system/timeouts"
	"github.com/dalemusser/teamhub/internal/app/system/viewdata"
	"github.com/dalemusser/teamhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// teamRow is one row in the team list.
type teamRow struct {
	models.Team
	MemberCount int
	IsMine      bool
}

// listData is the view model for the team list page.
type listData struct {
	viewdata.BaseVM
	Teams     []teamRow
	CanCreate bool
}

// ServeList renders the team list.
// GET /teams
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	teamList, err := teamstore.New(h.DB).List(ctx, 0)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "teams: list", err,
			"Teams could not be loaded.", "/")
		return
	}

	msStore := membershipstore.New(h.DB)

	ids := make([]primitive.ObjectID, len(teamList))
	for i, t := range teamList {
		ids[i] = t.ID
	}
	counts, err := msStore.CountMembersPerTeam(ctx, ids)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "teams: member counts", err,
			"Teams could not be loaded.", "/")
		return
	}

	myTeamIDs, err := msStore.TeamIDsByUser(ctx, uid)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "teams: memberships", err,
			"Teams could not be loaded.", "/")
		return
	}
	mine := make(map[primitive.ObjectID]bool, len(myTeamIDs))
	for _, id := range myTeamIDs {
		mine[id] = true
	}

	rows := make([]teamRow, 0, len(teamList))
	for _, t := range teamList {
		rows = append(rows, teamRow{
			Team:        t,
			MemberCount: counts[t.ID],
			IsMine:      mine[t.ID],
		})
	}

	data := listData{
		BaseVM:    viewdata.NewBaseVM(r, "Teams", "/"),
		Teams:     rows,
		CanCreate: authz.CanCreateTeam(r),
	}

	templates.Render(w, r, "team_list", data)
}
