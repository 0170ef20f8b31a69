// internal/app/features/teams/teamdelete.go
package teams

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/teamhub/internal/app/features/errors"
	commentstore "github.com/dalemusser/teamhub/internal/app/store/comments"
	evaluationstore "github.com/dalemusser/teamhub/internal/app/store/evaluations"
	meetingstore "github.com/dalemusser/teamhub/internal/app/store/meetings"
	membershipstore "github.com/dalemusser/teamhub/internal/app/store/memberships"
	taskstore "github.com/dalemusser/teamhub/internal/app/store/tasks"
	teamstore "github.com/dalemusser/teamhub/internal/app/store/teams"
	"github.com/dalemusser/teamhub/internal/app/system/authz"
	"github.com/dalemusser/teamhub/internal/app/system/timeouts"
	"github.com/dalemusser/teamhub/internal/app/system/txn"
	"go.uber.org/zap"
)

// HandleDelete removes a team and everything scoped to it: memberships,
// tasks (with their comments and evaluations), and meetings.
// POST /teams/{teamID}/delete
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	role, _, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	team, ok := h.loadTeamForManage(ctx, w, r, uid)
	if !ok {
		return
	}

	tkStore := taskstore.New(h.DB)
	cmStore := commentstore.New(h.DB)
	evStore := evaluationstore.New(h.DB)

	err := txn.Run(ctx, h.DB, h.Log, func(ctx context.Context) error {
		teamTasks, err := tkStore.ListByTeam(ctx, team.ID, "")
		if err != nil {
			return err
		}
		for _, task := range teamTasks {
			if _, err := cmStore.DeleteByTask(ctx, task.ID); err != nil {
				return err
			}
			if _, err := evStore.DeleteByTask(ctx, task.ID); err != nil {
				return err
			}
		}
		if _, err := tkStore.DeleteByTeam(ctx, team.ID); err != nil {
			return err
		}
		if _, err := meetingstore.New(h.DB).DeleteByTeam(ctx, team.ID); err != nil {
			return err
		}
		if _, err := membershipstore.New(h.DB).DeleteByTeam(ctx, team.ID); err != nil {
			return err
		}
		_, err = teamstore.New(h.DB).Delete(ctx, team.ID)
		return err
	})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "teams: delete", err,
			"The team could not be deleted.", "/teams")
		return
	}

	h.AuditLog.TeamDeleted(ctx, r, uid, team.ID, role, team.Name)
	h.Log.Info("team deleted",
		zap.String("team_id", team.ID.Hex()),
		zap.String("team_name", team.Name))

	http.Redirect(w, r, "/teams", http.StatusSeeOther)
}
