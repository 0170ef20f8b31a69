// internal/app/features/tasks/taskstatus.go
package tasks

import (
	"context"
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/teamhub/internal/app/features/errors"
	taskstore "github.com/dalemusser/teamhub/internal/app/store/tasks"
	"github.com/dalemusser/teamhub/internal/app/system/authz"
	"github.com/dalemusser/teamhub/internal/app/system/timeouts"
	"github.com/dalemusser/teamhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// HandleSetStatus changes a task's status.
// POST /tasks/{taskID}/status
//
// The assignee may move their own task; anyone who can modify the task
// may move it as well.
func (h *Handler) HandleSetStatus(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "tasks: parse status form", err, "Invalid form data.", "/tasks")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	task, ok := h.loadTask(ctx, w, r)
	if !ok {
		return
	}

	if !h.canSetStatus(ctx, w, r, task, uid) {
		return
	}

	stat := strings.TrimSpace(r.FormValue("status"))
	if !models.IsValidTaskStatus(stat) {
		h.ErrLog.LogBadRequest(w, r, "tasks: bad status value", nil,
			"Unknown task status.", "/tasks/"+task.ID.Hex())
		return
	}

	if _, err := taskstore.New(h.DB).SetStatus(ctx, task.ID, stat); err != nil {
		if errors.Is(err, taskstore.ErrNoAssignee) {
			uierrors.RenderForbidden(w, r,
				"A task must have an assignee before it can be completed.",
				"/tasks/"+task.ID.Hex())
			return
		}
		h.ErrLog.LogServerError(w, r, "tasks: set status", err,
			"The task status could not be changed.", "/tasks/"+task.ID.Hex())
		return
	}

	http.Redirect(w, r, "/tasks/"+task.ID.Hex(), http.StatusSeeOther)
}

func (h *Handler) canSetStatus(ctx context.Context, w http.ResponseWriter, r *http.Request, task models.Task, uid primitive.ObjectID) bool {
	if task.AssigneeID != nil && *task.AssigneeID == uid {
		return true
	}

	isTeamManager, err := h.isTeamManager(ctx, task.TeamID, uid)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "tasks: manager check", err,
			"The request could not be completed.", "/tasks")
		return false
	}
	if !authz.CanModifyTask(r, &task, isTeamManager) {
		uierrors.RenderForbidden(w, r, "You do not have access to change this task's status.",
			"/tasks/"+task.ID.Hex())
		return false
	}
	return true
}
