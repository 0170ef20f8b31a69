// internal/app/features/tasks/taskedit.go
package tasks

import (
	"context"
	"net/http"
	"strings"
	"time"

	uierrors "github.com/dalemusser/teamhub/internal/app/features/errors"
	membershipstore "github.com/dalemusser/teamhub/internal/app/store/memberships"
	taskstore "github.com/dalemusser/teamhub/internal/app/store/tasks"
	"github.com/dalemusser/teamhub/internal/app/system/authz"
	"github.com/dalemusser/teamhub/internal/app/system/formutil"
	"github.com/dalemusser/teamhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/teamhub/internal/app/system/inputval"
	"github.com/dalemusser/teamhub/internal/app/system/timeouts"
	"github.com/dalemusser/teamhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// requireCanModify checks edit permission for the task, rendering a
// forbidden page when denied.
func (h *Handler) requireCanModify(ctx context.Context, w http.ResponseWriter, r *http.Request, task models.Task, uid primitive.ObjectID) bool {
	isTeamManager, err := h.isTeamManager(ctx, task.TeamID, uid)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "tasks: manager check", err,
			"The request could not be completed.", "/tasks")
		return false
	}
	if !authz.CanModifyTask(r, &task, isTeamManager) {
		uierrors.RenderForbidden(w, r, "You do not have access to modify this task.",
			"/tasks/"+task.ID.Hex())
		return false
	}
	return true
}

// ServeEdit renders the Edit Task form.
// GET /tasks/{taskID}/edit
func (h *Handler) ServeEdit(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	task, ok := h.loadTask(ctx, w, r)
	if !ok {
		return
	}
	if !h.requireCanModify(ctx, w, r, task, uid) {
		return
	}

	members, err := h.memberOptions(ctx, task.TeamID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "tasks: load members", err,
			"The form could not be loaded.", "/tasks")
		return
	}

	data := taskFormData{
		TaskID:      task.ID.Hex(),
		Title:       task.Title,
		Description: task.Description,
		Priority:    task.Priority,
		TeamID:      task.TeamID.Hex(),
		Members:     members,
		Priorities:  models.AllTaskPriorities,
	}
	if task.Deadline != nil {
		data.Deadline = task.Deadline.Format(deadlineLayout)
	}
	if task.AssigneeID != nil {
		data.AssigneeID = task.AssigneeID.Hex()
	}
	formutil.SetBase(&data.Base, r, "Edit Task", "/tasks/"+task.ID.Hex())

	templates.Render(w, r, "task_edit", data)
}

// HandleUpdate processes the Edit Task form submission.
// POST /tasks/{taskID}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "tasks: parse edit form", err, "Invalid form data.", "/tasks")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	task, ok := h.loadTask(ctx, w, r)
	if !ok {
		return
	}
	if !h.requireCanModify(ctx, w, r, task, uid) {
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	description := htmlsanitize.Sanitize(strings.TrimSpace(r.FormValue("description")))
	priority := strings.TrimSpace(r.FormValue("priority"))
	deadlineRaw := strings.TrimSpace(r.FormValue("deadline"))
	assigneeRaw := strings.TrimSpace(r.FormValue("assignee_id"))

	data := taskFormData{
		TaskID:      task.ID.Hex(),
		Title:       title,
		Description: description,
		Priority:    priority,
		Deadline:    deadlineRaw,
		AssigneeID:  assigneeRaw,
		TeamID:      task.TeamID.Hex(),
		Priorities:  models.AllTaskPriorities,
	}
	formutil.SetBase(&data.Base, r, "Edit Task", "/tasks/"+task.ID.Hex())

	renderError := func(msg string) {
		members, mErr := h.memberOptions(ctx, task.TeamID)
		if mErr == nil {
			data.Members = members
		}
		data.SetError(msg)
		templates.Render(w, r, "task_edit", data)
	}

	if res := inputval.Validate(createTaskInput{Title: title}); res.HasErrors() {
		renderError(res.First())
		return
	}
	if !models.IsValidTaskPriority(priority) {
		renderError("Unknown priority.")
		return
	}

	var deadline *time.Time
	if deadlineRaw != "" {
		t, parseErr := time.Parse(deadlineLayout, deadlineRaw)
		if parseErr != nil {
			renderError("Deadline must be a valid date and time.")
			return
		}
		utc := t.UTC()
		deadline = &utc
	}

	var assigneeID *primitive.ObjectID
	if assigneeRaw != "" {
		id, idErr := primitive.ObjectIDFromHex(assigneeRaw)
		if idErr != nil {
			renderError("Unknown assignee.")
			return
		}
		isMember, memberErr := membershipstore.New(h.DB).Exists(ctx, task.TeamID, id)
		if memberErr != nil {
			h.ErrLog.LogServerError(w, r, "tasks: assignee check", memberErr,
				"The task could not be updated.", "/tasks")
			return
		}
		if !isMember {
			renderError("The assignee must be a member of the team.")
			return
		}
		assigneeID = &id
	}

	err := taskstore.New(h.DB).UpdateInfo(ctx, task.ID, taskstore.Update{
		Title:       title,
		Description: description,
		Priority:    priority,
		Deadline:    deadline,
		AssigneeID:  assigneeID,
	})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "tasks: update", err,
			"The task could not be updated.", "/tasks")
		return
	}

	http.Redirect(w, r, "/tasks/"+task.ID.Hex(), http.StatusSeeOther)
}
