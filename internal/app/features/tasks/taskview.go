// internal/app/features/tasks/taskview.go
package tasks

import (
	"context"
	"html/template"
	"net/http"
	"time"

	uierrors "github.com/dalemusser/teamhub/internal/app/features/errors"
	commentstore "github.com/dalemusser/teamhub/internal/app/store/comments"
	evaluationstore "github.com/dalemusser/teamhub/internal/app/store/evaluations"
	taskstore "github.com/dalemusser/teamhub/internal/app/store/tasks"
	teamstore "github.com/dalemusser/teamhub/internal/app/store/teams"
	userstore "github.com/dalemusser/teamhub/internal/app/store/users"
	"github.com/dalemusser/teamhub/internal/app/system/authz"
	"github.com/dalemusser/teamhub/internal/app/system/navigation"
	"github.com/dalemusser/teamhub/internal/app/system/timeouts"
	"github.com/dalemusser/teamhub/internal/app/system/viewdata"
	"github.com/dalemusser/teamhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// commentRow is one comment on the task page, with the body trusted as
// sanitized HTML (sanitized on the way in).
type commentRow struct {
	ID         primitive.ObjectID
	AuthorName string
	Body       template.HTML
	CreatedAt  time.Time
	CanDelete  bool
}

// taskViewData is the view model for the task detail page.
type taskViewData struct {
	viewdata.BaseVM

	Task         models.Task
	TeamName     string
	CreatorName  string
	AssigneeName string
	IsOverdue    bool

	Comments    []commentRow
	Evaluations []models.Evaluation

	CanModify   bool
	CanEvaluate bool
	Statuses    []string
}

// ServeView renders one task with its comments and evaluations.
// GET /tasks/{taskID}
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	task, ok := h.loadTask(ctx, w, r)
	if !ok {
		return
	}

	if !h.requireTeamMember(ctx, w, r, task.TeamID, uid) {
		return
	}

	isTeamManager, err := h.isTeamManager(ctx, task.TeamID, uid)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "tasks: manager check", err,
			"The task could not be loaded.", "/tasks")
		return
	}

	data := taskViewData{
		BaseVM:      viewdata.NewBaseVM(r, task.Title, "/tasks?team="+task.TeamID.Hex()),
		Task:        task,
		IsOverdue:   task.IsOverdue(time.Now().UTC()),
		CanModify:   authz.CanModifyTask(r, &task, isTeamManager),
		CanEvaluate: authz.CanEvaluate(r, isTeamManager) && task.Status == models.TaskStatusCompleted,
		Statuses:    models.AllTaskStatuses,
	}

	if team, teamErr := teamstore.New(h.DB).GetByID(ctx, task.TeamID); teamErr == nil {
		data.TeamName = team.Name
	}

	nameIDs := []primitive.ObjectID{task.CreatorID}
	if task.AssigneeID != nil {
		nameIDs = append(nameIDs, *task.AssigneeID)
	}
	if people, peopleErr := userstore.New(h.DB).GetByIDs(ctx, nameIDs); peopleErr == nil {
		for _, p := range people {
			if p.ID == task.CreatorID {
				data.CreatorName = p.FullName
			}
			if task.AssigneeID != nil && p.ID == *task.AssigneeID {
				data.AssigneeName = p.FullName
			}
		}
	}

	taskComments, err := commentstore.New(h.DB).ListByTask(ctx, task.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "tasks: list comments", err,
			"The task could not be loaded.", "/tasks")
		return
	}
	for _, c := range taskComments {
		data.Comments = append(data.Comments, commentRow{
			ID:         c.ID,
			AuthorName: c.AuthorName,
			Body:       template.HTML(c.Body),
			CreatedAt:  c.CreatedAt,
			CanDelete:  authz.CanDeleteComment(r, c.AuthorID),
		})
	}

	data.Evaluations, err = evaluationstore.New(h.DB).ListByTask(ctx, task.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "tasks: list evaluations", err,
			"The task could not be loaded.", "/tasks")
		return
	}

	templates.Render(w, r, "task_view", data)
}

// HandleDelete removes a task and its comments and evaluations.
// POST /tasks/{taskID}/delete
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	task, ok := h.loadTask(ctx, w, r)
	if !ok {
		return
	}

	isTeamManager, err := h.isTeamManager(ctx, task.TeamID, uid)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "tasks: manager check", err,
			"The task could not be deleted.", "/tasks")
		return
	}
	if !authz.CanModifyTask(r, &task, isTeamManager) {
		uierrors.RenderForbidden(w, r, "You do not have access to delete this task.",
			"/tasks/"+task.ID.Hex())
		return
	}

	if _, err := commentstore.New(h.DB).DeleteByTask(ctx, task.ID); err != nil {
		h.ErrLog.LogServerError(w, r, "tasks: delete comments", err,
			"The task could not be deleted.", "/tasks")
		return
	}
	if _, err := evaluationstore.New(h.DB).DeleteByTask(ctx, task.ID); err != nil {
		h.ErrLog.LogServerError(w, r, "tasks: delete evaluations", err,
			"The task could not be deleted.", "/tasks")
		return
	}

	if _, err := taskstore.New(h.DB).Delete(ctx, task.ID); err != nil {
		h.ErrLog.LogServerError(w, r, "tasks: delete", err,
			"The task could not be deleted.", "/tasks")
		return
	}

	back := navigation.SafeBackURL(r, navigation.BackURLOptions{
		AllowedPrefix:    "/tasks",
		ExcludedSubpaths: []string{"/" + task.ID.Hex()},
		Fallback:         "/tasks?team=" + task.TeamID.Hex(),
	})
	http.Redirect(w, r, back, http.StatusSeeOther)
}
