// internal/app/features/tasks/tasknew.go
package tasks

import (
	"context"
	"net/http"
	"strings"
	"time"

	uierrors "github.com/dalemusser/teamhub/internal/app/features/errors"
	membershipstore "github.com/dalemusser/teamhub/internal/app/store/memberships"
	taskstore "github.com/dalemusser/teamhub/internal/app/store/tasks"
	userstore "github.com/dalemusser/teamhub/internal/app/store/users"
	"github.com/dalemusser/teamhub/internal/app/system/authz"
	"github.com/dalemusser/teamhub/internal/app/system/formutil"
	"github.com/dalemusser/teamhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/teamhub/internal/app/system/inputval"
	"github.com/dalemusser/teamhub/internal/app/system/timeouts"
	"github.com/dalemusser/teamhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// deadlineLayout is the HTML datetime-local input format.
const deadlineLayout = "2006-01-02T15:04"

// createTaskInput defines validation rules for creating a task.
type createTaskInput struct {
	Title string `validate:"required,max=300" label:"Title"`
}

// memberOption is one assignee choice in the task form.
type memberOption struct {
	ID       string
	FullName string
}

// taskFormData is the view model for the new/edit task forms.
type taskFormData struct {
	formutil.Base

	TaskID      string
	Title       string
	Description string
	Priority    string
	Deadline    string
	AssigneeID  string

	TeamID   string
	TeamName string
	Members  []memberOption

	Priorities []string
}

// memberOptions loads the team's members as assignee choices.
func (h *Handler) memberOptions(ctx context.Context, teamID primitive.ObjectID) ([]memberOption, error) {
	ids, err := membershipstore.New(h.DB).UserIDsByTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	members, err := userstore.New(h.DB).GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	opts := make([]memberOption, 0, len(members))
	for _, m := range members {
		opts = append(opts, memberOption{ID: m.ID.Hex(), FullName: m.FullName})
	}
	return opts, nil
}

// requireTeamMember checks the caller belongs to the team (admins pass).
// Renders an error page and returns false when not.
func (h *Handler) requireTeamMember(ctx context.Context, w http.ResponseWriter, r *http.Request, teamID, uid primitive.ObjectID) bool {
	if authz.IsAdmin(r) {
		return true
	}
	isMember, err := membershipstore.New(h.DB).Exists(ctx, teamID, uid)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "tasks: membership check", err,
			"The request could not be completed.", "/tasks")
		return false
	}
	if !isMember {
		uierrors.RenderForbidden(w, r, "You are not a member of this team.", "/tasks")
		return false
	}
	return true
}

// ServeNew renders the New Task form.
// GET /tasks/new?team={teamID}
func (h *Handler) ServeNew(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	teamID, err := primitive.ObjectIDFromHex(query.Get(r, "team"))
	if err != nil {
		uierrors.RenderNotFound(w, r, "Pick a team before creating a task.", "/tasks")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if !h.requireTeamMember(ctx, w, r, teamID, uid) {
		return
	}

	members, err := h.memberOptions(ctx, teamID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "tasks: load members", err,
			"The form could not be loaded.", "/tasks")
		return
	}

	data := taskFormData{
		TeamID:     teamID.Hex(),
		Priority:   models.TaskPriorityMedium,
		Members:    members,
		Priorities: models.AllTaskPriorities,
	}
	formutil.SetBase(&data.Base, r, "New Task", "/tasks?team="+teamID.Hex())

	templates.Render(w, r, "task_new", data)
}

// HandleCreate processes the New Task form submission.
// POST /tasks
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "tasks: parse create form", err, "Invalid form data.", "/tasks")
		return
	}

	teamID, err := primitive.ObjectIDFromHex(strings.TrimSpace(r.FormValue("team_id")))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "tasks: bad team id", err, "Pick a team before creating a task.", "/tasks")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if !h.requireTeamMember(ctx, w, r, teamID, uid) {
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	description := htmlsanitize.Sanitize(strings.TrimSpace(r.FormValue("description")))
	priority := strings.TrimSpace(r.FormValue("priority"))
	deadlineRaw := strings.TrimSpace(r.FormValue("deadline"))
	assigneeRaw := strings.TrimSpace(r.FormValue("assignee_id"))

	if priority == "" {
		priority = models.TaskPriorityMedium
	}

	data := taskFormData{
		TeamID:      teamID.Hex(),
		Title:       title,
		Description: description,
		Priority:    priority,
		Deadline:    deadlineRaw,
		AssigneeID:  assigneeRaw,
		Priorities:  models.AllTaskPriorities,
	}
	formutil.SetBase(&data.Base, r, "New Task", "/tasks?team="+teamID.Hex())

	renderError := func(msg string) {
		members, mErr := h.memberOptions(ctx, teamID)
		if mErr == nil {
			data.Members = members
		}
		data.SetError(msg)
		templates.Render(w, r, "task_new", data)
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
		isMember, memberErr := membershipstore.New(h.DB).Exists(ctx, teamID, id)
		if memberErr != nil {
			h.ErrLog.LogServerError(w, r, "tasks: assignee check", memberErr,
				"The task could not be created.", "/tasks")
			return
		}
		if !isMember {
			renderError("The assignee must be a member of the team.")
			return
		}
		assigneeID = &id
	}

	task, err := taskstore.New(h.DB).Create(ctx, models.Task{
		Title:       title,
		Description: description,
		Status:      models.TaskStatusOpen,
		Priority:    priority,
		Deadline:    deadline,
		CreatorID:   uid,
		AssigneeID:  assigneeID,
		TeamID:      teamID,
	})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "tasks: create", err,
			"The task could not be created.", "/tasks")
		return
	}

	http.Redirect(w, r, "/tasks/"+task.ID.Hex(), http.StatusSeeOther)
}
