// internal/app/features/api/tasks.go
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	membershipstore "github.com/dalemusser/teamhub/internal/app/store/memberships"
	taskstore "github.com/dalemusser/teamhub/internal/app/store/tasks"
	"github.com/dalemusser/teamhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/teamhub/internal/app/system/inputval"
	"github.com/dalemusser/teamhub/internal/app/system/timeouts"
	"github.com/dalemusser/teamhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type taskTitleInput struct {
	Title string `validate:"required,max=300" label:"Title"`
}

type tasksResponse struct {
	Tasks []models.Task `json:"tasks"`
}

// ServeTasks lists tasks visible to the caller: tasks from one team with
// ?team=, or from all the caller's teams.
// GET /api/v1/tasks?team={id}&status={status}
func (h *Handler) ServeTasks(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	stat := query.Get(r, "status")
	if stat != "" && !models.IsValidTaskStatus(stat) {
		writeError(w, http.StatusBadRequest, "Unknown status.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	store := taskstore.New(h.DB)

	var teamIDs []primitive.ObjectID
	if raw := query.Get(r, "team"); raw != "" {
		teamID, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "team must be a team ID.")
			return
		}
		if !h.requireTeamMember(ctx, w, r, teamID, uid) {
			return
		}
		teamIDs = []primitive.ObjectID{teamID}
	} else {
		ids, err := membershipstore.New(h.DB).TeamIDsByUser(ctx, uid)
		if err != nil {
			h.serverError(w, r, "api: list teams", err)
			return
		}
		teamIDs = ids
	}

	tasks := []models.Task{}
	for _, teamID := range teamIDs {
		batch, err := store.ListByTeam(ctx, teamID, stat)
		if err != nil {
			h.serverError(w, r, "api: list tasks", err)
			return
		}
		tasks = append(tasks, batch...)
	}

	writeJSON(w, http.StatusOK, tasksResponse{Tasks: tasks})
}

type createTaskRequest struct {
	TeamID      string     `json:"team_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	Deadline    *time.Time `json:"deadline"`
	AssigneeID  string     `json:"assignee_id"`
}

// HandleCreateTask creates a task from a JSON body, applying the same rules
// as the task form: the caller and any assignee must belong to the team.
// POST /api/v1/tasks
func (h *Handler) HandleCreateTask(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}

	teamID, err := primitive.ObjectIDFromHex(strings.TrimSpace(req.TeamID))
	if err != nil {
		writeError(w, http.StatusBadRequest, "team_id must be a team ID.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if !h.requireTeamMember(ctx, w, r, teamID, uid) {
		return
	}

	title := strings.TrimSpace(req.Title)
	if res := inputval.Validate(taskTitleInput{Title: title}); res.HasErrors() {
		writeError(w, http.StatusBadRequest, res.First())
		return
	}

	priority := strings.TrimSpace(req.Priority)
	if priority == "" {
		priority = models.TaskPriorityMedium
	}
	if !models.IsValidTaskPriority(priority) {
		writeError(w, http.StatusBadRequest, "Unknown priority.")
		return
	}

	var deadline *time.Time
	if req.Deadline != nil {
		utc := req.Deadline.UTC()
		deadline = &utc
	}

	var assigneeID *primitive.ObjectID
	if raw := strings.TrimSpace(req.AssigneeID); raw != "" {
		id, idErr := primitive.ObjectIDFromHex(raw)
		if idErr != nil {
			writeError(w, http.StatusBadRequest, "assignee_id must be a user ID.")
			return
		}
		isMember, memberErr := membershipstore.New(h.DB).Exists(ctx, teamID, id)
		if memberErr != nil {
			h.serverError(w, r, "api: assignee check", memberErr)
			return
		}
		if !isMember {
			writeError(w, http.StatusBadRequest, "The assignee must be a member of the team.")
			return
		}
		assigneeID = &id
	}

	task, err := taskstore.New(h.DB).Create(ctx, models.Task{
		Title:       title,
		Description: htmlsanitize.Sanitize(strings.TrimSpace(req.Description)),
		Status:      models.TaskStatusOpen,
		Priority:    priority,
		Deadline:    deadline,
		CreatorID:   uid,
		AssigneeID:  assigneeID,
		TeamID:      teamID,
	})
	if err != nil {
		h.serverError(w, r, "api: create task", err)
		return
	}

	h.Log.Info("task created via api",
		zap.String("task_id", task.ID.Hex()),
		zap.String("team_id", teamID.Hex()),
		zap.String("creator_id", uid.Hex()))

	writeJSON(w, http.StatusCreated, task)
}
