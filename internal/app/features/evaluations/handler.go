// internal/app/features/evaluations/handler.go
package evaluations

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	uierrors "github.com/dalemusser/teamhub/internal/app/features/errors"
	evaluationstore "github.com/dalemusser/teamhub/internal/app/store/evaluations"
	membershipstore "github.com/dalemusser/teamhub/internal/app/store/memberships"
	taskstore "github.com/dalemusser/teamhub/internal/app/store/tasks"
	userstore "github.com/dalemusser/teamhub/internal/app/store/users"
	"github.com/dalemusser/teamhub/internal/app/system/authz"
	"github.com/dalemusser/teamhub/internal/app/system/formutil"
	"github.com/dalemusser/teamhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/teamhub/internal/app/system/timeouts"
	"github.com/dalemusser/teamhub/internal/app/system/viewdata"
	"github.com/dalemusser/teamhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const myEvaluationsLimit = 50

// Handler owns the evaluation pages and actions.
type Handler struct {
	DB     *mongo.Database
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger
}

// NewHandler constructs an evaluations Handler.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		DB:     db,
		Log:    logger,
		ErrLog: uierrors.NewErrorLogger(logger),
	}
}

// evalRow is one evaluation on the list page.
type evalRow struct {
	TaskID    primitive.ObjectID
	TaskTitle string
	Score     int
	Comment   string
	CreatedAt time.Time
}

// listData is the view model for the "my evaluations" page.
type listData struct {
	viewdata.BaseVM

	Evaluations []evalRow
	Average     float64
	Count       int64
}

// evalFormData is the view model for the evaluation form.
type evalFormData struct {
	formutil.Base

	TaskID       string
	TaskTitle    string
	AssigneeName string
	Score        string
	Comment      string
	Scores       []int
}

// ServeList shows the signed-in user's received evaluations and average.
// GET /evaluations
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	evStore := evaluationstore.New(h.DB)

	evals, err := evStore.ListByUser(ctx, uid, myEvaluationsLimit)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "evaluations: list", err,
			"Evaluations could not be loaded.", "/")
		return
	}

	avg, count, err := evStore.AverageScoreForUser(ctx, uid)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "evaluations: average", err,
			"Evaluations could not be loaded.", "/")
		return
	}

	data := listData{
		BaseVM:  viewdata.NewBaseVM(r, "My Evaluations", "/dashboard"),
		Average: avg,
		Count:   count,
	}

	// Task titles for display; a deleted task leaves the row without one.
	taskIDs := make([]primitive.ObjectID, 0, len(evals))
	for _, e := range evals {
		taskIDs = append(taskIDs, e.TaskID)
	}
	titles := h.taskTitles(ctx, taskIDs)
	for _, e := range evals {
		data.Evaluations = append(data.Evaluations, evalRow{
			TaskID:    e.TaskID,
			TaskTitle: titles[e.TaskID],
			Score:     e.Score,
			Comment:   e.Comment,
			CreatedAt: e.CreatedAt,
		})
	}

	templates.Render(w, r, "evaluation_list", data)
}

func (h *Handler) taskTitles(ctx context.Context, ids []primitive.ObjectID) map[primitive.ObjectID]string {
	titles := make(map[primitive.ObjectID]string, len(ids))
	store := taskstore.New(h.DB)
	for _, id := range ids {
		if _, seen := titles[id]; seen {
			continue
		}
		task, err := store.GetByID(ctx, id)
		if err != nil {
			continue
		}
		titles[id] = task.Title
	}
	return titles
}

// loadCompletedTask fetches the task and checks the caller may evaluate it.
func (h *Handler) loadCompletedTask(ctx context.Context, w http.ResponseWriter, r *http.Request, taskHex string, uid primitive.ObjectID) (models.Task, bool) {
	taskID, err := primitive.ObjectIDFromHex(taskHex)
	if err != nil {
		uierrors.RenderNotFound(w, r, "Task not found.", "/tasks")
		return models.Task{}, false
	}

	task, err := taskstore.New(h.DB).GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			uierrors.RenderNotFound(w, r, "Task not found.", "/tasks")
			return models.Task{}, false
		}
		h.ErrLog.LogServerError(w, r, "evaluations: load task", err,
			"The task could not be loaded.", "/tasks")
		return models.Task{}, false
	}

	isTeamManager, err := membershipstore.New(h.DB).IsTeamManager(ctx, task.TeamID, uid)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "evaluations: manager check", err,
			"The request could not be completed.", "/tasks")
		return models.Task{}, false
	}
	if !authz.CanEvaluate(r, isTeamManager) {
		uierrors.RenderForbidden(w, r, "Only team managers can evaluate tasks.",
			"/tasks/"+task.ID.Hex())
		return models.Task{}, false
	}

	if task.Status != models.TaskStatusCompleted {
		uierrors.RenderForbidden(w, r, "Only completed tasks can be evaluated.",
			"/tasks/"+task.ID.Hex())
		return models.Task{}, false
	}
	if task.AssigneeID == nil {
		uierrors.RenderForbidden(w, r, "The task has no assignee to evaluate.",
			"/tasks/"+task.ID.Hex())
		return models.Task{}, false
	}

	return task, true
}

// ServeNew renders the evaluation form for a completed task.
// GET /evaluations/new?task={taskID}
func (h *Handler) ServeNew(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	task, ok := h.loadCompletedTask(ctx, w, r, query.Get(r, "task"), uid)
	if !ok {
		return
	}

	data := evalFormData{
		TaskID:    task.ID.Hex(),
		TaskTitle: task.Title,
		Scores:    scoreChoices(),
	}
	if assignee, err := userstore.New(h.DB).GetByID(ctx, *task.AssigneeID); err == nil {
		data.AssigneeName = assignee.FullName
	}
	formutil.SetBase(&data.Base, r, "Evaluate Task", "/tasks/"+task.ID.Hex())

	templates.Render(w, r, "evaluation_new", data)
}

// HandleCreate records an evaluation for a completed task. One evaluation
// per evaluator per task.
// POST /evaluations
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "evaluations: parse form", err, "Invalid form data.", "/tasks")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	task, ok := h.loadCompletedTask(ctx, w, r, r.FormValue("task_id"), uid)
	if !ok {
		return
	}

	scoreRaw := strings.TrimSpace(r.FormValue("score"))
	comment := htmlsanitize.Sanitize(strings.TrimSpace(r.FormValue("comment")))

	data := evalFormData{
		TaskID:    task.ID.Hex(),
		TaskTitle: task.Title,
		Score:     scoreRaw,
		Comment:   comment,
		Scores:    scoreChoices(),
	}
	formutil.SetBase(&data.Base, r, "Evaluate Task", "/tasks/"+task.ID.Hex())

	renderError := func(msg string) {
		data.SetError(msg)
		templates.Render(w, r, "evaluation_new", data)
	}

	score, err := strconv.Atoi(scoreRaw)
	if err != nil || !models.IsValidEvaluationScore(score) {
		renderError("The score must be between 1 and 5.")
		return
	}

	_, err = evaluationstore.New(h.DB).Create(ctx, models.Evaluation{
		TaskID:      task.ID,
		EvaluatorID: uid,
		UserID:      *task.AssigneeID,
		Score:       score,
		Comment:     comment,
	})
	if err != nil {
		if errors.Is(err, evaluationstore.ErrDuplicateEvaluation) {
			renderError("You have already evaluated this task.")
			return
		}
		h.ErrLog.LogServerError(w, r, "evaluations: create", err,
			"The evaluation could not be saved.", "/tasks/"+task.ID.Hex())
		return
	}

	http.Redirect(w, r, "/tasks/"+task.ID.Hex(), http.StatusSeeOther)
}

func scoreChoices() []int {
	scores := make([]int, 0, models.MaxEvaluationScore)
	for s := models.MinEvaluationScore; s <= models.MaxEvaluationScore; s++ {
		scores = append(scores, s)
	}
	return scores
}
