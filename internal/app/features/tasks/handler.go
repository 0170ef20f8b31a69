// internal/app/features/tasks/handler.go
package tasks

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/teamhub/internal/app/features/errors"
	membershipstore "github.com/dalemusser/teamhub/internal/app/store/memberships"
	taskstore "github.com/dalemusser/teamhub/internal/app/store/tasks"
	"github.com/dalemusser/teamhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns all task pages and actions.
type Handler struct {
	DB     *mongo.Database
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger
}

// NewHandler constructs a tasks Handler.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		DB:     db,
		Log:    logger,
		ErrLog: uierrors.NewErrorLogger(logger),
	}
}

// taskIDFromURL parses the {taskID} route parameter.
func taskIDFromURL(r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "taskID"))
	return id, err == nil
}

// loadTask fetches the task from the URL, rendering a not-found page on
// failure.
func (h *Handler) loadTask(ctx context.Context, w http.ResponseWriter, r *http.Request) (models.Task, bool) {
	taskID, ok := taskIDFromURL(r)
	if !ok {
		uierrors.RenderNotFound(w, r, "Task not found.", "/tasks")
		return models.Task{}, false
	}

	task, err := taskstore.New(h.DB).GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			uierrors.RenderNotFound(w, r, "Task not found.", "/tasks")
			return models.Task{}, false
		}
		h.ErrLog.LogServerError(w, r, "tasks: load task", err,
			"The task could not be loaded.", "/tasks")
		return models.Task{}, false
	}
	return task, true
}

// isTeamManager reports whether the user manages the given team.
func (h *Handler) isTeamManager(ctx context.Context, teamID, userID primitive.ObjectID) (bool, error) {
	return membershipstore.New(h.DB).IsTeamManager(ctx, teamID, userID)
}
