// internal/app/features/tasks/comments.go
package tasks

import (
	"context"
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/teamhub/internal/app/features/errors"
	commentstore "github.com/dalemusser/teamhub/internal/app/store/comments"
	"github.com/dalemusser/teamhub/internal/app/system/authz"
	"github.com/dalemusser/teamhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/teamhub/internal/app/system/timeouts"
	"github.com/dalemusser/teamhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const maxCommentLength = 5000

// HandleAddComment posts a comment to a task.
// POST /tasks/{taskID}/comments
func (h *Handler) HandleAddComment(w http.ResponseWriter, r *http.Request) {
	_, name, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "tasks: parse comment form", err, "Invalid form data.", "/tasks")
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

	body := htmlsanitize.Sanitize(strings.TrimSpace(r.FormValue("body")))
	if body == "" {
		h.ErrLog.LogBadRequest(w, r, "tasks: empty comment", nil,
			"A comment cannot be empty.", "/tasks/"+task.ID.Hex())
		return
	}
	if len(body) > maxCommentLength {
		h.ErrLog.LogBadRequest(w, r, "tasks: comment too long", nil,
			"The comment is too long.", "/tasks/"+task.ID.Hex())
		return
	}

	_, err := commentstore.New(h.DB).Create(ctx, models.TaskComment{
		TaskID:     task.ID,
		AuthorID:   uid,
		AuthorName: name,
		Body:       body,
	})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "tasks: create comment", err,
			"The comment could not be posted.", "/tasks/"+task.ID.Hex())
		return
	}

	http.Redirect(w, r, "/tasks/"+task.ID.Hex(), http.StatusSeeOther)
}

// HandleDeleteComment removes a comment from a task.
// POST /tasks/{taskID}/comments/{commentID}/delete
func (h *Handler) HandleDeleteComment(w http.ResponseWriter, r *http.Request) {
	_, _, _, ok := authz.UserCtx(r)
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

	commentID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "commentID"))
	if err != nil {
		uierrors.RenderNotFound(w, r, "That comment does not exist.", "/tasks/"+task.ID.Hex())
		return
	}

	store := commentstore.New(h.DB)
	comment, err := store.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			uierrors.RenderNotFound(w, r, "That comment does not exist.", "/tasks/"+task.ID.Hex())
			return
		}
		h.ErrLog.LogServerError(w, r, "tasks: load comment", err,
			"The comment could not be deleted.", "/tasks/"+task.ID.Hex())
		return
	}
	if comment.TaskID != task.ID {
		uierrors.RenderNotFound(w, r, "That comment does not exist.", "/tasks/"+task.ID.Hex())
		return
	}

	if !authz.CanDeleteComment(r, comment.AuthorID) {
		uierrors.RenderForbidden(w, r, "You do not have access to delete this comment.",
			"/tasks/"+task.ID.Hex())
		return
	}

	if _, err := store.Delete(ctx, commentID); err != nil {
		h.ErrLog.LogServerError(w, r, "tasks: delete comment", err,
			"The comment could not be deleted.", "/tasks/"+task.ID.Hex())
		return
	}

	http.Redirect(w, r, "/tasks/"+task.ID.Hex(), http.StatusSeeOther)
}
