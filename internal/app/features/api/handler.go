// internal/app/features/api/handler.go

// Package api is the JSON surface under /api/v1. It reuses the same session
// auth as the HTML pages but answers with JSON bodies and status codes
// instead of rendered pages.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	meetingstore "github.com/dalemusser/teamhub/internal/app/store/meetings"
	membershipstore "github.com/dalemusser/teamhub/internal/app/store/memberships"
	taskstore "github.com/dalemusser/teamhub/internal/app/store/tasks"
	userstore "github.com/dalemusser/teamhub/internal/app/store/users"
	"github.com/dalemusser/teamhub/internal/app/system/authz"
	"github.com/dalemusser/teamhub/internal/app/system/schedule"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns the /api/v1 endpoints.
type Handler struct {
	DB         *mongo.Database
	Log        *zap.Logger
	Conflicts  *schedule.ConflictDetector
	Aggregator *schedule.Aggregator
}

// NewHandler constructs an api Handler.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		DB:         db,
		Log:        logger,
		Conflicts:  schedule.NewConflictDetector(meetingstore.New(db)),
		Aggregator: schedule.NewAggregator(taskstore.New(db), meetingstore.New(db)),
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// requireUser resolves the session user, answering 401 JSON when there is
// no valid session.
func (h *Handler) requireUser(w http.ResponseWriter, r *http.Request) (role string, uid primitive.ObjectID, ok bool) {
	role, _, uid, ok = authz.UserCtx(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required.")
		return "", primitive.NilObjectID, false
	}
	return role, uid, true
}

// serverError logs the failure and answers 500 JSON.
func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, logMsg string, err error) {
	h.Log.Error(logMsg,
		zap.Error(err),
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method))
	writeError(w, http.StatusInternalServerError, "The request could not be completed.")
}

// requireTeamMember checks the caller belongs to the team (admins pass),
// answering 403 JSON when not.
func (h *Handler) requireTeamMember(ctx context.Context, w http.ResponseWriter, r *http.Request, teamID, uid primitive.ObjectID) bool {
	if authz.IsAdmin(r) {
		return true
	}
	isMember, err := membershipstore.New(h.DB).Exists(ctx, teamID, uid)
	if err != nil {
		h.serverError(w, r, "api: membership check", err)
		return false
	}
	if !isMember {
		writeError(w, http.StatusForbidden, "You are not a member of this team.")
		return false
	}
	return true
}

// userLocation resolves the signed-in user's time zone, falling back to UTC.
func (h *Handler) userLocation(ctx context.Context, uid primitive.ObjectID) *time.Location {
	user, err := userstore.New(h.DB).GetByID(ctx, uid)
	if err != nil {
		return time.UTC
	}
	return user.Location()
}
