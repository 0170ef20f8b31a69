// internal/app/features/meetings/handler.go
package meetings

import (
	"context"
	"errors"
	"net/http"
	"time"

	uierrors "github.com/dalemusser/teamhub/internal/app/features/errors"
	meetingstore "github.com/dalemusser/teamhub/internal/app/store/meetings"
	membershipstore "github.com/dalemusser/teamhub/internal/app/store/memberships"
	userstore "github.com/dalemusser/teamhub/internal/app/store/users"
	"github.com/dalemusser/teamhub/internal/app/system/authz"
	"github.com/dalemusser/teamhub/internal/app/system/schedule"
	"github.com/dalemusser/teamhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns all meeting pages and actions.
type Handler struct {
	DB        *mongo.Database
	Log       *zap.Logger
	ErrLog    *uierrors.ErrorLogger
	Conflicts *schedule.ConflictDetector
}

// NewHandler constructs a meetings Handler.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		DB:        db,
		Log:       logger,
		ErrLog:    uierrors.NewErrorLogger(logger),
		Conflicts: schedule.NewConflictDetector(meetingstore.New(db)),
	}
}

// userLocation resolves the signed-in user's time zone, falling back to UTC
// when the profile has none or the zone fails to load.
func (h *Handler) userLocation(ctx context.Context, uid primitive.ObjectID) *time.Location {
	user, err := userstore.New(h.DB).GetByID(ctx, uid)
	if err != nil {
		return time.UTC
	}
	return user.Location()
}

// localizeTimes converts the meeting's stored UTC instants to the viewer's
// zone for display.
func localizeTimes(m models.Meeting, loc *time.Location) models.Meeting {
	m.StartTime = m.StartTime.In(loc)
	m.EndTime = m.EndTime.In(loc)
	return m
}

// meetingIDFromURL parses the {meetingID} route parameter.
func meetingIDFromURL(r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "meetingID"))
	return id, err == nil
}

// loadMeeting fetches the meeting from the URL, rendering a not-found page
// on failure.
func (h *Handler) loadMeeting(ctx context.Context, w http.ResponseWriter, r *http.Request) (models.Meeting, bool) {
	meetingID, ok := meetingIDFromURL(r)
	if !ok {
		uierrors.RenderNotFound(w, r, "Meeting not found.", "/meetings")
		return models.Meeting{}, false
	}

	meeting, err := meetingstore.New(h.DB).GetByID(ctx, meetingID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			uierrors.RenderNotFound(w, r, "Meeting not found.", "/meetings")
			return models.Meeting{}, false
		}
		h.ErrLog.LogServerError(w, r, "meetings: load meeting", err,
			"The meeting could not be loaded.", "/meetings")
		return models.Meeting{}, false
	}
	return meeting, true
}

// requireTeamMember checks the caller belongs to the team (admins pass).
// Renders an error page and returns false when not.
func (h *Handler) requireTeamMember(ctx context.Context, w http.ResponseWriter, r *http.Request, teamID, uid primitive.ObjectID) bool {
	if authz.IsAdmin(r) {
		return true
	}
	isMember, err := membershipstore.New(h.DB).Exists(ctx, teamID, uid)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "meetings: membership check", err,
			"The request could not be completed.", "/meetings")
		return false
	}
	if !isMember {
		uierrors.RenderForbidden(w, r, "You are not a member of this team.", "/meetings")
		return false
	}
	return true
}

// isTeamManager reports whether the user manages the given team.
func (h *Handler) isTeamManager(ctx context.Context, teamID, userID primitive.ObjectID) (bool, error) {
	return membershipstore.New(h.DB).IsTeamManager(ctx, teamID, userID)
}

// requireCanModify checks edit permission for the meeting, rendering a
// forbidden page when denied.
func (h *Handler) requireCanModify(ctx context.Context, w http.ResponseWriter, r *http.Request, meeting models.Meeting, uid primitive.ObjectID) bool {
	isTeamManager, err := membershipstore.New(h.DB).IsTeamManager(ctx, meeting.TeamID, uid)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "meetings: manager check", err,
			"The request could not be completed.", "/meetings")
		return false
	}
	if !authz.CanModifyMeeting(r, &meeting, isTeamManager) {
		uierrors.RenderForbidden(w, r, "You do not have access to modify this meeting.",
			"/meetings/"+meeting.ID.Hex())
		return false
	}
	return true
}
