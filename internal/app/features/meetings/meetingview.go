// internal/app/features/meetings/meetingview.go
package meetings

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/teamhub/internal/app/features/errors"
	meetingstore "github.com/dalemusser/teamhub/internal/app/store/meetings"
	teamstore "github.com/dalemusser/teamhub/internal/app/store/teams"
	userstore "github.com/dalemusser/teamhub/internal/app/store/users"
	"github.com/dalemusser/teamhub/internal/app/system/authz"
	"github.com/dalemusser/teamhub/internal/app/system/timeouts"
	"github.com/dalemusser/teamhub/internal/app/system/viewdata"
	"github.com/dalemusser/teamhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// participantRow is one attendee on the meeting page.
type participantRow struct {
	UserID   primitive.ObjectID
	FullName string
	Email    string
}

// meetingViewData is the view model for the meeting detail page.
type meetingViewData struct {
	viewdata.BaseVM

	Meeting     models.Meeting
	TeamName    string
	CreatorName string

	Participants []participantRow
	NonAttendees []participantRow

	CanModify bool
}

// ServeView renders one meeting with its participant list.
// GET /meetings/{meetingID}
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	meeting, ok := h.loadMeeting(ctx, w, r)
	if !ok {
		return
	}
	if !h.requireTeamMember(ctx, w, r, meeting.TeamID, uid) {
		return
	}

	isTeamManager, err := h.isTeamManager(ctx, meeting.TeamID, uid)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "meetings: manager check", err,
			"The meeting could not be loaded.", "/meetings")
		return
	}

	data := meetingViewData{
		BaseVM:    viewdata.NewBaseVM(r, meeting.Title, "/meetings"),
		Meeting:   localizeTimes(meeting, h.userLocation(ctx, uid)),
		CanModify: authz.CanModifyMeeting(r, &meeting, isTeamManager),
	}

	tmStore := teamstore.New(h.DB)
	team, err := tmStore.GetByID(ctx, meeting.TeamID)
	if err == nil {
		data.TeamName = team.Name
	}

	usStore := userstore.New(h.DB)

	ids := append([]primitive.ObjectID{meeting.CreatorID}, meeting.ParticipantIDs...)
	people, err := usStore.GetByIDs(ctx, ids)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "meetings: load participants", err,
			"The meeting could not be loaded.", "/meetings")
		return
	}
	byID := make(map[primitive.ObjectID]models.User, len(people))
	for _, u := range people {
		byID[u.ID] = u
	}
	if creator, okc := byID[meeting.CreatorID]; okc {
		data.CreatorName = creator.FullName
	}
	for _, id := range meeting.ParticipantIDs {
		u, oku := byID[id]
		if !oku {
			continue
		}
		data.Participants = append(data.Participants, participantRow{
			UserID:   u.ID,
			FullName: u.FullName,
			Email:    u.Email,
		})
	}

	// Team members not yet attending, offered as add choices to managers.
	if data.CanModify {
		nonAttendees, naErr := h.nonAttendeeRows(ctx, meeting)
		if naErr != nil {
			h.ErrLog.LogServerError(w, r, "meetings: load team members", naErr,
				"The meeting could not be loaded.", "/meetings")
			return
		}
		data.NonAttendees = nonAttendees
	}

	templates.Render(w, r, "meeting_view", data)
}

// HandleDelete deletes a meeting.
// POST /meetings/{meetingID}/delete
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	meeting, ok := h.loadMeeting(ctx, w, r)
	if !ok {
		return
	}
	if !h.requireCanModify(ctx, w, r, meeting, uid) {
		return
	}

	if _, err := meetingstore.New(h.DB).Delete(ctx, meeting.ID); err != nil {
		h.ErrLog.LogServerError(w, r, "meetings: delete", err,
			"The meeting could not be deleted.", "/meetings")
		return
	}

	h.Log.Info("meeting deleted",
		zap.String("meeting_id", meeting.ID.Hex()),
		zap.String("deleted_by", uid.Hex()))

	http.Redirect(w, r, "/meetings?team="+meeting.TeamID.Hex(), http.StatusSeeOther)
}

func (h *Handler) nonAttendeeRows(ctx context.Context, meeting models.Meeting) ([]participantRow, error) {
	opts, err := h.participantOptions(ctx, meeting.TeamID, meeting.ParticipantIDs)
	if err != nil {
		return nil, err
	}
	var rows []participantRow
	for _, o := range opts {
		if o.Selected {
			continue
		}
		id, idErr := primitive.ObjectIDFromHex(o.ID)
		if idErr != nil {
			continue
		}
		rows = append(rows, participantRow{UserID: id, FullName: o.FullName})
	}
	return rows, nil
}
