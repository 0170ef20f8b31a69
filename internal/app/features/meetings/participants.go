// internal/app/features/meetings/participants.go
package meetings

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/teamhub/internal/app/features/errors"
	meetingstore "github.com/dalemusser/teamhub/internal/app/store/meetings"
	membershipstore "github.com/dalemusser/teamhub/internal/app/store/memberships"
	"github.com/dalemusser/teamhub/internal/app/system/authz"
	"github.com/dalemusser/teamhub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// HandleAddParticipant adds a team member to the meeting. Adding someone
// who is already double-booked for the slot is rejected.
// POST /meetings/{meetingID}/participants
func (h *Handler) HandleAddParticipant(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "meetings: parse participant form", err, "Invalid form data.", "/meetings")
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

	userID, err := primitive.ObjectIDFromHex(r.FormValue("user_id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "meetings: bad participant id", err,
			"Unknown user.", "/meetings/"+meeting.ID.Hex())
		return
	}

	isMember, err := membershipstore.New(h.DB).Exists(ctx, meeting.TeamID, userID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "meetings: membership check", err,
			"The participant could not be added.", "/meetings/"+meeting.ID.Hex())
		return
	}
	if !isMember {
		uierrors.RenderForbidden(w, r, "Every participant must be a member of the team.",
			"/meetings/"+meeting.ID.Hex())
		return
	}

	conflicts, err := h.Conflicts.FindConflicts(ctx, meeting.StartTime, meeting.EndTime,
		[]primitive.ObjectID{userID}, meeting.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "meetings: conflict check", err,
			"The participant could not be added.", "/meetings/"+meeting.ID.Hex())
		return
	}
	if len(conflicts) > 0 {
		uierrors.RenderForbidden(w, r, "That person is already booked during this meeting.",
			"/meetings/"+meeting.ID.Hex())
		return
	}

	if err := meetingstore.New(h.DB).AddParticipant(ctx, meeting.ID, userID); err != nil {
		h.ErrLog.LogServerError(w, r, "meetings: add participant", err,
			"The participant could not be added.", "/meetings/"+meeting.ID.Hex())
		return
	}

	http.Redirect(w, r, "/meetings/"+meeting.ID.Hex(), http.StatusSeeOther)
}

// HandleRemoveParticipant removes an attendee from the meeting.
// POST /meetings/{meetingID}/participants/{userID}/remove
func (h *Handler) HandleRemoveParticipant(w http.ResponseWriter, r *http.Request) {
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

	userID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "userID"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "meetings: bad participant id", err,
			"Unknown user.", "/meetings/"+meeting.ID.Hex())
		return
	}

	if err := meetingstore.New(h.DB).RemoveParticipant(ctx, meeting.ID, userID); err != nil {
		h.ErrLog.LogServerError(w, r, "meetings: remove participant", err,
			"The participant could not be removed.", "/meetings/"+meeting.ID.Hex())
		return
	}

	http.Redirect(w, r, "/meetings/"+meeting.ID.Hex(), http.StatusSeeOther)
}
