// internal/app/features/meetings/meetingedit.go
package meetings

import (
	"context"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/teamhub/internal/app/features/errors"
	meetingstore "github.com/dalemusser/teamhub/internal/app/store/meetings"
	"github.com/dalemusser/teamhub/internal/app/system/authz"
	"github.com/dalemusser/teamhub/internal/app/system/formutil"
	"github.com/dalemusser/teamhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/teamhub/internal/app/system/inputval"
	"github.com/dalemusser/teamhub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/templates"
)

// ServeEdit renders the Edit Meeting form. Participants are managed from
// the meeting page, not the edit form.
// GET /meetings/{meetingID}/edit
func (h *Handler) ServeEdit(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	meeting, ok := h.loadMeeting(ctx, w, r)
	if !ok {
		return
	}
	if !h.requireCanModify(ctx, w, r, meeting, uid) {
		return
	}

	loc := h.userLocation(ctx, uid)

	data := meetingFormData{
		MeetingID:   meeting.ID.Hex(),
		Title:       meeting.Title,
		Description: meeting.Description,
		Location:    meeting.Location,
		StartTime:   meeting.StartTime.In(loc).Format(timeLayout),
		EndTime:     meeting.EndTime.In(loc).Format(timeLayout),
		TeamID:      meeting.TeamID.Hex(),
	}
	formutil.SetBase(&data.Base, r, "Edit Meeting", "/meetings/"+meeting.ID.Hex())

	templates.Render(w, r, "meeting_edit", data)
}

// HandleUpdate processes the Edit Meeting form submission. Moving the
// meeting re-runs the double-booking check against the existing participant
// list, excluding the meeting itself.
// POST /meetings/{meetingID}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "meetings: parse edit form", err, "Invalid form data.", "/meetings")
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

	title := strings.TrimSpace(r.FormValue("title"))
	description := htmlsanitize.Sanitize(strings.TrimSpace(r.FormValue("description")))
	location := strings.TrimSpace(r.FormValue("location"))
	startRaw := strings.TrimSpace(r.FormValue("start_time"))
	endRaw := strings.TrimSpace(r.FormValue("end_time"))

	data := meetingFormData{
		MeetingID:   meeting.ID.Hex(),
		Title:       title,
		Description: description,
		Location:    location,
		StartTime:   startRaw,
		EndTime:     endRaw,
		TeamID:      meeting.TeamID.Hex(),
	}
	formutil.SetBase(&data.Base, r, "Edit Meeting", "/meetings/"+meeting.ID.Hex())

	renderError := func(msg string) {
		data.SetError(msg)
		templates.Render(w, r, "meeting_edit", data)
	}

	if res := inputval.Validate(createMeetingInput{Title: title}); res.HasErrors() {
		renderError(res.First())
		return
	}

	loc := h.userLocation(ctx, uid)

	start, end, timeMsg := parseWindow(startRaw, endRaw, loc)
	if timeMsg != "" {
		renderError(timeMsg)
		return
	}

	if !start.Equal(meeting.StartTime) || !end.Equal(meeting.EndTime) {
		conflicts, err := h.Conflicts.FindConflicts(ctx, start, end, meeting.ParticipantIDs, meeting.ID)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "meetings: conflict check", err,
				"The meeting could not be updated.", "/meetings")
			return
		}
		if len(conflicts) > 0 {
			data.Conflicts = conflictRows(conflicts, loc)
			renderError("The new time double-books a participant.")
			return
		}
	}

	err := meetingstore.New(h.DB).UpdateInfo(ctx, meeting.ID, meetingstore.Update{
		Title:       title,
		Description: description,
		Location:    location,
		StartTime:   start,
		EndTime:     end,
	})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "meetings: update", err,
			"The meeting could not be updated.", "/meetings")
		return
	}

	http.Redirect(w, r, "/meetings/"+meeting.ID.Hex(), http.StatusSeeOther)
}
