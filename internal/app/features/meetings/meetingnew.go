// internal/app/features/meetings/meetingnew.go
package meetings

import (
	"context"
	"net/http"
	"strings"
	"time"

	uierrors "github.com/dalemusser/teamhub/internal/app/features/errors"
	meetingstore "github.com/dalemusser/teamhub/internal/app/store/meetings"
	membershipstore "github.com/dalemusser/teamhub/internal/app/store/memberships"
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
	"go.uber.org/zap"
)

// timeLayout is the HTML datetime-local input format.
const timeLayout = "2006-01-02T15:04"

// createMeetingInput defines validation rules for creating a meeting.
type createMeetingInput struct {
	Title string `validate:"required,max=300" label:"Title"`
}

// participantOption is one participant choice in the meeting form.
type participantOption struct {
	ID       string
	FullName string
	Selected bool
}

// conflictRow is one double-booking shown on the meeting form.
type conflictRow struct {
	ID        string
	Title     string
	StartTime time.Time
	EndTime   time.Time
}

// meetingFormData is the view model for the new/edit meeting forms.
type meetingFormData struct {
	formutil.Base

	MeetingID   string
	Title       string
	Description string
	Location    string
	StartTime   string
	EndTime     string

	TeamID   string
	TeamName string
	Members  []participantOption

	Conflicts []conflictRow
}

// participantOptions loads the team's members as participant choices,
// marking those already selected.
func (h *Handler) participantOptions(ctx context.Context, teamID primitive.ObjectID, selected []primitive.ObjectID) ([]participantOption, error) {
	ids, err := membershipstore.New(h.DB).UserIDsByTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	members, err := userstore.New(h.DB).GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	sel := make(map[primitive.ObjectID]struct{}, len(selected))
	for _, id := range selected {
		sel[id] = struct{}{}
	}
	opts := make([]participantOption, 0, len(members))
	for _, m := range members {
		_, isSel := sel[m.ID]
		opts = append(opts, participantOption{ID: m.ID.Hex(), FullName: m.FullName, Selected: isSel})
	}
	return opts, nil
}

// parseParticipants reads the participants form values and checks every one
// is a member of the team. Returns (ids, errMsg); errMsg is empty on success.
func (h *Handler) parseParticipants(ctx context.Context, r *http.Request, teamID primitive.ObjectID) ([]primitive.ObjectID, string, error) {
	raw := r.Form["participants"]
	ids := make([]primitive.ObjectID, 0, len(raw))
	seen := make(map[primitive.ObjectID]struct{}, len(raw))
	msStore := membershipstore.New(h.DB)
	for _, hex := range raw {
		id, err := primitive.ObjectIDFromHex(strings.TrimSpace(hex))
		if err != nil {
			return nil, "Unknown participant.", nil
		}
		if _, dup := seen[id]; dup {
			continue
		}
		isMember, err := msStore.Exists(ctx, teamID, id)
		if err != nil {
			return nil, "", err
		}
		if !isMember {
			return nil, "Every participant must be a member of the team.", nil
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, "", nil
}

// parseWindow parses and validates the start/end form values. The
// datetime-local inputs carry no zone, so they are read in the user's zone
// and stored as UTC instants.
func parseWindow(startRaw, endRaw string, loc *time.Location) (start, end time.Time, errMsg string) {
	if startRaw == "" || endRaw == "" {
		return time.Time{}, time.Time{}, "Start and end times are required."
	}
	start, err := time.ParseInLocation(timeLayout, startRaw, loc)
	if err != nil {
		return time.Time{}, time.Time{}, "Start time must be a valid date and time."
	}
	end, err = time.ParseInLocation(timeLayout, endRaw, loc)
	if err != nil {
		return time.Time{}, time.Time{}, "End time must be a valid date and time."
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, "The end time must be after the start time."
	}
	return start.UTC(), end.UTC(), ""
}

// conflictRows converts detected conflicts for display in the user's zone.
func conflictRows(conflicts []models.Meeting, loc *time.Location) []conflictRow {
	rows := make([]conflictRow, 0, len(conflicts))
	for _, m := range conflicts {
		rows = append(rows, conflictRow{
			ID:        m.ID.Hex(),
			Title:     m.Title,
			StartTime: m.StartTime.In(loc),
			EndTime:   m.EndTime.In(loc),
		})
	}
	return rows
}

// ServeNew renders the New Meeting form.
// GET /meetings/new?team={teamID}
func (h *Handler) ServeNew(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	teamID, err := primitive.ObjectIDFromHex(query.Get(r, "team"))
	if err != nil {
		uierrors.RenderNotFound(w, r, "Pick a team before scheduling a meeting.", "/meetings")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if !h.requireTeamMember(ctx, w, r, teamID, uid) {
		return
	}

	members, err := h.participantOptions(ctx, teamID, []primitive.ObjectID{uid})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "meetings: load members", err,
			"The form could not be loaded.", "/meetings")
		return
	}

	data := meetingFormData{
		TeamID:  teamID.Hex(),
		Members: members,
	}
	formutil.SetBase(&data.Base, r, "New Meeting", "/meetings?team="+teamID.Hex())

	templates.Render(w, r, "meeting_new", data)
}

// HandleCreate processes the New Meeting form submission. A meeting that
// would double-book any participant is rejected and the form re-rendered
// with the conflicting meetings listed.
// POST /meetings
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "meetings: parse form", err, "Invalid form data.", "/meetings")
		return
	}

	teamID, err := primitive.ObjectIDFromHex(r.FormValue("team_id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "meetings: bad team id", err, "Unknown team.", "/meetings")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if !h.requireTeamMember(ctx, w, r, teamID, uid) {
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	description := htmlsanitize.Sanitize(strings.TrimSpace(r.FormValue("description")))
	location := strings.TrimSpace(r.FormValue("location"))
	startRaw := strings.TrimSpace(r.FormValue("start_time"))
	endRaw := strings.TrimSpace(r.FormValue("end_time"))

	data := meetingFormData{
		Title:       title,
		Description: description,
		Location:    location,
		StartTime:   startRaw,
		EndTime:     endRaw,
		TeamID:      teamID.Hex(),
	}
	formutil.SetBase(&data.Base, r, "New Meeting", "/meetings?team="+teamID.Hex())

	renderError := func(msg string, selected []primitive.ObjectID) {
		members, mErr := h.participantOptions(ctx, teamID, selected)
		if mErr == nil {
			data.Members = members
		}
		data.SetError(msg)
		templates.Render(w, r, "meeting_new", data)
	}

	if res := inputval.Validate(createMeetingInput{Title: title}); res.HasErrors() {
		renderError(res.First(), nil)
		return
	}

	loc := h.userLocation(ctx, uid)

	start, end, timeMsg := parseWindow(startRaw, endRaw, loc)
	if timeMsg != "" {
		renderError(timeMsg, nil)
		return
	}

	participants, partMsg, err := h.parseParticipants(ctx, r, teamID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "meetings: participant check", err,
			"The meeting could not be created.", "/meetings")
		return
	}
	if partMsg != "" {
		renderError(partMsg, participants)
		return
	}

	// The creator always attends, so they count for double-booking too.
	checked := participants
	if !containsID(checked, uid) {
		checked = append(append([]primitive.ObjectID{}, participants...), uid)
	}
	conflicts, err := h.Conflicts.FindConflicts(ctx, start, end, checked, primitive.NilObjectID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "meetings: conflict check", err,
			"The meeting could not be created.", "/meetings")
		return
	}
	if len(conflicts) > 0 {
		data.Conflicts = conflictRows(conflicts, loc)
		renderError("This time double-books a participant.", participants)
		return
	}

	meeting, err := meetingstore.New(h.DB).Create(ctx, models.Meeting{
		Title:          title,
		Description:    description,
		Location:       location,
		StartTime:      start,
		EndTime:        end,
		CreatorID:      uid,
		TeamID:         teamID,
		ParticipantIDs: participants,
	})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "meetings: create", err,
			"The meeting could not be created.", "/meetings")
		return
	}

	h.Log.Info("meeting created",
		zap.String("meeting_id", meeting.ID.Hex()),
		zap.String("team_id", teamID.Hex()))

	http.Redirect(w, r, "/meetings/"+meeting.ID.Hex(), http.StatusSeeOther)
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
