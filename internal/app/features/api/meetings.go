// internal/app/features/api/meetings.go
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	meetingstore "github.com/dalemusser/teamhub/internal/app/store/meetings"
	membershipstore "github.com/dalemusser/teamhub/internal/app/store/memberships"
	"github.com/dalemusser/teamhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/teamhub/internal/app/system/inputval"
	"github.com/dalemusser/teamhub/internal/app/system/timeouts"
	"github.com/dalemusser/teamhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const apiListLimit = 100

type meetingTitleInput struct {
	Title string `validate:"required,max=300" label:"Title"`
}

type meetingsResponse struct {
	Meetings []models.Meeting `json:"meetings"`
}

// ServeMeetings lists meetings visible to the caller: one team with ?team=,
// or all the caller's teams.
// GET /api/v1/meetings?team={id}
func (h *Handler) ServeMeetings(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	store := meetingstore.New(h.DB)

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

	meetings := []models.Meeting{}
	for _, teamID := range teamIDs {
		batch, err := store.ListByTeam(ctx, teamID, apiListLimit)
		if err != nil {
			h.serverError(w, r, "api: list meetings", err)
			return
		}
		meetings = append(meetings, batch...)
	}

	writeJSON(w, http.StatusOK, meetingsResponse{Meetings: meetings})
}

type createMeetingRequest struct {
	TeamID         string    `json:"team_id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Location       string    `json:"location"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	ParticipantIDs []string  `json:"participant_ids"`
}

type meetingConflictResponse struct {
	Error     string           `json:"error"`
	Conflicts []models.Meeting `json:"conflicts"`
}

// HandleCreateMeeting schedules a meeting from a JSON body. It applies the
// same rules as the meeting form: the window must be valid, every participant
// must belong to the team, and a double-booked participant blocks the
// creation with a 409 listing the clashes.
// POST /api/v1/meetings
func (h *Handler) HandleCreateMeeting(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	var req createMeetingRequest
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
	if res := inputval.Validate(meetingTitleInput{Title: title}); res.HasErrors() {
		writeError(w, http.StatusBadRequest, res.First())
		return
	}
	if req.StartTime.IsZero() || req.EndTime.IsZero() {
		writeError(w, http.StatusBadRequest, "start_time and end_time are required.")
		return
	}
	if !req.EndTime.After(req.StartTime) {
		writeError(w, http.StatusBadRequest, "end_time must be after start_time.")
		return
	}
	start, end := req.StartTime.UTC(), req.EndTime.UTC()

	members := membershipstore.New(h.DB)
	participantIDs := make([]primitive.ObjectID, 0, len(req.ParticipantIDs))
	seen := make(map[primitive.ObjectID]struct{}, len(req.ParticipantIDs))
	for _, raw := range req.ParticipantIDs {
		id, idErr := primitive.ObjectIDFromHex(strings.TrimSpace(raw))
		if idErr != nil {
			writeError(w, http.StatusBadRequest, "participant_ids must be user IDs.")
			return
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		isMember, memberErr := members.Exists(ctx, teamID, id)
		if memberErr != nil {
			h.serverError(w, r, "api: participant check", memberErr)
			return
		}
		if !isMember {
			writeError(w, http.StatusBadRequest, "Every participant must be a member of the team.")
			return
		}
		participantIDs = append(participantIDs, id)
	}

	// The creator always attends, so they count in the conflict check.
	checked := participantIDs
	if _, present := seen[uid]; !present {
		checked = append(append([]primitive.ObjectID{}, participantIDs...), uid)
	}

	conflicts, err := h.Conflicts.FindConflicts(ctx, start, end, checked, primitive.NilObjectID)
	if err != nil {
		h.serverError(w, r, "api: conflict check", err)
		return
	}
	if len(conflicts) > 0 {
		writeJSON(w, http.StatusConflict, meetingConflictResponse{
			Error:     "This time double-books a participant.",
			Conflicts: conflicts,
		})
		return
	}

	meeting, err := meetingstore.New(h.DB).Create(ctx, models.Meeting{
		Title:          title,
		Description:    htmlsanitize.Sanitize(strings.TrimSpace(req.Description)),
		Location:       strings.TrimSpace(req.Location),
		StartTime:      start,
		EndTime:        end,
		CreatorID:      uid,
		TeamID:         teamID,
		ParticipantIDs: participantIDs,
	})
	if err != nil {
		h.serverError(w, r, "api: create meeting", err)
		return
	}

	h.Log.Info("meeting created via api",
		zap.String("meeting_id", meeting.ID.Hex()),
		zap.String("team_id", teamID.Hex()),
		zap.String("creator_id", uid.Hex()))

	writeJSON(w, http.StatusCreated, meeting)
}
