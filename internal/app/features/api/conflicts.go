// internal/app/features/api/conflicts.go
package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/teamhub/internal/app/system/timeouts"
	"github.com/dalemusser/teamhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type conflictsResponse struct {
	Conflicts []models.Meeting `json:"conflicts"`
}

// ServeConflicts checks a proposed time window against the participants'
// existing meetings. Answers 200 with an empty list when the slot is free
// and 409 with the clashing meetings when it is not.
// GET /api/v1/meetings/conflicts?start=RFC3339&end=RFC3339&participants=id,id
func (h *Handler) ServeConflicts(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := h.requireUser(w, r); !ok {
		return
	}

	start, err := time.Parse(time.RFC3339, query.Get(r, "start"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "start must be an RFC 3339 timestamp.")
		return
	}
	end, err := time.Parse(time.RFC3339, query.Get(r, "end"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "end must be an RFC 3339 timestamp.")
		return
	}
	if !end.After(start) {
		writeError(w, http.StatusBadRequest, "end must be after start.")
		return
	}

	var participantIDs []primitive.ObjectID
	for _, raw := range strings.Split(query.Get(r, "participants"), ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		id, idErr := primitive.ObjectIDFromHex(raw)
		if idErr != nil {
			writeError(w, http.StatusBadRequest, "participants must be a comma-separated list of user IDs.")
			return
		}
		participantIDs = append(participantIDs, id)
	}

	excludeID := primitive.NilObjectID
	if raw := query.Get(r, "exclude"); raw != "" {
		id, idErr := primitive.ObjectIDFromHex(raw)
		if idErr != nil {
			writeError(w, http.StatusBadRequest, "exclude must be a meeting ID.")
			return
		}
		excludeID = id
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	conflicts, err := h.Conflicts.FindConflicts(ctx, start, end, participantIDs, excludeID)
	if err != nil {
		h.serverError(w, r, "api: conflict check", err)
		return
	}

	status := http.StatusOK
	if len(conflicts) > 0 {
		status = http.StatusConflict
	}
	if conflicts == nil {
		conflicts = []models.Meeting{}
	}
	writeJSON(w, status, conflictsResponse{Conflicts: conflicts})
}
