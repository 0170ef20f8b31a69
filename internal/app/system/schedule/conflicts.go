// internal/app/system/schedule/conflicts.go
package schedule

import (
	"context"
	"time"

	"github.com/dalemusser/teamhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ConflictSource supplies candidate meetings for conflict detection.
// The meeting store implements it with a single range query; candidates may
// be a superset of the true conflicts (the detector applies the exact rule).
type ConflictSource interface {
	MeetingsOverlapping(ctx context.Context, participantIDs []primitive.ObjectID, start, end time.Time, excludeID primitive.ObjectID) ([]models.Meeting, error)
}

// ConflictDetector decides whether scheduling a meeting would double-book
// any participant. Conflicts are per-participant, not per-meeting: two
// meetings that overlap in time but share no participants do not conflict.
type ConflictDetector struct {
	Meetings ConflictSource
}

// NewConflictDetector constructs a ConflictDetector over the given source.
func NewConflictDetector(src ConflictSource) *ConflictDetector {
	return &ConflictDetector{Meetings: src}
}

// FindConflicts returns the existing meetings whose interval strictly
// overlaps [start, end) and which share at least one participant with
// participantIDs. A meeting with ID excludeID is never returned (pass
// primitive.NilObjectID when re-checking is not for an edit).
//
// Interval ordering (start < end) is the caller's responsibility and is
// validated before this is invoked. An empty participant set yields an
// empty result without touching the store. Store failures propagate
// unchanged.
func (d *ConflictDetector) FindConflicts(ctx context.Context, start, end time.Time, participantIDs []primitive.ObjectID, excludeID primitive.ObjectID) ([]models.Meeting, error) {
	if len(participantIDs) == 0 {
		return nil, nil
	}

	candidates, err := d.Meetings.MeetingsOverlapping(ctx, participantIDs, start, end, excludeID)
	if err != nil {
		return nil, err
	}

	want := make(map[primitive.ObjectID]struct{}, len(participantIDs))
	for _, id := range participantIDs {
		want[id] = struct{}{}
	}

	var conflicts []models.Meeting
	seen := make(map[primitive.ObjectID]struct{}, len(candidates))
	for _, m := range candidates {
		if m.ID == excludeID {
			continue
		}
		if _, dup := seen[m.ID]; dup {
			continue
		}
		if !Overlaps(start, end, m.StartTime, m.EndTime) {
			continue
		}
		if !sharesParticipant(m, want) {
			continue
		}
		seen[m.ID] = struct{}{}
		conflicts = append(conflicts, m)
	}
	return conflicts, nil
}

// sharesParticipant reports whether any of the meeting's participants is in
// the proposed set.
func sharesParticipant(m models.Meeting, want map[primitive.ObjectID]struct{}) bool {
	for _, id := range m.ParticipantIDs {
		if _, ok := want[id]; ok {
			return true
		}
	}
	return false
}
