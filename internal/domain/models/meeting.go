// internal/domain/models/meeting.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Meeting is a scheduled event for a team with an explicit participant list.
//
// Invariant: EndTime is strictly after StartTime (validated at the edge
// before a meeting is stored). ParticipantIDs holds no duplicates; the
// creator may or may not also appear in the list.
type Meeting struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	TitleCI     string             `bson:"title_ci" json:"title_ci"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`

	StartTime time.Time `bson:"start_time" json:"start_time"`
	EndTime   time.Time `bson:"end_time" json:"end_time"`
	Location  string    `bson:"location,omitempty" json:"location,omitempty"`

	CreatorID      primitive.ObjectID   `bson:"creator_id" json:"creator_id"`
	TeamID         primitive.ObjectID   `bson:"team_id" json:"team_id"`
	ParticipantIDs []primitive.ObjectID `bson:"participant_ids" json:"participant_ids"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Duration returns the meeting length.
func (m Meeting) Duration() time.Duration {
	return m.EndTime.Sub(m.StartTime)
}

// HasParticipant reports whether the user is on the participant list.
// The creator is not implicitly a participant.
func (m Meeting) HasParticipant(userID primitive.ObjectID) bool {
	for _, id := range m.ParticipantIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// Involves reports whether the user is the creator or a participant.
func (m Meeting) Involves(userID primitive.ObjectID) bool {
	return m.CreatorID == userID || m.HasParticipant(userID)
}
