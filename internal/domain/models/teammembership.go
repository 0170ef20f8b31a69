// internal/domain/models/teammembership.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Team membership roles.
const (
	TeamRoleManager = "manager"
	TeamRoleMember  = "member"
)

// TeamMembership is the authoritative join between users and teams.
// Exactly one document per (team_id, user_id); role is a scalar
// ("manager"|"member").
type TeamMembership struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TeamID    primitive.ObjectID `bson:"team_id" json:"team_id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	Role      string             `bson:"role" json:"role"` // "manager" | "member"
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
