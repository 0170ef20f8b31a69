// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents admins, managers, and members.
//
// NOTE:
//   - Team membership is not embedded on User.
//     Use the team_memberships collection to discover a user's teams.
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName   string             `bson:"full_name" json:"full_name"`
	FullNameCI string             `bson:"full_name_ci" json:"full_name_ci"` // lowercase, diacritics-stripped
	Email      string             `bson:"email" json:"email"`
	EmailCI    string             `bson:"email_ci" json:"email_ci"`
	AuthMethod string             `bson:"auth_method,omitempty" json:"auth_method,omitempty"` // password | google | trust
	// PasswordHash is a bcrypt hash; empty for non-password auth methods.
	PasswordHash string `bson:"password_hash,omitempty" json:"-"`
	Role         string `bson:"role" json:"role"` // admin | manager | member
	Status       string `bson:"status,omitempty" json:"status,omitempty"`
	// TimeZone is an IANA zone name (e.g. "America/Chicago") used for
	// calendar day boundaries. Empty means the application default.
	TimeZone string `bson:"time_zone,omitempty" json:"time_zone,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Location resolves the user's IANA time zone, falling back to UTC when the
// zone is unset or unknown.
func (u User) Location() *time.Location {
	if u.TimeZone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(u.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}
