package membershipstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/teamhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c     *mongo.Collection
	users *mongo.Collection
	teams *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:     db.Collection("team_memberships"),
		users: db.Collection("users"),
		teams: db.Collection("teams"),
	}
}

var (
	errBadTeamRole = errors.New(`team role must be "manager" or "member"`)

	// ErrDuplicateMembership is returned when the user already belongs to the team.
	ErrDuplicateMembership = errors.New("user is already a member of this team")
)

// Add creates a membership after verifying the team and user exist.
func (s *Store) Add(ctx context.Context, teamID, userID primitive.ObjectID, role string) error {
	if role != models.TeamRoleManager && role != models.TeamRoleMember {
		return errBadTeamRole
	}

	if err := s.teams.FindOne(ctx, bson.M{"_id": teamID}).Err(); err != nil {
		return err
	}
	if err := s.users.FindOne(ctx, bson.M{"_id": userID}).Err(); err != nil {
		return err
	}

	doc := bson.M{
		"team_id":    teamID,
		"user_id":    userID,
		"role":       role,
		"created_at": time.Now().UTC(),
	}
	_, err := s.c.InsertOne(ctx, doc)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateMembership
		}
		return err
	}
	return nil
}

// Remove deletes the membership document for (teamID, userID).
func (s *Store) Remove(ctx context.Context, teamID, userID primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"team_id": teamID, "user_id": userID})
	return err
}

// SetRole changes a member's team role. Returns mongo.ErrNoDocuments if the
// membership does not exist.
func (s *Store) SetRole(ctx context.Context, teamID, userID primitive.ObjectID, role string) error {
	if role != models.TeamRoleManager && role != models.TeamRoleMember {
		return errBadTeamRole
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"team_id": teamID, "user_id": userID},
		bson.M{"$set": bson.M{"role": role}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// GetRole returns the user's role in the team, or mongo.ErrNoDocuments when
// the user is not on the team.
func (s *Store) GetRole(ctx context.Context, teamID, userID primitive.ObjectID) (string, error) {
	var m models.TeamMembership
	if err := s.c.FindOne(ctx, bson.M{"team_id": teamID, "user_id": userID}).Decode(&m); err != nil {
		return "", err
	}
	return m.Role, nil
}

// IsTeamManager reports whether the user holds the manager role in the team.
func (s *Store) IsTeamManager(ctx context.Context, teamID, userID primitive.ObjectID) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{
		"team_id": teamID,
		"user_id": userID,
		"role":    models.TeamRoleManager,
	}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Exists checks if a membership exists for the given team and user.
func (s *Store) Exists(ctx context.Context, teamID, userID primitive.ObjectID) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"team_id": teamID, "user_id": userID}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListByTeam returns all memberships for a team, optionally filtered by role.
func (s *Store) ListByTeam(ctx context.Context, teamID primitive.ObjectID, role string) ([]models.TeamMembership, error) {
	filter := bson.M{"team_id": teamID}
	if role != "" {
		filter["role"] = role
	}
	cur, err := s.c.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var memberships []models.TeamMembership
	if err := cur.All(ctx, &memberships); err != nil {
		return nil, err
	}
	return memberships, nil
}

// ListByUser returns all of a user's memberships.
func (s *Store) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.TeamMembership, error) {
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var memberships []models.TeamMembership
	if err := cur.All(ctx, &memberships); err != nil {
		return nil, err
	}
	return memberships, nil
}

// UserIDsByTeam returns the IDs of every user on the team.
func (s *Store) UserIDsByTeam(ctx context.Context, teamID primitive.ObjectID) ([]primitive.ObjectID, error) {
	memberships, err := s.ListByTeam(ctx, teamID, "")
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(memberships))
	for _, m := range memberships {
		ids = append(ids, m.UserID)
	}
	return ids, nil
}

// TeamIDsByUser returns the IDs of every team the user belongs to.
func (s *Store) TeamIDsByUser(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	memberships, err := s.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(memberships))
	for _, m := range memberships {
		ids = append(ids, m.TeamID)
	}
	return ids, nil
}

// DeleteByTeam removes all memberships for a team.
// Returns the number of documents deleted.
func (s *Store) DeleteByTeam(ctx context.Context, teamID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"team_id": teamID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByUser removes all memberships for a user.
// Returns the number of documents deleted.
func (s *Store) DeleteByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// CountByTeam returns the count of memberships for a team, optionally
// filtered by role.
func (s *Store) CountByTeam(ctx context.Context, teamID primitive.ObjectID, role string) (int64, error) {
	filter := bson.M{"team_id": teamID}
	if role != "" {
		filter["role"] = role
	}
	return s.c.CountDocuments(ctx, filter)
}

// CountMembersPerTeam returns a map of team IDs to member counts.
// Batch aggregation used by the team list page.
func (s *Store) CountMembersPerTeam(ctx context.Context, teamIDs []primitive.ObjectID) (map[primitive.ObjectID]int, error) {
	result := make(map[primitive.ObjectID]int)
	if len(teamIDs) == 0 {
		return result, nil
	}

	cur, err := s.c.Aggregate(ctx, []bson.M{
		{"$match": bson.M{"team_id": bson.M{"$in": teamIDs}}},
		{"$group": bson.M{"_id": "$team_id", "n": bson.M{"$sum": 1}}},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var row struct {
			ID primitive.ObjectID `bson:"_id"`
			N  int                `bson:"n"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		result[row.ID] = row.N
	}

	return result, nil
}
