package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/teamhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser creates a test user with the given site role.
// Returns the created user with its generated ID.
func (f *Fixtures) CreateUser(ctx context.Context, fullName, email, role string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:         primitive.NewObjectID(),
		FullName:   fullName,
		FullNameCI: text.Fold(fullName),
		Email:      email,
		EmailCI:    text.Fold(email),
		AuthMethod: models.AuthMethodTrust,
		Role:       role,
		Status:     "active",
		TimeZone:   "UTC",
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	_, err := f.db.Collection("users").InsertOne(ctx, user)
	if err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}

	return user
}

// CreateAdmin creates a test admin user.
func (f *Fixtures) CreateAdmin(ctx context.Context, fullName, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, fullName, email, models.RoleAdmin)
}

// CreateDisabledUser creates a test user with disabled status.
func (f *Fixtures) CreateDisabledUser(ctx context.Context, fullName, email string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:         primitive.NewObjectID(),
		FullName:   fullName,
		FullNameCI: text.Fold(fullName),
		Email:      email,
		EmailCI:    text.Fold(email),
		AuthMethod: models.AuthMethodTrust,
		Role:       models.RoleMember,
		Status:     "disabled",
		TimeZone:   "UTC",
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	_, err := f.db.Collection("users").InsertOne(ctx, user)
	if err != nil {
		f.t.Fatalf("failed to create disabled test user: %v", err)
	}

	return user
}

// CreateTeam creates a test team with the given name.
// Returns the created team with its generated ID.
func (f *Fixtures) CreateTeam(ctx context.Context, name string) models.Team {
	f.t.Helper()

	now := time.Now().UTC()
	team := models.Team{
		ID:          primitive.NewObjectID(),
		Name:        name,
		NameCI:      text.Fold(name),
		Description: "Test team description",
		Status:      "active",
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := f.db.Collection("teams").InsertOne(ctx, team)
	if err != nil {
		f.t.Fatalf("failed to create test team: %v", err)
	}

	return team
}

// AddMembership creates a membership record linking a user to a team.
func (f *Fixtures) AddMembership(ctx context.Context, teamID, userID primitive.ObjectID, role string) models.TeamMembership {
	f.t.Helper()

	membership := models.TeamMembership{
		ID:        primitive.NewObjectID(),
		TeamID:    teamID,
		UserID:    userID,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}

	_, err := f.db.Collection("team_memberships").InsertOne(ctx, membership)
	if err != nil {
		f.t.Fatalf("failed to create test team membership: %v", err)
	}

	return membership
}

// CreateTask creates a test task in the given team.
func (f *Fixtures) CreateTask(ctx context.Context, teamID, creatorID primitive.ObjectID, title string) models.Task {
	f.t.Helper()

	now := time.Now().UTC()
	task := models.Task{
		ID:        primitive.NewObjectID(),
		Title:     title,
		TitleCI:   text.Fold(title),
		Status:    models.TaskStatusOpen,
		Priority:  models.TaskPriorityMedium,
		TeamID:    teamID,
		CreatorID: creatorID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := f.db.Collection("tasks").InsertOne(ctx, task)
	if err != nil {
		f.t.Fatalf("failed to create test task: %v", err)
	}

	return task
}

// CreateMeeting creates a test meeting with the given time window and participants.
func (f *Fixtures) CreateMeeting(ctx context.Context, teamID, creatorID primitive.ObjectID, title string, start, end time.Time, participantIDs ...primitive.ObjectID) models.Meeting {
	f.t.Helper()

	now := time.Now().UTC()
	meeting := models.Meeting{
		ID:             primitive.NewObjectID(),
		Title:          title,
		TitleCI:        text.Fold(title),
		StartTime:      start.UTC(),
		EndTime:        end.UTC(),
		CreatorID:      creatorID,
		TeamID:         teamID,
		ParticipantIDs: participantIDs,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	_, err := f.db.Collection("meetings").InsertOne(ctx, meeting)
	if err != nil {
		f.t.Fatalf("failed to create test meeting: %v", err)
	}

	return meeting
}
