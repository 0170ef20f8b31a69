package meetingstore_test

import (
	"testing"
	"time"

	meetingstore "github.com/dalemusser/teamhub/internal/app/store/meetings"
	"github.com/dalemusser/teamhub/internal/app/system/schedule"
	"github.com/dalemusser/teamhub/internal/domain/models"
	"github.com/dalemusser/teamhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// The meeting store must satisfy both scheduling interfaces.
var (
	_ schedule.ConflictSource     = (*meetingstore.Store)(nil)
	_ schedule.MeetingRangeSource = (*meetingstore.Store)(nil)
)

func at(hour, min int) time.Time {
	return time.Date(2026, 9, 10, hour, min, 0, 0, time.UTC)
}

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := meetingstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	team := fixtures.CreateTeam(ctx, "Meet Team")
	creator := fixtures.CreateUser(ctx, "MC", "mc@example.com", models.RoleManager)

	created, err := store.Create(ctx, models.Meeting{
		Title:     "Sprint planning",
		TeamID:    team.ID,
		CreatorID: creator.ID,
		StartTime: at(9, 0),
		EndTime:   at(10, 0),
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	// The creator is always on the participant list.
	if !created.HasParticipant(creator.ID) {
		t.Error("creator should be a participant")
	}
	if created.TitleCI == "" {
		t.Error("expected TitleCI to be set")
	}
}

func TestStore_Create_EndNotAfterStart(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := meetingstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.Create(ctx, models.Meeting{
		Title:     "Backwards",
		CreatorID: primitive.NewObjectID(),
		StartTime: at(10, 0),
		EndTime:   at(9, 0),
	})
	if err != meetingstore.ErrEndNotAfterStart {
		t.Errorf("expected ErrEndNotAfterStart, got %v", err)
	}

	// Zero-length meetings are rejected too.
	_, err = store.Create(ctx, models.Meeting{
		Title:     "Instant",
		CreatorID: primitive.NewObjectID(),
		StartTime: at(10, 0),
		EndTime:   at(10, 0),
	})
	if err != meetingstore.ErrEndNotAfterStart {
		t.Errorf("expected ErrEndNotAfterStart for zero length, got %v", err)
	}
}

func TestStore_Participants(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := meetingstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	team := fixtures.CreateTeam(ctx, "Part Team")
	creator := fixtures.CreateUser(ctx, "PC", "pc@example.com", models.RoleManager)
	guest := fixtures.CreateUser(ctx, "PG", "pg@example.com", models.RoleMember)

	created, err := store.Create(ctx, models.Meeting{
		Title:     "Standup",
		TeamID:    team.ID,
		CreatorID: creator.ID,
		StartTime: at(9, 0),
		EndTime:   at(9, 15),
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := store.AddParticipant(ctx, created.ID, guest.ID); err != nil {
		t.Fatalf("AddParticipant failed: %v", err)
	}
	// Adding again is a no-op, not a duplicate.
	if err := store.AddParticipant(ctx, created.ID, guest.ID); err != nil {
		t.Fatalf("second AddParticipant failed: %v", err)
	}

	got, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if len(got.ParticipantIDs) != 2 {
		t.Errorf("expected 2 participants, got %d", len(got.ParticipantIDs))
	}

	if err := store.RemoveParticipant(ctx, created.ID, guest.ID); err != nil {
		t.Fatalf("RemoveParticipant failed: %v", err)
	}
	got, err = store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.HasParticipant(guest.ID) {
		t.Error("guest should be removed")
	}

	if err := store.AddParticipant(ctx, primitive.NewObjectID(), guest.ID); err != mongo.ErrNoDocuments {
		t.Errorf("expected ErrNoDocuments for missing meeting, got %v", err)
	}
}

func TestStore_MeetingsOverlapping(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := meetingstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	team := fixtures.CreateTeam(ctx, "Overlap Team")
	alice := fixtures.CreateUser(ctx, "Alice", "alice-ov@example.com", models.RoleMember)
	bob := fixtures.CreateUser(ctx, "Bob", "bob-ov@example.com", models.RoleMember)

	mk := func(title string, creator primitive.ObjectID, start, end time.Time) models.Meeting {
		t.Helper()
		m, err := store.Create(ctx, models.Meeting{
			Title:     title,
			TeamID:    team.ID,
			CreatorID: creator,
			StartTime: start,
			EndTime:   end,
		})
		if err != nil {
			t.Fatalf("Create(%q) failed: %v", title, err)
		}
		return m
	}

	overlapping := mk("alice 9-10", alice.ID, at(9, 0), at(10, 0))
	mk("alice back-to-back 10-11", alice.ID, at(10, 0), at(11, 0))
	mk("bob 9-10", bob.ID, at(9, 0), at(10, 0))

	// Proposed [9:30, 10:30) for alice: only her 9-10 meeting overlaps.
	// The back-to-back 10-11 starts exactly at the proposed end, and bob's
	// meeting shares no participant.
	got, err := store.MeetingsOverlapping(ctx, []primitive.ObjectID{alice.ID}, at(9, 30), at(10, 30), primitive.NilObjectID)
	if err != nil {
		t.Fatalf("MeetingsOverlapping failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != overlapping.ID {
		t.Fatalf("expected exactly the 9-10 meeting, got %+v", got)
	}

	// Excluding the conflicting meeting itself yields no conflicts.
	got, err = store.MeetingsOverlapping(ctx, []primitive.ObjectID{alice.ID}, at(9, 30), at(10, 30), overlapping.ID)
	if err != nil {
		t.Fatalf("MeetingsOverlapping failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no conflicts with exclusion, got %+v", got)
	}

	// Empty participant set never queries anything.
	got, err = store.MeetingsOverlapping(ctx, nil, at(9, 0), at(17, 0), primitive.NilObjectID)
	if err != nil {
		t.Fatalf("MeetingsOverlapping failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty result for empty participants, got %+v", got)
	}
}

func TestStore_MeetingsForUserInRange(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := meetingstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	team := fixtures.CreateTeam(ctx, "Cal Team")
	user := fixtures.CreateUser(ctx, "CU", "cu@example.com", models.RoleMember)
	other := fixtures.CreateUser(ctx, "CO", "co@example.com", models.RoleMember)

	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

	mine, err := store.Create(ctx, models.Meeting{
		Title: "created by user", TeamID: team.ID, CreatorID: user.ID,
		StartTime: start.Add(24 * time.Hour), EndTime: start.Add(25 * time.Hour),
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	invited, err := store.Create(ctx, models.Meeting{
		Title: "invited", TeamID: team.ID, CreatorID: other.ID,
		ParticipantIDs: []primitive.ObjectID{user.ID},
		StartTime:      start.Add(48 * time.Hour), EndTime: start.Add(49 * time.Hour),
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	// Not involved.
	if _, err := store.Create(ctx, models.Meeting{
		Title: "unrelated", TeamID: team.ID, CreatorID: other.ID,
		StartTime: start.Add(72 * time.Hour), EndTime: start.Add(73 * time.Hour),
	}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	// Starts exactly at the range end: excluded by [start, end).
	if _, err := store.Create(ctx, models.Meeting{
		Title: "at boundary", TeamID: team.ID, CreatorID: user.ID,
		StartTime: end, EndTime: end.Add(time.Hour),
	}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := store.MeetingsForUserInRange(ctx, user.ID, start, end)
	if err != nil {
		t.Fatalf("MeetingsForUserInRange failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 meetings, got %d", len(got))
	}
	if got[0].ID != mine.ID || got[1].ID != invited.ID {
		t.Errorf("unexpected meetings or order: %q, %q", got[0].Title, got[1].Title)
	}
}
