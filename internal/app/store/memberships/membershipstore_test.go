package membershipstore_test

import (
	"testing"

	membershipstore "github.com/dalemusser/teamhub/internal/app/store/memberships"
	"github.com/dalemusser/teamhub/internal/domain/models"
	"github.com/dalemusser/teamhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore_Add(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	team := fixtures.CreateTeam(ctx, "Add Team")
	user := fixtures.CreateUser(ctx, "Member One", "member1@example.com", models.RoleMember)

	if err := store.Add(ctx, team.ID, user.ID, models.TeamRoleMember); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	role, err := store.GetRole(ctx, team.ID, user.ID)
	if err != nil {
		t.Fatalf("GetRole failed: %v", err)
	}
	if role != models.TeamRoleMember {
		t.Errorf("role: got %q, want member", role)
	}
}

func TestStore_Add_Duplicate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	team := fixtures.CreateTeam(ctx, "Dup Team")
	user := fixtures.CreateUser(ctx, "Dup Member", "dup@example.com", models.RoleMember)

	if err := store.Add(ctx, team.ID, user.ID, models.TeamRoleMember); err != nil {
		t.Fatalf("first Add failed: %v", err)
	}

	// Same user again, even with a different role, is a duplicate.
	if err := store.Add(ctx, team.ID, user.ID, models.TeamRoleManager); err != membershipstore.ErrDuplicateMembership {
		t.Errorf("expected ErrDuplicateMembership, got %v", err)
	}
}

func TestStore_Add_MissingTeamOrUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	team := fixtures.CreateTeam(ctx, "Real Team")
	user := fixtures.CreateUser(ctx, "Real User", "real@example.com", models.RoleMember)

	if err := store.Add(ctx, primitive.NewObjectID(), user.ID, models.TeamRoleMember); err != mongo.ErrNoDocuments {
		t.Errorf("expected ErrNoDocuments for missing team, got %v", err)
	}
	if err := store.Add(ctx, team.ID, primitive.NewObjectID(), models.TeamRoleMember); err != mongo.ErrNoDocuments {
		t.Errorf("expected ErrNoDocuments for missing user, got %v", err)
	}
	if err := store.Add(ctx, team.ID, user.ID, "boss"); err == nil {
		t.Error("expected error for invalid team role")
	}
}

func TestStore_SetRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	team := fixtures.CreateTeam(ctx, "Promote Team")
	user := fixtures.CreateUser(ctx, "Promotee", "promote@example.com", models.RoleMember)

	if err := store.Add(ctx, team.ID, user.ID, models.TeamRoleMember); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := store.SetRole(ctx, team.ID, user.ID, models.TeamRoleManager); err != nil {
		t.Fatalf("SetRole failed: %v", err)
	}

	isMgr, err := store.IsTeamManager(ctx, team.ID, user.ID)
	if err != nil {
		t.Fatalf("IsTeamManager failed: %v", err)
	}
	if !isMgr {
		t.Error("expected user to be a team manager after promotion")
	}

	// Missing membership surfaces as ErrNoDocuments.
	if err := store.SetRole(ctx, team.ID, primitive.NewObjectID(), models.TeamRoleMember); err != mongo.ErrNoDocuments {
		t.Errorf("expected ErrNoDocuments, got %v", err)
	}
}

func TestStore_RemoveAndExists(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	team := fixtures.CreateTeam(ctx, "Leave Team")
	user := fixtures.CreateUser(ctx, "Leaver", "leaver@example.com", models.RoleMember)

	if err := store.Add(ctx, team.ID, user.ID, models.TeamRoleMember); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	exists, err := store.Exists(ctx, team.ID, user.ID)
	if err != nil || !exists {
		t.Fatalf("Exists = %v, %v; want true", exists, err)
	}

	if err := store.Remove(ctx, team.ID, user.ID); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	exists, err = store.Exists(ctx, team.ID, user.ID)
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if exists {
		t.Error("membership should be gone after Remove")
	}
}

func TestStore_ListAndIDs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	team := fixtures.CreateTeam(ctx, "List Team")
	mgr := fixtures.CreateUser(ctx, "Mgr", "mgr@example.com", models.RoleManager)
	m1 := fixtures.CreateUser(ctx, "M1", "m1@example.com", models.RoleMember)
	m2 := fixtures.CreateUser(ctx, "M2", "m2@example.com", models.RoleMember)

	fixtures.AddMembership(ctx, team.ID, mgr.ID, models.TeamRoleManager)
	fixtures.AddMembership(ctx, team.ID, m1.ID, models.TeamRoleMember)
	fixtures.AddMembership(ctx, team.ID, m2.ID, models.TeamRoleMember)

	all, err := store.ListByTeam(ctx, team.ID, "")
	if err != nil {
		t.Fatalf("ListByTeam failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 memberships, got %d", len(all))
	}

	managers, err := store.ListByTeam(ctx, team.ID, models.TeamRoleManager)
	if err != nil {
		t.Fatalf("ListByTeam(manager) failed: %v", err)
	}
	if len(managers) != 1 || managers[0].UserID != mgr.ID {
		t.Errorf("unexpected managers: %+v", managers)
	}

	ids, err := store.UserIDsByTeam(ctx, team.ID)
	if err != nil {
		t.Fatalf("UserIDsByTeam failed: %v", err)
	}
	if len(ids) != 3 {
		t.Errorf("expected 3 user IDs, got %d", len(ids))
	}

	teamIDs, err := store.TeamIDsByUser(ctx, m1.ID)
	if err != nil {
		t.Fatalf("TeamIDsByUser failed: %v", err)
	}
	if len(teamIDs) != 1 || teamIDs[0] != team.ID {
		t.Errorf("unexpected team IDs: %v", teamIDs)
	}
}

func TestStore_CountMembersPerTeam(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	teamA := fixtures.CreateTeam(ctx, "Count A")
	teamB := fixtures.CreateTeam(ctx, "Count B")
	u1 := fixtures.CreateUser(ctx, "C1", "c1@example.com", models.RoleMember)
	u2 := fixtures.CreateUser(ctx, "C2", "c2@example.com", models.RoleMember)

	fixtures.AddMembership(ctx, teamA.ID, u1.ID, models.TeamRoleMember)
	fixtures.AddMembership(ctx, teamA.ID, u2.ID, models.TeamRoleMember)
	fixtures.AddMembership(ctx, teamB.ID, u1.ID, models.TeamRoleManager)

	counts, err := store.CountMembersPerTeam(ctx, []primitive.ObjectID{teamA.ID, teamB.ID})
	if err != nil {
		t.Fatalf("CountMembersPerTeam failed: %v", err)
	}
	if counts[teamA.ID] != 2 || counts[teamB.ID] != 1 {
		t.Errorf("unexpected counts: %v", counts)
	}
}
