package teams_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/dalemusser/teamhub/internal/app/features/teams"
	meetingstore "github.com/dalemusser/teamhub/internal/app/store/meetings"
	membershipstore "github.com/dalemusser/teamhub/internal/app/store/memberships"
	taskstore "github.com/dalemusser/teamhub/internal/app/store/tasks"
	teamstore "github.com/dalemusser/teamhub/internal/app/store/teams"
	"github.com/dalemusser/teamhub/internal/app/system/auditlog"
	"github.com/dalemusser/teamhub/internal/app/system/auth"
	"github.com/dalemusser/teamhub/internal/domain/models"
	"github.com/dalemusser/teamhub/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*teams.Handler, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return teams.NewHandler(db, auditlog.NewNopLogger(), zap.NewNop()), db
}

func asUser(r *http.Request, u models.User) *http.Request {
	return auth.WithTestUser(r, &auth.SessionUser{
		ID:    u.ID.Hex(),
		Name:  u.FullName,
		Email: u.Email,
		Role:  u.Role,
	})
}

func run(h http.HandlerFunc, r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	// Error paths render templates, which may panic without initialized templates.
	func() {
		defer func() { _ = recover() }()
		h(rec, r)
	}()
	return rec
}

func postForm(h http.HandlerFunc, r *http.Request) *httptest.ResponseRecorder {
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return run(h, r)
}

func TestHandleCreate_ManagerCreatesTeam(t *testing.T) {
	handler, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	mgr := fx.CreateUser(ctx, "Manager", "mgr@example.com", models.RoleManager)

	form := url.Values{
		"name":        {"Platform Team"},
		"description": {"Owns the platform."},
	}
	req := httptest.NewRequest("POST", "/teams", strings.NewReader(form.Encode()))
	req = asUser(req, mgr)
	rec := postForm(handler.HandleCreate, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected %d, got %d", http.StatusSeeOther, rec.Code)
	}

	list, err := teamstore.New(db).List(ctx, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 || list[0].Name != "Platform Team" {
		t.Fatalf("expected one team named Platform Team, got %+v", list)
	}

	// The creator becomes a team manager.
	role, err := membershipstore.New(db).GetRole(ctx, list[0].ID, mgr.ID)
	if err != nil {
		t.Fatalf("GetRole: %v", err)
	}
	if role != models.TeamRoleManager {
		t.Errorf("creator team role: got %q, want %q", role, models.TeamRoleManager)
	}
}

func TestHandleCreate_MemberForbidden(t *testing.T) {
	handler, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	member := fx.CreateUser(ctx, "Member", "member@example.com", models.RoleMember)

	form := url.Values{"name": {"Rogue Team"}}
	req := httptest.NewRequest("POST", "/teams", strings.NewReader(form.Encode()))
	req = asUser(req, member)
	rec := postForm(handler.HandleCreate, req)

	if rec.Code == http.StatusSeeOther {
		t.Error("member should not be able to create a team")
	}

	count, err := teamstore.New(db).Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 0 {
		t.Errorf("team count: got %d, want 0", count)
	}
}

func TestHandleCreate_DuplicateName(t *testing.T) {
	handler, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	mgr := fx.CreateUser(ctx, "Manager", "mgr@example.com", models.RoleManager)
	fx.CreateTeam(ctx, "Platform Team")

	form := url.Values{"name": {"platform team"}}
	req := httptest.NewRequest("POST", "/teams", strings.NewReader(form.Encode()))
	req = asUser(req, mgr)
	rec := postForm(handler.HandleCreate, req)

	if rec.Code == http.StatusSeeOther {
		t.Error("duplicate (case-insensitive) team name should not succeed")
	}
}

func TestHandleAddMember_AdminAddsByEmail(t *testing.T) {
	handler, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	admin := fx.CreateAdmin(ctx, "Admin", "admin@example.com")
	member := fx.CreateUser(ctx, "New Member", "newbie@example.com", models.RoleMember)
	team := fx.CreateTeam(ctx, "Core Team")

	form := url.Values{
		"email":     {"newbie@example.com"},
		"team_role": {"member"},
	}
	req := httptest.NewRequest("POST", "/teams/"+team.ID.Hex()+"/members", strings.NewReader(form.Encode()))
	req = testutil.WithChiURLParam(req, "teamID", team.ID.Hex())
	req = asUser(req, admin)
	rec := postForm(handler.HandleAddMember, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected %d, got %d", http.StatusSeeOther, rec.Code)
	}

	exists, err := membershipstore.New(db).Exists(ctx, team.ID, member.ID)
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if !exists {
		t.Error("membership should exist after add")
	}
}

func TestHandleAddMember_TeamManagerAllowed(t *testing.T) {
	handler, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	lead := fx.CreateUser(ctx, "Team Lead", "lead@example.com", models.RoleManager)
	member := fx.CreateUser(ctx, "New Member", "newbie@example.com", models.RoleMember)
	team := fx.CreateTeam(ctx, "Core Team")
	fx.AddMembership(ctx, team.ID, lead.ID, models.TeamRoleManager)

	form := url.Values{"email": {"newbie@example.com"}}
	req := httptest.NewRequest("POST", "/teams/"+team.ID.Hex()+"/members", strings.NewReader(form.Encode()))
	req = testutil.WithChiURLParam(req, "teamID", team.ID.Hex())
	req = asUser(req, lead)
	rec := postForm(handler.HandleAddMember, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected %d, got %d", http.StatusSeeOther, rec.Code)
	}

	exists, err := membershipstore.New(db).Exists(ctx, team.ID, member.ID)
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if !exists {
		t.Error("membership should exist after add")
	}
}

func TestHandleAddMember_PlainMemberForbidden(t *testing.T) {
	handler, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	member := fx.CreateUser(ctx, "Member", "member@example.com", models.RoleMember)
	target := fx.CreateUser(ctx, "Target", "target@example.com", models.RoleMember)
	team := fx.CreateTeam(ctx, "Core Team")
	fx.AddMembership(ctx, team.ID, member.ID, models.TeamRoleMember)

	form := url.Values{"email": {"target@example.com"}}
	req := httptest.NewRequest("POST", "/teams/"+team.ID.Hex()+"/members", strings.NewReader(form.Encode()))
	req = testutil.WithChiURLParam(req, "teamID", team.ID.Hex())
	req = asUser(req, member)
	rec := postForm(handler.HandleAddMember, req)

	if rec.Code == http.StatusSeeOther {
		t.Error("plain member should not be able to add members")
	}

	exists, err := membershipstore.New(db).Exists(ctx, team.ID, target.ID)
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if exists {
		t.Error("membership should not have been created")
	}
}

func TestHandleSetMemberRole(t *testing.T) {
	handler, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	admin := fx.CreateAdmin(ctx, "Admin", "admin@example.com")
	member := fx.CreateUser(ctx, "Member", "member@example.com", models.RoleMember)
	team := fx.CreateTeam(ctx, "Core Team")
	fx.AddMembership(ctx, team.ID, member.ID, models.TeamRoleMember)

	form := url.Values{"team_role": {"manager"}}
	req := httptest.NewRequest("POST",
		"/teams/"+team.ID.Hex()+"/members/"+member.ID.Hex()+"/role",
		strings.NewReader(form.Encode()))
	req = testutil.WithChiURLParam(req, "teamID", team.ID.Hex())
	req = testutil.WithChiURLParam(req, "userID", member.ID.Hex())
	req = asUser(req, admin)
	rec := postForm(handler.HandleSetMemberRole, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected %d, got %d", http.StatusSeeOther, rec.Code)
	}

	role, err := membershipstore.New(db).GetRole(ctx, team.ID, member.ID)
	if err != nil {
		t.Fatalf("GetRole: %v", err)
	}
	if role != models.TeamRoleManager {
		t.Errorf("team role: got %q, want %q", role, models.TeamRoleManager)
	}
}

func TestHandleRemoveMember(t *testing.T) {
	handler, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	admin := fx.CreateAdmin(ctx, "Admin", "admin@example.com")
	member := fx.CreateUser(ctx, "Member", "member@example.com", models.RoleMember)
	team := fx.CreateTeam(ctx, "Core Team")
	fx.AddMembership(ctx, team.ID, member.ID, models.TeamRoleMember)

	req := httptest.NewRequest("POST",
		"/teams/"+team.ID.Hex()+"/members/"+member.ID.Hex()+"/remove", nil)
	req = testutil.WithChiURLParam(req, "teamID", team.ID.Hex())
	req = testutil.WithChiURLParam(req, "userID", member.ID.Hex())
	req = asUser(req, admin)
	rec := run(handler.HandleRemoveMember, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected %d, got %d", http.StatusSeeOther, rec.Code)
	}

	exists, err := membershipstore.New(db).Exists(ctx, team.ID, member.ID)
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if exists {
		t.Error("membership should be gone after remove")
	}
}

func TestHandleDelete_CascadesTeamData(t *testing.T) {
	handler, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	admin := fx.CreateAdmin(ctx, "Admin", "admin@example.com")
	team := fx.CreateTeam(ctx, "Doomed Team")
	fx.AddMembership(ctx, team.ID, admin.ID, models.TeamRoleManager)
	fx.CreateTask(ctx, team.ID, admin.ID, "Orphan task")

	req := httptest.NewRequest("POST", "/teams/"+team.ID.Hex()+"/delete", nil)
	req = testutil.WithChiURLParam(req, "teamID", team.ID.Hex())
	req = asUser(req, admin)
	rec := run(handler.HandleDelete, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected %d, got %d", http.StatusSeeOther, rec.Code)
	}

	if _, err := teamstore.New(db).GetByID(ctx, team.ID); err != mongo.ErrNoDocuments {
		t.Errorf("team should be deleted, got err %v", err)
	}
	tasksLeft, err := taskstore.New(db).ListByTeam(ctx, team.ID, "")
	if err != nil {
		t.Fatalf("ListByTeam: %v", err)
	}
	if len(tasksLeft) != 0 {
		t.Errorf("tasks should be deleted, got %d", len(tasksLeft))
	}
	meetingsLeft, err := meetingstore.New(db).ListByTeam(ctx, team.ID, 0)
	if err != nil {
		t.Fatalf("ListByTeam meetings: %v", err)
	}
	if len(meetingsLeft) != 0 {
		t.Errorf("meetings should be deleted, got %d", len(meetingsLeft))
	}
	ids, err := membershipstore.New(db).UserIDsByTeam(ctx, team.ID)
	if err != nil {
		t.Fatalf("UserIDsByTeam: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("memberships should be deleted, got %d", len(ids))
	}
}
