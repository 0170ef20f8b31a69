package authz_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/teamhub/internal/app/system/auth"
	"github.com/dalemusser/teamhub/internal/app/system/authz"
	"github.com/dalemusser/teamhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func reqWithUser(id primitive.ObjectID, role string) *http.Request {
	req := httptest.NewRequest("GET", "/test", nil)
	return auth.WithTestUser(req, &auth.SessionUser{
		ID:   id.Hex(),
		Name: "Test User",
		Role: role,
	})
}

func TestUserCtx(t *testing.T) {
	id := primitive.NewObjectID()

	t.Run("signed-in user", func(t *testing.T) {
		role, name, userID, ok := authz.UserCtx(reqWithUser(id, "Manager"))
		if !ok {
			t.Fatal("expected ok")
		}
		if role != "manager" {
			t.Errorf("role = %q, want lowercased manager", role)
		}
		if name != "Test User" {
			t.Errorf("name = %q", name)
		}
		if userID != id {
			t.Errorf("userID = %v, want %v", userID, id)
		}
	})

	t.Run("no user", func(t *testing.T) {
		role, _, userID, ok := authz.UserCtx(httptest.NewRequest("GET", "/test", nil))
		if ok {
			t.Error("expected ok=false")
		}
		if role != "visitor" || userID != primitive.NilObjectID {
			t.Errorf("got role %q, id %v", role, userID)
		}
	})

	t.Run("malformed session ID fails closed", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		req = auth.WithTestUser(req, &auth.SessionUser{ID: "not-an-objectid", Role: "admin"})
		if _, _, _, ok := authz.UserCtx(req); ok {
			t.Error("expected ok=false for malformed user ID")
		}
	})
}

func TestRolePredicates(t *testing.T) {
	id := primitive.NewObjectID()

	if !authz.IsAdmin(reqWithUser(id, "admin")) {
		t.Error("IsAdmin should be true for admin")
	}
	if authz.IsAdmin(reqWithUser(id, "manager")) {
		t.Error("IsAdmin should be false for manager")
	}
	if !authz.IsManager(reqWithUser(id, "manager")) {
		t.Error("IsManager should be true for manager")
	}
	if !authz.IsMember(reqWithUser(id, "member")) {
		t.Error("IsMember should be true for member")
	}
	if authz.IsMember(httptest.NewRequest("GET", "/", nil)) {
		t.Error("IsMember should be false with no user")
	}
}

func TestHasAnyRole(t *testing.T) {
	id := primitive.NewObjectID()
	req := reqWithUser(id, "manager")

	if !authz.HasAnyRole(req, "admin", "manager") {
		t.Error("expected manager to match")
	}
	if authz.HasAnyRole(req, "admin") {
		t.Error("expected manager not to match admin-only")
	}
	if !authz.HasRole(req, " Manager ") {
		t.Error("expected role matching to trim and case-fold")
	}
	if authz.HasAnyRole(httptest.NewRequest("GET", "/", nil), "member") {
		t.Error("expected false with no user")
	}
}

func TestCanManageTeam(t *testing.T) {
	id := primitive.NewObjectID()

	tests := []struct {
		name          string
		role          string
		isTeamManager bool
		want          bool
	}{
		{"admin without membership", "admin", false, true},
		{"manager of the team", "manager", true, true},
		{"manager of another team", "manager", false, false},
		{"member who manages the team", "member", true, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := authz.CanManageTeam(reqWithUser(id, tc.role), tc.isTeamManager); got != tc.want {
				t.Errorf("CanManageTeam = %v, want %v", got, tc.want)
			}
		})
	}

	if authz.CanManageTeam(httptest.NewRequest("GET", "/", nil), true) {
		t.Error("expected false with no user")
	}
}

func TestCanModifyTask(t *testing.T) {
	creator := primitive.NewObjectID()
	assignee := primitive.NewObjectID()
	other := primitive.NewObjectID()

	task := &models.Task{CreatorID: creator, AssigneeID: &assignee}

	if !authz.CanModifyTask(reqWithUser(creator, "member"), task, false) {
		t.Error("creator should be able to modify")
	}
	if !authz.CanModifyTask(reqWithUser(assignee, "member"), task, false) {
		t.Error("assignee should be able to modify")
	}
	if authz.CanModifyTask(reqWithUser(other, "member"), task, false) {
		t.Error("unrelated member should not be able to modify")
	}
	if !authz.CanModifyTask(reqWithUser(other, "manager"), task, true) {
		t.Error("team manager should be able to modify")
	}
	if !authz.CanModifyTask(reqWithUser(other, "admin"), task, false) {
		t.Error("admin should be able to modify")
	}
}

func TestCanModifyMeeting(t *testing.T) {
	creator := primitive.NewObjectID()
	other := primitive.NewObjectID()

	meeting := &models.Meeting{CreatorID: creator}

	if !authz.CanModifyMeeting(reqWithUser(creator, "member"), meeting, false) {
		t.Error("creator should be able to modify")
	}
	if authz.CanModifyMeeting(reqWithUser(other, "member"), meeting, false) {
		t.Error("non-creator member should not be able to modify")
	}
	if !authz.CanModifyMeeting(reqWithUser(other, "manager"), meeting, true) {
		t.Error("team manager should be able to modify")
	}
}

func TestCanEvaluate(t *testing.T) {
	id := primitive.NewObjectID()

	if !authz.CanEvaluate(reqWithUser(id, "admin"), false) {
		t.Error("admin should be able to evaluate")
	}
	if !authz.CanEvaluate(reqWithUser(id, "manager"), true) {
		t.Error("team manager should be able to evaluate")
	}
	if authz.CanEvaluate(reqWithUser(id, "manager"), false) {
		t.Error("manager of another team should not be able to evaluate")
	}
	if authz.CanEvaluate(reqWithUser(id, "member"), true) {
		t.Error("member should not be able to evaluate")
	}
}

func TestCanDeleteComment(t *testing.T) {
	author := primitive.NewObjectID()
	other := primitive.NewObjectID()

	if !authz.CanDeleteComment(reqWithUser(author, "member"), author) {
		t.Error("author should be able to delete own comment")
	}
	if authz.CanDeleteComment(reqWithUser(other, "member"), author) {
		t.Error("other members should not delete someone else's comment")
	}
	if !authz.CanDeleteComment(reqWithUser(other, "admin"), author) {
		t.Error("admin should be able to delete any comment")
	}
}
