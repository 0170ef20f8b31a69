package authz

import (
	"net/http"
	"strings"

	"github.com/dalemusser/teamhub/internal/app/system/auth"
	"github.com/dalemusser/teamhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the user's role (lowercased), name, Mongo ObjectID, and a found flag.
// If no user is present in context or the user ID is malformed, it returns
// "visitor", "", NilObjectID, false. This ensures callers can trust that
// ok=true means a valid, authenticated user with a valid ObjectID.
func UserCtx(r *http.Request) (role string, name string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "visitor", "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// Malformed user ID in session - fail closed.
		return "visitor", "", primitive.NilObjectID, false
	}
	return strings.ToLower(user.Role), user.Name, userID, true
}

// IsAdmin reports whether the current request's user is an admin.
func IsAdmin(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == models.RoleAdmin
}

// IsManager reports whether the current request's user is a manager.
func IsManager(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == models.RoleManager
}

// IsMember reports whether the current request's user is a member.
func IsMember(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == models.RoleMember
}

// CanCreateTeam reports whether the current user may create teams.
// Admins and managers can.
func CanCreateTeam(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && (role == models.RoleAdmin || role == models.RoleManager)
}

// CanManageTeam reports whether the current user may edit the team, manage
// its membership, or delete it. Admins always can; managers only for teams
// where they hold the manager team role.
func CanManageTeam(r *http.Request, isTeamManager bool) bool {
	role, _, _, ok := UserCtx(r)
	if !ok {
		return false
	}
	if role == models.RoleAdmin {
		return true
	}
	return role == models.RoleManager && isTeamManager
}

// CanModifyTask reports whether the current user may edit or delete the task.
// Admins always can; otherwise the task's creator, its assignee, or a manager
// of the task's team.
func CanModifyTask(r *http.Request, task *models.Task, isTeamManager bool) bool {
	role, _, userID, ok := UserCtx(r)
	if !ok {
		return false
	}
	if role == models.RoleAdmin {
		return true
	}
	if task.CreatorID == userID {
		return true
	}
	if task.AssigneeID != nil && *task.AssigneeID == userID {
		return true
	}
	return role == models.RoleManager && isTeamManager
}

// CanModifyMeeting reports whether the current user may edit or delete the
// meeting. Admins always can; otherwise the meeting's creator or a manager of
// the meeting's team.
func CanModifyMeeting(r *http.Request, meeting *models.Meeting, isTeamManager bool) bool {
	role, _, userID, ok := UserCtx(r)
	if !ok {
		return false
	}
	if role == models.RoleAdmin {
		return true
	}
	if meeting.CreatorID == userID {
		return true
	}
	return role == models.RoleManager && isTeamManager
}

// CanEvaluate reports whether the current user may record an evaluation for a
// completed task. Admins and team managers can.
func CanEvaluate(r *http.Request, isTeamManager bool) bool {
	role, _, _, ok := UserCtx(r)
	if !ok {
		return false
	}
	return role == models.RoleAdmin || (role == models.RoleManager && isTeamManager)
}

// CanDeleteComment reports whether the current user may delete the comment.
// Admins and the comment's author can.
func CanDeleteComment(r *http.Request, authorID primitive.ObjectID) bool {
	role, _, userID, ok := UserCtx(r)
	if !ok {
		return false
	}
	return role == models.RoleAdmin || authorID == userID
}
