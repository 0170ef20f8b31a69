// internal/app/features/teams/members.go
package teams

import (
	"context"
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/teamhub/internal/app/features/errors"
	membershipstore "github.com/dalemusser/teamhub/internal/app/store/memberships"
	userstore "github.com/dalemusser/teamhub/internal/app/store/users"
	"github.com/dalemusser/teamhub/internal/app/system/authz"
	"github.com/dalemusser/teamhub/internal/app/system/timeouts"
	"github.com/dalemusser/teamhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// memberIDFromURL parses the {userID} route parameter.
func memberIDFromURL(r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "userID"))
	return id, err == nil
}

// HandleAddMember adds a user to the team by email.
// POST /teams/{teamID}/members
func (h *Handler) HandleAddMember(w http.ResponseWriter, r *http.Request) {
	role, _, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "teams: parse add-member form", err, "Invalid form data.", "/teams")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	team, ok := h.loadTeamForManage(ctx, w, r, uid)
	if !ok {
		return
	}
	backURL := "/teams/" + team.ID.Hex()

	email := strings.TrimSpace(r.FormValue("email"))
	teamRole := strings.TrimSpace(r.FormValue("team_role"))
	if teamRole == "" {
		teamRole = models.TeamRoleMember
	}
	if teamRole != models.TeamRoleManager && teamRole != models.TeamRoleMember {
		h.ErrLog.LogBadRequest(w, r, "teams: bad team role", nil,
			"Team role must be manager or member.", backURL)
		return
	}

	user, err := userstore.New(h.DB).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			uierrors.RenderNotFound(w, r, "No user with that email.", backURL)
			return
		}
		h.ErrLog.LogServerError(w, r, "teams: lookup member", err,
			"The member could not be added.", backURL)
		return
	}

	if err := membershipstore.New(h.DB).Add(ctx, team.ID, user.ID, teamRole); err != nil {
		if errors.Is(err, membershipstore.ErrDuplicateMembership) {
			uierrors.RenderForbidden(w, r, "That user is already on this team.",
				httpnav.ResolveBackURL(r, backURL))
			return
		}
		h.ErrLog.LogServerError(w, r, "teams: add member", err,
			"The member could not be added.", backURL)
		return
	}

	h.AuditLog.MemberAddedToTeam(ctx, r, uid, user.ID, team.ID, role, teamRole)

	http.Redirect(w, r, backURL, http.StatusSeeOther)
}

// HandleRemoveMember removes a user from the team.
// POST /teams/{teamID}/members/{userID}/remove
func (h *Handler) HandleRemoveMember(w http.ResponseWriter, r *http.Request) {
	role, _, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	team, ok := h.loadTeamForManage(ctx, w, r, uid)
	if !ok {
		return
	}
	backURL := "/teams/" + team.ID.Hex()

	userID, ok := memberIDFromURL(r)
	if !ok {
		uierrors.RenderNotFound(w, r, "Member not found.", backURL)
		return
	}

	if err := membershipstore.New(h.DB).Remove(ctx, team.ID, userID); err != nil {
		h.ErrLog.LogServerError(w, r, "teams: remove member", err,
			"The member could not be removed.", backURL)
		return
	}

	h.AuditLog.MemberRemovedFromTeam(ctx, r, uid, userID, team.ID, role)

	http.Redirect(w, r, backURL, http.StatusSeeOther)
}

// HandleSetMemberRole changes a member's team role.
// POST /teams/{teamID}/members/{userID}/role
func (h *Handler) HandleSetMemberRole(w http.ResponseWriter, r *http.Request) {
	role, _, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "teams: parse role form", err, "Invalid form data.", "/teams")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	team, ok := h.loadTeamForManage(ctx, w, r, uid)
	if !ok {
		return
	}
	backURL := "/teams/" + team.ID.Hex()

	userID, ok := memberIDFromURL(r)
	if !ok {
		uierrors.RenderNotFound(w, r, "Member not found.", backURL)
		return
	}

	newRole := strings.TrimSpace(r.FormValue("team_role"))
	if newRole != models.TeamRoleManager && newRole != models.TeamRoleMember {
		h.ErrLog.LogBadRequest(w, r, "teams: bad team role", nil,
			"Team role must be manager or member.", backURL)
		return
	}

	msStore := membershipstore.New(h.DB)

	oldRole, err := msStore.GetRole(ctx, team.ID, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			uierrors.RenderNotFound(w, r, "Member not found.", backURL)
			return
		}
		h.ErrLog.LogServerError(w, r, "teams: load membership", err,
			"The role could not be changed.", backURL)
		return
	}

	if oldRole != newRole {
		if err := msStore.SetRole(ctx, team.ID, userID, newRole); err != nil {
			h.ErrLog.LogServerError(w, r, "teams: set role", err,
				"The role could not be changed.", backURL)
			return
		}
		h.AuditLog.TeamRoleChanged(ctx, r, uid, userID, team.ID, role, oldRole, newRole)
	}

	http.Redirect(w, r, backURL, http.StatusSeeOther)
}
