// internal/app/features/adminusers/list.go
package adminusers

import (
	"context"
	"net/http"
	"time"

	userstore "github.com/dalemusser/teamhub/internal/app/store/users"
	"github.com/dalemusser/teamhub/internal/app/system/paging"
	"github.com/dalemusser/teamhub/internal/app/system/timeouts"
	"github.com/dalemusser/teamhub/internal/app/system/viewdata"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/dalemusser/teamhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// userRow is one account in the admin user list.
type userRow struct {
	ID         string
	FullName   string
	Email      string
	Role       string
	Status     string
	AuthMethod string
	CreatedAt  time.Time
}

// listData is the view model for the admin user list page.
type listData struct {
	viewdata.BaseVM

	Rows  []userRow
	Total int64
	Role  string

	HasPrev    bool
	HasNext    bool
	PrevCursor string
	NextCursor string
}

// ServeList renders the paged admin user list, optionally filtered by role.
// GET /admin/users
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	store := userstore.New(h.DB)

	after := query.Get(r, "after")
	before := query.Get(r, "before")
	role := query.Get(r, "role")
	if role != "" && !models.IsValidRole(role) {
		role = ""
	}

	total, err := store.Count(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "adminusers: count", err,
			"The user list could not be loaded.", "/dashboard")
		return
	}

	filter := bson.M{}
	if role != "" {
		filter["role"] = role
	}

	findOpts := options.Find().SetLimit(paging.LimitPlusOne())
	cfg := paging.ConfigureKeyset(before, after)
	cfg.ApplyToFind(findOpts, "full_name_ci")
	if window := cfg.KeysetWindow("full_name_ci"); window != nil {
		filter["$or"] = window["$or"]
	}

	users, err := store.Find(ctx, filter, findOpts)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "adminusers: find", err,
			"The user list could not be loaded.", "/dashboard")
		return
	}

	page := paging.TrimPage(&users, before, after)
	if before != "" {
		paging.Reverse(users)
	}

	rows := make([]userRow, len(users))
	for i, u := range users {
		rows[i] = userRow{
			ID:         u.ID.Hex(),
			FullName:   u.FullName,
			Email:      u.Email,
			Role:       u.Role,
			Status:     u.Status,
			AuthMethod: u.AuthMethod,
			CreatedAt:  u.CreatedAt,
		}
	}

	var prevCursor, nextCursor string
	if len(users) > 0 {
		prevCursor = wafflemongo.EncodeCursor(text.Fold(users[0].FullName), users[0].ID)
		nextCursor = wafflemongo.EncodeCursor(text.Fold(users[len(users)-1].FullName), users[len(users)-1].ID)
	}

	data := listData{
		BaseVM:     viewdata.NewBaseVM(r, "Users", "/dashboard"),
		Rows:       rows,
		Total:      total,
		Role:       role,
		HasPrev:    page.HasPrev,
		HasNext:    page.HasNext,
		PrevCursor: prevCursor,
		NextCursor: nextCursor,
	}

	templates.Render(w, r, "admin_user_list", data)
}
