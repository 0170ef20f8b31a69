// internal/app/features/dashboard/handler.go
package dashboard

import (
	"context"
	"net/http"
	"time"

	uierrors "github.com/dalemusser/teamhub/internal/app/features/errors"
	meetings "github.com/dalemusser/teamhub/internal/app/store/meetings"
	memberships "github.com/dalemusser/teamhub/internal/app/store/memberships"
	tasks "github.com/dalemusser/teamhub/internal/app/store/tasks"
	teams "github.com/dalemusser/teamhub/internal/app/store/teams"
	users "github.com/dalemusser/teamhub/internal/app/store/users"
	"github.com/dalemusser/teamhub/internal/app/system/authz"
	"github.com/dalemusser/teamhub/internal/app/system/timeouts"
	"github.com/dalemusser/teamhub/internal/app/system/viewdata"
	"github.com/dalemusser/teamhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// upcomingLimit caps the meeting list on the dashboard.
const upcomingLimit = 5

type Handler struct {
	DB     *mongo.Database
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		DB:     db,
		Log:    logger,
		ErrLog: uierrors.NewErrorLogger(logger),
	}
}

// userLocation resolves the signed-in user's time zone, falling back to UTC
// when the profile has none or the zone fails to load.
func (h *Handler) userLocation(ctx context.Context, uid primitive.ObjectID) *time.Location {
	user, err := users.New(h.DB).GetByID(ctx, uid)
	if err != nil {
		return time.UTC
	}
	return user.Location()
}

// dashboardData is the view model for every dashboard variant. Admin-only
// fields are zero for other roles.
type dashboardData struct {
	viewdata.BaseVM

	OpenTasks    []models.Task
	OverdueCount int64
	Upcoming     []models.Meeting
	MyTeams      []models.Team

	// Admin panel counts
	ShowAdminPanel bool
	UsersCount     int64
	TeamsCount     int64
}

// ServeDashboard renders the signed-in user's dashboard.
// GET /dashboard
func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	role, _, uid, ok := authz.UserCtx(r)
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	now := time.Now().UTC()

	data := dashboardData{
		BaseVM: viewdata.NewBaseVM(r, "Dashboard", "/"),
	}

	taskStore := tasks.New(h.DB)
	openTasks, err := taskStore.ListByAssignee(ctx, uid, models.TaskStatusOpen)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "dashboard: list open tasks", err,
			"The dashboard could not be loaded.", "/")
		return
	}
	inProgress, err := taskStore.ListByAssignee(ctx, uid, models.TaskStatusInProgress)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "dashboard: list in-progress tasks", err,
			"The dashboard could not be loaded.", "/")
		return
	}
	data.OpenTasks = append(openTasks, inProgress...)

	data.OverdueCount, err = taskStore.CountOverdueForUser(ctx, uid, now)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "dashboard: count overdue tasks", err,
			"The dashboard could not be loaded.", "/")
		return
	}

	data.Upcoming, err = meetings.New(h.DB).UpcomingForUser(ctx, uid, now, upcomingLimit)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "dashboard: list upcoming meetings", err,
			"The dashboard could not be loaded.", "/")
		return
	}
	if loc := h.userLocation(ctx, uid); loc != time.UTC {
		for i := range data.Upcoming {
			data.Upcoming[i].StartTime = data.Upcoming[i].StartTime.In(loc)
			data.Upcoming[i].EndTime = data.Upcoming[i].EndTime.In(loc)
		}
	}

	teamIDs, err := memberships.New(h.DB).TeamIDsByUser(ctx, uid)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "dashboard: list memberships", err,
			"The dashboard could not be loaded.", "/")
		return
	}
	if len(teamIDs) > 0 {
		data.MyTeams, err = teams.New(h.DB).GetByIDs(ctx, teamIDs)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "dashboard: load teams", err,
				"The dashboard could not be loaded.", "/")
			return
		}
	}

	if role == models.RoleAdmin {
		data.ShowAdminPanel = true
		data.UsersCount, err = users.New(h.DB).Count(ctx)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "dashboard: count users", err,
				"The dashboard could not be loaded.", "/")
			return
		}
		data.TeamsCount, err = teams.New(h.DB).Count(ctx)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "dashboard: count teams", err,
				"The dashboard could not be loaded.", "/")
			return
		}
	}

	h.Log.Debug("dashboard served",
		zap.String("role", role),
		zap.Int("open_tasks", len(data.OpenTasks)),
		zap.Int("upcoming_meetings", len(data.Upcoming)))

	templates.Render(w, r, "dashboard", data)
}
