// internal/app/features/calendar/handler.go
package calendar

import (
	"context"
	"net/http"
	"strconv"
	"time"

	uierrors "github.com/dalemusser/teamhub/internal/app/features/errors"
	meetingstore "github.com/dalemusser/teamhub/internal/app/store/meetings"
	taskstore "github.com/dalemusser/teamhub/internal/app/store/tasks"
	userstore "github.com/dalemusser/teamhub/internal/app/store/users"
	"github.com/dalemusser/teamhub/internal/app/system/authz"
	"github.com/dalemusser/teamhub/internal/app/system/schedule"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns the calendar pages.
type Handler struct {
	DB         *mongo.Database
	Log        *zap.Logger
	ErrLog     *uierrors.ErrorLogger
	Aggregator *schedule.Aggregator
}

// NewHandler constructs a calendar Handler.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		DB:         db,
		Log:        logger,
		ErrLog:     uierrors.NewErrorLogger(logger),
		Aggregator: schedule.NewAggregator(taskstore.New(db), meetingstore.New(db)),
	}
}

// userLocation resolves the signed-in user's time zone, falling back to UTC
// when the profile has none or the zone fails to load.
func (h *Handler) userLocation(ctx context.Context, uid primitive.ObjectID) *time.Location {
	user, err := userstore.New(h.DB).GetByID(ctx, uid)
	if err != nil {
		return time.UTC
	}
	return user.Location()
}

// ServeRoot redirects to the current month.
// GET /calendar
func (h *Handler) ServeRoot(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	loc := h.userLocation(r.Context(), uid)
	now := time.Now().In(loc)
	http.Redirect(w, r,
		"/calendar/month?year="+strconv.Itoa(now.Year())+"&month="+strconv.Itoa(int(now.Month())),
		http.StatusSeeOther)
}
