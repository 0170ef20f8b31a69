// internal/app/features/adminusers/handler.go
package adminusers

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/teamhub/internal/app/features/errors"
	userstore "github.com/dalemusser/teamhub/internal/app/store/users"
	"github.com/dalemusser/teamhub/internal/app/system/auditlog"
	"github.com/dalemusser/teamhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns the admin user management pages. All routes are mounted
// behind the admin role middleware.
type Handler struct {
	DB       *mongo.Database
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
	AuditLog *auditlog.Logger
}

// NewHandler constructs an adminusers Handler.
func NewHandler(db *mongo.Database, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Log:      logger,
		ErrLog:   uierrors.NewErrorLogger(logger),
		AuditLog: audit,
	}
}

// loadUser fetches the user from the {userID} route parameter, rendering a
// not-found page on failure.
func (h *Handler) loadUser(ctx context.Context, w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	userID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "userID"))
	if err != nil {
		uierrors.RenderNotFound(w, r, "User not found.", "/admin/users")
		return nil, false
	}

	user, err := userstore.New(h.DB).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			uierrors.RenderNotFound(w, r, "User not found.", "/admin/users")
			return nil, false
		}
		h.ErrLog.LogServerError(w, r, "adminusers: load user", err,
			"The user could not be loaded.", "/admin/users")
		return nil, false
	}
	return user, true
}
