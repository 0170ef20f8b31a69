// internal/app/features/teams/handler.go
package teams

import (
	uierrors "github.com/dalemusser/teamhub/internal/app/features/errors"
	"github.com/dalemusser/teamhub/internal/app/system/auditlog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns all team pages and actions.
type Handler struct {
	DB       *mongo.Database
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
	AuditLog *auditlog.Logger
}

// NewHandler constructs a teams Handler.
func NewHandler(db *mongo.Database, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Log:      logger,
		ErrLog:   uierrors.NewErrorLogger(logger),
		AuditLog: audit,
	}
}
