// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	userstore "github.com/dalemusser/teamhub/internal/app/store/users"
	"github.com/dalemusser/teamhub/internal/app/system/status"
	"github.com/dalemusser/teamhub/internal/app/system/timeouts"
	"github.com/dalemusser/teamhub/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if n := timeouts.ConfigureFromEnv(); n > 0 {
		logger.Info("configured handler timeouts from environment", zap.Int("count", n))
	}

	if appCfg.AdminEmail != "" {
		if err := ensureAdmin(ctx, deps, appCfg.AdminEmail, logger); err != nil {
			return fmt.Errorf("ensure admin: %w", err)
		}
	}
	return nil
}

// ensureAdmin guarantees an active admin account exists for the configured
// email: an existing user is promoted, a missing one is created as a Google
// sign-in account (no password to provision).
func ensureAdmin(ctx context.Context, deps DBDeps, email string, logger *zap.Logger) error {
	store := userstore.New(deps.MongoDatabase)

	user, err := store.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return err
		}

		created, createErr := store.Create(ctx, models.User{
			FullName:   "Administrator",
			Email:      email,
			Role:       models.RoleAdmin,
			AuthMethod: models.AuthMethodGoogle,
		})
		if createErr != nil {
			return createErr
		}
		logger.Info("created initial admin user",
			zap.String("email", created.Email),
			zap.String("user_id", created.ID.Hex()))
		return nil
	}

	if user.Role == models.RoleAdmin && user.Status == status.Active {
		return nil
	}

	err = store.UpdateUser(ctx, user.ID, userstore.Update{
		FullName: user.FullName,
		Email:    user.Email,
		Role:     models.RoleAdmin,
		Status:   status.Active,
	})
	if err != nil {
		return err
	}
	logger.Info("promoted existing user to admin",
		zap.String("email", user.Email),
		zap.String("user_id", user.ID.Hex()))
	return nil
}
