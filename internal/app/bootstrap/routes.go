// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	adminusersfeature "github.com/dalemusser/teamhub/internal/app/features/adminusers"
	apifeature "github.com/dalemusser/teamhub/internal/app/features/api"
	authgooglefeature "github.com/dalemusser/teamhub/internal/app/features/authgoogle"
	calendarfeature "github.com/dalemusser/teamhub/internal/app/features/calendar"
	dashboardfeature "github.com/dalemusser/teamhub/internal/app/features/dashboard"
	errorsfeature "github.com/dalemusser/teamhub/internal/app/features/errors"
	evaluationsfeature "github.com/dalemusser/teamhub/internal/app/features/evaluations"
	healthfeature "github.com/dalemusser/teamhub/internal/app/features/health"
	homefeature "github.com/dalemusser/teamhub/internal/app/features/home"
	loginfeature "github.com/dalemusser/teamhub/internal/app/features/login"
	logoutfeature "github.com/dalemusser/teamhub/internal/app/features/logout"
	meetingsfeature "github.com/dalemusser/teamhub/internal/app/features/meetings"
	profilefeature "github.com/dalemusser/teamhub/internal/app/features/profile"
	_ "github.com/dalemusser/teamhub/internal/app/features/shared/views"
	tasksfeature "github.com/dalemusser/teamhub/internal/app/features/tasks"
	teamsfeature "github.com/dalemusser/teamhub/internal/app/features/teams"
	"github.com/dalemusser/teamhub/internal/app/store/audit"
	"github.com/dalemusser/teamhub/internal/app/store/oauthstate"
	"github.com/dalemusser/teamhub/internal/app/system/auditlog"
	"github.com/dalemusser/teamhub/internal/app/system/auth"
	"github.com/dalemusser/teamhub/internal/app/system/ratelimit"
	"github.com/dalemusser/teamhub/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed.
//
// TeamHub initializes the template engine, applies session middleware, and
// mounts feature routers for every application area: the public pages,
// authentication, the signed-in HTML surface, the admin panel, and the
// /api/v1 JSON surface.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Initialize and boot the template engine once at startup.
	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	db := deps.MongoDatabase

	auditLogger := auditlog.New(audit.New(db), logger, auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Admin: appCfg.AuditLogAdmin,
	})

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if logged in.
	// This makes the current user available to all handlers via auth.CurrentUser(r).
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	// Public pages
	homeHandler := homefeature.NewHandler(logger)
	r.Mount("/", homefeature.Routes(homeHandler))

	// Authentication
	loginHandler := loginfeature.NewHandler(db, sessionMgr, ratelimit.NewLoginLimiter(), auditLogger, logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, auditLogger, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler))

	googleHandler := authgooglefeature.NewHandler(
		db, sessionMgr, auditLogger, oauthstate.New(db),
		appCfg.GoogleClientID, appCfg.GoogleClientSecret, appCfg.BaseURL,
		logger)
	r.Mount("/auth/google", authgooglefeature.Routes(googleHandler))

	// Error pages
	errorsHandler := errorsfeature.NewHandler()
	r.Get("/forbidden", errorsHandler.Forbidden)
	r.Get("/unauthorized", errorsHandler.Unauthorized)

	// Signed-in HTML surface
	r.Group(func(r chi.Router) {
		r.Use(sessionMgr.RequireSignedIn)

		r.Mount("/dashboard", dashboardfeature.Routes(dashboardfeature.NewHandler(db, logger)))
		r.Mount("/profile", profilefeature.Routes(profilefeature.NewHandler(db, auditLogger, logger)))
		r.Mount("/teams", teamsfeature.Routes(teamsfeature.NewHandler(db, auditLogger, logger)))
		r.Mount("/tasks", tasksfeature.Routes(tasksfeature.NewHandler(db, logger)))
		r.Mount("/meetings", meetingsfeature.Routes(meetingsfeature.NewHandler(db, logger)))
		r.Mount("/calendar", calendarfeature.Routes(calendarfeature.NewHandler(db, logger)))
		r.Mount("/evaluations", evaluationsfeature.Routes(evaluationsfeature.NewHandler(db, logger)))
	})

	// Admin panel
	r.Group(func(r chi.Router) {
		r.Use(sessionMgr.RequireSignedIn)
		r.Use(sessionMgr.RequireRole(models.RoleAdmin))

		r.Mount("/admin/users", adminusersfeature.Routes(adminusersfeature.NewHandler(db, auditLogger, logger)))
	})

	// JSON API. Auth is checked per-handler so unauthenticated callers get
	// 401 JSON instead of a login redirect.
	r.Mount("/api/v1", apifeature.Routes(apifeature.NewHandler(db, logger)))

	return r, nil
}
