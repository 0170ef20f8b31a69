// internal/app/features/errors/errlog.go
package errors

import (
	"fmt"
	"html"
	"net/http"

	"github.com/dalemusser/teamhub/internal/app/system/auth"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// ErrorLogger logs handler failures and renders a user-facing error
// response in one step. The log message and underlying error go to zap;
// the user only ever sees userMsg.
type ErrorLogger struct {
	log *zap.Logger
}

// NewErrorLogger constructs an ErrorLogger on the given zap logger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{log: logger}
}

// LogServerError logs at error level and renders a 500-class error page.
func (el *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	el.log.Error(logMsg, zap.Error(err), zap.String("path", r.URL.Path))
	el.renderErrorPage(w, r, http.StatusInternalServerError, "Something went wrong", userMsg, backURL)
}

// LogBadRequest logs at warn level and renders a 400 error page.
func (el *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	el.log.Warn(logMsg, zap.Error(err), zap.String("path", r.URL.Path))
	el.renderErrorPage(w, r, http.StatusBadRequest, "Invalid request", userMsg, backURL)
}

// LogForbidden logs at warn level and renders a 403 error page.
func (el *ErrorLogger) LogForbidden(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	el.log.Warn(logMsg, zap.Error(err), zap.String("path", r.URL.Path))
	el.renderErrorPage(w, r, http.StatusForbidden, "Access denied", userMsg, backURL)
}

// HTMXLogServerError logs at error level and returns an inline error
// fragment suitable for an HTMX swap target.
func (el *ErrorLogger) HTMXLogServerError(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	el.log.Error(logMsg, zap.Error(err), zap.String("path", r.URL.Path))
	el.renderSnippet(w, http.StatusInternalServerError, userMsg)
}

// HTMXLogBadRequest logs at warn level and returns an inline error fragment.
func (el *ErrorLogger) HTMXLogBadRequest(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	el.log.Warn(logMsg, zap.Error(err), zap.String("path", r.URL.Path))
	el.renderSnippet(w, http.StatusBadRequest, userMsg)
}

// HTMXLogForbidden logs at warn level and returns an inline error fragment.
func (el *ErrorLogger) HTMXLogForbidden(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	el.log.Warn(logMsg, zap.Error(err), zap.String("path", r.URL.Path))
	el.renderSnippet(w, http.StatusForbidden, userMsg)
}

func (el *ErrorLogger) renderErrorPage(w http.ResponseWriter, r *http.Request, status int, title, userMsg, backURL string) {
	u, signed := auth.CurrentUser(r)
	role, name := "", ""
	if signed && u != nil {
		role, name = u.Role, u.Name
	}
	if backURL == "" {
		backURL = "/"
	}

	w.WriteHeader(status)
	templates.Render(w, r, "error_page", pageData{
		Title:      title,
		IsLoggedIn: signed,
		Role:       role,
		UserName:   name,
		Message:    userMsg,
		BackURL:    backURL,
	})
}

func (el *ErrorLogger) renderSnippet(w http.ResponseWriter, status int, userMsg string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprintf(w, `<div class="error-banner" role="alert">%s</div>`, html.EscapeString(userMsg))
}
