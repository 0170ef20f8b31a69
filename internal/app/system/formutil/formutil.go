// Package formutil provides helpers for form re-rendering with validation errors.
//
// When a form submission fails validation, the form is re-rendered with the
// user's previously entered values echoed back, an error message, and the
// context data the form needs (dropdowns, etc.). Embed Base in a form data
// struct and populate it with SetBase:
//
//	type newTaskData struct {
//		formutil.Base
//		Title    string
//		Deadline string
//		Members  []memberOption
//	}
//
//	data := newTaskData{Title: title, Deadline: deadline}
//	formutil.SetBase(&data.Base, r, "New Task", "/tasks")
//	data.SetError("Title is required.")
//	templates.Render(w, r, "task_new", data)
package formutil

import (
	"html/template"
	"net/http"

	"github.com/dalemusser/teamhub/internal/app/system/authz"
	"github.com/dalemusser/waffle/pantry/httpnav"
)

// Base contains common fields for form pages, embedded in form data structs.
type Base struct {
	Title       string
	IsLoggedIn  bool
	Role        string
	UserName    string
	BackURL     string
	CurrentPath string
	Error       template.HTML
}

// SetBase populates the common Base fields from the request context. It
// extracts user info from authz.UserCtx and sets navigation fields;
// backDefault is used when the request carries no return URL.
func SetBase(b *Base, r *http.Request, title, backDefault string) {
	role, uname, _, _ := authz.UserCtx(r)
	b.Title = title
	b.IsLoggedIn = true
	b.Role = role
	b.UserName = uname
	b.BackURL = httpnav.ResolveBackURL(r, backDefault)
	b.CurrentPath = httpnav.CurrentPath(r)
}

// SetError sets the error message shown above the form.
func (b *Base) SetError(msg string) {
	b.Error = template.HTML(msg)
}
