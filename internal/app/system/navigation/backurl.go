// Package navigation provides helpers for safe URL navigation and redirects.
package navigation

import (
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/urlutil"
)

// BackURLOptions configures the behavior of SafeBackURL.
type BackURLOptions struct {
	// AllowedPrefix is the required URL prefix (e.g., "/teams", "/tasks").
	// If empty, any safe URL is allowed.
	AllowedPrefix string

	// ExcludedSubpaths are subpath patterns to reject (e.g., "/edit", "/delete").
	// These prevent redirect loops back to action pages.
	ExcludedSubpaths []string

	// Fallback is the default URL if no valid return URL is found.
	Fallback string

	// PreserveQueryParam is an optional query parameter to preserve in the
	// fallback URL (e.g. "team" keeps a team filter across redirects).
	PreserveQueryParam string
}

// SafeBackURL extracts and validates a return URL from the request.
//
// It checks both the query parameter and form value for "return", validates
// the URL is safe (not an open redirect), optionally validates the prefix,
// and excludes specified subpaths to prevent redirect loops.
func SafeBackURL(r *http.Request, opts BackURLOptions) string {
	ret := urlutil.SafeReturn(query.Get(r, "return"), "", "")
	if ret == "" {
		ret = urlutil.SafeReturn(strings.TrimSpace(r.FormValue("return")), "", "")
	}

	if ret != "" {
		valid := true

		if opts.AllowedPrefix != "" && !strings.HasPrefix(ret, opts.AllowedPrefix) {
			valid = false
		}
		for _, excluded := range opts.ExcludedSubpaths {
			if strings.Contains(ret, excluded) {
				valid = false
				break
			}
		}

		if valid {
			return ret
		}
	}

	fallback := opts.Fallback
	if opts.PreserveQueryParam != "" {
		param := query.Get(r, opts.PreserveQueryParam)
		if param == "" {
			param = strings.TrimSpace(r.FormValue(opts.PreserveQueryParam))
		}
		if param != "" && param != "all" {
			if strings.Contains(fallback, "?") {
				fallback += "&" + opts.PreserveQueryParam + "=" + param
			} else {
				fallback += "?" + opts.PreserveQueryParam + "=" + param
			}
		}
	}

	return fallback
}

// Common back URL configurations for reuse across features.
var (
	// TeamsBackURL returns options for team pages.
	TeamsBackURL = BackURLOptions{
		AllowedPrefix:    "/teams",
		ExcludedSubpaths: []string{"/edit", "/delete", "/new"},
		Fallback:         "/teams",
	}

	// TasksBackURL returns options for task pages.
	TasksBackURL = BackURLOptions{
		AllowedPrefix:      "/tasks",
		ExcludedSubpaths:   []string{"/edit", "/delete", "/new"},
		Fallback:           "/tasks",
		PreserveQueryParam: "team",
	}

	// MeetingsBackURL returns options for meeting pages.
	MeetingsBackURL = BackURLOptions{
		AllowedPrefix:      "/meetings",
		ExcludedSubpaths:   []string{"/edit", "/delete", "/new"},
		Fallback:           "/meetings",
		PreserveQueryParam: "team",
	}

	// CalendarBackURL returns options for calendar pages.
	CalendarBackURL = BackURLOptions{
		AllowedPrefix: "/calendar",
		Fallback:      "/calendar",
	}

	// AdminUsersBackURL returns options for the admin user pages.
	AdminUsersBackURL = BackURLOptions{
		AllowedPrefix:    "/admin/users",
		ExcludedSubpaths: []string{"/edit", "/delete", "/new"},
		Fallback:         "/admin/users",
	}
)
