// internal/app/features/calendar/day.go
package calendar

import (
	"context"
	"net/http"
	"time"

	uierrors "github.com/dalemusser/teamhub/internal/app/features/errors"
	"github.com/dalemusser/teamhub/internal/app/system/authz"
	"github.com/dalemusser/teamhub/internal/app/system/schedule"
	"github.com/dalemusser/teamhub/internal/app/system/timeouts"
	"github.com/dalemusser/teamhub/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
)

// dateLayout is the HTML date input format.
const dateLayout = "2006-01-02"

// dayData is the view model for the day calendar page.
type dayData struct {
	viewdata.BaseVM

	Day      schedule.CalendarDay
	PrevDate string
	NextDate string
	Zone     string
}

// ServeDay renders one day of the signed-in user's tasks and meetings.
// GET /calendar/day?date=YYYY-MM-DD (defaults to today)
func (h *Handler) ServeDay(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	loc := h.userLocation(ctx, uid)

	date := time.Now().In(loc)
	if raw := query.Get(r, "date"); raw != "" {
		parsed, err := time.ParseInLocation(dateLayout, raw, loc)
		if err != nil {
			h.ErrLog.LogBadRequest(w, r, "calendar: bad date", err,
				"The date must look like 2026-01-31.", "/calendar")
			return
		}
		date = parsed
	}

	day, err := h.Aggregator.Day(ctx, uid, date, loc)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "calendar: day aggregation", err,
			"The calendar could not be loaded.", "/")
		return
	}

	data := dayData{
		BaseVM:   viewdata.NewBaseVM(r, day.Date.Format("Monday, Jan 2, 2006"), "/calendar"),
		Day:      localizeDay(day, loc),
		PrevDate: day.Date.AddDate(0, 0, -1).Format(dateLayout),
		NextDate: day.Date.AddDate(0, 0, 1).Format(dateLayout),
		Zone:     loc.String(),
	}

	templates.Render(w, r, "calendar_day", data)
}
