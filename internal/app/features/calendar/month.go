// internal/app/features/calendar/month.go
package calendar

import (
	"context"
	"net/http"
	"strconv"
	"time"

	uierrors "github.com/dalemusser/teamhub/internal/app/features/errors"
	"github.com/dalemusser/teamhub/internal/app/system/authz"
	"github.com/dalemusser/teamhub/internal/app/system/schedule"
	"github.com/dalemusser/teamhub/internal/app/system/timeouts"
	"github.com/dalemusser/teamhub/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
)

// monthData is the view model for the month calendar page.
type monthData struct {
	viewdata.BaseVM

	Month     schedule.CalendarMonth
	MonthName string
	PrevYear  int
	PrevMonth int
	NextYear  int
	NextMonth int
	Zone      string
}

// ServeMonth renders one month of the signed-in user's tasks and meetings,
// one bucket per calendar day.
// GET /calendar/month?year=YYYY&month=M (defaults to the current month)
func (h *Handler) ServeMonth(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	loc := h.userLocation(ctx, uid)
	now := time.Now().In(loc)

	year, month := now.Year(), int(now.Month())
	if raw := query.Get(r, "year"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			h.ErrLog.LogBadRequest(w, r, "calendar: bad year", err,
				"The year must be a number.", "/calendar")
			return
		}
		year = v
	}
	if raw := query.Get(r, "month"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			h.ErrLog.LogBadRequest(w, r, "calendar: bad month", err,
				"The month must be a number.", "/calendar")
			return
		}
		month = v
	}

	cm, err := h.Aggregator.Month(ctx, uid, year, month, loc)
	if err != nil {
		if schedule.IsValidationError(err) {
			h.ErrLog.LogBadRequest(w, r, "calendar: invalid month", err,
				err.Error(), "/calendar")
			return
		}
		h.ErrLog.LogServerError(w, r, "calendar: month aggregation", err,
			"The calendar could not be loaded.", "/")
		return
	}

	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	prev := first.AddDate(0, -1, 0)
	next := first.AddDate(0, 1, 0)

	data := monthData{
		BaseVM:    viewdata.NewBaseVM(r, first.Format("January 2006"), "/"),
		Month:     localizeMonth(cm, loc),
		MonthName: first.Format("January 2006"),
		PrevYear:  prev.Year(),
		PrevMonth: int(prev.Month()),
		NextYear:  next.Year(),
		NextMonth: int(next.Month()),
		Zone:      loc.String(),
	}

	templates.Render(w, r, "calendar_month", data)
}
