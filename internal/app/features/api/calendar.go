// internal/app/features/api/calendar.go
package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/dalemusser/teamhub/internal/app/system/schedule"
	"github.com/dalemusser/teamhub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
)

// dateLayout is the calendar query-string date format.
const dateLayout = "2006-01-02"

// ServeCalendarDay returns the caller's schedule for one day.
// GET /api/v1/calendar/day?date=YYYY-MM-DD
func (h *Handler) ServeCalendarDay(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	loc := h.userLocation(ctx, uid)

	date := time.Now().In(loc)
	if raw := query.Get(r, "date"); raw != "" {
		parsed, err := time.ParseInLocation(dateLayout, raw, loc)
		if err != nil {
			writeError(w, http.StatusBadRequest, "date must be formatted YYYY-MM-DD.")
			return
		}
		date = parsed
	}

	day, err := h.Aggregator.Day(ctx, uid, date, loc)
	if err != nil {
		h.serverError(w, r, "api: calendar day", err)
		return
	}

	writeJSON(w, http.StatusOK, day)
}

// ServeCalendarMonth returns the caller's schedule for one month.
// GET /api/v1/calendar/month?year=YYYY&month=M
func (h *Handler) ServeCalendarMonth(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	loc := h.userLocation(ctx, uid)
	now := time.Now().In(loc)

	year, month := now.Year(), int(now.Month())
	if raw := query.Get(r, "year"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "year must be a number.")
			return
		}
		year = v
	}
	if raw := query.Get(r, "month"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "month must be a number.")
			return
		}
		month = v
	}

	cal, err := h.Aggregator.Month(ctx, uid, year, month, loc)
	if err != nil {
		if schedule.IsValidationError(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.serverError(w, r, "api: calendar month", err)
		return
	}

	writeJSON(w, http.StatusOK, cal)
}
