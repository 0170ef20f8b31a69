// Package schedule holds the scheduling computations shared by the meeting
// and calendar features: the interval-overlap rule used for double-booking
// detection, and the day/month projection of a user's tasks and meetings.
//
// Everything in this package is a pure read computation over data fetched
// from the stores. There is no locking, no caching, and no retry logic;
// store failures propagate unchanged to the caller.
package schedule

import (
	"errors"
	"fmt"
	"time"
)

// Overlaps reports whether the half-open intervals [s1, e1) and [s2, e2)
// overlap. Back-to-back intervals (e1 == s2 or e2 == s1) do not overlap.
//
// This is the one numerically exact rule in the system: two meetings
// conflict iff s1 < e2 AND e1 > s2.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && e1.After(s2)
}

// DayBounds returns the half-open window [start, next) covering the calendar
// day that contains t in the given location. A task deadline of
// 23:59:59.999999999 on day D and a meeting starting at 00:00:00 on day D+1
// fall on different days.
func DayBounds(t time.Time, loc *time.Location) (start, next time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	start = time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

// MonthBounds returns the half-open window [start, next) covering the given
// month in the given location, validating the year/month first. Malformed
// month arithmetic produces silently wrong results rather than a crash, so
// validation happens before any computation.
func MonthBounds(year, month int, loc *time.Location) (start, next time.Time, err error) {
	if loc == nil {
		loc = time.UTC
	}
	if month < 1 || month > 12 {
		return time.Time{}, time.Time{}, &ValidationError{
			Field: "month",
			Msg:   fmt.Sprintf("month must be between 1 and 12, got %d", month),
		}
	}
	if year < 1 || year > 9999 {
		return time.Time{}, time.Time{}, &ValidationError{
			Field: "year",
			Msg:   fmt.Sprintf("year must be between 1 and 9999, got %d", year),
		}
	}
	start = time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 1, 0), nil
}

// DaysInMonth returns the number of calendar days in the given month,
// accounting for leap years. The caller is responsible for passing a month
// in 1..12 (see MonthBounds).
func DaysInMonth(year, month int) int {
	// Day 0 of the next month is the last day of this month.
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ValidationError reports malformed caller input (bad month, bad year).
// Handlers surface it as a 4xx; everything else coming out of this package
// is an infrastructure failure from the underlying store.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string { return e.Msg }

// IsValidationError reports whether err is (or wraps) a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
