// internal/app/system/schedule/calendar.go
package schedule

import (
	"context"
	"sort"
	"time"

	"github.com/dalemusser/teamhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TaskSource supplies a user's tasks (creator or assignee) whose deadline
// falls in [start, end). Implemented by the usercalendar query package with
// a single $or range query.
type TaskSource interface {
	TasksForUserInRange(ctx context.Context, userID primitive.ObjectID, start, end time.Time) ([]models.Task, error)
}

// MeetingRangeSource supplies a user's meetings (creator or participant)
// whose start time falls in [start, end).
type MeetingRangeSource interface {
	MeetingsForUserInRange(ctx context.Context, userID primitive.ObjectID, start, end time.Time) ([]models.Meeting, error)
}

// CalendarDay is one day's projection of a user's tasks (by deadline) and
// meetings (by start time). Derived, never persisted.
type CalendarDay struct {
	Date     time.Time        `json:"date"`
	Tasks    []models.Task    `json:"tasks"`
	Meetings []models.Meeting `json:"meetings"`
}

// CalendarMonth is an ordered sequence of CalendarDay covering every day of
// the month, from day 1 through the last day inclusive. Days with no items
// are present with empty lists.
type CalendarMonth struct {
	Year  int           `json:"year"`
	Month int           `json:"month"`
	Days  []CalendarDay `json:"days"`
}

// Aggregator projects a user's tasks and meetings onto calendar buckets.
// Both entry points fetch once per requested range and partition in memory;
// month aggregation never issues one query per day.
type Aggregator struct {
	Tasks    TaskSource
	Meetings MeetingRangeSource
}

// NewAggregator constructs an Aggregator over the given sources.
func NewAggregator(tasks TaskSource, meetings MeetingRangeSource) *Aggregator {
	return &Aggregator{Tasks: tasks, Meetings: meetings}
}

// Day returns the calendar projection for the day containing date in loc.
// Tasks are ordered by deadline ascending, meetings by start time ascending.
func (a *Aggregator) Day(ctx context.Context, userID primitive.ObjectID, date time.Time, loc *time.Location) (CalendarDay, error) {
	if loc == nil {
		loc = time.UTC
	}
	start, next := DayBounds(date, loc)

	tasks, err := a.Tasks.TasksForUserInRange(ctx, userID, start, next)
	if err != nil {
		return CalendarDay{}, err
	}
	meetings, err := a.Meetings.MeetingsForUserInRange(ctx, userID, start, next)
	if err != nil {
		return CalendarDay{}, err
	}

	day := CalendarDay{
		Date:     start,
		Tasks:    make([]models.Task, 0, len(tasks)),
		Meetings: make([]models.Meeting, 0, len(meetings)),
	}
	day.Tasks = append(day.Tasks, tasks...)
	day.Meetings = append(day.Meetings, meetings...)
	sortDay(&day)
	return day, nil
}

// Month returns one CalendarDay per calendar date of (year, month) in loc,
// in ascending date order. It validates year/month before any computation,
// fetches the whole month's tasks and meetings in one pass each, and
// partitions them into per-day buckets in memory.
func (a *Aggregator) Month(ctx context.Context, userID primitive.ObjectID, year, month int, loc *time.Location) (CalendarMonth, error) {
	if loc == nil {
		loc = time.UTC
	}
	start, next, err := MonthBounds(year, month, loc)
	if err != nil {
		return CalendarMonth{}, err
	}

	tasks, err := a.Tasks.TasksForUserInRange(ctx, userID, start, next)
	if err != nil {
		return CalendarMonth{}, err
	}
	meetings, err := a.Meetings.MeetingsForUserInRange(ctx, userID, start, next)
	if err != nil {
		return CalendarMonth{}, err
	}

	numDays := DaysInMonth(year, month)
	out := CalendarMonth{
		Year:  year,
		Month: month,
		Days:  make([]CalendarDay, numDays),
	}
	for i := range out.Days {
		out.Days[i] = CalendarDay{
			Date:     start.AddDate(0, 0, i),
			Tasks:    make([]models.Task, 0),
			Meetings: make([]models.Meeting, 0),
		}
	}

	// Each item lands in exactly one bucket: the day its timestamp falls on
	// in loc. Sources only return items inside [start, next), but bounds are
	// re-checked so a loose source cannot index out of range.
	for _, t := range tasks {
		if t.Deadline == nil {
			continue
		}
		if i, ok := dayIndex(*t.Deadline, start, next, loc); ok {
			out.Days[i].Tasks = append(out.Days[i].Tasks, t)
		}
	}
	for _, m := range meetings {
		if i, ok := dayIndex(m.StartTime, start, next, loc); ok {
			out.Days[i].Meetings = append(out.Days[i].Meetings, m)
		}
	}

	for i := range out.Days {
		sortDay(&out.Days[i])
	}
	return out, nil
}

// dayIndex maps a timestamp to its zero-based day-of-month bucket within the
// half-open month window [start, next).
func dayIndex(ts time.Time, start, next time.Time, loc *time.Location) (int, bool) {
	if ts.Before(start) || !ts.Before(next) {
		return 0, false
	}
	return ts.In(loc).Day() - 1, true
}

// sortDay orders a day's tasks by deadline and meetings by start time,
// ascending. Stable so items sharing a timestamp keep store order.
func sortDay(day *CalendarDay) {
	sort.SliceStable(day.Tasks, func(i, j int) bool {
		ti, tj := day.Tasks[i].Deadline, day.Tasks[j].Deadline
		if ti == nil || tj == nil {
			return tj == nil && ti != nil
		}
		return ti.Before(*tj)
	})
	sort.SliceStable(day.Meetings, func(i, j int) bool {
		return day.Meetings[i].StartTime.Before(day.Meetings[j].StartTime)
	})
}
