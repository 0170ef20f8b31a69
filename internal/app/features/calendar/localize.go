// internal/app/features/calendar/localize.go
package calendar

import (
	"time"

	"github.com/dalemusser/teamhub/internal/app/system/schedule"
	"github.com/dalemusser/teamhub/internal/domain/models"
)

// localizeDay returns a copy of the day with meeting times and task
// deadlines converted to the viewer's zone. The aggregator buckets in the
// viewer's zone but hands back the stored UTC instants; the rendered clock
// times must agree with the zone the page claims.
func localizeDay(day schedule.CalendarDay, loc *time.Location) schedule.CalendarDay {
	out := day
	out.Meetings = make([]models.Meeting, len(day.Meetings))
	for i, m := range day.Meetings {
		m.StartTime = m.StartTime.In(loc)
		m.EndTime = m.EndTime.In(loc)
		out.Meetings[i] = m
	}
	out.Tasks = make([]models.Task, len(day.Tasks))
	for i, t := range day.Tasks {
		if t.Deadline != nil {
			d := t.Deadline.In(loc)
			t.Deadline = &d
		}
		out.Tasks[i] = t
	}
	return out
}

// localizeMonth applies localizeDay to every day of the month.
func localizeMonth(cm schedule.CalendarMonth, loc *time.Location) schedule.CalendarMonth {
	out := cm
	out.Days = make([]schedule.CalendarDay, len(cm.Days))
	for i, d := range cm.Days {
		out.Days[i] = localizeDay(d, loc)
	}
	return out
}
