package calendar

import (
	"testing"
	"time"

	"github.com/dalemusser/teamhub/internal/app/system/schedule"
	"github.com/dalemusser/teamhub/internal/domain/models"
)

func TestLocalizeDay_MeetingClockTimesInViewerZone(t *testing.T) {
	chicago, err := time.LoadLocation("America/Chicago")
	if err != nil {
		t.Fatalf("load zone: %v", err)
	}

	// 22:00 on June 1 in Chicago is stored as 03:00 UTC on June 2.
	day := schedule.CalendarDay{
		Date: time.Date(2026, 6, 1, 0, 0, 0, 0, chicago),
		Meetings: []models.Meeting{{
			Title:     "Late sync",
			StartTime: time.Date(2026, 6, 2, 3, 0, 0, 0, time.UTC),
			EndTime:   time.Date(2026, 6, 2, 4, 0, 0, 0, time.UTC),
		}},
	}

	got := localizeDay(day, chicago)

	if got.Meetings[0].StartTime.Format("15:04") != "22:00" {
		t.Errorf("start = %s, want 22:00", got.Meetings[0].StartTime.Format("15:04"))
	}
	if got.Meetings[0].EndTime.Format("15:04") != "23:00" {
		t.Errorf("end = %s, want 23:00", got.Meetings[0].EndTime.Format("15:04"))
	}
	if !got.Meetings[0].StartTime.Equal(day.Meetings[0].StartTime) {
		t.Error("localizing must not change the instant")
	}
	// The source slice stays in UTC.
	if day.Meetings[0].StartTime.Location() != time.UTC {
		t.Error("localizeDay must not mutate its input")
	}
}

func TestLocalizeDay_TaskDeadlines(t *testing.T) {
	chicago, err := time.LoadLocation("America/Chicago")
	if err != nil {
		t.Fatalf("load zone: %v", err)
	}

	deadline := time.Date(2026, 6, 2, 2, 30, 0, 0, time.UTC)
	day := schedule.CalendarDay{
		Date:  time.Date(2026, 6, 1, 0, 0, 0, 0, chicago),
		Tasks: []models.Task{{Title: "Report"}, {Title: "Review", Deadline: &deadline}},
	}

	got := localizeDay(day, chicago)

	if got.Tasks[0].Deadline != nil {
		t.Error("nil deadline must stay nil")
	}
	if got.Tasks[1].Deadline.Format("15:04") != "21:30" {
		t.Errorf("deadline = %s, want 21:30", got.Tasks[1].Deadline.Format("15:04"))
	}
	if deadline.Location() != time.UTC {
		t.Error("localizeDay must not mutate the source deadline")
	}
}

func TestLocalizeMonth_CoversEveryDay(t *testing.T) {
	chicago, err := time.LoadLocation("America/Chicago")
	if err != nil {
		t.Fatalf("load zone: %v", err)
	}

	cm := schedule.CalendarMonth{
		Year:  2026,
		Month: 6,
		Days: []schedule.CalendarDay{
			{Meetings: []models.Meeting{{StartTime: time.Date(2026, 6, 2, 3, 0, 0, 0, time.UTC)}}},
			{},
		},
	}

	got := localizeMonth(cm, chicago)

	if len(got.Days) != 2 {
		t.Fatalf("days = %d, want 2", len(got.Days))
	}
	if got.Days[0].Meetings[0].StartTime.Format("15:04") != "22:00" {
		t.Errorf("start = %s, want 22:00", got.Days[0].Meetings[0].StartTime.Format("15:04"))
	}
}
