package schedule_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dalemusser/teamhub/internal/app/system/schedule"
	"github.com/dalemusser/teamhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeCalendarSource implements both TaskSource and MeetingRangeSource over
// in-memory data, applying the same predicates the usercalendar queries use:
// creator-or-assignee with deadline in range for tasks, creator-or-participant
// with start time in range for meetings. It counts fetches so tests can
// assert month aggregation runs a single range query per entity.
type fakeCalendarSource struct {
	tasks    []models.Task
	meetings []models.Meeting

	taskErr    error
	meetingErr error

	taskCalls    int
	meetingCalls int
}

func (f *fakeCalendarSource) TasksForUserInRange(_ context.Context, userID primitive.ObjectID, start, end time.Time) ([]models.Task, error) {
	f.taskCalls++
	if f.taskErr != nil {
		return nil, f.taskErr
	}
	var out []models.Task
	for _, t := range f.tasks {
		if t.Deadline == nil {
			continue
		}
		mine := t.CreatorID == userID || (t.AssigneeID != nil && *t.AssigneeID == userID)
		if mine && !t.Deadline.Before(start) && t.Deadline.Before(end) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeCalendarSource) MeetingsForUserInRange(_ context.Context, userID primitive.ObjectID, start, end time.Time) ([]models.Meeting, error) {
	f.meetingCalls++
	if f.meetingErr != nil {
		return nil, f.meetingErr
	}
	var out []models.Meeting
	for _, m := range f.meetings {
		if m.Involves(userID) && !m.StartTime.Before(start) && m.StartTime.Before(end) {
			out = append(out, m)
		}
	}
	return out, nil
}

func taskDue(creator primitive.ObjectID, due time.Time) models.Task {
	return models.Task{
		ID:        primitive.NewObjectID(),
		Title:     "task",
		Status:    models.TaskStatusOpen,
		Priority:  models.TaskPriorityMedium,
		Deadline:  &due,
		CreatorID: creator,
	}
}

func userMeeting(user primitive.ObjectID, start, end time.Time) models.Meeting {
	return models.Meeting{
		ID:             primitive.NewObjectID(),
		Title:          "meeting",
		StartTime:      start,
		EndTime:        end,
		ParticipantIDs: []primitive.ObjectID{user},
	}
}

func TestAggregatorDay_SelectsAndOrders(t *testing.T) {
	user := primitive.NewObjectID()
	other := primitive.NewObjectID()

	d15 := func(h, m int) time.Time { return time.Date(2024, 3, 15, h, m, 0, 0, time.UTC) }

	lateTask := taskDue(user, d15(17, 0))
	earlyTask := taskDue(user, d15(9, 0))
	otherDayTask := taskDue(user, time.Date(2024, 3, 16, 9, 0, 0, 0, time.UTC))
	notMine := taskDue(other, d15(10, 0))

	lateMeeting := userMeeting(user, d15(15, 0), d15(16, 0))
	earlyMeeting := userMeeting(user, d15(8, 0), d15(9, 0))
	notInvited := userMeeting(other, d15(11, 0), d15(12, 0))

	src := &fakeCalendarSource{
		tasks:    []models.Task{lateTask, earlyTask, otherDayTask, notMine},
		meetings: []models.Meeting{lateMeeting, earlyMeeting, notInvited},
	}
	agg := schedule.NewAggregator(src, src)

	day, err := agg.Day(context.Background(), user, d15(0, 0), time.UTC)
	if err != nil {
		t.Fatalf("Day: %v", err)
	}

	if len(day.Tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(day.Tasks))
	}
	if day.Tasks[0].ID != earlyTask.ID || day.Tasks[1].ID != lateTask.ID {
		t.Error("tasks must be ordered by deadline ascending")
	}
	if len(day.Meetings) != 2 {
		t.Fatalf("expected 2 meetings, got %d", len(day.Meetings))
	}
	if day.Meetings[0].ID != earlyMeeting.ID || day.Meetings[1].ID != lateMeeting.ID {
		t.Error("meetings must be ordered by start time ascending")
	}
}

func TestAggregatorDay_AssigneeCounts(t *testing.T) {
	user := primitive.NewObjectID()
	creator := primitive.NewObjectID()

	due := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	assigned := models.Task{
		ID:         primitive.NewObjectID(),
		Title:      "assigned to me",
		Status:     models.TaskStatusOpen,
		Priority:   models.TaskPriorityHigh,
		Deadline:   &due,
		CreatorID:  creator,
		AssigneeID: &user,
	}

	src := &fakeCalendarSource{tasks: []models.Task{assigned}}
	agg := schedule.NewAggregator(src, src)

	day, err := agg.Day(context.Background(), user, due, time.UTC)
	if err != nil {
		t.Fatalf("Day: %v", err)
	}
	if len(day.Tasks) != 1 {
		t.Errorf("tasks assigned to the user must be selected, got %d", len(day.Tasks))
	}
}

func TestAggregatorMonth_LeapYear(t *testing.T) {
	user := primitive.NewObjectID()
	src := &fakeCalendarSource{}
	agg := schedule.NewAggregator(src, src)

	leap, err := agg.Month(context.Background(), user, 2024, 2, time.UTC)
	if err != nil {
		t.Fatalf("Month(2024, 2): %v", err)
	}
	if len(leap.Days) != 29 {
		t.Errorf("February 2024 should have 29 days, got %d", len(leap.Days))
	}

	plain, err := agg.Month(context.Background(), user, 2023, 2, time.UTC)
	if err != nil {
		t.Fatalf("Month(2023, 2): %v", err)
	}
	if len(plain.Days) != 28 {
		t.Errorf("February 2023 should have 28 days, got %d", len(plain.Days))
	}
}

func TestAggregatorMonth_DaysAscendingFromFirst(t *testing.T) {
	user := primitive.NewObjectID()
	src := &fakeCalendarSource{}
	agg := schedule.NewAggregator(src, src)

	month, err := agg.Month(context.Background(), user, 2024, 4, time.UTC)
	if err != nil {
		t.Fatalf("Month: %v", err)
	}
	if len(month.Days) != 30 {
		t.Fatalf("April has 30 days, got %d", len(month.Days))
	}
	for i, day := range month.Days {
		want := time.Date(2024, 4, 1+i, 0, 0, 0, 0, time.UTC)
		if !day.Date.Equal(want) {
			t.Fatalf("day %d: date = %v, want %v", i, day.Date, want)
		}
		if day.Tasks == nil || day.Meetings == nil {
			t.Fatalf("day %d: empty days must carry empty lists, not nil", i)
		}
	}
}

func TestAggregatorMonth_SingleFetchPerEntity(t *testing.T) {
	user := primitive.NewObjectID()
	src := &fakeCalendarSource{}
	agg := schedule.NewAggregator(src, src)

	if _, err := agg.Month(context.Background(), user, 2024, 1, time.UTC); err != nil {
		t.Fatalf("Month: %v", err)
	}
	if src.taskCalls != 1 {
		t.Errorf("month aggregation must fetch tasks once, got %d fetches", src.taskCalls)
	}
	if src.meetingCalls != 1 {
		t.Errorf("month aggregation must fetch meetings once, got %d fetches", src.meetingCalls)
	}
}

func TestAggregatorMonth_EachItemInExactlyOneBucket(t *testing.T) {
	user := primitive.NewObjectID()

	// Deadline at the last representable instant of March 15 and a meeting
	// at midnight of March 16 must land in different buckets.
	endOfDay15 := time.Date(2024, 3, 15, 23, 59, 59, 999999999, time.UTC)
	startOfDay16 := time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC)

	task := taskDue(user, endOfDay15)
	meeting := userMeeting(user, startOfDay16, startOfDay16.Add(time.Hour))

	src := &fakeCalendarSource{
		tasks:    []models.Task{task},
		meetings: []models.Meeting{meeting},
	}
	agg := schedule.NewAggregator(src, src)

	month, err := agg.Month(context.Background(), user, 2024, 3, time.UTC)
	if err != nil {
		t.Fatalf("Month: %v", err)
	}

	taskBuckets, meetingBuckets := 0, 0
	for _, day := range month.Days {
		taskBuckets += len(day.Tasks)
		meetingBuckets += len(day.Meetings)
	}
	if taskBuckets != 1 || meetingBuckets != 1 {
		t.Fatalf("each item must appear exactly once: tasks %d, meetings %d", taskBuckets, meetingBuckets)
	}

	if len(month.Days[14].Tasks) != 1 {
		t.Error("end-of-day deadline must bucket on March 15")
	}
	if len(month.Days[15].Meetings) != 1 {
		t.Error("midnight meeting must bucket on March 16")
	}
}

func TestAggregatorMonth_ConsistentWithDay(t *testing.T) {
	user := primitive.NewObjectID()

	var tasks []models.Task
	var meetings []models.Meeting
	for d := 1; d <= 28; d += 3 {
		due := time.Date(2024, 2, d, 10+d%8, 0, 0, 0, time.UTC)
		tasks = append(tasks, taskDue(user, due))
		meetings = append(meetings, userMeeting(user, due.Add(time.Hour), due.Add(2*time.Hour)))
	}

	src := &fakeCalendarSource{tasks: tasks, meetings: meetings}
	agg := schedule.NewAggregator(src, src)

	month, err := agg.Month(context.Background(), user, 2024, 2, time.UTC)
	if err != nil {
		t.Fatalf("Month: %v", err)
	}

	for d := 1; d <= 29; d++ {
		date := time.Date(2024, 2, d, 0, 0, 0, 0, time.UTC)
		day, err := agg.Day(context.Background(), user, date, time.UTC)
		if err != nil {
			t.Fatalf("Day(%d): %v", d, err)
		}
		bucket := month.Days[d-1]
		if len(bucket.Tasks) != len(day.Tasks) || len(bucket.Meetings) != len(day.Meetings) {
			t.Fatalf("day %d: month bucket (%d tasks, %d meetings) != Day (%d tasks, %d meetings)",
				d, len(bucket.Tasks), len(bucket.Meetings), len(day.Tasks), len(day.Meetings))
		}
		for i := range bucket.Tasks {
			if bucket.Tasks[i].ID != day.Tasks[i].ID {
				t.Fatalf("day %d: task %d differs between Month and Day", d, i)
			}
		}
		for i := range bucket.Meetings {
			if bucket.Meetings[i].ID != day.Meetings[i].ID {
				t.Fatalf("day %d: meeting %d differs between Month and Day", d, i)
			}
		}
	}
}

func TestAggregatorMonth_InvalidInputFailsFast(t *testing.T) {
	user := primitive.NewObjectID()
	src := &fakeCalendarSource{}
	agg := schedule.NewAggregator(src, src)

	for _, month := range []int{0, 13, -1} {
		_, err := agg.Month(context.Background(), user, 2024, month, time.UTC)
		if err == nil {
			t.Fatalf("Month(2024, %d): expected error", month)
		}
		if !schedule.IsValidationError(err) {
			t.Errorf("Month(2024, %d): expected validation error, got %T", month, err)
		}
	}
	if src.taskCalls != 0 || src.meetingCalls != 0 {
		t.Error("invalid input must fail before any store access")
	}
}

func TestAggregator_StoreErrorPropagates(t *testing.T) {
	user := primitive.NewObjectID()
	wantErr := errors.New("connection reset")

	src := &fakeCalendarSource{taskErr: wantErr}
	agg := schedule.NewAggregator(src, src)

	if _, err := agg.Day(context.Background(), user, time.Now(), time.UTC); !errors.Is(err, wantErr) {
		t.Errorf("Day: expected store error to propagate, got %v", err)
	}
	if _, err := agg.Month(context.Background(), user, 2024, 5, time.UTC); !errors.Is(err, wantErr) {
		t.Errorf("Month: expected store error to propagate, got %v", err)
	}
}

func TestAggregatorDay_TimeZoneBoundaries(t *testing.T) {
	user := primitive.NewObjectID()
	chicago, err := time.LoadLocation("America/Chicago")
	if err != nil {
		t.Fatalf("LoadLocation: %v", err)
	}

	// 03:00 UTC on March 16 is 22:00 on March 15 in Chicago (CDT, UTC-5).
	lateEvening := userMeeting(user,
		time.Date(2024, 3, 16, 3, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 16, 4, 0, 0, 0, time.UTC))

	src := &fakeCalendarSource{meetings: []models.Meeting{lateEvening}}
	agg := schedule.NewAggregator(src, src)

	day, err := agg.Day(context.Background(), user, time.Date(2024, 3, 15, 12, 0, 0, 0, chicago), chicago)
	if err != nil {
		t.Fatalf("Day: %v", err)
	}
	if len(day.Meetings) != 1 {
		t.Errorf("meeting at 22:00 local time must bucket on the local day, got %d meetings", len(day.Meetings))
	}
}
