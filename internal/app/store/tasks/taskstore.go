package taskstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/teamhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("tasks")}
}

var (
	errBadStatus   = errors.New(`task status must be "open"|"in_progress"|"completed"`)
	errBadPriority = errors.New(`task priority must be "low"|"medium"|"high"|"urgent"`)

	// ErrNoAssignee is returned when completing a task that has no assignee.
	ErrNoAssignee = errors.New("a task must have an assignee before it can be completed")
)

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Task, error) {
	var t models.Task
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		return models.Task{}, err
	}
	return t, nil
}

// Create inserts a new task after validating status and priority.
func (s *Store) Create(ctx context.Context, t models.Task) (models.Task, error) {
	now := time.Now().UTC()
	t.ID = primitive.NewObjectID()
	t.TitleCI = text.Fold(t.Title)
	if t.Status == "" {
		t.Status = models.TaskStatusOpen
	}
	if t.Priority == "" {
		t.Priority = models.TaskPriorityMedium
	}
	if !models.IsValidTaskStatus(t.Status) {
		return models.Task{}, errBadStatus
	}
	if !models.IsValidTaskPriority(t.Priority) {
		return models.Task{}, errBadPriority
	}

	// A fresh task is never completed.
	t.CompletedAt = nil
	if t.Status == models.TaskStatusCompleted {
		return models.Task{}, errBadStatus
	}

	t.CreatedAt = now
	t.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, t); err != nil {
		return models.Task{}, err
	}
	return t, nil
}

// Update holds the editable task fields.
type Update struct {
	Title       string
	Description string
	Priority    string
	Deadline    *time.Time
	AssigneeID  *primitive.ObjectID
}

// UpdateInfo updates a task's editable fields. Status transitions go through
// SetStatus so the completion timestamp stays consistent.
func (s *Store) UpdateInfo(ctx context.Context, id primitive.ObjectID, upd Update) error {
	if !models.IsValidTaskPriority(upd.Priority) {
		return errBadPriority
	}

	set := bson.M{
		"title":       upd.Title,
		"title_ci":    text.Fold(upd.Title),
		"description": upd.Description,
		"priority":    upd.Priority,
		"updated_at":  time.Now().UTC(),
	}
	unset := bson.M{}

	if upd.Deadline != nil {
		set["deadline"] = upd.Deadline.UTC()
	} else {
		unset["deadline"] = ""
	}
	if upd.AssigneeID != nil {
		set["assignee_id"] = *upd.AssigneeID
	} else {
		unset["assignee_id"] = ""
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	res, err := s.c.UpdateByID(ctx, id, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// SetStatus transitions the task to the given status, keeping the
// completed_at timestamp in lockstep: set when entering "completed",
// cleared when leaving it. Completing a task without an assignee returns
// ErrNoAssignee.
func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, stat string) (models.Task, error) {
	if !models.IsValidTaskStatus(stat) {
		return models.Task{}, errBadStatus
	}

	t, err := s.GetByID(ctx, id)
	if err != nil {
		return models.Task{}, err
	}

	update := bson.M{"$set": bson.M{
		"status":     stat,
		"updated_at": time.Now().UTC(),
	}}
	if stat == models.TaskStatusCompleted {
		if !t.CanBeCompleted() {
			return models.Task{}, ErrNoAssignee
		}
		update["$set"].(bson.M)["completed_at"] = time.Now().UTC()
	} else {
		update["$unset"] = bson.M{"completed_at": ""}
	}

	if _, err := s.c.UpdateByID(ctx, id, update); err != nil {
		return models.Task{}, err
	}
	return s.GetByID(ctx, id)
}

// Delete removes a task by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByTeam removes all tasks belonging to a team.
// Returns the number of documents deleted.
func (s *Store) DeleteByTeam(ctx context.Context, teamID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"team_id": teamID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ListByTeam returns a team's tasks, optionally filtered by status, sorted by
// deadline ascending with undated tasks last.
func (s *Store) ListByTeam(ctx context.Context, teamID primitive.ObjectID, stat string) ([]models.Task, error) {
	filter := bson.M{"team_id": teamID}
	if stat != "" {
		filter["status"] = stat
	}
	opts := options.Find().SetSort(bson.D{
		{Key: "deadline", Value: 1},
		{Key: "_id", Value: 1},
	})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var tasks []models.Task
	if err := cur.All(ctx, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListByAssignee returns tasks assigned to the user, optionally filtered by status.
func (s *Store) ListByAssignee(ctx context.Context, userID primitive.ObjectID, stat string) ([]models.Task, error) {
	filter := bson.M{"assignee_id": userID}
	if stat != "" {
		filter["status"] = stat
	}
	opts := options.Find().SetSort(bson.D{
		{Key: "deadline", Value: 1},
		{Key: "_id", Value: 1},
	})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var tasks []models.Task
	if err := cur.All(ctx, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// TasksForUserInRange returns tasks the user created or is assigned to whose
// deadline falls in [start, end). Feeds the calendar aggregator.
func (s *Store) TasksForUserInRange(ctx context.Context, userID primitive.ObjectID, start, end time.Time) ([]models.Task, error) {
	filter := bson.M{
		"$or": []bson.M{
			{"creator_id": userID},
			{"assignee_id": userID},
		},
		"deadline": bson.M{"$gte": start, "$lt": end},
	}
	opts := options.Find().SetSort(bson.D{
		{Key: "deadline", Value: 1},
		{Key: "_id", Value: 1},
	})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var tasks []models.Task
	if err := cur.All(ctx, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// CountByTeamAndStatus returns a map of status to task counts for a team.
func (s *Store) CountByTeamAndStatus(ctx context.Context, teamID primitive.ObjectID) (map[string]int, error) {
	result := make(map[string]int)

	cur, err := s.c.Aggregate(ctx, []bson.M{
		{"$match": bson.M{"team_id": teamID}},
		{"$group": bson.M{"_id": "$status", "n": bson.M{"$sum": 1}}},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var row struct {
			ID string `bson:"_id"`
			N  int    `bson:"n"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		result[row.ID] = row.N
	}
	return result, nil
}

// CountOverdueForUser counts the user's assigned tasks that are past their
// deadline and not completed.
func (s *Store) CountOverdueForUser(ctx context.Context, userID primitive.ObjectID, now time.Time) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{
		"assignee_id": userID,
		"status":      bson.M{"$ne": models.TaskStatusCompleted},
		"deadline":    bson.M{"$lt": now},
	})
}
