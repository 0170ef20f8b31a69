package commentstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/teamhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/teamhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("task_comments")}
}

// ErrEmptyBody is returned when a comment has no visible content after
// sanitization.
var ErrEmptyBody = errors.New("comment body is empty")

// Create sanitizes the body and inserts the comment.
func (s *Store) Create(ctx context.Context, c models.TaskComment) (models.TaskComment, error) {
	c.Body = htmlsanitize.Sanitize(c.Body)
	if strings.TrimSpace(htmlsanitize.StripAll(c.Body)) == "" {
		return models.TaskComment{}, ErrEmptyBody
	}

	c.ID = primitive.NewObjectID()
	c.CreatedAt = time.Now().UTC()
	if _, err := s.c.InsertOne(ctx, c); err != nil {
		return models.TaskComment{}, err
	}
	return c, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.TaskComment, error) {
	var c models.TaskComment
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return models.TaskComment{}, err
	}
	return c, nil
}

// ListByTask returns a task's comments oldest first.
func (s *Store) ListByTask(ctx context.Context, taskID primitive.ObjectID) ([]models.TaskComment, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "created_at", Value: 1},
		{Key: "_id", Value: 1},
	})
	cur, err := s.c.Find(ctx, bson.M{"task_id": taskID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var comments []models.TaskComment
	if err := cur.All(ctx, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// Delete removes a comment by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByTask removes all comments on a task.
// Returns the number of documents deleted.
func (s *Store) DeleteByTask(ctx context.Context, taskID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"task_id": taskID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// CountByTask returns the number of comments on a task.
func (s *Store) CountByTask(ctx context.Context, taskID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"task_id": taskID})
}
