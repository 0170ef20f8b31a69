package evaluationstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/teamhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("evaluations")}
}

var (
	// ErrDuplicateEvaluation is returned when the evaluator has already rated
	// this task.
	ErrDuplicateEvaluation = errors.New("this task has already been evaluated by this evaluator")
	errBadScore            = errors.New("score must be between 1 and 5")
)

// Create inserts an evaluation after validating the score.
func (s *Store) Create(ctx context.Context, e models.Evaluation) (models.Evaluation, error) {
	if !models.IsValidEvaluationScore(e.Score) {
		return models.Evaluation{}, errBadScore
	}

	e.ID = primitive.NewObjectID()
	e.CreatedAt = time.Now().UTC()
	if _, err := s.c.InsertOne(ctx, e); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Evaluation{}, ErrDuplicateEvaluation
		}
		return models.Evaluation{}, err
	}
	return e, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Evaluation, error) {
	var e models.Evaluation
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&e); err != nil {
		return models.Evaluation{}, err
	}
	return e, nil
}

// ListByTask returns a task's evaluations, newest first.
func (s *Store) ListByTask(ctx context.Context, taskID primitive.ObjectID) ([]models.Evaluation, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "created_at", Value: -1},
		{Key: "_id", Value: -1},
	})
	cur, err := s.c.Find(ctx, bson.M{"task_id": taskID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var evals []models.Evaluation
	if err := cur.All(ctx, &evals); err != nil {
		return nil, err
	}
	return evals, nil
}

// ListByUser returns evaluations of the given user's work, newest first.
func (s *Store) ListByUser(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.Evaluation, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "created_at", Value: -1},
		{Key: "_id", Value: -1},
	})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var evals []models.Evaluation
	if err := cur.All(ctx, &evals); err != nil {
		return nil, err
	}
	return evals, nil
}

// AverageScoreForUser returns the mean score over a user's evaluations and
// the number of evaluations. A user with no evaluations yields (0, 0, nil).
func (s *Store) AverageScoreForUser(ctx context.Context, userID primitive.ObjectID) (float64, int64, error) {
	cur, err := s.c.Aggregate(ctx, []bson.M{
		{"$match": bson.M{"user_id": userID}},
		{"$group": bson.M{
			"_id": nil,
			"avg": bson.M{"$avg": "$score"},
			"n":   bson.M{"$sum": 1},
		}},
	})
	if err != nil {
		return 0, 0, err
	}
	defer cur.Close(ctx)

	if cur.Next(ctx) {
		var row struct {
			Avg float64 `bson:"avg"`
			N   int64   `bson:"n"`
		}
		if err := cur.Decode(&row); err != nil {
			return 0, 0, err
		}
		return row.Avg, row.N, nil
	}
	return 0, 0, cur.Err()
}

// Delete removes an evaluation by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByTask removes all evaluations for a task.
// Returns the number of documents deleted.
func (s *Store) DeleteByTask(ctx context.Context, taskID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"task_id": taskID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
