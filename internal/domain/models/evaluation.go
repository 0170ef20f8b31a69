// internal/domain/models/evaluation.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Evaluation score bounds.
const (
	MinEvaluationScore = 1
	MaxEvaluationScore = 5
)

// Evaluation is a manager's rating of a completed task. Exactly one
// evaluation per (task_id, evaluator_id); UserID is the rated assignee.
type Evaluation struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TaskID      primitive.ObjectID `bson:"task_id" json:"task_id"`
	EvaluatorID primitive.ObjectID `bson:"evaluator_id" json:"evaluator_id"`
	UserID      primitive.ObjectID `bson:"user_id" json:"user_id"`
	Score       int                `bson:"score" json:"score"`
	Comment     string             `bson:"comment,omitempty" json:"comment,omitempty"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}

// IsValidEvaluationScore checks if a score is within the allowed range.
func IsValidEvaluationScore(score int) bool {
	return score >= MinEvaluationScore && score <= MaxEvaluationScore
}
