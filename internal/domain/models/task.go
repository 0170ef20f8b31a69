// internal/domain/models/task.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Task status values.
const (
	TaskStatusOpen       = "open"
	TaskStatusInProgress = "in_progress"
	TaskStatusCompleted  = "completed"
)

// Task priority values.
const (
	TaskPriorityLow    = "low"
	TaskPriorityMedium = "medium"
	TaskPriorityHigh   = "high"
	TaskPriorityUrgent = "urgent"
)

// AllTaskStatuses lists valid task statuses in workflow order.
var AllTaskStatuses = []string{TaskStatusOpen, TaskStatusInProgress, TaskStatusCompleted}

// AllTaskPriorities lists valid task priorities from lowest to highest.
var AllTaskPriorities = []string{TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityUrgent}

// IsValidTaskStatus checks if a value is a valid task status.
func IsValidTaskStatus(v string) bool {
	for _, s := range AllTaskStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// IsValidTaskPriority checks if a value is a valid task priority.
func IsValidTaskPriority(v string) bool {
	for _, p := range AllTaskPriorities {
		if p == v {
			return true
		}
	}
	return false
}

// Task is a unit of work inside a team.
//
// Invariant: CompletedAt is set if and only if Status is "completed".
// The task store enforces this on every status transition.
type Task struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	TitleCI     string             `bson:"title_ci" json:"title_ci"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Status      string             `bson:"status" json:"status"`
	Priority    string             `bson:"priority" json:"priority"`

	Deadline    *time.Time `bson:"deadline,omitempty" json:"deadline,omitempty"`
	CompletedAt *time.Time `bson:"completed_at,omitempty" json:"completed_at,omitempty"`

	CreatorID  primitive.ObjectID  `bson:"creator_id" json:"creator_id"`
	AssigneeID *primitive.ObjectID `bson:"assignee_id,omitempty" json:"assignee_id,omitempty"`
	TeamID     primitive.ObjectID  `bson:"team_id" json:"team_id"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// IsOverdue reports whether the task has a deadline in the past and is not
// yet completed.
func (t Task) IsOverdue(now time.Time) bool {
	if t.Deadline == nil || t.Status == TaskStatusCompleted {
		return false
	}
	return now.After(*t.Deadline)
}

// CanBeCompleted reports whether the task may transition to completed
// (it must have an assignee).
func (t Task) CanBeCompleted() bool {
	return t.AssigneeID != nil
}
