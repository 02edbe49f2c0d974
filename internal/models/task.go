// internal/models/task.go
package models

import (
	"time"

	"github.com/lib/pq"
)

// TaskStatus is the closed set of lifecycle states. The valid transitions
// between them live in the workflow package.
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusInReview   TaskStatus = "in_review"
	TaskStatusDone       TaskStatus = "done"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

// Valid reports whether the status is one of the known values.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusInReview, TaskStatusDone, TaskStatusCancelled:
		return true
	}
	return false
}

// Priority constants
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

type Task struct {
	ID          string         `db:"id" json:"id"`
	Title       string         `db:"title" json:"title"`
	Description string         `db:"description" json:"description"`
	Status      TaskStatus     `db:"status" json:"status"`
	Priority    Priority       `db:"priority" json:"priority"`
	CreatorID   string         `db:"creator_id" json:"creator_id"`
	AssigneeID  *string        `db:"assignee_id" json:"assignee_id,omitempty"`
	DueDate     *time.Time     `db:"due_date" json:"due_date,omitempty"`
	Tags        pq.StringArray `db:"tags" json:"tags"`
	Version     int64          `db:"version" json:"version"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

// AssignedTo reports whether the task is assigned to the given user.
func (t *Task) AssignedTo(userID string) bool {
	return t.AssigneeID != nil && *t.AssigneeID == userID
}
