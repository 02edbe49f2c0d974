// internal/workflow/status.go
package workflow

import (
	"time"

	"github.com/taskhub/taskhub/internal/apperr"
	"github.com/taskhub/taskhub/internal/models"
)

// transitions is the fixed edge set of the task status machine. Terminal
// states have no entry. A status is never a member of its own outgoing set,
// so requesting the current status is rejected like any other invalid edge.
var transitions = map[models.TaskStatus][]models.TaskStatus{
	models.TaskStatusTodo:       {models.TaskStatusInProgress, models.TaskStatusCancelled},
	models.TaskStatusInProgress: {models.TaskStatusInReview, models.TaskStatusTodo, models.TaskStatusCancelled},
	models.TaskStatusInReview:   {models.TaskStatusDone, models.TaskStatusInProgress, models.TaskStatusCancelled},
}

// CanTransition reports whether the edge from -> to exists.
func CanTransition(from, to models.TaskStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status has an empty outgoing edge set.
func IsTerminal(s models.TaskStatus) bool {
	return len(transitions[s]) == 0
}

// NextStatuses returns the outgoing edge set of a status. The result is a
// copy; callers may not mutate the table.
func NextStatuses(from models.TaskStatus) []models.TaskStatus {
	out := transitions[from]
	next := make([]models.TaskStatus, len(out))
	copy(next, out)
	return next
}

// Transition applies a status change to the task. On an invalid edge the task
// is left untouched and an InvalidTransition error is returned; the status is
// never coerced to a nearby valid state. On success only Status and UpdatedAt
// change.
func Transition(t *models.Task, requested models.TaskStatus) error {
	if !requested.Valid() {
		return apperr.Newf(apperr.KindInvalidTransition, "unknown status %q", requested)
	}
	if !CanTransition(t.Status, requested) {
		return apperr.Newf(apperr.KindInvalidTransition,
			"cannot transition task from %s to %s", t.Status, requested)
	}
	t.Status = requested
	t.UpdatedAt = time.Now()
	return nil
}
