// internal/workflow/status_test.go
package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhub/taskhub/internal/apperr"
	"github.com/taskhub/taskhub/internal/models"
)

var allStatuses = []models.TaskStatus{
	models.TaskStatusTodo,
	models.TaskStatusInProgress,
	models.TaskStatusInReview,
	models.TaskStatusDone,
	models.TaskStatusCancelled,
}

// validEdges mirrors the documented transition table.
var validEdges = map[models.TaskStatus][]models.TaskStatus{
	models.TaskStatusTodo:       {models.TaskStatusInProgress, models.TaskStatusCancelled},
	models.TaskStatusInProgress: {models.TaskStatusInReview, models.TaskStatusTodo, models.TaskStatusCancelled},
	models.TaskStatusInReview:   {models.TaskStatusDone, models.TaskStatusInProgress, models.TaskStatusCancelled},
	models.TaskStatusDone:       {},
	models.TaskStatusCancelled:  {},
}

func edgeExists(from, to models.TaskStatus) bool {
	for _, next := range validEdges[from] {
		if next == to {
			return true
		}
	}
	return false
}

func newTask(status models.TaskStatus) *models.Task {
	return &models.Task{
		ID:        "task-1",
		Title:     "test task",
		Status:    status,
		Priority:  models.PriorityMedium,
		CreatorID: "user-1",
		UpdatedAt: time.Now().Add(-time.Hour),
	}
}

// Every (from, to) pair is exercised: pairs in the table succeed, all others
// fail with InvalidTransition.
func TestTransition_FullTable(t *testing.T) {
	for _, from := range allStatuses {
		for _, to := range allStatuses {
			task := newTask(from)
			err := Transition(task, to)

			if edgeExists(from, to) {
				require.NoError(t, err, "%s -> %s should be allowed", from, to)
				assert.Equal(t, to, task.Status)
			} else {
				require.Error(t, err, "%s -> %s should be rejected", from, to)
				assert.Equal(t, apperr.KindInvalidTransition, apperr.KindOf(err))
				assert.Equal(t, from, task.Status, "task must be untouched on rejection")
			}
		}
	}
}

func TestTransition_SelfTransitionRejected(t *testing.T) {
	for _, s := range allStatuses {
		task := newTask(s)
		err := Transition(task, s)
		require.Error(t, err, "requesting the current status %s must be rejected", s)
		assert.Equal(t, apperr.KindInvalidTransition, apperr.KindOf(err))
	}
}

func TestTransition_TerminalStatesHaveNoExits(t *testing.T) {
	for _, terminal := range []models.TaskStatus{models.TaskStatusDone, models.TaskStatusCancelled} {
		assert.True(t, IsTerminal(terminal))
		assert.Empty(t, NextStatuses(terminal))

		for _, to := range allStatuses {
			task := newTask(terminal)
			err := Transition(task, to)
			require.Error(t, err, "%s -> %s must never succeed", terminal, to)
		}
	}
}

func TestTransition_UnknownStatusRejected(t *testing.T) {
	task := newTask(models.TaskStatusTodo)
	err := Transition(task, models.TaskStatus("archived"))
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidTransition, apperr.KindOf(err))
}

func TestTransition_UpdatesTimestampOnly(t *testing.T) {
	task := newTask(models.TaskStatusTodo)
	before := *task
	require.NoError(t, Transition(task, models.TaskStatusInProgress))

	assert.Equal(t, models.TaskStatusInProgress, task.Status)
	assert.True(t, task.UpdatedAt.After(before.UpdatedAt))
	assert.Equal(t, before.Title, task.Title)
	assert.Equal(t, before.CreatorID, task.CreatorID)
	assert.Equal(t, before.Priority, task.Priority)
	assert.Equal(t, before.Version, task.Version)
}

func TestNextStatuses_ReturnsCopy(t *testing.T) {
	next := NextStatuses(models.TaskStatusTodo)
	require.NotEmpty(t, next)
	next[0] = models.TaskStatusDone

	assert.False(t, CanTransition(models.TaskStatusTodo, models.TaskStatusDone),
		"mutating the returned slice must not affect the table")
}
