// internal/service/task_service.go
package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/taskhub/taskhub/internal/apperr"
	"github.com/taskhub/taskhub/internal/models"
	"github.com/taskhub/taskhub/internal/policy"
	"github.com/taskhub/taskhub/internal/repository"
	"github.com/taskhub/taskhub/internal/workflow"
)

const (
	maxTitleLength       = 200
	maxDescriptionLength = 5000
	maxTags              = 10
)

// TaskService handles the task lifecycle: creation, partial updates, status
// transitions, and deletion. Status changes only go through Transition.
type TaskService struct {
	tasks repository.TaskRepository
	users repository.UserRepository
}

func NewTaskService(tasks repository.TaskRepository, users repository.UserRepository) *TaskService {
	return &TaskService{tasks: tasks, users: users}
}

// canModify reports whether the actor may change the task: the creator, the
// assignee, and supervisory roles qualify.
func canModify(actor models.Principal, task *models.Task) bool {
	return policy.CanMutate(actor, task.CreatorID, models.RoleAdmin, models.RoleManager) ||
		task.AssignedTo(actor.ID)
}

type CreateTaskInput struct {
	Title       string
	Description string
	Priority    *models.Priority
	AssigneeID  *string
	DueDate     *time.Time
	Tags        []string
}

func (s *TaskService) Create(ctx context.Context, actor models.Principal, input CreateTaskInput) (*models.Task, error) {
	if fields := validateTaskFields(input.Title, input.Description, input.Tags); len(fields) > 0 {
		return nil, apperr.Validation(fields)
	}
	if input.Priority != nil && !input.Priority.Valid() {
		return nil, apperr.Validation([]apperr.FieldError{{Field: "priority", Message: "unknown priority"}})
	}
	if input.AssigneeID != nil {
		if err := s.checkAssignee(ctx, *input.AssigneeID); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	task := &models.Task{
		ID:          uuid.New().String(),
		Title:       input.Title,
		Description: input.Description,
		Status:      models.TaskStatusTodo,
		Priority:    models.PriorityMedium,
		CreatorID:   actor.ID,
		AssigneeID:  input.AssigneeID,
		DueDate:     input.DueDate,
		Tags:        input.Tags,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if input.Priority != nil {
		task.Priority = *input.Priority
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, apperr.Internal("create task", err)
	}
	return task, nil
}

func (s *TaskService) Get(ctx context.Context, id string) (*models.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "task not found")
		}
		return nil, apperr.Internal("load task", err)
	}
	return task, nil
}

func (s *TaskService) List(ctx context.Context, filter repository.TaskFilter) ([]*models.Task, int, error) {
	tasks, total, err := s.tasks.List(ctx, filter)
	if err != nil {
		return nil, 0, apperr.Internal("list tasks", err)
	}
	return tasks, total, nil
}

// UpdateTaskInput carries a partial task update. Status is deliberately
// absent; transitions go through Transition. Version must hold the version
// the client read.
type UpdateTaskInput struct {
	Title         *string
	Description   *string
	Priority      *models.Priority
	AssigneeID    *string
	ClearAssignee bool
	DueDate       *time.Time
	ClearDueDate  bool
	Tags          []string
	Version       int64
}

func (s *TaskService) Update(ctx context.Context, actor models.Principal, id string, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canModify(actor, task) {
		return nil, apperr.New(apperr.KindForbidden, "cannot modify this task")
	}

	title := task.Title
	if input.Title != nil {
		title = *input.Title
	}
	description := task.Description
	if input.Description != nil {
		description = *input.Description
	}
	if fields := validateTaskFields(title, description, input.Tags); len(fields) > 0 {
		return nil, apperr.Validation(fields)
	}
	if input.Priority != nil && !input.Priority.Valid() {
		return nil, apperr.Validation([]apperr.FieldError{{Field: "priority", Message: "unknown priority"}})
	}

	task.Title = title
	task.Description = description
	if input.Priority != nil {
		task.Priority = *input.Priority
	}
	if input.ClearAssignee {
		task.AssigneeID = nil
	} else if input.AssigneeID != nil {
		if err := s.checkAssignee(ctx, *input.AssigneeID); err != nil {
			return nil, err
		}
		task.AssigneeID = input.AssigneeID
	}
	if input.ClearDueDate {
		task.DueDate = nil
	} else if input.DueDate != nil {
		task.DueDate = input.DueDate
	}
	if input.Tags != nil {
		task.Tags = input.Tags
	}
	task.Version = input.Version
	task.UpdatedAt = time.Now()

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, mapTaskWriteError(err)
	}
	return task, nil
}

// Transition moves the task to a new status, enforcing the lifecycle rules
// and the optimistic version check.
func (s *TaskService) Transition(ctx context.Context, actor models.Principal, id string, requested models.TaskStatus, version int64) (*models.Task, error) {
	task, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canModify(actor, task) {
		return nil, apperr.New(apperr.KindForbidden, "cannot modify this task")
	}

	task.Version = version
	if err := workflow.Transition(task, requested); err != nil {
		return nil, err
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, mapTaskWriteError(err)
	}
	return task, nil
}

// Delete removes a task and its comments. Only the creator and supervisory
// roles may delete; being the assignee is not enough.
func (s *TaskService) Delete(ctx context.Context, actor models.Principal, id string) error {
	task, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !policy.CanMutate(actor, task.CreatorID, models.RoleAdmin, models.RoleManager) {
		return apperr.New(apperr.KindForbidden, "cannot delete this task")
	}

	if err := s.tasks.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.New(apperr.KindNotFound, "task not found")
		}
		return apperr.Internal("delete task", err)
	}
	return nil
}

func (s *TaskService) checkAssignee(ctx context.Context, assigneeID string) error {
	user, err := s.users.GetByID(ctx, assigneeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.Validation([]apperr.FieldError{{Field: "assignee_id", Message: "assignee does not exist"}})
		}
		return apperr.Internal("check assignee", err)
	}
	if !user.IsActive {
		return apperr.Validation([]apperr.FieldError{{Field: "assignee_id", Message: "assignee is deactivated"}})
	}
	return nil
}

func validateTaskFields(title, description string, tags []string) []apperr.FieldError {
	var fields []apperr.FieldError
	if title == "" {
		fields = append(fields, apperr.FieldError{Field: "title", Message: "title is required"})
	} else if len(title) > maxTitleLength {
		fields = append(fields, apperr.FieldError{Field: "title", Message: "title is too long"})
	}
	if len(description) > maxDescriptionLength {
		fields = append(fields, apperr.FieldError{Field: "description", Message: "description is too long"})
	}
	if len(tags) > maxTags {
		fields = append(fields, apperr.FieldError{Field: "tags", Message: "too many tags"})
	}
	return fields
}

func mapTaskWriteError(err error) error {
	switch {
	case errors.Is(err, repository.ErrVersionConflict):
		return apperr.Wrap(apperr.KindConflict, "task was modified concurrently, reload and retry", err)
	case errors.Is(err, repository.ErrNotFound):
		return apperr.New(apperr.KindNotFound, "task not found")
	default:
		return apperr.Internal("write task", err)
	}
}
