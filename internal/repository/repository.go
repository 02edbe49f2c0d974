// internal/repository/repository.go
package repository

import (
	"context"
	"errors"

	"github.com/taskhub/taskhub/internal/models"
)

var (
	// ErrNotFound is returned when a lookup misses.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint is violated.
	ErrDuplicate = errors.New("duplicate record")
	// ErrVersionConflict is returned when an optimistic write lost the race:
	// the row's version no longer matches the one that was read.
	ErrVersionConflict = errors.New("version conflict")
)

// UserRepository is the persistence port for user records. Delete must apply
// the referential rules both backends share: tasks created by the removed
// user are removed with their threads, assignee references on other tasks go
// null, the user's comments are removed, and replies to a removed comment
// keep their row with the parent link cleared.
type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	// GetByLogin resolves a user by email or username.
	GetByLogin(ctx context.Context, login string) (*models.User, error)
	ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error)
	List(ctx context.Context, filter UserFilter) ([]*models.User, int, error)
	Update(ctx context.Context, u *models.User) error
	Delete(ctx context.Context, id string) error
}

// TaskRepository is the persistence port for tasks. Update performs an
// optimistic version check: the write only succeeds if the stored version
// matches the version the caller read, and bumps it by one.
type TaskRepository interface {
	Create(ctx context.Context, t *models.Task) error
	GetByID(ctx context.Context, id string) (*models.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]*models.Task, int, error)
	Update(ctx context.Context, t *models.Task) error
	Delete(ctx context.Context, id string) error
}

// CommentRepository is the persistence port for comment threads. Threads are
// flat rows with a nullable parent id; traversal happens through queries.
type CommentRepository interface {
	Create(ctx context.Context, c *models.Comment) error
	GetByID(ctx context.Context, id string) (*models.Comment, error)
	ListByTask(ctx context.Context, taskID string) ([]*models.Comment, error)
	Update(ctx context.Context, c *models.Comment) error
}

// SecurityEventRepository is the persistence port for audit events.
type SecurityEventRepository interface {
	Create(ctx context.Context, e *models.SecurityEvent) error
	List(ctx context.Context, filter EventFilter) ([]*models.SecurityEvent, int, error)
}

// UserFilter narrows user listings.
type UserFilter struct {
	Role     *models.Role
	IsActive *bool
	Search   string
	Limit    int
	Offset   int
}

// TaskFilter narrows task listings.
type TaskFilter struct {
	Status     *models.TaskStatus
	Priority   *models.Priority
	CreatorID  *string
	AssigneeID *string
	// UserID matches tasks the user created or is assigned to.
	UserID    *string
	Search    string
	SortBy    string
	SortOrder string
	Limit     int
	Offset    int
}

// EventFilter narrows audit event listings.
type EventFilter struct {
	UserID    *string
	EventType string
	Limit     int
	Offset    int
}
