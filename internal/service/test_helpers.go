// internal/service/test_helpers.go
package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/taskhub/taskhub/internal/config"
	"github.com/taskhub/taskhub/internal/models"
	"github.com/taskhub/taskhub/internal/repository"
	"github.com/taskhub/taskhub/pkg/auth"
)

// TestHelpers provides common fixtures for service tests, backed by the
// in-memory store.
type TestHelpers struct {
	t               *testing.T
	store           *repository.MemoryStore
	passwordManager *auth.PasswordManager

	userSeq int
}

func NewTestHelpers(t *testing.T, store *repository.MemoryStore) *TestHelpers {
	return &TestHelpers{
		t:               t,
		store:           store,
		passwordManager: auth.NewPasswordManager(),
	}
}

// TestSecurityConfig returns lockout settings small enough to exercise in
// tests.
func TestSecurityConfig() config.SecurityConfig {
	return config.SecurityConfig{
		MaxLoginAttempts:       3,
		AccountLockoutDuration: 15 * time.Minute,
		SessionTimeoutDuration: 24 * time.Hour,
	}
}

func NewTestTokenManager() *auth.TokenManager {
	return auth.NewTokenManager("test-access-secret", "test-refresh-secret", 15*time.Minute, 24*time.Hour)
}

// CreateUser stores a user with the given role and the password "Str0ng!Pass".
func (h *TestHelpers) CreateUser(role models.Role) *models.User {
	h.t.Helper()
	h.userSeq++

	hashedPassword, err := h.passwordManager.HashPassword("Str0ng!Pass")
	require.NoError(h.t, err)

	now := time.Now()
	user := &models.User{
		ID:           uuid.New().String(),
		Email:        fmt.Sprintf("user%d@example.com", h.userSeq),
		Username:     fmt.Sprintf("user%d", h.userSeq),
		PasswordHash: hashedPassword,
		FirstName:    "Test",
		LastName:     "User",
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(h.t, h.store.Users().Create(context.Background(), user))
	return user
}

func (h *TestHelpers) CreateAdminUser() *models.User   { return h.CreateUser(models.RoleAdmin) }
func (h *TestHelpers) CreateManagerUser() *models.User { return h.CreateUser(models.RoleManager) }
func (h *TestHelpers) CreateMemberUser() *models.User  { return h.CreateUser(models.RoleMember) }

// CreateInactiveUser stores a deactivated member account.
func (h *TestHelpers) CreateInactiveUser() *models.User {
	h.t.Helper()
	user := h.CreateUser(models.RoleMember)
	user.IsActive = false
	require.NoError(h.t, h.store.Users().Update(context.Background(), user))
	return user
}

// CreateTask stores a task created by the given user.
func (h *TestHelpers) CreateTask(creator *models.User) *models.Task {
	h.t.Helper()

	now := time.Now()
	task := &models.Task{
		ID:        uuid.New().String(),
		Title:     "Test task",
		Status:    models.TaskStatusTodo,
		Priority:  models.PriorityMedium,
		CreatorID: creator.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(h.t, h.store.Tasks().Create(context.Background(), task))
	return task
}

// CreateComment stores a comment by the given user on the given task.
func (h *TestHelpers) CreateComment(author *models.User, task *models.Task, content string) *models.Comment {
	h.t.Helper()

	now := time.Now()
	comment := &models.Comment{
		ID:        uuid.New().String(),
		TaskID:    task.ID,
		UserID:    author.ID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(h.t, h.store.Comments().Create(context.Background(), comment))
	return comment
}
