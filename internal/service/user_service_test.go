// internal/service/user_service_test.go
package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhub/taskhub/internal/apperr"
	"github.com/taskhub/taskhub/internal/models"
	"github.com/taskhub/taskhub/internal/repository"
)

func newUserFixture(t *testing.T) (*UserService, *TestHelpers, *repository.MemoryStore) {
	t.Helper()
	store := repository.NewMemoryStore()
	svc := NewUserService(store.Users(), store.Events(), NewSecurityLogger(store.Events()))
	return svc, NewTestHelpers(t, store), store
}

func strPtr(s string) *string            { return &s }
func rolePtr(r models.Role) *models.Role { return &r }
func boolPtr(b bool) *bool               { return &b }

func TestUserService_Update_Ownership(t *testing.T) {
	svc, helpers, _ := newUserFixture(t)
	ctx := context.Background()

	admin := helpers.CreateAdminUser()
	manager := helpers.CreateManagerUser()
	member := helpers.CreateMemberUser()
	other := helpers.CreateMemberUser()

	tests := []struct {
		name     string
		actor    *models.User
		target   *models.User
		input    UpdateUserInput
		wantKind apperr.Kind
	}{
		{
			name:   "member edits own profile",
			actor:  member,
			target: member,
			input:  UpdateUserInput{FirstName: strPtr("Updated")},
		},
		{
			name:     "member edits another profile",
			actor:    member,
			target:   other,
			input:    UpdateUserInput{FirstName: strPtr("Nope")},
			wantKind: apperr.KindForbidden,
		},
		{
			name:     "manager edits another profile",
			actor:    manager,
			target:   other,
			input:    UpdateUserInput{FirstName: strPtr("Nope")},
			wantKind: apperr.KindForbidden,
		},
		{
			name:   "admin edits another profile",
			actor:  admin,
			target: other,
			input:  UpdateUserInput{FirstName: strPtr("Updated")},
		},
		{
			name:     "member changes own role",
			actor:    member,
			target:   member,
			input:    UpdateUserInput{Role: rolePtr(models.RoleAdmin)},
			wantKind: apperr.KindForbidden,
		},
		{
			name:     "member deactivates own account",
			actor:    member,
			target:   member,
			input:    UpdateUserInput{IsActive: boolPtr(false)},
			wantKind: apperr.KindForbidden,
		},
		{
			name:   "admin changes role",
			actor:  admin,
			target: member,
			input:  UpdateUserInput{Role: rolePtr(models.RoleManager)},
		},
		{
			name:     "admin sets unknown role",
			actor:    admin,
			target:   member,
			input:    UpdateUserInput{Role: rolePtr(models.Role("owner"))},
			wantKind: apperr.KindValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Update(ctx, tt.actor.Principal(), tt.target.ID, tt.input)
			if tt.wantKind != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, apperr.KindOf(err))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestUserService_Update_AppliesFields(t *testing.T) {
	svc, helpers, store := newUserFixture(t)
	ctx := context.Background()

	admin := helpers.CreateAdminUser()
	member := helpers.CreateMemberUser()

	updated, err := svc.Update(ctx, admin.Principal(), member.ID, UpdateUserInput{
		FirstName: strPtr("New"),
		LastName:  strPtr("Name"),
		Role:      rolePtr(models.RoleManager),
		IsActive:  boolPtr(false),
	})
	require.NoError(t, err)
	assert.Equal(t, "New", updated.FirstName)
	assert.Equal(t, models.RoleManager, updated.Role)
	assert.False(t, updated.IsActive)

	stored, err := store.Users().GetByID(ctx, member.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleManager, stored.Role)
}

func TestUserService_Update_NotFound(t *testing.T) {
	svc, helpers, _ := newUserFixture(t)

	admin := helpers.CreateAdminUser()
	_, err := svc.Update(context.Background(), admin.Principal(), "missing", UpdateUserInput{FirstName: strPtr("X")})
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestUserService_Delete(t *testing.T) {
	svc, helpers, store := newUserFixture(t)
	ctx := context.Background()

	admin := helpers.CreateAdminUser()
	member := helpers.CreateMemberUser()
	other := helpers.CreateMemberUser()

	// The member is assigned to the admin's task, authored a comment there
	// that another user replied to, and created a task of their own with a
	// comment from someone else on it.
	adminTask := helpers.CreateTask(admin)
	adminTask.AssigneeID = &member.ID
	require.NoError(t, store.Tasks().Update(ctx, adminTask))

	memberComment := helpers.CreateComment(member, adminTask, "mine")
	reply := helpers.CreateComment(other, adminTask, "a reply")
	reply.ParentID = &memberComment.ID
	require.NoError(t, store.Comments().Update(ctx, reply))

	memberTask := helpers.CreateTask(member)
	helpers.CreateComment(other, memberTask, "on the member's task")

	require.NoError(t, svc.Delete(ctx, admin.Principal(), member.ID))

	_, err := store.Users().GetByID(ctx, member.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	// The admin's task survives unassigned.
	stored, err := store.Tasks().GetByID(ctx, adminTask.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.AssigneeID)

	// The member's own task is gone along with its thread.
	_, err = store.Tasks().GetByID(ctx, memberTask.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	orphaned, err := store.Comments().ListByTask(ctx, memberTask.ID)
	require.NoError(t, err)
	assert.Empty(t, orphaned)

	// The member's comment is removed; the reply survives with the parent
	// link cleared.
	thread, err := store.Comments().ListByTask(ctx, adminTask.ID)
	require.NoError(t, err)
	require.Len(t, thread, 1)
	assert.Equal(t, reply.ID, thread[0].ID)
	assert.Nil(t, thread[0].ParentID)
}

func TestUserService_Delete_Self(t *testing.T) {
	svc, helpers, _ := newUserFixture(t)

	admin := helpers.CreateAdminUser()
	err := svc.Delete(context.Background(), admin.Principal(), admin.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}

func TestUserService_SecurityEvents(t *testing.T) {
	svc, helpers, store := newUserFixture(t)
	ctx := context.Background()

	admin := helpers.CreateAdminUser()
	member := helpers.CreateMemberUser()
	other := helpers.CreateMemberUser()

	logger := NewSecurityLogger(store.Events())
	logger.LogLoginSuccess(ctx, member.ID)
	logger.LogLoginSuccess(ctx, other.ID)
	logger.LogLoginFailed(ctx, "ghost@example.com", "user not found")

	t.Run("member sees only their own events", func(t *testing.T) {
		events, total, err := svc.SecurityEvents(ctx, member.Principal(), repository.EventFilter{})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, events, 1)
		require.NotNil(t, events[0].UserID)
		assert.Equal(t, member.ID, *events[0].UserID)
	})

	t.Run("member cannot widen the filter to another user", func(t *testing.T) {
		events, total, err := svc.SecurityEvents(ctx, member.Principal(), repository.EventFilter{UserID: &other.ID})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, events, 1)
		require.NotNil(t, events[0].UserID)
		assert.Equal(t, member.ID, *events[0].UserID)
	})

	t.Run("admin sees all events", func(t *testing.T) {
		_, total, err := svc.SecurityEvents(ctx, admin.Principal(), repository.EventFilter{})
		require.NoError(t, err)
		assert.Equal(t, 3, total)
	})

	t.Run("admin filters by user", func(t *testing.T) {
		events, total, err := svc.SecurityEvents(ctx, admin.Principal(), repository.EventFilter{UserID: &other.ID})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, events, 1)
		require.NotNil(t, events[0].UserID)
		assert.Equal(t, other.ID, *events[0].UserID)
	})
}

func TestUserService_Unlock(t *testing.T) {
	svc, helpers, store := newUserFixture(t)
	ctx := context.Background()

	member := helpers.CreateMemberUser()
	lockUntil := time.Now().Add(time.Hour)
	member.FailedLoginAttempts = 5
	member.AccountLockedUntil = &lockUntil
	require.NoError(t, store.Users().Update(ctx, member))

	unlocked, err := svc.Unlock(ctx, member.ID)
	require.NoError(t, err)
	assert.Zero(t, unlocked.FailedLoginAttempts)
	assert.Nil(t, unlocked.AccountLockedUntil)
	assert.False(t, unlocked.Locked(time.Now()))
}

func TestUserService_List(t *testing.T) {
	svc, helpers, _ := newUserFixture(t)
	ctx := context.Background()

	helpers.CreateAdminUser()
	helpers.CreateMemberUser()
	helpers.CreateMemberUser()

	users, total, err := svc.List(ctx, repository.UserFilter{})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, users, 3)

	role := models.RoleMember
	users, total, err = svc.List(ctx, repository.UserFilter{Role: &role})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, users, 2)
}
