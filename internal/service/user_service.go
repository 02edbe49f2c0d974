// internal/service/user_service.go
package service

import (
	"context"
	"errors"
	"time"

	"github.com/taskhub/taskhub/internal/apperr"
	"github.com/taskhub/taskhub/internal/models"
	"github.com/taskhub/taskhub/internal/policy"
	"github.com/taskhub/taskhub/internal/repository"
)

// restrictedUserFields may only be changed by administrators, regardless of
// who owns the account.
var restrictedUserFields = []string{"role", "is_active"}

// UserService handles account lookup, profile administration, and access to
// the audit trail.
type UserService struct {
	users          repository.UserRepository
	events         repository.SecurityEventRepository
	securityLogger *SecurityLogger
}

func NewUserService(users repository.UserRepository, events repository.SecurityEventRepository, securityLogger *SecurityLogger) *UserService {
	return &UserService{users: users, events: events, securityLogger: securityLogger}
}

func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "user not found")
		}
		return nil, apperr.Internal("load user", err)
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context, filter repository.UserFilter) ([]*models.User, int, error) {
	users, total, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, 0, apperr.Internal("list users", err)
	}
	return users, total, nil
}

// UpdateUserInput carries a partial profile update. Nil fields are left
// untouched.
type UpdateUserInput struct {
	FirstName *string
	LastName  *string
	Role      *models.Role
	IsActive  *bool
}

func (in UpdateUserInput) touchedFields() []string {
	var fields []string
	if in.FirstName != nil {
		fields = append(fields, "first_name")
	}
	if in.LastName != nil {
		fields = append(fields, "last_name")
	}
	if in.Role != nil {
		fields = append(fields, "role")
	}
	if in.IsActive != nil {
		fields = append(fields, "is_active")
	}
	return fields
}

// Update applies a partial update. Users may edit their own profile,
// administrators may edit anyone; role and active status are restricted to
// administrators in all cases.
func (s *UserService) Update(ctx context.Context, actor models.Principal, id string, input UpdateUserInput) (*models.User, error) {
	if !policy.CanMutate(actor, id, models.RoleAdmin) {
		return nil, apperr.New(apperr.KindForbidden, "cannot modify another user's profile")
	}
	if !policy.CanMutateRestrictedFields(actor, input.touchedFields(), restrictedUserFields, models.RoleAdmin) {
		return nil, apperr.New(apperr.KindForbidden, "only administrators may change role or active status")
	}
	if input.Role != nil && !input.Role.Valid() {
		return nil, apperr.Validation([]apperr.FieldError{{Field: "role", Message: "unknown role"}})
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "user not found")
		}
		return nil, apperr.Internal("load user", err)
	}

	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.Role != nil {
		user.Role = *input.Role
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}
	user.UpdatedAt = time.Now()

	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperr.Internal("update user", err)
	}
	return user, nil
}

// Delete removes an account. The repository removes the tasks the user
// created, unassigns tasks assigned to them, removes their comments, and
// clears the parent link on surviving replies.
func (s *UserService) Delete(ctx context.Context, actor models.Principal, id string) error {
	if actor.ID == id {
		return apperr.New(apperr.KindForbidden, "cannot delete your own account")
	}

	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.New(apperr.KindNotFound, "user not found")
		}
		return apperr.Internal("delete user", err)
	}
	return nil
}

// SecurityEvents returns audit events. Administrators may query any user's
// events or all of them; everyone else only sees their own, whatever filter
// they asked for.
func (s *UserService) SecurityEvents(ctx context.Context, actor models.Principal, filter repository.EventFilter) ([]*models.SecurityEvent, int, error) {
	if actor.Role != models.RoleAdmin {
		filter.UserID = &actor.ID
	}

	events, total, err := s.events.List(ctx, filter)
	if err != nil {
		return nil, 0, apperr.Internal("list security events", err)
	}
	return events, total, nil
}

// Unlock clears a lockout so the user can attempt to log in again.
func (s *UserService) Unlock(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "user not found")
		}
		return nil, apperr.Internal("load user", err)
	}

	user.FailedLoginAttempts = 0
	user.AccountLockedUntil = nil
	user.UpdatedAt = time.Now()

	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperr.Internal("unlock user", err)
	}

	s.securityLogger.LogAccountUnlocked(ctx, user.ID)
	return user, nil
}
