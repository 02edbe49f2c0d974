// internal/service/auth_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/taskhub/taskhub/internal/apperr"
	"github.com/taskhub/taskhub/internal/config"
	"github.com/taskhub/taskhub/internal/middleware"
	"github.com/taskhub/taskhub/internal/models"
	"github.com/taskhub/taskhub/internal/repository"
	"github.com/taskhub/taskhub/pkg/auth"
)

// TokenPair is the credential set issued on login, register, and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// AuthService handles registration, credential checks, token lifecycle, and
// the account lockout policy.
type AuthService struct {
	users           repository.UserRepository
	tokenManager    *auth.TokenManager
	passwordManager *auth.PasswordManager
	securityLogger  *SecurityLogger
	securityConfig  config.SecurityConfig
	refreshDuration time.Duration
}

func NewAuthService(
	users repository.UserRepository,
	tokenManager *auth.TokenManager,
	securityLogger *SecurityLogger,
	securityConfig config.SecurityConfig,
	refreshDuration time.Duration,
) *AuthService {
	return &AuthService{
		users:           users,
		tokenManager:    tokenManager,
		passwordManager: auth.NewPasswordManager(),
		securityLogger:  securityLogger,
		securityConfig:  securityConfig,
		refreshDuration: refreshDuration,
	}
}

type RegisterInput struct {
	Email     string
	Username  string
	Password  string
	FirstName string
	LastName  string
}

// Register creates a new member account and signs it in.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*models.User, *TokenPair, error) {
	var fields []apperr.FieldError
	if err := auth.ValidateEmail(input.Email); err != nil {
		fields = append(fields, apperr.FieldError{Field: "email", Message: err.Error()})
	}
	if err := auth.ValidateUsername(input.Username); err != nil {
		fields = append(fields, apperr.FieldError{Field: "username", Message: err.Error()})
	}
	if err := s.passwordManager.ValidatePassword(input.Password); err != nil {
		fields = append(fields, apperr.FieldError{Field: "password", Message: err.Error()})
	}
	if len(fields) > 0 {
		return nil, nil, apperr.Validation(fields)
	}

	exists, err := s.users.ExistsByEmailOrUsername(ctx, input.Email, input.Username)
	if err != nil {
		return nil, nil, apperr.Internal("check existing user", err)
	}
	if exists {
		return nil, nil, apperr.New(apperr.KindConflict, "email or username already taken")
	}

	hashedPassword, err := s.passwordManager.HashPassword(input.Password)
	if err != nil {
		return nil, nil, apperr.Internal("hash password", err)
	}

	now := time.Now()
	user := &models.User{
		ID:           uuid.New().String(),
		Email:        input.Email,
		Username:     input.Username,
		PasswordHash: hashedPassword,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Role:         models.RoleMember,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	pair, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, nil, apperr.New(apperr.KindConflict, "email or username already taken")
		}
		return nil, nil, apperr.Internal("create user", err)
	}

	return user, pair, nil
}

// Login verifies credentials and applies the lockout policy. Every failed
// attempt increments a counter; reaching the configured maximum locks the
// account for the lockout duration.
func (s *AuthService) Login(ctx context.Context, login, password string) (*models.User, *TokenPair, error) {
	user, err := s.users.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.securityLogger.LogLoginFailed(ctx, login, "unknown account")
			return nil, nil, apperr.New(apperr.KindUnauthenticated, "invalid credentials")
		}
		return nil, nil, apperr.Internal("look up user", err)
	}

	now := time.Now()
	if user.Locked(now) {
		s.securityLogger.LogLoginFailed(ctx, login, "account locked")
		return nil, nil, apperr.Newf(apperr.KindForbidden,
			"account is locked until %s", user.AccountLockedUntil.Format(time.RFC3339))
	}
	if !user.IsActive {
		s.securityLogger.LogLoginFailed(ctx, login, "account deactivated")
		return nil, nil, apperr.New(apperr.KindUnauthenticated, "account is deactivated")
	}

	if err := s.passwordManager.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, nil, s.recordFailedAttempt(ctx, user, login)
	}

	pair, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}

	clientInfo := middleware.ClientInfoFromContext(ctx)
	user.FailedLoginAttempts = 0
	user.AccountLockedUntil = nil
	user.LastLogin = &now
	user.LastLoginIP = clientInfo.IPAddress
	user.UpdatedAt = now

	if err := s.users.Update(ctx, user); err != nil {
		return nil, nil, apperr.Internal("record login", err)
	}

	s.securityLogger.LogLoginSuccess(ctx, user.ID)
	return user, pair, nil
}

func (s *AuthService) recordFailedAttempt(ctx context.Context, user *models.User, login string) error {
	user.FailedLoginAttempts++
	user.UpdatedAt = time.Now()

	locked := user.FailedLoginAttempts >= s.securityConfig.MaxLoginAttempts
	if locked {
		lockUntil := time.Now().Add(s.securityConfig.AccountLockoutDuration)
		user.AccountLockedUntil = &lockUntil
	}

	if err := s.users.Update(ctx, user); err != nil {
		return apperr.Internal("record failed login", err)
	}

	if locked {
		s.securityLogger.LogAccountLocked(ctx, user.ID, user.FailedLoginAttempts)
		return apperr.Newf(apperr.KindForbidden,
			"account locked after %d failed attempts", user.FailedLoginAttempts)
	}

	s.securityLogger.LogLoginFailed(ctx, login, "wrong password")
	return apperr.New(apperr.KindUnauthenticated, "invalid credentials")
}

// Refresh rotates a refresh token for a new token pair. The presented token
// must match the one stored for the account and the session must still be
// inside the timeout window.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.tokenManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnauthenticated, "invalid refresh token", err)
	}

	user, err := s.users.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.New(apperr.KindUnauthenticated, "invalid refresh token")
		}
		return nil, apperr.Internal("load user", err)
	}

	if !user.IsActive {
		return nil, apperr.New(apperr.KindUnauthenticated, "account is deactivated")
	}
	if user.RefreshToken != refreshToken {
		return nil, apperr.New(apperr.KindUnauthenticated, "refresh token has been revoked")
	}
	if user.RefreshTokenExpiresAt != nil && user.RefreshTokenExpiresAt.Before(time.Now()) {
		return nil, apperr.New(apperr.KindUnauthenticated, "refresh token has expired")
	}
	if user.LastLogin != nil && time.Since(*user.LastLogin) > s.securityConfig.SessionTimeoutDuration {
		user.RefreshToken = ""
		user.RefreshTokenExpiresAt = nil
		user.UpdatedAt = time.Now()
		if err := s.users.Update(ctx, user); err != nil {
			return nil, apperr.Internal("expire session", err)
		}
		return nil, apperr.New(apperr.KindUnauthenticated, "session has expired, please log in again")
	}

	pair, err := s.issueTokens(user)
	if err != nil {
		return nil, err
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperr.Internal("rotate refresh token", err)
	}

	return pair, nil
}

// Logout revokes the account's refresh token.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.New(apperr.KindNotFound, "user not found")
		}
		return apperr.Internal("load user", err)
	}

	user.RefreshToken = ""
	user.RefreshTokenExpiresAt = nil
	user.UpdatedAt = time.Now()
	if err := s.users.Update(ctx, user); err != nil {
		return apperr.Internal("revoke refresh token", err)
	}
	return nil
}

// ChangePassword verifies the current password before replacing it. The
// refresh token is revoked so other sessions must reauthenticate.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.New(apperr.KindNotFound, "user not found")
		}
		return apperr.Internal("load user", err)
	}

	if err := s.passwordManager.ComparePassword(user.PasswordHash, currentPassword); err != nil {
		return apperr.New(apperr.KindUnauthenticated, "current password is incorrect")
	}
	if err := s.passwordManager.ValidatePassword(newPassword); err != nil {
		return apperr.Validation([]apperr.FieldError{{Field: "new_password", Message: err.Error()}})
	}

	hashedPassword, err := s.passwordManager.HashPassword(newPassword)
	if err != nil {
		return apperr.Internal("hash password", err)
	}

	now := time.Now()
	user.PasswordHash = hashedPassword
	user.PasswordChangedAt = &now
	user.RefreshToken = ""
	user.RefreshTokenExpiresAt = nil
	user.UpdatedAt = now

	if err := s.users.Update(ctx, user); err != nil {
		return apperr.Internal("update password", err)
	}

	s.securityLogger.LogPasswordChanged(ctx, user.ID)
	return nil
}

// issueTokens mints a token pair and stores the refresh side on the user.
// Callers persist the user afterwards.
func (s *AuthService) issueTokens(user *models.User) (*TokenPair, error) {
	accessToken, refreshToken, expiresIn, err := s.tokenManager.GenerateTokenPair(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("generate tokens for %s", user.ID), err)
	}

	expiresAt := time.Now().Add(s.refreshDuration)
	user.RefreshToken = refreshToken
	user.RefreshTokenExpiresAt = &expiresAt

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    expiresIn,
	}, nil
}
