// internal/service/security_logger.go
package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/taskhub/taskhub/internal/middleware"
	"github.com/taskhub/taskhub/internal/models"
	"github.com/taskhub/taskhub/internal/repository"
	"github.com/taskhub/taskhub/pkg/security"
)

// SecurityLogger records audit events for authentication and account
// activity. Logging failures never propagate to the caller; a dropped audit
// record must not fail the request that produced it.
type SecurityLogger struct {
	events repository.SecurityEventRepository
}

func NewSecurityLogger(events repository.SecurityEventRepository) *SecurityLogger {
	return &SecurityLogger{events: events}
}

// Log records an event for a known user, taking client metadata from the
// request context.
func (sl *SecurityLogger) Log(ctx context.Context, userID, eventType, description, severity string) {
	sl.record(ctx, &userID, eventType, description, severity)
}

// LogSystem records an event that cannot be tied to an account.
func (sl *SecurityLogger) LogSystem(ctx context.Context, eventType, description, severity string) {
	sl.record(ctx, nil, eventType, description, severity)
}

func (sl *SecurityLogger) record(ctx context.Context, userID *string, eventType, description, severity string) {
	if !security.IsValidEventType(eventType) {
		log.Printf("security logger: unknown event type %q", eventType)
		return
	}

	clientInfo := middleware.ClientInfoFromContext(ctx)
	event := &models.SecurityEvent{
		ID:          uuid.New().String(),
		UserID:      userID,
		EventType:   eventType,
		Description: description,
		Severity:    severity,
		IPAddress:   clientInfo.IPAddress,
		UserAgent:   clientInfo.UserAgent,
		CreatedAt:   time.Now(),
	}

	if err := sl.events.Create(ctx, event); err != nil {
		log.Printf("security logger: failed to record %s event: %v", eventType, err)
	}
}

// Convenience methods for common security events.

func (sl *SecurityLogger) LogLoginSuccess(ctx context.Context, userID string) {
	sl.Log(ctx, userID, security.EventTypeLoginSuccess, "User successfully logged in", security.SeverityLow)
}

func (sl *SecurityLogger) LogLoginFailed(ctx context.Context, login, reason string) {
	sl.LogSystem(ctx, security.EventTypeLoginFailed,
		fmt.Sprintf("Failed login attempt for %s: %s", login, reason), security.SeverityMedium)
}

func (sl *SecurityLogger) LogAccountLocked(ctx context.Context, userID string, attempts int) {
	sl.Log(ctx, userID, security.EventTypeAccountLocked,
		fmt.Sprintf("Account locked after %d failed login attempts", attempts), security.SeverityHigh)
}

func (sl *SecurityLogger) LogAccountUnlocked(ctx context.Context, userID string) {
	sl.Log(ctx, userID, security.EventTypeAccountUnlocked, "Account unlocked by administrator", security.SeverityMedium)
}

func (sl *SecurityLogger) LogPasswordChanged(ctx context.Context, userID string) {
	sl.Log(ctx, userID, security.EventTypePasswordChanged, "User changed their password", security.SeverityMedium)
}
