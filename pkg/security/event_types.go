// pkg/security/event_types.go
package security

// EventType constants for audit event records
const (
	EventTypeLoginSuccess    = "login_success"
	EventTypeLoginFailed     = "login_failed"
	EventTypePasswordChanged = "password_changed"
	EventTypeAccountLocked   = "account_locked"
	EventTypeAccountUnlocked = "account_unlocked"
	EventTypeSecurityAlert   = "security_alert"
)

// Severity constants
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// ValidEventTypes returns all valid event type strings
func ValidEventTypes() []string {
	return []string{
		EventTypeLoginSuccess,
		EventTypeLoginFailed,
		EventTypePasswordChanged,
		EventTypeAccountLocked,
		EventTypeAccountUnlocked,
		EventTypeSecurityAlert,
	}
}

// IsValidEventType checks if the event type string is valid
func IsValidEventType(eventType string) bool {
	for _, t := range ValidEventTypes() {
		if t == eventType {
			return true
		}
	}
	return false
}

// IsValidSeverity checks if the severity string is valid
func IsValidSeverity(severity string) bool {
	switch severity {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}
