// internal/models/security_event.go
package models

import "time"

// SecurityEvent is an audit record for authentication and account activity.
// UserID is nil for system events that could not be tied to an account, such
// as a failed login for an unknown email.
type SecurityEvent struct {
	ID          string    `db:"id" json:"id"`
	UserID      *string   `db:"user_id" json:"user_id,omitempty"`
	EventType   string    `db:"event_type" json:"event_type"`
	Description string    `db:"description" json:"description"`
	Severity    string    `db:"severity" json:"severity"`
	IPAddress   string    `db:"ip_address" json:"ip_address,omitempty"`
	UserAgent   string    `db:"user_agent" json:"user_agent,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
