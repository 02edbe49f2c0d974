// internal/models/user.go
package models

import "time"

// Role is the closed set of user roles. Authorization uses exact set
// membership only; there is no numeric ordering between roles.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleMember  Role = "member"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleMember:
		return true
	}
	return false
}

type User struct {
	ID                    string     `db:"id" json:"id"`
	Email                 string     `db:"email" json:"email"`
	Username              string     `db:"username" json:"username"`
	PasswordHash          string     `db:"password_hash" json:"-"`
	FirstName             string     `db:"first_name" json:"first_name"`
	LastName              string     `db:"last_name" json:"last_name"`
	Role                  Role       `db:"role" json:"role"`
	IsActive              bool       `db:"is_active" json:"is_active"`
	FailedLoginAttempts   int        `db:"failed_login_attempts" json:"-"`
	AccountLockedUntil    *time.Time `db:"account_locked_until" json:"-"`
	RefreshToken          string     `db:"refresh_token" json:"-"`
	RefreshTokenExpiresAt *time.Time `db:"refresh_token_expires_at" json:"-"`
	LastLogin             *time.Time `db:"last_login" json:"last_login,omitempty"`
	LastLoginIP           string     `db:"last_login_ip" json:"-"`
	PasswordChangedAt     *time.Time `db:"password_changed_at" json:"-"`
	CreatedAt             time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time  `db:"updated_at" json:"updated_at"`
}

// Principal is the authenticated actor attached to a request. It carries only
// what ownership and role checks need; credential material never appears here.
type Principal struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
	Active bool   `json:"active"`
}

// Principal derives the request principal from a user record.
func (u *User) Principal() Principal {
	return Principal{
		ID:     u.ID,
		Email:  u.Email,
		Role:   u.Role,
		Active: u.IsActive,
	}
}

// Locked reports whether the account is currently locked out.
func (u *User) Locked(now time.Time) bool {
	return u.AccountLockedUntil != nil && u.AccountLockedUntil.After(now)
}
