// Package auth provides authentication and employee account logic.
package auth

import (
	"context"
	"time"

	"woodline/internal/core/apperror"
	"woodline/internal/core/id"
	"woodline/internal/domain/access"
)

// User represents an employee account.
type User struct {
	ID           id.ID       `db:"id" json:"id"`
	Login        string      `db:"login" json:"login"`
	PasswordHash string      `db:"password_hash" json:"-"`
	FullName     string      `db:"full_name" json:"fullName"`
	Phone        string      `db:"phone" json:"phone,omitempty"`
	Role         access.Role `db:"role" json:"role"`

	// CustomPermissions, when non-nil, replaces the role defaults entirely.
	// nil means the user follows their role's default table.
	CustomPermissions []access.Permission `db:"custom_permissions" json:"customPermissions,omitempty"`

	IsActive            bool       `db:"is_active" json:"isActive"`
	LastLoginAt         *time.Time `db:"last_login_at" json:"lastLoginAt,omitempty"`
	FailedLoginAttempts int        `db:"failed_login_attempts" json:"-"`
	LockedUntil         *time.Time `db:"locked_until" json:"-"`
	CreatedAt           time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt           time.Time  `db:"updated_at" json:"updatedAt"`
	Version             int        `db:"version" json:"version"`
}

// NewUser creates a new active user.
func NewUser(login, passwordHash string, role access.Role) *User {
	return &User{
		ID:           id.New(),
		Login:        login,
		PasswordHash: passwordHash,
		Role:         role,
		IsActive:     true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
		Version:      1,
	}
}

// Validate validates user data.
func (u *User) Validate(ctx context.Context) error {
	if u.Login == "" {
		return apperror.NewValidation("login is required").WithDetail("field", "login")
	}
	if !access.IsValidRole(u.Role) {
		return apperror.NewValidation("unknown role").WithDetail("role", string(u.Role))
	}
	return nil
}

// Effective resolves the user's effective permission set.
func (u *User) Effective() access.Effective {
	return access.ResolveEffective(u.Role, u.CustomPermissions)
}

// IsLocked returns true if account is locked.
func (u *User) IsLocked() bool {
	if u.LockedUntil == nil {
		return false
	}
	return time.Now().Before(*u.LockedUntil)
}

// CanLogin checks if user can login.
func (u *User) CanLogin() error {
	if !u.IsActive {
		return apperror.NewForbidden("account is disabled")
	}
	if u.IsLocked() {
		return apperror.NewForbidden("account is temporarily locked")
	}
	return nil
}

// RecordFailedLogin increments failed login counter.
func (u *User) RecordFailedLogin(maxAttempts int, lockDuration time.Duration) {
	u.FailedLoginAttempts++
	if u.FailedLoginAttempts >= maxAttempts {
		lockUntil := time.Now().Add(lockDuration)
		u.LockedUntil = &lockUntil
	}
}

// RecordSuccessfulLogin resets failed login counter.
func (u *User) RecordSuccessfulLogin() {
	u.FailedLoginAttempts = 0
	u.LockedUntil = nil
	now := time.Now()
	u.LastLoginAt = &now
}

// Token is an issued access token.
type Token struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
	TokenType   string    `json:"tokenType"`
}

// Credentials for login.
type Credentials struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// CreateUserRequest for employee account creation.
type CreateUserRequest struct {
	Login             string              `json:"login"`
	Password          string              `json:"password"`
	FullName          string              `json:"fullName"`
	Phone             string              `json:"phone,omitempty"`
	Role              access.Role         `json:"role"`
	CustomPermissions []access.Permission `json:"customPermissions,omitempty"`
}

// UpdateUserRequest for employee account updates. Nil fields are untouched.
type UpdateUserRequest struct {
	FullName *string      `json:"fullName,omitempty"`
	Phone    *string      `json:"phone,omitempty"`
	Role     *access.Role `json:"role,omitempty"`
	Password *string      `json:"password,omitempty"`

	// SetCustomPermissions distinguishes "leave alone" from "set to this
	// list" (which may be empty) and from "clear back to role defaults".
	SetCustomPermissions bool                `json:"setCustomPermissions,omitempty"`
	CustomPermissions    []access.Permission `json:"customPermissions,omitempty"`
}
