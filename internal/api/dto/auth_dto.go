package dto

import "time"

// LoginRequest payload for login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AccountResponse describes a login account. Password hashes never leave the service.
type AccountResponse struct {
	ID                int64      `json:"id"`
	Username          string     `json:"username"`
	Email             string     `json:"email"`
	DisplayName       string     `json:"display_name"`
	IsAdmin           bool       `json:"is_admin"`
	HasUsablePassword bool       `json:"has_usable_password"`
	LastLoginAt       *time.Time `json:"last_login_at,omitempty"`
}

// SetPasswordRequest payload for replacing a staff member's credential.
type SetPasswordRequest struct {
	Password string `json:"password"`
}
