package dto

import "time"

// MfaRequest asks for a one-time code to be issued and delivered.
type MfaRequest struct {
	Username string `json:"username" validate:"required"`
	Role     string `json:"role" validate:"required"`
}

// LoginRequest carries the full multi-factor login payload.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	MfaCode  string `json:"mfa_code" validate:"required,numeric"`
	Role     string `json:"role" validate:"required"`
}

// AuthResponse is the standard response for a successful login.
type AuthResponse struct {
	Token     string    `json:"token"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
	Message   string    `json:"message"`
}

// SessionResponse describes the caller's live session.
type SessionResponse struct {
	Username     string    `json:"username"`
	Role         string    `json:"role"`
	RoleDisplay  string    `json:"role_display"`
	LastActivity time.Time `json:"last_activity,omitempty"`
}
