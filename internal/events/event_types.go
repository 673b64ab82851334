package events

import (
	"time"

	"github.com/spec-kit/campus-auth/internal/domain"
)

// EventType enumerates supported audit event identifiers.
type EventType string

const (
	EventMfaCodeIssued      EventType = "mfa_code_issued"
	EventLoginSucceeded     EventType = "login_succeeded"
	EventLoginFailed        EventType = "login_failed"
	EventAccountLocked      EventType = "account_locked"
	EventSessionExpired     EventType = "session_expired"
	EventSessionInvalidated EventType = "session_invalidated"
)

// Event represents an audit record emitted by the auth service.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Username  string      `json:"username"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// MfaCodeIssuedPayload carries the code for the delivery stub. The code
// never appears in the audit log itself.
type MfaCodeIssuedPayload struct {
	Role      domain.UserRole `json:"role"`
	Code      string          `json:"-"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// LoginFailedPayload records why an attempt was rejected.
type LoginFailedPayload struct {
	Role    domain.UserRole `json:"role"`
	Reason  string          `json:"reason"`
	Attempt int             `json:"attempt"`
}

// LoginSucceededPayload records a successful authentication.
type LoginSucceededPayload struct {
	Role      domain.UserRole `json:"role"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// AccountLockedPayload records the attempt count that tripped the lockout.
type AccountLockedPayload struct {
	Attempts int `json:"attempts"`
}

// SessionLifecyclePayload covers expiry and explicit invalidation.
type SessionLifecyclePayload struct {
	Role domain.UserRole `json:"role"`
}
