package domain

// AuthenticationResult is the outcome of one authentication attempt.
// Session is nil when Success is false.
type AuthenticationResult struct {
	Session *SessionToken
	Role    UserRole
	Success bool
	Message string
}

// SessionStatistics is a point-in-time snapshot of the auth registries.
type SessionStatistics struct {
	ActiveSessions  int              `json:"active_sessions"`
	LockedAccounts  int              `json:"locked_accounts"`
	PendingMfaCodes int              `json:"pending_mfa_codes"`
	SessionsByRole  map[UserRole]int `json:"sessions_by_role"`
}
