package domain

import "time"

// SessionToken represents one authenticated, time-bounded session.
//
// The token string, username, role and both timestamps are fixed at
// creation; only LastActivity moves, and only through the registry owning
// the session. Activity does not push back ExpiresAt.
type SessionToken struct {
	Token        string    `json:"token"`
	Username     string    `json:"username"`
	Role         UserRole  `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	ExpiresAt    time.Time `json:"expires_at"`
	LastActivity time.Time `json:"last_activity"`
}

// NewSessionToken builds a session valid for ttl starting at now.
func NewSessionToken(token, username string, role UserRole, now time.Time, ttl time.Duration) *SessionToken {
	return &SessionToken{
		Token:        token,
		Username:     username,
		Role:         role,
		CreatedAt:    now,
		ExpiresAt:    now.Add(ttl),
		LastActivity: now,
	}
}

// ExpiredAt reports whether the session is past its expiry at the given instant.
func (s *SessionToken) ExpiredAt(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// IsExpired reports whether the session is past its expiry now.
func (s *SessionToken) IsExpired() bool {
	return s.ExpiredAt(time.Now())
}

// IdleFor returns the duration since last recorded activity.
func (s *SessionToken) IdleFor(now time.Time) time.Duration {
	return now.Sub(s.LastActivity)
}

// Remaining returns the time left until expiry (negative once expired).
func (s *SessionToken) Remaining(now time.Time) time.Duration {
	return s.ExpiresAt.Sub(now)
}
