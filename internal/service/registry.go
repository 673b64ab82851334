package service

import (
	"context"
	"sync"
	"time"

	"github.com/spec-kit/campus-auth/internal/domain"
)

// SessionRegistry is the active-session store. Implementations must make
// every operation atomic per token so concurrent calls for the same
// session never lose an update. Get returns (nil, nil) for absent tokens.
type SessionRegistry interface {
	Put(ctx context.Context, session *domain.SessionToken) error
	Get(ctx context.Context, token string) (*domain.SessionToken, error)
	Touch(ctx context.Context, token string, at time.Time) error
	Delete(ctx context.Context, token string) (bool, error)
	Active(ctx context.Context) ([]*domain.SessionToken, error)
}

// memorySessionRegistry is the default mutex-guarded in-process registry.
type memorySessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*domain.SessionToken
}

// NewMemorySessionRegistry builds an empty in-memory session registry.
func NewMemorySessionRegistry() SessionRegistry {
	return &memorySessionRegistry{sessions: make(map[string]*domain.SessionToken)}
}

func (r *memorySessionRegistry) Put(_ context.Context, session *domain.SessionToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.Token] = session
	return nil
}

func (r *memorySessionRegistry) Get(_ context.Context, token string) (*domain.SessionToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[token]
	if !ok {
		return nil, nil
	}
	copied := *session
	return &copied, nil
}

func (r *memorySessionRegistry) Touch(_ context.Context, token string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if session, ok := r.sessions[token]; ok {
		session.LastActivity = at
	}
	return nil
}

func (r *memorySessionRegistry) Delete(_ context.Context, token string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[token]; !ok {
		return false, nil
	}
	delete(r.sessions, token)
	return true, nil
}

func (r *memorySessionRegistry) Active(_ context.Context) ([]*domain.SessionToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.SessionToken, 0, len(r.sessions))
	for _, session := range r.sessions {
		copied := *session
		out = append(out, &copied)
	}
	return out, nil
}

// mfaEntry is one pending one-time code.
type mfaEntry struct {
	code     string
	issuedAt time.Time
}

// mfaRegistry maps username to its single pending MFA code. Issuing a new
// code silently replaces any outstanding one.
type mfaRegistry struct {
	mu      sync.Mutex
	entries map[string]mfaEntry
}

func newMfaRegistry() *mfaRegistry {
	return &mfaRegistry{entries: make(map[string]mfaEntry)}
}

func (r *mfaRegistry) put(username, code string, issuedAt time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[username] = mfaEntry{code: code, issuedAt: issuedAt}
}

func (r *mfaRegistry) get(username string) (mfaEntry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[username]
	return entry, ok
}

func (r *mfaRegistry) delete(username string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, username)
}

func (r *mfaRegistry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// attemptRegistry counts consecutive failed logins per username. The
// counter resets only on a fully successful authentication.
type attemptRegistry struct {
	mu       sync.Mutex
	attempts map[string]int
}

func newAttemptRegistry() *attemptRegistry {
	return &attemptRegistry{attempts: make(map[string]int)}
}

// increment adds one failure and returns the new count.
func (r *attemptRegistry) increment(username string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts[username]++
	return r.attempts[username]
}

func (r *attemptRegistry) reset(username string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.attempts, username)
}

func (r *attemptRegistry) count(username string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.attempts[username]
}

// lockedCount returns how many usernames have reached the threshold.
func (r *attemptRegistry) lockedCount(threshold int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	locked := 0
	for _, n := range r.attempts {
		if n >= threshold {
			locked++
		}
	}
	return locked
}
