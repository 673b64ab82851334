package repository

import (
	"context"
	"sync"

	"github.com/spec-kit/campus-auth/internal/domain"
)

type memoryKey struct {
	username string
	role     domain.UserRole
}

// MemoryCredentialStore is an in-memory CredentialStore used for demo
// deployments without a database, and as the test double.
type MemoryCredentialStore struct {
	mu       sync.RWMutex
	accounts map[memoryKey]domain.Account
}

// NewMemoryCredentialStore builds an empty in-memory store.
func NewMemoryCredentialStore() *MemoryCredentialStore {
	return &MemoryCredentialStore{accounts: make(map[memoryKey]domain.Account)}
}

// Put registers or replaces an account. Status defaults to active.
func (s *MemoryCredentialStore) Put(account domain.Account) {
	if account.Status == "" {
		account.Status = domain.AccountStatusActive
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[memoryKey{username: account.Username, role: account.Role}] = account
}

// LookupPasswordHash implements CredentialStore. Suspended accounts are
// indistinguishable from missing ones.
func (s *MemoryCredentialStore) LookupPasswordHash(_ context.Context, username string, role domain.UserRole) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.accounts[memoryKey{username: username, role: role}]
	if !ok || account.Status != domain.AccountStatusActive {
		return "", ErrCredentialNotFound
	}
	return account.PasswordHash, nil
}
