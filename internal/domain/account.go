package domain

import "time"

// AccountStatus represents lifecycle states for a platform account.
type AccountStatus string

const (
	AccountStatusActive    AccountStatus = "ACTIVE"
	AccountStatusSuspended AccountStatus = "SUSPENDED"
)

// Account is the credential record backing authentication. An account is
// keyed by (username, role): the same person may hold separate accounts
// for different roles.
type Account struct {
	ID           string
	Username     string
	Role         UserRole
	PasswordHash string
	Status       AccountStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
