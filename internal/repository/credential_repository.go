package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/campus-auth/internal/domain"
)

// ErrCredentialNotFound signals that no account matches a username/role
// pair. Callers must not leak this distinction to end users.
var ErrCredentialNotFound = errors.New("credential not found")

// CredentialStore resolves the stored password hash for an account.
// The auth service treats an absent account and a bad password identically.
type CredentialStore interface {
	LookupPasswordHash(ctx context.Context, username string, role domain.UserRole) (string, error)
}

type pgCredentialStore struct {
	pool *pgxpool.Pool
}

// NewPgCredentialStore returns a Postgres-backed implementation over the
// accounts table.
func NewPgCredentialStore(pool *pgxpool.Pool) CredentialStore {
	return &pgCredentialStore{pool: pool}
}

func (r *pgCredentialStore) LookupPasswordHash(ctx context.Context, username string, role domain.UserRole) (string, error) {
	const query = `
        SELECT password_hash
        FROM accounts
        WHERE username=$1 AND role=$2 AND status=$3`

	var hash string
	if err := r.pool.QueryRow(ctx, query, username, role, domain.AccountStatusActive).Scan(&hash); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrCredentialNotFound
		}
		return "", err
	}
	return hash, nil
}
