package service

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/campus-auth/internal/config"
	"github.com/spec-kit/campus-auth/internal/domain"
	"github.com/spec-kit/campus-auth/internal/repository"
	apperrors "github.com/spec-kit/campus-auth/pkg/util"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		MfaCodeLength:         6,
		MfaValidityMinutes:    5,
		MaxLoginAttempts:      5,
		SessionTimeoutMinutes: 30,
		BcryptCost:            bcrypt.MinCost,
	}
}

func seedAccount(t *testing.T, store *repository.MemoryCredentialStore, username, password string, role domain.UserRole) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	store.Put(domain.Account{Username: username, Role: role, PasswordHash: string(hash)})
}

func newTestService(t *testing.T) (*AuthService, *repository.MemoryCredentialStore, *fakeClock) {
	t.Helper()
	store := repository.NewMemoryCredentialStore()
	seedAccount(t, store, "alice", "alicepass", domain.RoleStudent)

	svc := NewAuthService(testAuthConfig(), AuthDependencies{Credentials: store})
	clock := newFakeClock()
	svc.now = clock.Now
	return svc, store, clock
}

func mustLogin(t *testing.T, svc *AuthService, username, password string, role domain.UserRole) *domain.SessionToken {
	t.Helper()
	ctx := context.Background()
	code, err := svc.GenerateMfaCode(ctx, username, role)
	require.NoError(t, err)
	result, err := svc.Authenticate(ctx, username, password, code, role)
	require.NoError(t, err)
	require.True(t, result.Success)
	return result.Session
}

func TestAuthenticateSucceedsForEveryRole(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	for i, role := range domain.AllRoles() {
		username := fmt.Sprintf("user%d", i)
		seedAccount(t, store, username, "secret", role)

		code, err := svc.GenerateMfaCode(ctx, username, role)
		require.NoError(t, err)
		require.Regexp(t, regexp.MustCompile(`^\d{6}$`), code)

		result, err := svc.Authenticate(ctx, username, "secret", code, role)
		require.NoError(t, err)
		require.True(t, result.Success)
		require.Equal(t, role, result.Role)
		require.Equal(t, username, result.Session.Username)
		require.NotEmpty(t, result.Session.Token)

		require.NoError(t, svc.ValidateSession(ctx, result.Session.Token))
	}
}

func TestAuthenticateRejectsWrongMfaCode(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.GenerateMfaCode(ctx, "alice", domain.RoleStudent)
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, "alice", "alicepass", "000000", domain.RoleStudent)
	require.True(t, apperrors.HasCode(err, apperrors.CodeInvalidMfa))

	stats, err := svc.SessionStatistics(ctx)
	require.NoError(t, err)
	require.Zero(t, stats.ActiveSessions)
}

func TestAuthenticateRejectsMissingMfaCode(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Authenticate(context.Background(), "alice", "alicepass", "123456", domain.RoleStudent)
	require.True(t, apperrors.HasCode(err, apperrors.CodeInvalidMfa))
}

func TestLockoutPersistsEvenWithCorrectCredentials(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := svc.Authenticate(ctx, "alice", "wrongpass", "123456", domain.RoleStudent)
		require.True(t, apperrors.HasCode(err, apperrors.CodeInvalidCredentials))
	}

	code, err := svc.GenerateMfaCode(ctx, "alice", domain.RoleStudent)
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, "alice", "alicepass", code, domain.RoleStudent)
	require.True(t, apperrors.HasCode(err, apperrors.CodeAccountLocked))

	stats, err := svc.SessionStatistics(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, stats.LockedAccounts)
}

func TestSuccessfulLoginResetsAttemptCounter(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, err := svc.Authenticate(ctx, "alice", "wrongpass", "123456", domain.RoleStudent)
		require.True(t, apperrors.HasCode(err, apperrors.CodeInvalidCredentials))
	}

	mustLogin(t, svc, "alice", "alicepass", domain.RoleStudent)

	// Counter is back to zero: four more failures still leave room for a
	// successful login.
	for i := 0; i < 4; i++ {
		_, err := svc.Authenticate(ctx, "alice", "wrongpass", "123456", domain.RoleStudent)
		require.True(t, apperrors.HasCode(err, apperrors.CodeInvalidCredentials))
	}
	mustLogin(t, svc, "alice", "alicepass", domain.RoleStudent)
}

func TestValidateSessionExpiry(t *testing.T) {
	svc, _, clock := newTestService(t)
	ctx := context.Background()

	session := mustLogin(t, svc, "alice", "alicepass", domain.RoleStudent)
	require.NoError(t, svc.ValidateSession(ctx, session.Token))

	stats, err := svc.SessionStatistics(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, stats.ActiveSessions)

	clock.Advance(31 * time.Minute)

	err = svc.ValidateSession(ctx, session.Token)
	require.True(t, apperrors.HasCode(err, apperrors.CodeSessionExpired))

	// The expired session has been purged, so a retry sees an unknown token.
	err = svc.ValidateSession(ctx, session.Token)
	require.True(t, apperrors.HasCode(err, apperrors.CodeInvalidSession))

	stats, err = svc.SessionStatistics(ctx)
	require.NoError(t, err)
	require.Zero(t, stats.ActiveSessions)
}

func TestActivityDoesNotExtendExpiry(t *testing.T) {
	svc, _, clock := newTestService(t)
	ctx := context.Background()

	session := mustLogin(t, svc, "alice", "alicepass", domain.RoleStudent)

	clock.Advance(20 * time.Minute)
	require.NoError(t, svc.ValidateSession(ctx, session.Token))

	// Despite activity at minute 20, the fixed deadline still falls at
	// minute 30.
	clock.Advance(15 * time.Minute)
	err := svc.ValidateSession(ctx, session.Token)
	require.True(t, apperrors.HasCode(err, apperrors.CodeSessionExpired))
}

func TestUserRolePurgesExpiredSessions(t *testing.T) {
	svc, _, clock := newTestService(t)
	ctx := context.Background()

	session := mustLogin(t, svc, "alice", "alicepass", domain.RoleStudent)

	role, err := svc.UserRole(ctx, session.Token)
	require.NoError(t, err)
	require.Equal(t, domain.RoleStudent, role)

	clock.Advance(31 * time.Minute)
	_, err = svc.UserRole(ctx, session.Token)
	require.True(t, apperrors.HasCode(err, apperrors.CodeSessionExpired))

	_, err = svc.UserRole(ctx, session.Token)
	require.True(t, apperrors.HasCode(err, apperrors.CodeInvalidSession))
}

func TestInvalidateSessionIsIdempotent(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	session := mustLogin(t, svc, "alice", "alicepass", domain.RoleStudent)

	removed, err := svc.InvalidateSession(ctx, session.Token)
	require.NoError(t, err)
	require.True(t, removed)

	removed, err = svc.InvalidateSession(ctx, session.Token)
	require.NoError(t, err)
	require.False(t, removed)

	err = svc.ValidateSession(ctx, session.Token)
	require.True(t, apperrors.HasCode(err, apperrors.CodeInvalidSession))
}

func TestNewMfaCodeInvalidatesPreviousOne(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.GenerateMfaCode(ctx, "alice", domain.RoleStudent)
	require.NoError(t, err)
	second, err := svc.GenerateMfaCode(ctx, "alice", domain.RoleStudent)
	require.NoError(t, err)

	if first != second {
		_, err = svc.Authenticate(ctx, "alice", "alicepass", first, domain.RoleStudent)
		require.True(t, apperrors.HasCode(err, apperrors.CodeInvalidMfa))
	}

	result, err := svc.Authenticate(ctx, "alice", "alicepass", second, domain.RoleStudent)
	require.NoError(t, err)
	require.True(t, result.Success)
}

func TestExpiredMfaCodeIsRejectedAndPurged(t *testing.T) {
	svc, _, clock := newTestService(t)
	ctx := context.Background()

	code, err := svc.GenerateMfaCode(ctx, "alice", domain.RoleStudent)
	require.NoError(t, err)

	clock.Advance(6 * time.Minute)

	_, err = svc.Authenticate(ctx, "alice", "alicepass", code, domain.RoleStudent)
	require.True(t, apperrors.HasCode(err, apperrors.CodeInvalidMfa))

	stats, err := svc.SessionStatistics(ctx)
	require.NoError(t, err)
	require.Zero(t, stats.PendingMfaCodes)
}

func TestAuthenticateValidatesInput(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name     string
		username string
		password string
		mfaCode  string
		role     domain.UserRole
	}{
		{"empty username", "", "pass", "123456", domain.RoleStudent},
		{"empty password", "alice", "", "123456", domain.RoleStudent},
		{"empty mfa code", "alice", "pass", "", domain.RoleStudent},
		{"invalid role", "alice", "pass", "123456", domain.UserRole("JANITOR")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Authenticate(ctx, tc.username, tc.password, tc.mfaCode, tc.role)
			require.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))
		})
	}

	_, err := svc.GenerateMfaCode(ctx, "", domain.RoleStudent)
	require.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))

	err = svc.ValidateSession(ctx, "")
	require.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))
}

func TestCredentialErrorsAreGeneric(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	// Unknown user and wrong password must be indistinguishable.
	_, errUnknown := svc.Authenticate(ctx, "nobody", "pass", "123456", domain.RoleStudent)
	_, errWrong := svc.Authenticate(ctx, "alice", "wrongpass", "123456", domain.RoleStudent)

	require.True(t, apperrors.HasCode(errUnknown, apperrors.CodeInvalidCredentials))
	require.True(t, apperrors.HasCode(errWrong, apperrors.CodeInvalidCredentials))
	require.Equal(t, errUnknown.Error(), errWrong.Error())

	// Role mismatch behaves like an unknown account.
	_, errRole := svc.Authenticate(ctx, "alice", "alicepass", "123456", domain.RoleStaff)
	require.True(t, apperrors.HasCode(errRole, apperrors.CodeInvalidCredentials))
}

func TestSessionStatisticsGroupsByRole(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	seedAccount(t, store, "bob", "bobpass", domain.RoleInstructor)
	seedAccount(t, store, "carol", "carolpass", domain.RoleInstructor)
	seedAccount(t, store, "dave", "davepass", domain.RoleStaff)

	mustLogin(t, svc, "alice", "alicepass", domain.RoleStudent)
	mustLogin(t, svc, "bob", "bobpass", domain.RoleInstructor)
	mustLogin(t, svc, "carol", "carolpass", domain.RoleInstructor)
	mustLogin(t, svc, "dave", "davepass", domain.RoleStaff)

	stats, err := svc.SessionStatistics(ctx)
	require.NoError(t, err)
	require.Equal(t, 4, stats.ActiveSessions)
	require.Equal(t, 1, stats.SessionsByRole[domain.RoleStudent])
	require.Equal(t, 2, stats.SessionsByRole[domain.RoleInstructor])
	require.Equal(t, 1, stats.SessionsByRole[domain.RoleStaff])

	total := 0
	for _, n := range stats.SessionsByRole {
		total += n
	}
	require.Equal(t, stats.ActiveSessions, total)
}

func TestConcurrentUsersDoNotCrossContaminate(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	const users = 8
	const iterations = 20

	roles := domain.AllRoles()
	for i := 0; i < users; i++ {
		seedAccount(t, store, fmt.Sprintf("user%d", i), fmt.Sprintf("pass%d", i), roles[i%len(roles)])
	}

	var wg sync.WaitGroup
	for i := 0; i < users; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			username := fmt.Sprintf("user%d", i)
			role := roles[i%len(roles)]

			for n := 0; n < iterations; n++ {
				code, err := svc.GenerateMfaCode(ctx, username, role)
				require.NoError(t, err)

				result, err := svc.Authenticate(ctx, username, fmt.Sprintf("pass%d", i), code, role)
				require.NoError(t, err)
				require.Equal(t, username, result.Session.Username)
				require.Equal(t, role, result.Session.Role)

				require.NoError(t, svc.ValidateSession(ctx, result.Session.Token))

				gotRole, err := svc.UserRole(ctx, result.Session.Token)
				require.NoError(t, err)
				require.Equal(t, role, gotRole)

				removed, err := svc.InvalidateSession(ctx, result.Session.Token)
				require.NoError(t, err)
				require.True(t, removed)
			}
		}(i)
	}
	wg.Wait()

	stats, err := svc.SessionStatistics(ctx)
	require.NoError(t, err)
	require.Zero(t, stats.ActiveSessions)
	require.Zero(t, stats.LockedAccounts)
}

func TestConcurrentFailuresForSameUserLoseNoCounts(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	const attempts = 10
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.Authenticate(ctx, "alice", "wrongpass", "123456", domain.RoleStudent)
		}()
	}
	wg.Wait()

	// At least the threshold worth of failures registered, so the account
	// is locked for the next attempt.
	code, err := svc.GenerateMfaCode(ctx, "alice", domain.RoleStudent)
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, "alice", "alicepass", code, domain.RoleStudent)
	require.True(t, apperrors.HasCode(err, apperrors.CodeAccountLocked))
}
