package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/campus-auth/internal/auth"
	"github.com/spec-kit/campus-auth/internal/config"
	"github.com/spec-kit/campus-auth/internal/domain"
	"github.com/spec-kit/campus-auth/internal/events"
	"github.com/spec-kit/campus-auth/internal/observability"
	"github.com/spec-kit/campus-auth/internal/repository"
	apperrors "github.com/spec-kit/campus-auth/pkg/util"
)

// AuthService is the multi-role authentication core: credential checks,
// MFA verification, brute-force lockout, and session lifecycle. It
// exclusively owns the session, MFA, and attempt registries.
type AuthService struct {
	credentials repository.CredentialStore
	sessions    SessionRegistry
	mfa         *mfaRegistry
	attempts    *attemptRegistry
	dispatcher  events.Dispatcher
	logger      *zap.Logger
	metrics     *observability.Metrics
	cfg         config.AuthConfig

	// now is swapped in tests to simulate the passage of time.
	now func() time.Time
}

// AuthDependencies encapsulates collaborator requirements for the service.
type AuthDependencies struct {
	Credentials repository.CredentialStore
	Sessions    SessionRegistry
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
	Metrics     *observability.Metrics
}

// NewAuthService builds the service. Sessions defaults to the in-memory
// registry when nil.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	sessions := deps.Sessions
	if sessions == nil {
		sessions = NewMemorySessionRegistry()
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		credentials: deps.Credentials,
		sessions:    sessions,
		mfa:         newMfaRegistry(),
		attempts:    newAttemptRegistry(),
		dispatcher:  deps.Dispatcher,
		logger:      logger,
		metrics:     deps.Metrics,
		cfg:         cfg,
		now:         time.Now,
	}
}

// Authenticate performs the full login sequence: input validation, lockout
// check, credential verification, MFA verification, then session issue.
// Failed credential or MFA checks count against the lockout threshold even
// though the caller sees only a generic error.
func (s *AuthService) Authenticate(ctx context.Context, username, password, mfaCode string, requestedRole domain.UserRole) (*domain.AuthenticationResult, error) {
	if err := validateAuthenticateInput(username, password, mfaCode, requestedRole); err != nil {
		return nil, err
	}

	if s.attempts.count(username) >= s.cfg.MaxLoginAttempts {
		s.logger.Warn("authentication blocked, account locked", zap.String("username", username))
		return nil, apperrors.NewAccountLocked("account locked due to repeated failed attempts")
	}

	ok, err := s.verifyCredentials(ctx, username, password, requestedRole)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.recordFailure(ctx, username, requestedRole, "invalid credentials")
		return nil, apperrors.NewInvalidCredentials()
	}

	if !s.verifyMfaCode(username, mfaCode) {
		s.recordFailure(ctx, username, requestedRole, "invalid mfa code")
		return nil, apperrors.NewInvalidMfa()
	}

	s.attempts.reset(username)

	tokenStr, err := auth.NewSessionTokenString()
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	session := domain.NewSessionToken(tokenStr, username, requestedRole, s.now(), s.cfg.SessionTimeout())
	if err := s.sessions.Put(ctx, session); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	s.mfa.delete(username)

	s.metrics.RecordLogin(string(requestedRole), true)
	s.publish(ctx, events.NewEvent(events.EventLoginSucceeded, username, events.LoginSucceededPayload{
		Role:      requestedRole,
		ExpiresAt: session.ExpiresAt,
	}))
	s.logger.Info("authentication succeeded",
		zap.String("username", username),
		zap.String("role", string(requestedRole)))

	return &domain.AuthenticationResult{
		Session: session,
		Role:    requestedRole,
		Success: true,
		Message: "authentication successful",
	}, nil
}

// GenerateMfaCode issues a fresh one-time code for the user, replacing any
// outstanding code. Delivery happens out of band via the notification
// stubs; the code is returned for that channel only.
func (s *AuthService) GenerateMfaCode(ctx context.Context, username string, role domain.UserRole) (string, error) {
	if username == "" {
		return "", apperrors.NewValidationError("username must not be empty", nil)
	}

	code, err := s.randomCode()
	if err != nil {
		return "", apperrors.NewInternalError(err)
	}

	issuedAt := s.now()
	s.mfa.put(username, code, issuedAt)

	s.publish(ctx, events.NewEvent(events.EventMfaCodeIssued, username, events.MfaCodeIssuedPayload{
		Role:      role,
		Code:      code,
		ExpiresAt: issuedAt.Add(s.cfg.MfaValidity()),
	}))
	s.logger.Info("mfa code issued",
		zap.String("username", username),
		zap.String("role", string(role)))

	return code, nil
}

// ValidateSession checks a token against the active-session registry,
// purging it when expired. This is the only path that updates a session's
// last-activity timestamp; activity never extends the expiry.
func (s *AuthService) ValidateSession(ctx context.Context, token string) error {
	session, err := s.lookupLive(ctx, token)
	if err != nil {
		return err
	}
	if err := s.sessions.Touch(ctx, token, s.now()); err != nil {
		return apperrors.NewInternalError(err)
	}
	s.logger.Debug("session validated", zap.String("username", session.Username))
	return nil
}

// InvalidateSession removes a token from the registry (logout). It is
// idempotent: the return reports whether the token was present.
func (s *AuthService) InvalidateSession(ctx context.Context, token string) (bool, error) {
	session, err := s.sessions.Get(ctx, token)
	if err != nil {
		return false, apperrors.NewInternalError(err)
	}
	removed, err := s.sessions.Delete(ctx, token)
	if err != nil {
		return false, apperrors.NewInternalError(err)
	}
	if removed && session != nil {
		s.publish(ctx, events.NewEvent(events.EventSessionInvalidated, session.Username, events.SessionLifecyclePayload{Role: session.Role}))
		s.logger.Info("session invalidated", zap.String("username", session.Username))
	}
	return removed, nil
}

// UserRole resolves the role bound to an active session. Expired sessions
// are purged here too, so every accessor observes the same registry state.
func (s *AuthService) UserRole(ctx context.Context, token string) (domain.UserRole, error) {
	session, err := s.lookupLive(ctx, token)
	if err != nil {
		return "", err
	}
	return session.Role, nil
}

// SessionStatistics reports a snapshot of the three registries. Sessions
// already past expiry but not yet purged are excluded from the counts.
func (s *AuthService) SessionStatistics(ctx context.Context) (*domain.SessionStatistics, error) {
	active, err := s.sessions.Active(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	now := s.now()
	byRole := make(map[domain.UserRole]int)
	total := 0
	for _, session := range active {
		if session.ExpiredAt(now) {
			continue
		}
		byRole[session.Role]++
		total++
	}

	return &domain.SessionStatistics{
		ActiveSessions:  total,
		LockedAccounts:  s.attempts.lockedCount(s.cfg.MaxLoginAttempts),
		PendingMfaCodes: s.mfa.len(),
		SessionsByRole:  byRole,
	}, nil
}

// lookupLive fetches a session, purging and rejecting it when expired.
func (s *AuthService) lookupLive(ctx context.Context, token string) (*domain.SessionToken, error) {
	if token == "" {
		return nil, apperrors.NewValidationError("session token must not be empty", nil)
	}

	session, err := s.sessions.Get(ctx, token)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if session == nil {
		return nil, apperrors.NewInvalidSession()
	}
	if session.ExpiredAt(s.now()) {
		if _, err := s.sessions.Delete(ctx, token); err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		s.publish(ctx, events.NewEvent(events.EventSessionExpired, session.Username, events.SessionLifecyclePayload{Role: session.Role}))
		s.logger.Info("expired session removed", zap.String("username", session.Username))
		return nil, apperrors.NewSessionExpired()
	}
	return session, nil
}

func (s *AuthService) verifyCredentials(ctx context.Context, username, password string, role domain.UserRole) (bool, error) {
	hash, err := s.credentials.LookupPasswordHash(ctx, username, role)
	if err != nil {
		if errors.Is(err, repository.ErrCredentialNotFound) {
			return false, nil
		}
		return false, apperrors.NewInternalError(err)
	}
	return auth.ComparePassword(hash, password) == nil, nil
}

// verifyMfaCode checks the pending code for the user. An expired entry is
// deleted as a side effect of the check.
func (s *AuthService) verifyMfaCode(username, provided string) bool {
	entry, ok := s.mfa.get(username)
	if !ok {
		return false
	}
	if s.now().Sub(entry.issuedAt) > s.cfg.MfaValidity() {
		s.mfa.delete(username)
		return false
	}
	return subtle.ConstantTimeCompare([]byte(entry.code), []byte(provided)) == 1
}

// recordFailure counts a failed attempt and emits audit events, tripping
// the lockout when the threshold is reached.
func (s *AuthService) recordFailure(ctx context.Context, username string, role domain.UserRole, reason string) {
	attempt := s.attempts.increment(username)
	s.metrics.RecordLogin(string(role), false)
	s.publish(ctx, events.NewEvent(events.EventLoginFailed, username, events.LoginFailedPayload{
		Role:    role,
		Reason:  reason,
		Attempt: attempt,
	}))
	s.logger.Warn("authentication failed",
		zap.String("username", username),
		zap.String("reason", reason),
		zap.Int("attempt", attempt))

	if attempt == s.cfg.MaxLoginAttempts {
		s.metrics.RecordLockout()
		s.publish(ctx, events.NewEvent(events.EventAccountLocked, username, events.AccountLockedPayload{Attempts: attempt}))
		s.logger.Warn("account locked", zap.String("username", username), zap.Int("attempts", attempt))
	}
}

// randomCode draws a uniformly distributed numeric code of the configured
// length from crypto/rand.
func (s *AuthService) randomCode() (string, error) {
	length := s.cfg.MfaCodeLength
	if length <= 0 {
		length = 6
	}
	min := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length-1)), nil)
	span := new(big.Int).Mul(min, big.NewInt(9))
	n, err := rand.Int(rand.Reader, span)
	if err != nil {
		return "", fmt.Errorf("generate mfa code: %w", err)
	}
	return n.Add(n, min).String(), nil
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func validateAuthenticateInput(username, password, mfaCode string, role domain.UserRole) error {
	if username == "" {
		return apperrors.NewValidationError("username must not be empty", nil)
	}
	if password == "" {
		return apperrors.NewValidationError("password must not be empty", nil)
	}
	if mfaCode == "" {
		return apperrors.NewValidationError("mfa code must not be empty", nil)
	}
	if !role.Valid() {
		return apperrors.NewValidationError("requested role is not recognized", map[string]any{"role": string(role)})
	}
	return nil
}
