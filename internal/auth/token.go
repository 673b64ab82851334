package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/campus-auth/internal/domain"
)

// sessionTokenBytes is the raw entropy of an opaque session token (256 bits).
const sessionTokenBytes = 32

// NewSessionTokenString returns a cryptographically random opaque token.
func NewSessionTokenString() (string, error) {
	buf := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// TokenManager wraps opaque session tokens in signed JWTs for transport.
// The JWT is a bearer envelope only; session state lives server side and
// the embedded opaque token is what the auth service validates.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret string, ttlMinutes int) *TokenManager {
	if ttlMinutes <= 0 {
		ttlMinutes = 30
	}
	return &TokenManager{secret: []byte(secret), ttl: time.Duration(ttlMinutes) * time.Minute}
}

// Claims describes the JWT payload carried by API clients.
type Claims struct {
	SessionToken string          `json:"stk"`
	Username     string          `json:"username"`
	Role         domain.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// WrapSession signs a bearer token around an issued session.
func (tm *TokenManager) WrapSession(session *domain.SessionToken) (string, error) {
	now := time.Now()
	expiresAt := now.Add(tm.ttl)
	if session.ExpiresAt.Before(expiresAt) {
		expiresAt = session.ExpiresAt
	}
	claims := &Claims{
		SessionToken: session.Token,
		Username:     session.Username,
		Role:         session.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.Username,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(tm.secret)
}

// UnwrapSession validates a bearer token and returns its claims.
func (tm *TokenManager) UnwrapSession(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	if claims.SessionToken == "" {
		return nil, errors.New("bearer token carries no session")
	}
	return claims, nil
}
