package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/campus-auth/internal/domain"
)

const sessionKeyPrefix = "session:"

// expiredRetention keeps an expired session readable for a while so the
// service can report "expired" rather than "unknown" before purging it.
const expiredRetention = time.Hour

// RedisSessionRegistry is a Redis-backed implementation of the service's
// SessionRegistry, for deployments where sessions must survive restarts.
type RedisSessionRegistry struct {
	client *redis.Client
}

// NewRedisSessionRegistry wraps a connected client.
func NewRedisSessionRegistry(r *Redis) *RedisSessionRegistry {
	return &RedisSessionRegistry{client: r.Client}
}

func sessionKey(token string) string {
	return sessionKeyPrefix + token
}

// Put stores the session with a TTL past its expiry.
func (r *RedisSessionRegistry) Put(ctx context.Context, session *domain.SessionToken) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}
	ttl := time.Until(session.ExpiresAt) + expiredRetention
	return r.client.Set(ctx, sessionKey(session.Token), payload, ttl).Err()
}

// Get returns the stored session, or (nil, nil) when absent.
func (r *RedisSessionRegistry) Get(ctx context.Context, token string) (*domain.SessionToken, error) {
	payload, err := r.client.Get(ctx, sessionKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var session domain.SessionToken
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Touch rewrites the session with an updated last-activity timestamp,
// keeping the original TTL.
func (r *RedisSessionRegistry) Touch(ctx context.Context, token string, at time.Time) error {
	session, err := r.Get(ctx, token)
	if err != nil || session == nil {
		return err
	}
	session.LastActivity = at
	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, sessionKey(token), payload, redis.KeepTTL).Err()
}

// Delete removes the session, reporting whether it was present.
func (r *RedisSessionRegistry) Delete(ctx context.Context, token string) (bool, error) {
	removed, err := r.client.Del(ctx, sessionKey(token)).Result()
	if err != nil {
		return false, err
	}
	return removed > 0, nil
}

// Active scans all stored sessions. The snapshot may include sessions past
// expiry that have not been purged yet; callers filter by expiry.
func (r *RedisSessionRegistry) Active(ctx context.Context) ([]*domain.SessionToken, error) {
	var out []*domain.SessionToken
	iter := r.client.Scan(ctx, 0, sessionKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		payload, err := r.client.Get(ctx, iter.Val()).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			return nil, err
		}
		var session domain.SessionToken
		if err := json.Unmarshal(payload, &session); err != nil {
			return nil, err
		}
		out = append(out, &session)
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
