package auth

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "session:"

// SessionStore tracks which issued tokens are still alive.
type SessionStore interface {
	Save(ctx context.Context, tokenID, userID string, ttl time.Duration) error
	Exists(ctx context.Context, tokenID string) (bool, error)
	Revoke(ctx context.Context, tokenID string) error
}

type redisSessionStore struct {
	client *redis.Client
}

// NewRedisSessionStore keeps one key per token so revoking a token
// leaves the user's other sessions untouched.
func NewRedisSessionStore(client *redis.Client) SessionStore {
	return &redisSessionStore{client: client}
}

func (s *redisSessionStore) Save(ctx context.Context, tokenID, userID string, ttl time.Duration) error {
	return s.client.Set(ctx, sessionKeyPrefix+tokenID, userID, ttl).Err()
}

func (s *redisSessionStore) Exists(ctx context.Context, tokenID string) (bool, error) {
	_, err := s.client.Get(ctx, sessionKeyPrefix+tokenID).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *redisSessionStore) Revoke(ctx context.Context, tokenID string) error {
	return s.client.Del(ctx, sessionKeyPrefix+tokenID).Err()
}
