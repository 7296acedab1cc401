package auth

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "session:"

// SessionStore tracks issued token ids so that logout can revoke them.
type SessionStore interface {
	Create(ctx context.Context, sessionID string, accountID int64, ttl time.Duration) error
	Active(ctx context.Context, sessionID string) (bool, error)
	Revoke(ctx context.Context, sessionID string) error
}

type redisSessionStore struct {
	client *redis.Client
}

// NewRedisSessionStore stores sessions as session:<id> keys expiring with the token.
func NewRedisSessionStore(client *redis.Client) SessionStore {
	return &redisSessionStore{client: client}
}

func (s *redisSessionStore) Create(ctx context.Context, sessionID string, accountID int64, ttl time.Duration) error {
	return s.client.Set(ctx, sessionKeyPrefix+sessionID, strconv.FormatInt(accountID, 10), ttl).Err()
}

func (s *redisSessionStore) Active(ctx context.Context, sessionID string) (bool, error) {
	err := s.client.Get(ctx, sessionKeyPrefix+sessionID).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *redisSessionStore) Revoke(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, sessionKeyPrefix+sessionID).Err()
}

type statelessSessions struct{}

// NewStatelessSessionStore accepts every unexpired token; logout is a no-op.
func NewStatelessSessionStore() SessionStore {
	return statelessSessions{}
}

func (statelessSessions) Create(context.Context, string, int64, time.Duration) error { return nil }

func (statelessSessions) Active(context.Context, string) (bool, error) { return true, nil }

func (statelessSessions) Revoke(context.Context, string) error { return nil }
