package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisSessionPrefix = "session:"

// RedisSessionStore keeps sessions in Redis so several API instances can share them.
type RedisSessionStore struct {
	client *redis.Client
}

// NewRedisSessionStore wraps an existing client.
func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

// DialRedisSessionStore connects to Redis and verifies the connection.
func DialRedisSessionStore(ctx context.Context, addr, password string, db int) (*RedisSessionStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return NewRedisSessionStore(client), nil
}

// Save implements SessionStore.
func (s *RedisSessionStore) Save(ctx context.Context, sessionID string, userID uint, exp time.Time) error {
	ttl := time.Until(exp)
	if ttl <= 0 {
		return nil
	}
	return s.client.Set(ctx, redisSessionPrefix+sessionID, strconv.FormatUint(uint64(userID), 10), ttl).Err()
}

// Lookup implements SessionStore.
func (s *RedisSessionStore) Lookup(ctx context.Context, sessionID string) (uint, bool, error) {
	val, err := s.client.Get(ctx, redisSessionPrefix+sessionID).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	id, err := strconv.ParseUint(val, 10, 0)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt session %s: %w", sessionID, err)
	}
	return uint(id), true, nil
}

// Delete implements SessionStore.
func (s *RedisSessionStore) Delete(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, redisSessionPrefix+sessionID).Err()
}

// Close closes the underlying client.
func (s *RedisSessionStore) Close() error {
	return s.client.Close()
}
