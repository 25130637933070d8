package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is the key-value session interface handlers depend on. It carries
// per-visitor state (such as the email pending OTP verification) between
// requests without any framework-global session object.
type Store interface {
	Get(ctx context.Context, sessionID, key string) (string, error)
	Set(ctx context.Context, sessionID, key, value string) error
	Delete(ctx context.Context, sessionID, key string) error
	Destroy(ctx context.Context, sessionID string) error
}

// RedisStore keeps session values in Redis with a sliding per-key TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) key(sessionID, key string) string {
	return fmt.Sprintf("session:%s:%s", sessionID, key)
}

// Get returns the stored value, or "" if the key is not set.
func (s *RedisStore) Get(ctx context.Context, sessionID, key string) (string, error) {
	value, err := s.client.Get(ctx, s.key(sessionID, key)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (s *RedisStore) Set(ctx context.Context, sessionID, key, value string) error {
	return s.client.Set(ctx, s.key(sessionID, key), value, s.ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, sessionID, key string) error {
	return s.client.Del(ctx, s.key(sessionID, key)).Err()
}

// Destroy removes every key belonging to the session.
func (s *RedisStore) Destroy(ctx context.Context, sessionID string) error {
	keys, err := s.client.Keys(ctx, s.key(sessionID, "*")).Result()
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}

// NewSessionID returns an opaque 64-character session identifier.
func NewSessionID() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
