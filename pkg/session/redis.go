package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// Redis key prefix for sessions
	redisKeyPrefix = "honeypot:session:"
	// Default TTL for session keys
	redisDefaultTTL = 24 * time.Hour
)

// RedisStore implements Store on Redis for deployments where sessions must
// survive restarts or be shared across nodes. Values are JSON-encoded
// Session records; TTL refreshes on every read and write. Write ordering is
// guaranteed by the engine's per-key lock, so no optimistic locking is
// needed here.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed session store.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = redisDefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) key(id string) string { return redisKeyPrefix + id }

// Get retrieves a session by id. Returns nil, nil if not found.
func (s *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	val, err := s.client.Get(ctx, s.key(id)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", id, err)
	}

	var sess Session
	if err := json.Unmarshal([]byte(val), &sess); err != nil {
		return nil, fmt.Errorf("redis decode %s: %w", id, err)
	}

	// Refresh TTL on read; a failure here is not fatal.
	_ = s.client.Expire(ctx, s.key(id), s.ttl).Err()

	return &sess, nil
}

// Save creates or updates a session.
func (s *RedisStore) Save(ctx context.Context, sess *Session) error {
	if sess == nil || sess.SessionID == "" {
		return fmt.Errorf("session id is required")
	}

	val, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("redis encode %s: %w", sess.SessionID, err)
	}
	if err := s.client.Set(ctx, s.key(sess.SessionID), val, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", sess.SessionID, err)
	}
	return nil
}

// Delete removes a session.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", id, err)
	}
	return nil
}

// Close releases the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

var _ Store = (*RedisStore)(nil)
