package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"melodify/model"

	"github.com/redis/go-redis/v9"
)

// SessionStore keeps the server-side half of issued access tokens, so that
// sign-out can revoke them before they expire.
type SessionStore interface {
	Create(ctx context.Context, rec model.SessionRecord) error
	// Get returns ErrSessionNotFound for unknown, expired or revoked sessions.
	Get(ctx context.Context, id string) (*model.SessionRecord, error)
	Delete(ctx context.Context, id string) error
	DeleteAllForUser(ctx context.Context, userID string) error
}

const (
	sessionKey      = "session:%s"       // String: SessionRecord JSON
	userSessionsKey = "user:%s:sessions" // Set: session ids of a user
)

// RedisSessionStore stores sessions in Redis with the token lifetime as TTL.
type RedisSessionStore struct {
	client *redis.Client
}

// NewRedisSessionStore wraps client.
func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func (s *RedisSessionStore) Create(ctx context.Context, rec model.SessionRecord) error {
	ttl := rec.ExpiresAt.Sub(rec.CreatedAt)
	if ttl <= 0 {
		return fmt.Errorf("session %s already expired", rec.ID)
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	userKey := fmt.Sprintf(userSessionsKey, rec.UserID)
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, fmt.Sprintf(sessionKey, rec.ID), data, ttl)
	pipe.SAdd(ctx, userKey, rec.ID)
	pipe.Expire(ctx, userKey, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) Get(ctx context.Context, id string) (*model.SessionRecord, error) {
	data, err := s.client.Get(ctx, fmt.Sprintf(sessionKey, id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	var rec model.SessionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &rec, nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, id string) error {
	rec, err := s.Get(ctx, id)
	if errors.Is(err, ErrSessionNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, fmt.Sprintf(sessionKey, id))
	pipe.SRem(ctx, fmt.Sprintf(userSessionsKey, rec.UserID), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) DeleteAllForUser(ctx context.Context, userID string) error {
	userKey := fmt.Sprintf(userSessionsKey, userID)
	ids, err := s.client.SMembers(ctx, userKey).Result()
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, fmt.Sprintf(sessionKey, id))
	}
	keys = append(keys, userKey)
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete sessions: %w", err)
	}
	return nil
}
