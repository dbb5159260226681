package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cmozaiq-saas/mvp-booster/internal/models"
	"github.com/cmozaiq-saas/mvp-booster/internal/utils"
)

const (
	// Redis key prefixes for session data.
	sessionKeyPrefix   = "admin_session:"
	userIndexKeyPrefix = "admin_user_sessions:"
)

// sessionJSON is the JSON-serializable representation of a Session stored in
// Redis. Timestamps are Unix seconds.
type sessionJSON struct {
	UserID    int   `json:"user_id"`
	CreatedAt int64 `json:"created_at"`
	ExpiresAt int64 `json:"expires_at"`
}

// RedisStore persists sessions in Redis. The value key expires via TTL on its
// own; a per-user set indexes live tokens so that password reset and user
// deletion can revoke everything a user holds.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a RedisStore on top of an established client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Create issues a new session with an absolute TTL.
func (s *RedisStore) Create(ctx context.Context, userID int, ttl time.Duration) (*models.Session, error) {
	token, err := utils.GenerateSessionToken()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	sess := &models.Session{
		Token:     token,
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	payload, err := json.Marshal(sessionJSON{
		UserID:    sess.UserID,
		CreatedAt: sess.CreatedAt.Unix(),
		ExpiresAt: sess.ExpiresAt.Unix(),
	})
	if err != nil {
		return nil, err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, sessionKeyPrefix+token, payload, ttl)
	pipe.SAdd(ctx, userIndexKey(userID), token)
	// The index set outlives its longest-lived member, then the reaper or
	// this refresh removes it.
	pipe.Expire(ctx, userIndexKey(userID), ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrPersistenceUnavailable, err)
	}
	return sess, nil
}

// Get resolves a token to a live session.
func (s *RedisStore) Get(ctx context.Context, token string) (*models.Session, error) {
	raw, err := s.client.Get(ctx, sessionKeyPrefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", utils.ErrPersistenceUnavailable, err)
	}

	var j sessionJSON
	if err := json.Unmarshal([]byte(raw), &j); err != nil {
		// Corrupt payload: treat as revoked rather than guessing.
		_ = s.Destroy(ctx, token)
		return nil, ErrNotFound
	}

	sess := &models.Session{
		Token:     token,
		UserID:    j.UserID,
		CreatedAt: time.Unix(j.CreatedAt, 0),
		ExpiresAt: time.Unix(j.ExpiresAt, 0),
	}
	if sess.Expired(time.Now()) {
		_ = s.Destroy(ctx, token)
		return nil, ErrNotFound
	}
	return sess, nil
}

// Destroy revokes a session and removes it from its user index.
func (s *RedisStore) Destroy(ctx context.Context, token string) error {
	raw, err := s.client.Get(ctx, sessionKeyPrefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("%w: %v", utils.ErrPersistenceUnavailable, err)
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, sessionKeyPrefix+token)
	var j sessionJSON
	if err := json.Unmarshal([]byte(raw), &j); err == nil {
		pipe.SRem(ctx, userIndexKey(j.UserID), token)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: %v", utils.ErrPersistenceUnavailable, err)
	}
	return nil
}

// DestroyAllForUser revokes all of a user's sessions except exceptToken.
func (s *RedisStore) DestroyAllForUser(ctx context.Context, userID int, exceptToken string) error {
	tokens, err := s.client.SMembers(ctx, userIndexKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("%w: %v", utils.ErrPersistenceUnavailable, err)
	}

	pipe := s.client.TxPipeline()
	for _, token := range tokens {
		if token == exceptToken {
			continue
		}
		pipe.Del(ctx, sessionKeyPrefix+token)
		pipe.SRem(ctx, userIndexKey(userID), token)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: %v", utils.ErrPersistenceUnavailable, err)
	}
	return nil
}

// PruneUserIndex walks the per-user index sets and drops tokens whose value
// key already expired. Value keys clean themselves up via TTL; only the set
// members can go stale.
func (s *RedisStore) PruneUserIndex(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, userIndexKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		indexKey := iter.Val()
		tokens, err := s.client.SMembers(ctx, indexKey).Result()
		if err != nil {
			return fmt.Errorf("%w: %v", utils.ErrPersistenceUnavailable, err)
		}
		for _, token := range tokens {
			n, err := s.client.Exists(ctx, sessionKeyPrefix+token).Result()
			if err != nil {
				return fmt.Errorf("%w: %v", utils.ErrPersistenceUnavailable, err)
			}
			if n == 0 {
				if err := s.client.SRem(ctx, indexKey, token).Err(); err != nil {
					return fmt.Errorf("%w: %v", utils.ErrPersistenceUnavailable, err)
				}
			}
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("%w: %v", utils.ErrPersistenceUnavailable, err)
	}
	return nil
}

func userIndexKey(userID int) string {
	return userIndexKeyPrefix + strconv.Itoa(userID)
}
