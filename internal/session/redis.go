package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/esportlife/site/internal/domain"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "session:"

// RedisStore keeps sessions in Redis so several server instances can share
// them. Redis key expiry enforces the TTL.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
	now func() time.Time
}

// NewRedisStore creates a RedisStore on an existing client.
func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl, now: time.Now}
}

// OpenRedisStore parses a redis:// URL, connects and pings the server.
func OpenRedisStore(ctx context.Context, url string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisStore(rdb, ttl), nil
}

func (s *RedisStore) Create(ctx context.Context, userID int64, displayName string) (*domain.Session, error) {
	token, err := NewToken()
	if err != nil {
		return nil, err
	}

	now := s.now()
	sess := domain.Session{
		Token:       token,
		UserID:      userID,
		DisplayName: displayName,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.ttl),
	}

	payload, err := json.Marshal(&sess)
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}
	if err := s.rdb.Set(ctx, redisKey(token), payload, s.ttl).Err(); err != nil {
		return nil, fmt.Errorf("%w: store session: %w", domain.ErrStorageUnavailable, err)
	}
	return &sess, nil
}

func (s *RedisStore) Lookup(ctx context.Context, token string) (*domain.Session, error) {
	data, err := s.rdb.Get(ctx, redisKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%w: load session: %w", domain.ErrStorageUnavailable, err)
	}

	var sess domain.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	sess.Token = token
	if sess.Expired(s.now()) {
		return nil, domain.ErrNotFound
	}
	return &sess, nil
}

func (s *RedisStore) Delete(ctx context.Context, token string) error {
	if err := s.rdb.Del(ctx, redisKey(token)).Err(); err != nil {
		return fmt.Errorf("%w: delete session: %w", domain.ErrStorageUnavailable, err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

func redisKey(token string) string {
	return redisKeyPrefix + token
}
