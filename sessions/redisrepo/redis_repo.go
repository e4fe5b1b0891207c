package redisrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jrsteele09/fedteam/sessions"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "fedteam:session:"

var _ sessions.Repo = (*RedisSessionRepo)(nil)

// RedisSessionRepo stores each record as one JSON value so a write or clear
// is a single SET or DEL.
type RedisSessionRepo struct {
	client *redis.Client
	ttl    time.Duration
}

// NewClient parses a redis:// URI.
func NewClient(redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("[redisrepo NewClient] parse url: %w", err)
	}
	return redis.NewClient(opt), nil
}

func New(client *redis.Client, ttl time.Duration) *RedisSessionRepo {
	return &RedisSessionRepo{client: client, ttl: ttl}
}

func Key(sessionID string) string {
	return keyPrefix + sessionID
}

func (r *RedisSessionRepo) Get(ctx context.Context, sessionID string) (sessions.Record, error) {
	raw, err := r.client.Get(ctx, Key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return sessions.Record{}, sessions.ErrNotFound
	}
	if err != nil {
		return sessions.Record{}, fmt.Errorf("[RedisSessionRepo Get] %w", err)
	}

	var rec sessions.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return sessions.Record{}, fmt.Errorf("[RedisSessionRepo Get] decode record: %w", err)
	}
	return rec, nil
}

func (r *RedisSessionRepo) Upsert(ctx context.Context, sessionID string, record sessions.Record) error {
	if sessionID == "" {
		return fmt.Errorf("sessionID is required")
	}
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("[RedisSessionRepo Upsert] encode record: %w", err)
	}
	if err := r.client.Set(ctx, Key(sessionID), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("[RedisSessionRepo Upsert] %w", err)
	}
	return nil
}

func (r *RedisSessionRepo) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, Key(sessionID)).Err(); err != nil {
		return fmt.Errorf("[RedisSessionRepo Delete] %w", err)
	}
	return nil
}

// Ping checks connectivity. The server pings at startup, from the health
// check, and at most every few seconds before resolving page sessions.
func (r *RedisSessionRepo) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
