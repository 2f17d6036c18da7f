package sidecar

import (
	"context"
	"errors"
	"fmt"

	"github.com/JonMunkholm/matchboard/internal/core"
	"github.com/JonMunkholm/matchboard/internal/logging"
	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey is the key used when none is configured.
const DefaultRedisKey = "matchboard:headers"

// RedisStore keeps the header labels under a single Redis key.
type RedisStore struct {
	client *redis.Client
	key    string
}

var _ core.HeaderStore = (*RedisStore)(nil)

// NewRedisStore connects to redisURL (redis://[:password@]host:port/db) and
// verifies the connection.
func NewRedisStore(ctx context.Context, redisURL, key string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisStoreWithClient(client, key), nil
}

// NewRedisStoreWithClient wraps an existing client.
func NewRedisStoreWithClient(client *redis.Client, key string) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{client: client, key: key}
}

// SaveHeaders replaces the stored document.
func (s *RedisStore) SaveHeaders(ctx context.Context, labels []string) error {
	data, err := encode(labels)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("save headers: %w", err)
	}
	return nil
}

// LoadHeaders reads the labels. A missing or corrupt value yields none.
func (s *RedisStore) LoadHeaders(ctx context.Context) []string {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return []string{}
	}
	if err != nil {
		logging.WithFields(ctx, "key", s.key).Warn("headers unavailable", "error", err)
		return []string{}
	}

	labels, err := decode(data)
	if err != nil {
		logging.WithFields(ctx, "key", s.key).Warn("headers value corrupt", "error", err)
		return []string{}
	}
	return labels
}

// Close closes the client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
