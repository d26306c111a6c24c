package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps records as plain Redis strings under a key prefix.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// ConnectRedis initializes a Redis client from URL or host:port input
func ConnectRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	var client *redis.Client
	if strings.HasPrefix(redisURL, "redis://") || strings.HasPrefix(redisURL, "rediss://") {
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{Addr: redisURL})
	}

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

// NewRedisStore creates a RedisStore. prefix is prepended to every key.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(k string) string {
	return s.prefix + k
}

func (s *RedisStore) Get(ctx context.Context, key string) (json.RawMessage, bool, error) {
	value, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get record: %w", err)
	}
	return value, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value json.RawMessage) error {
	if err := s.client.Set(ctx, s.key(key), []byte(value), 0).Err(); err != nil {
		return fmt.Errorf("failed to set record: %w", err)
	}
	return nil
}

func (s *RedisStore) Remove(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to remove record: %w", err)
	}
	return nil
}

// SetMany runs every SET inside one MULTI/EXEC block
func (s *RedisStore) SetMany(ctx context.Context, values map[string]json.RawMessage) error {
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		for key, value := range values {
			p.Set(ctx, s.key(key), []byte(value), 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to set records: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
