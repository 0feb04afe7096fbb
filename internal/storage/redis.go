package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisStorage struct {
	redisClient *redis.Client
	keyPrefix   string
	ttl         time.Duration
}

// NewRedisStorage stores each key under keyPrefix. A zero ttl keeps values forever.
func NewRedisStorage(redisClient *redis.Client, keyPrefix string, ttl time.Duration) Storage {
	return &redisStorage{
		redisClient: redisClient,
		keyPrefix:   keyPrefix,
		ttl:         ttl,
	}
}

func (s *redisStorage) Get(ctx context.Context, key string) (string, error) {
	val, err := s.redisClient.Get(ctx, s.keyPrefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to get %s: %w", key, err)
	}
	return val, nil
}

func (s *redisStorage) Set(ctx context.Context, key, value string) error {
	if err := s.redisClient.Set(ctx, s.keyPrefix+key, value, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

func (s *redisStorage) Remove(ctx context.Context, key string) error {
	if err := s.redisClient.Del(ctx, s.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}
