package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/niccoates/dail/models"
)

// RedisStore — реализация HashStore поверх Redis.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) HSet(ctx context.Context, key, field, value string) error {
	if err := s.rdb.HSet(ctx, key, field, value).Err(); err != nil {
		return fmt.Errorf("%w: hset %s: %v", models.ErrStorage, key, err)
	}
	return nil
}

func (s *RedisStore) HGet(ctx context.Context, key, field string) (string, error) {
	val, err := s.rdb.HGet(ctx, key, field).Result()
	if errors.Is(err, redis.Nil) {
		return "", models.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: hget %s: %v", models.ErrStorage, key, err)
	}
	return val, nil
}

func (s *RedisStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	val, err := s.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: hgetall %s: %v", models.ErrStorage, key, err)
	}
	if val == nil {
		val = map[string]string{}
	}
	return val, nil
}

func (s *RedisStore) HDel(ctx context.Context, key string, fields ...string) error {
	if err := s.rdb.HDel(ctx, key, fields...).Err(); err != nil {
		return fmt.Errorf("%w: hdel %s: %v", models.ErrStorage, key, err)
	}
	return nil
}

func (s *RedisStore) HExists(ctx context.Context, key, field string) (bool, error) {
	ok, err := s.rdb.HExists(ctx, key, field).Result()
	if err != nil {
		return false, fmt.Errorf("%w: hexists %s: %v", models.ErrStorage, key, err)
	}
	return ok, nil
}

func (s *RedisStore) DeleteMatching(ctx context.Context, pattern string) error {
	keys, err := s.rdb.Keys(ctx, pattern).Result()
	if err != nil {
		return fmt.Errorf("%w: keys %s: %v", models.ErrStorage, pattern, err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("%w: del: %v", models.ErrStorage, err)
	}
	return nil
}
