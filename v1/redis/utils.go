package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Ping checks that the server answers.
func (r *RedisClient) Ping(ctx context.Context) error {
	if r.isClosed() {
		return ErrClosed
	}
	start := time.Now()
	err := r.client.Ping(ctx).Err()
	r.observe("ping", "", start, err, 0, nil)
	return err
}

// GetJSON decodes the value stored under key into dest. A missing key yields
// ErrCacheMiss.
func (r *RedisClient) GetJSON(ctx context.Context, key string, dest interface{}) error {
	if r.isClosed() {
		return ErrClosed
	}
	start := time.Now()
	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		r.observe("get", key, start, nil, 0, map[string]interface{}{"hit": false})
		return ErrCacheMiss
	}
	r.observe("get", key, start, err, int64(len(data)), map[string]interface{}{"hit": err == nil})
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	return nil
}

// SetJSON stores value as JSON under key with the configured TTL.
func (r *RedisClient) SetJSON(ctx context.Context, key string, value interface{}) error {
	if r.isClosed() {
		return ErrClosed
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	start := time.Now()
	err = r.client.Set(ctx, r.key(key), data, r.cfg.TTL).Err()
	r.observe("set", key, start, err, int64(len(data)), nil)
	return err
}

// Invalidate removes keys. Missing keys are not an error.
func (r *RedisClient) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if r.isClosed() {
		return ErrClosed
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = r.key(k)
	}

	start := time.Now()
	n, err := r.client.Del(ctx, full...).Result()
	r.observe("delete", keys[0], start, err, n, nil)
	return err
}
