package redis

import (
	"errors"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrCacheMiss is returned by GetJSON when the key does not exist.
	ErrCacheMiss = errors.New("redis: cache miss")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("redis: client is closed")
)

// IsCacheMiss reports whether err means the key was absent.
func IsCacheMiss(err error) bool {
	return errors.Is(err, ErrCacheMiss) || errors.Is(err, redis.Nil)
}

// IsClosedError reports whether err comes from a closed client.
func IsClosedError(err error) bool {
	return errors.Is(err, ErrClosed) || errors.Is(err, redis.ErrClosed)
}
