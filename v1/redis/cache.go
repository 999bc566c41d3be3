package redis

import "context"

// Cache is the read-through store used by the API for responses that are
// expensive to compute and change only when new files are recorded.
type Cache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) error
	SetJSON(ctx context.Context, key string, value interface{}) error
	Invalidate(ctx context.Context, keys ...string) error
}

// NoopCache never stores anything. It stands in when caching is disabled.
type NoopCache struct{}

func (NoopCache) GetJSON(context.Context, string, interface{}) error { return ErrCacheMiss }
func (NoopCache) SetJSON(context.Context, string, interface{}) error { return nil }
func (NoopCache) Invalidate(context.Context, ...string) error        { return nil }

// Remember returns the cached value for key, or calls load and caches its
// result. Cache failures fall back to load; only load errors are returned.
func Remember[T any](ctx context.Context, c Cache, key string, load func(context.Context) (T, error)) (T, error) {
	var cached T
	if c == nil {
		return load(ctx)
	}
	if err := c.GetJSON(ctx, key, &cached); err == nil {
		return cached, nil
	}

	v, err := load(ctx)
	if err != nil {
		return v, err
	}
	_ = c.SetJSON(ctx, key, v)
	return v, nil
}

// Keys of the cached distinct-value listings. Anything that changes the set
// of recorded documents should invalidate DistinctKeys.
const (
	KeyPlatforms = "platforms"
	KeySensors   = "sensors"
)

// DistinctKeys lists every key derived from the recorded documents.
var DistinctKeys = []string{KeyPlatforms, KeySensors}
