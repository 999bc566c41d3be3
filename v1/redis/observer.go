package redis

import (
	"time"

	"github.com/Aleph-Alpha/satmeta/v1/observability"
)

// observe reports a cache operation on key that began at start. Lookups pass
// whether they hit.
func (r *RedisClient) observe(operation, key string, start time.Time, err error, size int64, metadata map[string]interface{}) {
	if r == nil || r.observer == nil {
		return
	}
	r.observer.ObserveOperation(observability.OperationContext{
		Component: "redis",
		Operation: operation,
		Resource:  key,
		Duration:  time.Since(start),
		Error:     err,
		Size:      size,
		Metadata:  metadata,
	})
}
