package mongodb

import (
	"time"

	"github.com/Aleph-Alpha/satmeta/v1/observability"
)

// observeOperation notifies the observer about a store round trip if one is configured.
func (m *MongoDB) observeOperation(operation, resource, subResource string, duration time.Duration, err error, size int64) {
	if m == nil || m.observer == nil {
		return
	}

	m.observer.ObserveOperation(observability.OperationContext{
		Component:   "mongodb",
		Operation:   operation,
		Resource:    resource,
		SubResource: subResource,
		Duration:    duration,
		Error:       err,
		Size:        size,
	})
}

// WithObserver sets the observer and returns m for chaining.
func (m *MongoDB) WithObserver(observer observability.Observer) *MongoDB {
	m.observer = observer
	return m
}
