package rabbit

import (
	"time"

	"github.com/Aleph-Alpha/satmeta/v1/observability"
)

// observeOperation notifies the observer about a broker operation if one is configured.
func (rb *RabbitClient) observeOperation(operation, resource, subResource string, duration time.Duration, err error, size int64) {
	if rb == nil || rb.observer == nil {
		return
	}
	rb.observer.ObserveOperation(observability.OperationContext{
		Component:   "rabbit",
		Operation:   operation,
		Resource:    resource,
		SubResource: subResource,
		Duration:    duration,
		Error:       err,
		Size:        size,
	})
}
