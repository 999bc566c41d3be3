package kafka

import (
	"time"

	"github.com/Aleph-Alpha/satmeta/v1/observability"
)

func (k *KafkaClient) observeOperation(operation, resource, subResource string, duration time.Duration, err error, size int64) {
	if k == nil || k.observer == nil {
		return
	}
	k.observer.ObserveOperation(observability.OperationContext{
		Component:   "kafka",
		Operation:   operation,
		Resource:    resource,
		SubResource: subResource,
		Duration:    duration,
		Error:       err,
		Size:        size,
	})
}
