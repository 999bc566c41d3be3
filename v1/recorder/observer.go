package recorder

import (
	"time"

	"github.com/Aleph-Alpha/satmeta/v1/observability"
)

func (r *Recorder) observeOperation(operation string, duration time.Duration, err error, deleted int64) {
	if r.observer == nil {
		return
	}
	var metadata map[string]interface{}
	if deleted > 0 {
		metadata = map[string]interface{}{"deleted": deleted}
	}
	r.observer.ObserveOperation(observability.OperationContext{
		Component: "recorder",
		Operation: operation,
		Duration:  duration,
		Error:     err,
		Size:      deleted,
		Metadata:  metadata,
	})
}
