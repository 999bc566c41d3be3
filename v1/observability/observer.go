// Package observability defines the hook through which satmeta components
// report the operations they perform.
//
// Components hold an optional Observer and call it after every store, cache
// or broker round trip. The metrics package ships the Prometheus-backed
// implementation; tests usually plug in a recording observer.
package observability

import "time"

// OperationContext describes one completed operation.
type OperationContext struct {
	// Component is the reporting package, e.g. "mongodb", "recorder", "redis".
	Component string

	// Operation is what was done, e.g. "insert", "delete", "list_databases".
	Operation string

	// Resource is the primary target: a database, a collection, a queue or a key.
	Resource string

	// SubResource narrows Resource where it helps, e.g. the collection inside a database.
	SubResource string

	Duration time.Duration

	// Error is nil on success.
	Error error

	// Size is a payload size in bytes or an item count, depending on the operation.
	Size int64

	Metadata map[string]interface{}
}

// Observer receives OperationContext values. Implementations must be safe for
// concurrent use.
type Observer interface {
	ObserveOperation(ctx OperationContext)
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(ctx OperationContext)

// ObserveOperation calls f(ctx).
func (f ObserverFunc) ObserveOperation(ctx OperationContext) { f(ctx) }

// Multi fans an operation out to every non-nil observer.
func Multi(observers ...Observer) Observer {
	filtered := make([]Observer, 0, len(observers))
	for _, o := range observers {
		if o != nil {
			filtered = append(filtered, o)
		}
	}
	return ObserverFunc(func(ctx OperationContext) {
		for _, o := range filtered {
			o.ObserveOperation(ctx)
		}
	})
}
