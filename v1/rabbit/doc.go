// Package rabbit is the RabbitMQ subscription transport of the recorder.
//
// NewClient dials the broker, declares the exchange, the queue and an optional
// dead letter queue, and binds them. Consume streams deliveries; the recorder
// acknowledges each one after it has been stored and rejects it without
// requeue when storing fails, which routes it to the dead letter queue.
//
// RetryConnection watches the connection and reconnects with exponential
// backoff. Consume re-subscribes on the new channel by itself.
package rabbit
