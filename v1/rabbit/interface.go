package rabbit

import (
	"context"
	"sync"
)

// Client is the subscription surface the recorder consumes.
type Client interface {
	// Consume delivers messages from the configured queue until ctx is done or
	// the client shuts down. The channel is closed when consumption stops.
	Consume(ctx context.Context, wg *sync.WaitGroup) <-chan Message

	// Publish sends msg to the configured exchange and routing key.
	Publish(ctx context.Context, msg []byte, headers ...map[string]interface{}) error

	// RetryConnection watches the connection and reconnects until shutdown.
	RetryConnection(ctx context.Context)

	GracefulShutdown()
}

// Message is one delivery. It must be acknowledged or rejected exactly once.
type Message interface {
	AckMsg() error
	NackMsg(requeue bool) error
	Body() []byte
	Header() map[string]interface{}
}
