package kafka

import (
	"context"
	"sync"
)

// Client is the subscription surface the recorder consumes.
type Client interface {
	// Consume fetches messages until ctx is done or the client shuts down.
	Consume(ctx context.Context, wg *sync.WaitGroup) <-chan Message

	// Publish writes one message with the given key.
	Publish(ctx context.Context, key string, value []byte, headers ...map[string]string) error

	GracefulShutdown()
}

// Message is one fetched record. CommitMsg marks it processed for the group.
type Message interface {
	CommitMsg() error
	Body() []byte
	Key() string
	Header() map[string]string
}
