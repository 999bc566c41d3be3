package recorder

import (
	"context"
	"sync"

	"github.com/Aleph-Alpha/satmeta/v1/kafka"
	"github.com/Aleph-Alpha/satmeta/v1/rabbit"
)

// Delivery is one message handed to the recorder by a transport.
type Delivery interface {
	Body() []byte
	AckMsg() error
	NackMsg(requeue bool) error
}

// Source streams deliveries until ctx is done. The channel is closed when the
// source stops; goroutines it starts are tracked by wg.
type Source interface {
	Deliveries(ctx context.Context, wg *sync.WaitGroup) <-chan Delivery
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, wg *sync.WaitGroup) <-chan Delivery

func (f SourceFunc) Deliveries(ctx context.Context, wg *sync.WaitGroup) <-chan Delivery {
	return f(ctx, wg)
}

// FromRabbit consumes the queue of client.
func FromRabbit(client rabbit.Client) Source {
	return SourceFunc(func(ctx context.Context, wg *sync.WaitGroup) <-chan Delivery {
		return adapt(ctx, wg, client.Consume(ctx, wg), func(m rabbit.Message) Delivery { return m })
	})
}

// FromKafka consumes the topic of client. Kafka has no per-message reject:
// a rejected record without requeue is committed so the group moves past it,
// a requeued one is left uncommitted.
func FromKafka(client kafka.Client) Source {
	return SourceFunc(func(ctx context.Context, wg *sync.WaitGroup) <-chan Delivery {
		return adapt(ctx, wg, client.Consume(ctx, wg), func(m kafka.Message) Delivery { return kafkaDelivery{m} })
	})
}

type kafkaDelivery struct {
	kafka.Message
}

func (d kafkaDelivery) AckMsg() error {
	return d.CommitMsg()
}

func (d kafkaDelivery) NackMsg(requeue bool) error {
	if requeue {
		return nil
	}
	return d.CommitMsg()
}

func adapt[M any](ctx context.Context, wg *sync.WaitGroup, in <-chan M, wrap func(M) Delivery) <-chan Delivery {
	out := make(chan Delivery)
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(out)
		for m := range in {
			select {
			case out <- wrap(m):
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
