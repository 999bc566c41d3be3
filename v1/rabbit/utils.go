package rabbit

import (
	"context"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ConsumerMessage wraps one AMQP delivery.
type ConsumerMessage struct {
	body     []byte
	delivery *amqp.Delivery
}

// Consume starts consuming the configured queue.
func (rb *RabbitClient) Consume(ctx context.Context, wg *sync.WaitGroup) <-chan Message {
	return rb.consumeQueue(ctx, wg, rb.cfg.Channel.QueueName)
}

// consumeQueue re-subscribes whenever the delivery channel closes, which
// happens after a reconnect replaced the AMQP channel.
func (rb *RabbitClient) consumeQueue(ctx context.Context, wg *sync.WaitGroup, queueName string) <-chan Message {
	outChan := make(chan Message)

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(outChan)

		for {
			if rb.stopped(ctx, queueName) {
				return
			}

			rb.mu.RLock()
			ch := rb.channel
			rb.mu.RUnlock()

			msgs, err := ch.ConsumeWithContext(ctx, queueName,
				"",    // consumer
				false, // autoAck
				false, // exclusive
				false, // noLocal
				false, // noWait
				nil,
			)
			if err != nil {
				rb.logError(ctx, "Failed to establish consumer", err, map[string]interface{}{"queue": queueName})
				select {
				case <-time.After(500 * time.Millisecond):
				case <-ctx.Done():
				case <-rb.shutdownSignal:
				}
				continue
			}

			if !rb.forward(ctx, queueName, msgs, outChan) {
				return
			}
		}
	}()
	return outChan
}

// forward copies deliveries to out. It returns false when consumption must
// stop and true when msgs closed and a new subscription is needed.
func (rb *RabbitClient) forward(ctx context.Context, queueName string, msgs <-chan amqp.Delivery, out chan<- Message) bool {
	for {
		select {
		case <-ctx.Done():
			rb.logInfo(ctx, "Stopping consumer due to context cancellation", map[string]interface{}{"queue": queueName})
			return false
		case <-rb.shutdownSignal:
			rb.logInfo(ctx, "Stopping consumer due to shutdown signal", map[string]interface{}{"queue": queueName})
			return false
		case msg, ok := <-msgs:
			if !ok {
				return true
			}
			rb.observeOperation("consume", queueName, "", 0, nil, int64(len(msg.Body)))

			select {
			case out <- &ConsumerMessage{body: msg.Body, delivery: &msg}:
			case <-ctx.Done():
				_ = msg.Nack(false, true)
				return false
			case <-rb.shutdownSignal:
				_ = msg.Nack(false, true)
				return false
			}
		}
	}
}

func (rb *RabbitClient) stopped(ctx context.Context, queueName string) bool {
	select {
	case <-rb.shutdownSignal:
		rb.logInfo(ctx, "Stopping consumer due to shutdown signal", map[string]interface{}{"queue": queueName})
		return true
	case <-ctx.Done():
		rb.logInfo(ctx, "Stopping consumer due to context cancellation", map[string]interface{}{"queue": queueName})
		return true
	default:
		return false
	}
}

// Publish sends msg to the configured exchange. The first headers map, if any,
// becomes the AMQP headers.
func (rb *RabbitClient) Publish(ctx context.Context, msg []byte, headers ...map[string]interface{}) error {
	start := time.Now()
	var header amqp.Table
	if len(headers) > 0 {
		header = headers[0]
	}

	rb.mu.RLock()
	err := rb.channel.PublishWithContext(ctx, rb.cfg.Channel.ExchangeName, rb.cfg.Channel.RoutingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			Headers:      header,
			ContentType:  rb.cfg.Channel.ContentType,
			DeliveryMode: amqp.Persistent,
			Timestamp:    start,
			Body:         msg,
		},
	)
	rb.mu.RUnlock()

	rb.observeOperation("produce", rb.cfg.Channel.ExchangeName, rb.cfg.Channel.RoutingKey, time.Since(start), err, int64(len(msg)))
	if err != nil {
		return TranslateError(err)
	}
	return nil
}

// AckMsg acknowledges the delivery.
func (m *ConsumerMessage) AckMsg() error {
	return m.delivery.Ack(false)
}

// NackMsg rejects the delivery. Without requeue it goes to the dead letter exchange, if any.
func (m *ConsumerMessage) NackMsg(requeue bool) error {
	return m.delivery.Nack(false, requeue)
}

// Body returns the raw payload.
func (m *ConsumerMessage) Body() []byte {
	return m.body
}

// Header returns the AMQP headers.
func (m *ConsumerMessage) Header() map[string]interface{} {
	return m.delivery.Headers
}

func (rb *RabbitClient) logInfo(ctx context.Context, msg string, fields map[string]interface{}) {
	if rb.logger != nil {
		rb.logger.InfoWithContext(ctx, msg, nil, fields)
	}
}

func (rb *RabbitClient) logWarn(ctx context.Context, msg string, fields map[string]interface{}) {
	if rb.logger != nil {
		rb.logger.WarnWithContext(ctx, msg, nil, fields)
	}
}

func (rb *RabbitClient) logError(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	if rb.logger != nil {
		rb.logger.ErrorWithContext(ctx, msg, err, fields)
	}
}
