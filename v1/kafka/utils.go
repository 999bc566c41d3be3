package kafka

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// ConsumerMessage wraps a fetched record.
type ConsumerMessage struct {
	msg    kafka.Message
	client *KafkaClient
}

// Consume fetches messages one at a time. Fetch errors other than
// cancellation are logged and retried after a short pause.
func (k *KafkaClient) Consume(ctx context.Context, wg *sync.WaitGroup) <-chan Message {
	out := make(chan Message)

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(out)

		ctx, cancel := k.stopOnShutdown(ctx)
		defer cancel()

		k.mu.RLock()
		reader := k.reader
		k.mu.RUnlock()
		if reader == nil {
			k.logError("Kafka consume called without a reader", nil, nil)
			return
		}

		for {
			start := time.Now()
			msg, err := reader.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil || errors.Is(err, context.Canceled) || k.shuttingDown() {
					k.logInfo("Stopping kafka consumer", map[string]interface{}{"topic": k.cfg.Topic})
					return
				}
				k.observeOperation("consume", k.cfg.Topic, "", time.Since(start), err, 0)
				k.logError("Failed to fetch kafka message", err, map[string]interface{}{"topic": k.cfg.Topic})
				select {
				case <-time.After(time.Second):
					continue
				case <-ctx.Done():
					return
				}
			}
			k.observeOperation("consume", msg.Topic, "", time.Since(start), nil, int64(len(msg.Value)))

			select {
			case out <- &ConsumerMessage{msg: msg, client: k}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Publish writes value under key to the configured topic.
func (k *KafkaClient) Publish(ctx context.Context, key string, value []byte, headers ...map[string]string) error {
	k.mu.RLock()
	writer := k.writer
	k.mu.RUnlock()
	if writer == nil {
		return ErrNotProducer
	}

	msg := kafka.Message{Key: []byte(key), Value: value}
	for _, h := range headers {
		for name, v := range h {
			msg.Headers = append(msg.Headers, kafka.Header{Key: name, Value: []byte(v)})
		}
	}

	start := time.Now()
	err := writer.WriteMessages(ctx, msg)
	k.observeOperation("produce", k.cfg.Topic, "", time.Since(start), err, int64(len(value)))
	return err
}

// CommitMsg commits the offset for the consumer group. Readers without a
// group have nothing to commit.
func (m *ConsumerMessage) CommitMsg() error {
	if m.client.cfg.GroupID == "" {
		return nil
	}
	m.client.mu.RLock()
	reader := m.client.reader
	m.client.mu.RUnlock()
	if reader == nil {
		return errors.New("kafka: reader closed")
	}
	return reader.CommitMessages(context.Background(), m.msg)
}

func (m *ConsumerMessage) Body() []byte {
	return m.msg.Value
}

func (m *ConsumerMessage) Key() string {
	return string(m.msg.Key)
}

func (m *ConsumerMessage) Header() map[string]string {
	h := make(map[string]string, len(m.msg.Headers))
	for _, header := range m.msg.Headers {
		h[header.Key] = string(header.Value)
	}
	return h
}

func (k *KafkaClient) logInfo(msg string, fields map[string]interface{}) {
	if k.logger != nil {
		k.logger.Info(msg, nil, fields)
	}
}

func (k *KafkaClient) logError(msg string, err error, fields map[string]interface{}) {
	if k.logger != nil {
		k.logger.Error(msg, err, fields)
	}
}
