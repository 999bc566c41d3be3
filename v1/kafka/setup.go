package kafka

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl"
	"github.com/segmentio/kafka-go/sasl/plain"
	"github.com/segmentio/kafka-go/sasl/scram"

	"github.com/Aleph-Alpha/satmeta/v1/observability"
)

var (
	ErrNoBrokers       = errors.New("kafka: no brokers configured")
	ErrNoTopic         = errors.New("kafka: no topic configured")
	ErrNotProducer     = errors.New("kafka: client was created as a consumer")
	ErrUnsupportedSASL = errors.New("kafka: unsupported SASL mechanism")
)

// KafkaClient reads from or writes to one topic.
type KafkaClient struct {
	cfg Config

	mu     sync.RWMutex
	reader *kafka.Reader
	writer *kafka.Writer

	shutdownSignal    chan struct{}
	closeShutdownOnce sync.Once

	logger   Logger
	observer observability.Observer
}

// NewClient creates a reader or a writer for cfg.Topic. The brokers are
// contacted lazily on the first fetch or write.
func NewClient(cfg Config, logger Logger, observer observability.Observer) (*KafkaClient, error) {
	if len(cfg.Brokers) == 0 {
		return nil, ErrNoBrokers
	}
	if cfg.Topic == "" {
		return nil, ErrNoTopic
	}
	cfg = cfg.withDefaults()

	var tlsConfig *tls.Config
	var err error
	if cfg.TLS.Enabled {
		tlsConfig, err = createTLSConfig(cfg.TLS)
		if err != nil {
			return nil, fmt.Errorf("failed to create TLS config: %w", err)
		}
	}

	var mechanism sasl.Mechanism
	if cfg.SASL.Enabled {
		mechanism, err = createSASLMechanism(cfg.SASL)
		if err != nil {
			return nil, err
		}
	}

	k := &KafkaClient{
		cfg:            cfg,
		shutdownSignal: make(chan struct{}),
		logger:         logger,
		observer:       observer,
	}

	dialer := &kafka.Dialer{TLS: tlsConfig, SASLMechanism: mechanism}
	if cfg.IsConsumer {
		k.reader = kafka.NewReader(kafka.ReaderConfig{
			Brokers:     cfg.Brokers,
			Topic:       cfg.Topic,
			GroupID:     cfg.GroupID,
			MinBytes:    cfg.MinBytes,
			MaxBytes:    cfg.MaxBytes,
			MaxWait:     cfg.MaxWait,
			StartOffset: cfg.StartOffset,
			Dialer:      dialer,
			ErrorLogger: k.errorLogger(),
		})
		k.logInfo("Kafka consumer initialized", map[string]interface{}{"topic": cfg.Topic, "group_id": cfg.GroupID})
	} else {
		k.writer = &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafka.LeastBytes{},
			MaxAttempts:  cfg.MaxAttempts,
			WriteTimeout: cfg.WriteTimeout,
			RequiredAcks: kafka.RequireAll,
			Transport:    &kafka.Transport{TLS: tlsConfig, SASL: mechanism},
			ErrorLogger:  k.errorLogger(),
		}
		k.logInfo("Kafka producer initialized", map[string]interface{}{"topic": cfg.Topic})
	}

	return k, nil
}

func (k *KafkaClient) errorLogger() kafka.LoggerFunc {
	return func(msg string, args ...interface{}) {
		if k.logger == nil {
			return
		}
		k.logger.Error("Kafka internal error", nil, map[string]interface{}{
			"error": fmt.Sprintf(msg, args...),
		})
	}
}

func createTLSConfig(cfg TLSConfig) (*tls.Config, error) {
	tlsConfig := &tls.Config{
		InsecureSkipVerify: cfg.InsecureSkipVerify, //nolint:gosec // opt-in for test clusters
		MinVersion:         tls.VersionTLS12,
	}

	if cfg.CACertPath != "" {
		caCert, err := os.ReadFile(cfg.CACertPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA cert: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("failed to parse CA cert")
		}
		tlsConfig.RootCAs = pool
	}

	if cfg.ClientCertPath != "" && cfg.ClientKeyPath != "" {
		cert, err := tls.LoadX509KeyPair(cfg.ClientCertPath, cfg.ClientKeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load client cert: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	return tlsConfig, nil
}

func createSASLMechanism(cfg SASLConfig) (sasl.Mechanism, error) {
	switch cfg.Mechanism {
	case "PLAIN":
		return plain.Mechanism{Username: cfg.Username, Password: cfg.Password}, nil
	case "SCRAM-SHA-256":
		return scram.Mechanism(scram.SHA256, cfg.Username, cfg.Password)
	case "SCRAM-SHA-512":
		return scram.Mechanism(scram.SHA512, cfg.Username, cfg.Password)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedSASL, cfg.Mechanism)
	}
}

// GracefulShutdown stops Consume and closes the reader or writer.
func (k *KafkaClient) GracefulShutdown() {
	k.closeShutdownOnce.Do(func() {
		close(k.shutdownSignal)
	})

	k.mu.Lock()
	defer k.mu.Unlock()

	if k.reader != nil {
		if err := k.reader.Close(); err != nil {
			k.logError("Failed to close kafka reader", err, nil)
		}
		k.reader = nil
	}
	if k.writer != nil {
		if err := k.writer.Close(); err != nil {
			k.logError("Failed to close kafka writer", err, nil)
		}
		k.writer = nil
	}
	k.logInfo("Kafka client closed", nil)
}

func (k *KafkaClient) shuttingDown() bool {
	select {
	case <-k.shutdownSignal:
		return true
	default:
		return false
	}
}

// stopOnShutdown derives a context that is cancelled when the client shuts down.
func (k *KafkaClient) stopOnShutdown(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	go func() {
		select {
		case <-k.shutdownSignal:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
