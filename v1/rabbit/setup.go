package rabbit

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Aleph-Alpha/satmeta/v1/observability"
)

const heartbeat = 2 * time.Second

// RabbitClient is a consumer/publisher bound to one exchange and queue. The
// connection is re-established in RetryConnection when the broker drops it.
type RabbitClient struct {
	cfg Config

	mu      sync.RWMutex
	conn    *amqp.Connection
	channel *amqp.Channel

	shutdownSignal    chan struct{}
	closeShutdownOnce sync.Once

	logger   Logger
	observer observability.Observer

	newBackOff func() backoff.BackOff
}

// NewClient connects to the broker and declares the topology from cfg.
// logger and observer may be nil.
func NewClient(cfg Config, logger Logger, observer observability.Observer) (*RabbitClient, error) {
	rb := &RabbitClient{
		cfg:            cfg,
		shutdownSignal: make(chan struct{}),
		logger:         logger,
		observer:       observer,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 500 * time.Millisecond
			b.MaxInterval = 30 * time.Second
			b.MaxElapsedTime = 0
			return b
		},
	}

	rb.logInfo(context.Background(), "Connecting to Rabbit", map[string]interface{}{
		"host":  cfg.Connection.Host,
		"queue": cfg.Channel.QueueName,
	})

	conn, err := newConnection(cfg)
	if err != nil {
		rb.logError(context.Background(), "error in connecting to rabbit", err, nil)
		return nil, TranslateError(err)
	}

	ch, err := connectToChannel(conn, cfg)
	if err != nil {
		_ = conn.Close()
		rb.logError(context.Background(), "error in declaring channel", err, nil)
		return nil, err
	}

	rb.conn = conn
	rb.channel = ch
	rb.logInfo(context.Background(), "Connected to Rabbit", nil)
	return rb, nil
}

// amqpURL builds the connection URL; credentials are escaped.
func amqpURL(cfg Connection) string {
	scheme := "amqp"
	if cfg.IsSSLEnabled {
		scheme = "amqps"
	}
	u := url.URL{
		Scheme: scheme,
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   cfg.Host + ":" + strconv.FormatUint(uint64(cfg.Port), 10),
		Path:   "/" + cfg.VHost,
	}
	return u.String()
}

func newConnection(cfg Config) (*amqp.Connection, error) {
	amqpCfg := amqp.Config{Heartbeat: heartbeat}

	if cfg.Connection.IsSSLEnabled && cfg.Connection.UseCert {
		tlsConfig, err := loadTLSConfig(cfg.Connection)
		if err != nil {
			return nil, err
		}
		amqpCfg.TLSClientConfig = tlsConfig
	}

	conn, err := amqp.DialConfig(amqpURL(cfg.Connection), amqpCfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	return conn, nil
}

func loadTLSConfig(cfg Connection) (*tls.Config, error) {
	caCert, err := os.ReadFile(cfg.CACertPath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read CA cert: %w", ErrCertificateError, err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caCert) {
		return nil, fmt.Errorf("%w: no certificates found in %s", ErrCertificateError, cfg.CACertPath)
	}

	cert, err := tls.LoadX509KeyPair(cfg.ClientCertPath, cfg.ClientKeyPath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load client cert: %w", ErrCertificateError, err)
	}

	return &tls.Config{
		RootCAs:      pool,
		Certificates: []tls.Certificate{cert},
		ServerName:   cfg.ServerName,
		MinVersion:   tls.VersionTLS12,
	}, nil
}

func connectToChannel(conn *amqp.Connection, cfg Config) (*amqp.Channel, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to create channel: %w", err)
	}

	if !cfg.Channel.IsConsumer {
		return ch, nil
	}

	if err = ch.ExchangeDeclare(cfg.Channel.ExchangeName, cfg.Channel.ExchangeType,
		true,  // durable
		false, // autoDelete
		false, // internal
		false, // noWait
		nil,
	); err != nil {
		return nil, fmt.Errorf("%w: exchange %s: %w", ErrDeclareFailed, cfg.Channel.ExchangeName, err)
	}

	queueArgs := amqp.Table{}
	if cfg.DeadLetter.ExchangeName != "" {
		if err = declareDeadLetter(ch, cfg.DeadLetter); err != nil {
			return nil, err
		}
		queueArgs["x-dead-letter-exchange"] = cfg.DeadLetter.ExchangeName
		queueArgs["x-dead-letter-routing-key"] = cfg.DeadLetter.RoutingKey
		if cfg.DeadLetter.Ttl > 0 {
			queueArgs["x-message-ttl"] = int32(cfg.DeadLetter.Ttl * 1000)
		}
	}

	if _, err = ch.QueueDeclare(cfg.Channel.QueueName,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		queueArgs,
	); err != nil {
		return nil, fmt.Errorf("%w: queue %s: %w", ErrDeclareFailed, cfg.Channel.QueueName, err)
	}

	if err = ch.QueueBind(cfg.Channel.QueueName, cfg.Channel.RoutingKey, cfg.Channel.ExchangeName, false, nil); err != nil {
		return nil, fmt.Errorf("%w: queue %s: %w", ErrBindFailed, cfg.Channel.QueueName, err)
	}

	if cfg.Channel.PrefetchCount > 0 {
		if err = ch.Qos(cfg.Channel.PrefetchCount, 0, false); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrQoSFailed, err)
		}
	}

	return ch, nil
}

func declareDeadLetter(ch *amqp.Channel, dl DeadLetter) error {
	if err := ch.ExchangeDeclare(dl.ExchangeName, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("%w: dead letter exchange %s: %w", ErrDeclareFailed, dl.ExchangeName, err)
	}
	if _, err := ch.QueueDeclare(dl.QueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("%w: dead letter queue %s: %w", ErrDeclareFailed, dl.QueueName, err)
	}
	if err := ch.QueueBind(dl.QueueName, dl.RoutingKey, dl.ExchangeName, false, nil); err != nil {
		return fmt.Errorf("%w: dead letter queue %s: %w", ErrBindFailed, dl.QueueName, err)
	}
	return nil
}

// RetryConnection blocks until shutdown or ctx is done, re-dialing with
// exponential backoff whenever the broker closes the connection.
func (rb *RabbitClient) RetryConnection(ctx context.Context) {
	defer rb.closeShutdownOnce.Do(func() {
		close(rb.shutdownSignal)
	})

	for {
		rb.mu.RLock()
		conn := rb.conn
		rb.mu.RUnlock()

		errChan := conn.NotifyClose(make(chan *amqp.Error, 1))

		select {
		case <-rb.shutdownSignal:
			rb.logInfo(ctx, "Stopping RetryConnection loop due to shutdown signal", nil)
			return
		case <-ctx.Done():
			rb.logInfo(ctx, "Stopping RetryConnection loop due to context cancellation", nil)
			return
		case amqpErr := <-errChan:
			rb.logWarn(ctx, "RabbitMQ connection closed, retrying", map[string]interface{}{
				"error": fmt.Sprint(amqpErr),
			})
		}

		if err := rb.reconnect(ctx); err != nil {
			rb.logInfo(ctx, "Stopping RetryConnection loop", map[string]interface{}{"reason": err.Error()})
			return
		}
		rb.logInfo(ctx, "Successfully reconnected to RabbitMQ", nil)
	}
}

func (rb *RabbitClient) reconnect(ctx context.Context) error {
	stop, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-rb.shutdownSignal:
			cancel()
		case <-stop.Done():
		}
	}()

	op := func() error {
		start := time.Now()
		conn, err := newConnection(rb.cfg)
		if err == nil {
			var ch *amqp.Channel
			ch, err = connectToChannel(conn, rb.cfg)
			if err != nil {
				_ = conn.Close()
			} else {
				rb.mu.Lock()
				if rb.channel != nil {
					_ = rb.channel.Close()
				}
				rb.conn, rb.channel = conn, ch
				rb.mu.Unlock()
			}
		}
		rb.observeOperation("reconnect", rb.cfg.Connection.Host, "", time.Since(start), err, 0)
		if err != nil {
			rb.logError(ctx, "RabbitMQ reconnection failed", err, nil)
		}
		return err
	}

	return backoff.Retry(op, backoff.WithContext(rb.newBackOff(), stop))
}
