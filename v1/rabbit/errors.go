package rabbit

import (
	"errors"
	"net"
	"strings"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Common rabbit errors. TranslateError maps driver errors onto these.
var (
	ErrConnectionFailed     = errors.New("connection failed")
	ErrConnectionClosed     = errors.New("connection closed")
	ErrChannelClosed        = errors.New("channel closed")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrAccessDenied         = errors.New("access denied")
	ErrVirtualHostNotFound  = errors.New("virtual host not found")
	ErrNotFound             = errors.New("exchange or queue not found")
	ErrPreconditionFailed   = errors.New("precondition failed")
	ErrResourceLocked       = errors.New("resource locked")
	ErrMessageTooLarge      = errors.New("message too large")
	ErrPublishFailed        = errors.New("publish failed")
	ErrDeclareFailed        = errors.New("declare failed")
	ErrBindFailed           = errors.New("bind failed")
	ErrQoSFailed            = errors.New("QoS failed")
	ErrCertificateError     = errors.New("certificate error")
	ErrNetworkError         = errors.New("network error")
	ErrTimeout              = errors.New("timeout")
	ErrInternalError        = errors.New("internal error")
	ErrUnknownError         = errors.New("unknown error")
)

// TranslateError maps an amqp091 or network error to one of the package
// errors. Errors already wrapping a package error are returned unchanged.
func TranslateError(err error) error {
	if err == nil {
		return nil
	}

	for _, known := range []error{ErrConnectionFailed, ErrDeclareFailed, ErrBindFailed, ErrQoSFailed, ErrCertificateError} {
		if errors.Is(err, known) {
			var amqpErr *amqp.Error
			if errors.As(err, &amqpErr) && amqpErr.Code == amqp.AccessRefused {
				return ErrAuthenticationFailed
			}
			return err
		}
	}

	var amqpErr *amqp.Error
	if errors.As(err, &amqpErr) {
		return translateAMQPError(amqpErr)
	}
	if errors.Is(err, amqp.ErrClosed) {
		return ErrChannelClosed
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return ErrTimeout
		}
		return ErrNetworkError
	}

	return ErrUnknownError
}

func translateAMQPError(amqpErr *amqp.Error) error {
	switch amqpErr.Code {
	case amqp.ConnectionForced:
		return ErrConnectionClosed
	case amqp.AccessRefused:
		if strings.Contains(strings.ToLower(amqpErr.Reason), "login") {
			return ErrAuthenticationFailed
		}
		return ErrAccessDenied
	case amqp.InvalidPath:
		return ErrVirtualHostNotFound
	case amqp.NotFound:
		return ErrNotFound
	case amqp.PreconditionFailed:
		return ErrPreconditionFailed
	case amqp.ResourceLocked:
		return ErrResourceLocked
	case amqp.ContentTooLarge:
		return ErrMessageTooLarge
	case amqp.NoRoute, amqp.NoConsumers:
		return ErrPublishFailed
	case amqp.ChannelError:
		return ErrChannelClosed
	case amqp.InternalError:
		return ErrInternalError
	default:
		return ErrUnknownError
	}
}

// IsRetryable reports whether an operation failing with err may succeed after reconnecting.
func IsRetryable(err error) bool {
	switch {
	case errors.Is(err, ErrConnectionFailed),
		errors.Is(err, ErrConnectionClosed),
		errors.Is(err, ErrChannelClosed),
		errors.Is(err, ErrNetworkError),
		errors.Is(err, ErrTimeout),
		errors.Is(err, ErrResourceLocked),
		errors.Is(err, ErrInternalError):
		return true
	default:
		return false
	}
}
