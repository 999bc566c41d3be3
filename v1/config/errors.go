package config

import "errors"

var (
	ErrUnknownTransport = errors.New("unknown subscriber transport")
	ErrNegativeTimeout  = errors.New("database timeout must not be negative")
	ErrInvalidAPIURL    = errors.New("invalid api server url")
)
