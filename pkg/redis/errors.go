package redis

import "errors"

var (
	// ErrInvalidConnectionURL is returned when the connection URL cannot be parsed.
	ErrInvalidConnectionURL = errors.New("redis: invalid connection url")

	// ErrNotReady is returned when all connection attempts fail.
	ErrNotReady = errors.New("redis: server not ready")

	// ErrHealthcheckFailed is returned by the healthcheck probe on ping failure.
	ErrHealthcheckFailed = errors.New("redis: healthcheck failed")
)
