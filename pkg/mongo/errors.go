package mongo

import "errors"

var (
	// ErrConnectionFailed is returned when all connection attempts fail.
	ErrConnectionFailed = errors.New("mongo: failed to connect")

	// ErrHealthcheckFailed is returned by the healthcheck probe on ping failure.
	ErrHealthcheckFailed = errors.New("mongo: healthcheck failed")
)
