// Package redis bootstraps the Redis client used by the tenant resolution
// cache. Connection settings come from the environment via pkg/config.
package redis
