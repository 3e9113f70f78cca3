// Package ratelimit bounds contact-form submissions per client IP within a
// fixed time window. Two implementations exist: a Redis-backed limiter for
// multi-instance deployments and an in-memory fallback for single instances
// and local development.
package ratelimit

import "context"

// Limiter reports whether one more request from the given IP is allowed
// within the current window. Implementations must be safe for concurrent use.
type Limiter interface {
	Allow(ctx context.Context, ip string) (bool, error)
}
