// Package ratelimit implements the counter-based abuse limiter that guards
// login attempts (keyed by client IP) and RSVP submissions (keyed by invite
// code).
//
// A subject is throttled once its counter reaches the threshold. Every
// recorded event refreshes the counter's TTL, so the window slides forward
// while abuse continues. Counters live in an external Store (Redis or the SQL
// directory), so the limiter itself holds no per-subject state and is safe
// for concurrent use.
//
// The limiter fails open: if the store cannot be read, the subject is
// treated as not throttled, and a failed write is logged and dropped.
package ratelimit

import (
	"context"
	"time"
)

// Store is a keyed integer cache with TTL semantics.
//
// GetInt reports ok=false for absent or expired keys. Incr on an absent key
// starts from zero. Expire on an absent key is a no-op.
type Store interface {
	GetInt(ctx context.Context, key string) (value int64, ok bool, err error)
	SetInt(ctx context.Context, key string, value int64, ttl time.Duration) error
	Incr(ctx context.Context, key string, delta int64) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
}
