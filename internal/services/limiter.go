package services

import "context"

// Limiter is the subset of ratelimit.Limiter the services depend on.
type Limiter interface {
	IsThrottled(ctx context.Context, subject string) bool
	RecordEvent(ctx context.Context, subject string)
	Count(ctx context.Context, subject string) int64
}
