package ratelimit

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Defaults applied by New when zero values are passed.
const (
	DefaultThreshold = 5
	DefaultWindow    = 24 * time.Hour
)

// Limiter answers "is this subject throttled?" and records one more event
// for a subject. Keys are Prefix+subject in the Store.
type Limiter struct {
	Store     Store
	Name      string // metrics label, e.g. "ip" or "code"
	Prefix    string // key namespace, e.g. "rsvp:ip:"
	Threshold int64
	Window    time.Duration
}

// New builds a Limiter. threshold <= 0 and window <= 0 fall back to
// DefaultThreshold and DefaultWindow.
func New(store Store, name, prefix string, threshold int, window time.Duration) *Limiter {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Limiter{
		Store:     store,
		Name:      name,
		Prefix:    prefix,
		Threshold: int64(threshold),
		Window:    window,
	}
}

// IsThrottled reports whether subject has reached the threshold. Missing
// counters and store errors both read as not throttled.
func (l *Limiter) IsThrottled(ctx context.Context, subject string) bool {
	n := l.Count(ctx, subject)
	if n >= l.Threshold {
		throttled.WithLabelValues(l.Name).Inc()
		return true
	}
	return false
}

// Count returns the current counter for subject, or 0 when it is absent or
// the store is unreachable.
func (l *Limiter) Count(ctx context.Context, subject string) int64 {
	n, ok, err := l.Store.GetInt(ctx, l.key(subject))
	if err != nil {
		l.storeFailed("get", subject, err)
		return 0
	}
	if !ok {
		return 0
	}
	return n
}

// RecordEvent adds one event for subject: a missing counter is created at 1
// with the full window, an existing one is incremented and its TTL pushed
// back to the full window. Store errors are logged and swallowed.
func (l *Limiter) RecordEvent(ctx context.Context, subject string) {
	key := l.key(subject)
	events.WithLabelValues(l.Name).Inc()

	_, ok, err := l.Store.GetInt(ctx, key)
	if err != nil {
		l.storeFailed("get", subject, err)
		return
	}
	if !ok {
		if err := l.Store.SetInt(ctx, key, 1, l.Window); err != nil {
			l.storeFailed("set", subject, err)
		}
		return
	}
	if _, err := l.Store.Incr(ctx, key, 1); err != nil {
		l.storeFailed("incr", subject, err)
		return
	}
	if err := l.Store.Expire(ctx, key, l.Window); err != nil {
		l.storeFailed("expire", subject, err)
	}
}

func (l *Limiter) key(subject string) string { return l.Prefix + subject }

func (l *Limiter) storeFailed(op, subject string, err error) {
	storeErrors.WithLabelValues(l.Name, op).Inc()
	log.Warn().
		Err(err).
		Str("limiter", l.Name).
		Str("op", op).
		Str("subject", Redact(subject)).
		Msg("rate limit store unavailable; failing open")
}

// Redact keeps the first four characters of a subject for logs.
func Redact(subject string) string {
	if len(subject) <= 4 {
		return subject
	}
	return subject[:4] + "…"
}
