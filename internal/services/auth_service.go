// Package services – AuthService
//
// This file implements invite-code login. A login attempt is checked against
// the per-IP abuse counter first; a throttled client is turned away without
// touching the guest directory. Otherwise the normalized code is looked up
// with a pure existence check, and a miss is counted against the client's
// IP (or IPv6 /64). Directory failures are reported separately and never
// counted.
package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-wedding-rsvp/internal/ratelimit"
	"github.com/tbourn/go-wedding-rsvp/internal/repo"
)

// AuthService authenticates guests by invitation code.
type AuthService struct {
	DB        *gorm.DB
	IPLimiter Limiter
}

// Lockout describes a client's failure counter.
type Lockout struct {
	Subject  string `json:"ip"`
	Failures int64  `json:"failures"`
	Locked   bool   `json:"locked"`
}

// Authenticate validates rawCode for a client at clientIP and returns the
// normalized code on success.
//
// Errors:
//   - ErrThrottled: the client is locked out; nothing was looked up.
//   - ErrInvalidCode: no such guest; one failure was recorded.
//   - ErrDirectoryUnavailable (wrapped): lookup failed; nothing recorded.
func (s *AuthService) Authenticate(ctx context.Context, rawCode, clientIP string) (string, error) {
	subject := ratelimit.SubjectForIP(clientIP)

	ctx, span := otel.Tracer("services/AuthService").Start(ctx, "Authenticate",
		trace.WithAttributes(attribute.String("client.subject", subject)),
	)
	defer span.End()

	if s.IPLimiter.IsThrottled(ctx, subject) {
		span.SetAttributes(attribute.String("auth.result", "throttled"))
		return "", ErrThrottled
	}

	code := NormalizeCode(rawCode)
	if !ValidCode(code) {
		s.IPLimiter.RecordEvent(ctx, subject)
		span.SetAttributes(attribute.String("auth.result", "invalid"))
		return "", ErrInvalidCode
	}

	ok, err := repo.GuestExists(ctx, s.DB, code)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "directory lookup failed")
		log.Error().Err(err).Str("subject", subject).Msg("invite lookup failed")
		return "", fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}
	if !ok {
		s.IPLimiter.RecordEvent(ctx, subject)
		span.SetAttributes(attribute.String("auth.result", "invalid"))
		log.Info().Str("subject", subject).Msg("invalid invitation code")
		return "", ErrInvalidCode
	}

	span.SetAttributes(attribute.String("auth.result", "success"))
	return code, nil
}

// LockoutStatus reports the failure counter for clientIP.
func (s *AuthService) LockoutStatus(ctx context.Context, clientIP string) Lockout {
	subject := ratelimit.SubjectForIP(clientIP)
	n := s.IPLimiter.Count(ctx, subject)
	return Lockout{Subject: subject, Failures: n, Locked: s.IPLimiter.IsThrottled(ctx, subject)}
}
