// Package services – WorkflowService
//
// This file implements the guest-facing RSVP workflow: loading the record
// bound to a session and submitting an answer. A guest moves from NoReply
// to Accepted or Declined on the first submission and may flip between the
// two afterwards; the first-RSVP timestamp is stamped once by the directory
// and never moves again.
//
// The per-invite-code abuse counter gates both operations. Completed
// submissions are always counted; form views are counted only when
// CountViews is set.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-wedding-rsvp/internal/domain"
	"github.com/tbourn/go-wedding-rsvp/internal/notify"
	"github.com/tbourn/go-wedding-rsvp/internal/ratelimit"
	"github.com/tbourn/go-wedding-rsvp/internal/repo"
)

// RSVPInput is the raw guest form.
type RSVPInput struct {
	Accepted                   string `json:"accepted"                      form:"accepted"`
	GuestDietaryRestrictions   string `json:"guest_dietary_restrictions"    form:"guest_dietary_restrictions"`
	PlusOneName                string `json:"plus_one_name"                 form:"plus_one_name"`
	PlusOneDietaryRestrictions string `json:"plus_one_dietary_restrictions" form:"plus_one_dietary_restrictions"`
}

// WorkflowService runs the guest RSVP workflow.
type WorkflowService struct {
	DB          *gorm.DB
	CodeLimiter Limiter
	Notifier    notify.Notifier
	CountViews  bool
	Now         func() time.Time
}

// NewWorkflowService wires a WorkflowService with a UTC clock.
func NewWorkflowService(db *gorm.DB, codeLimiter Limiter, n notify.Notifier, countViews bool) *WorkflowService {
	return &WorkflowService{
		DB:          db,
		CodeLimiter: codeLimiter,
		Notifier:    n,
		CountViews:  countViews,
		Now:         func() time.Time { return time.Now().UTC() },
	}
}

// LoadForSession returns the guest bound to a session code.
//
// Errors: ErrMalformedSession for an empty code, ErrThrottled when the code
// is over its limit, ErrGuestNotFound, or a wrapped ErrDirectoryUnavailable.
func (s *WorkflowService) LoadForSession(ctx context.Context, code string) (*domain.Guest, error) {
	ctx, span := otel.Tracer("services/WorkflowService").Start(ctx, "LoadForSession",
		trace.WithAttributes(attribute.String("invite.code", ratelimit.Redact(code))),
	)
	defer span.End()

	if code == "" {
		return nil, ErrMalformedSession
	}
	if s.CountViews {
		s.CodeLimiter.RecordEvent(ctx, code)
	}
	if s.CodeLimiter.IsThrottled(ctx, code) {
		return nil, ErrThrottled
	}
	return s.load(ctx, span, code)
}

// SubmitRSVP applies a guest's answer and returns the stored record.
//
// Steps:
//  1. ErrThrottled if the code is over its limit.
//  2. ErrMalformedSession if the code does not have the invite-code shape.
//  3. The record is read; a miss or directory failure stops here.
//  4. "yes" accepts, anything else declines. Decision and dietary text are
//     written together with the write-once first-RSVP timestamp; plus-one
//     fields only when the guest may bring one.
//  5. The final record is re-read and handed to the notifier.
func (s *WorkflowService) SubmitRSVP(ctx context.Context, code string, in RSVPInput) (*domain.Guest, error) {
	ctx, span := otel.Tracer("services/WorkflowService").Start(ctx, "SubmitRSVP",
		trace.WithAttributes(attribute.String("invite.code", ratelimit.Redact(code))),
	)
	defer span.End()

	if s.CodeLimiter.IsThrottled(ctx, code) {
		return nil, ErrThrottled
	}
	if !ValidCode(code) {
		return nil, ErrMalformedSession
	}

	current, err := s.load(ctx, span, code)
	if err != nil {
		return nil, err
	}
	s.CodeLimiter.RecordEvent(ctx, code)

	upd := repo.RSVPUpdate{
		Decision:                 domain.ParseGuestDecision(in.Accepted),
		GuestDietaryRestrictions: optionalText(in.GuestDietaryRestrictions),
	}
	if current.PlusOneAllowed {
		upd.PlusOneName = optionalText(in.PlusOneName)
		upd.PlusOneDietaryRestrictions = optionalText(in.PlusOneDietaryRestrictions)
	}
	span.SetAttributes(attribute.String("rsvp.decision", upd.Decision.String()))

	if err := repo.SubmitRSVP(ctx, s.DB, code, upd, s.Now()); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrGuestNotFound
		}
		return nil, s.directoryFailed(span, code, err)
	}

	final, err := s.load(ctx, span, code)
	if err != nil {
		return nil, err
	}
	log.Info().
		Str("invite_code", ratelimit.Redact(code)).
		Str("decision", final.Decision.String()).
		Msg("rsvp submitted")

	if s.Notifier != nil {
		if err := s.Notifier.Notify(ctx, final); err != nil {
			log.Warn().Err(err).Str("invite_code", ratelimit.Redact(code)).Msg("rsvp notification failed")
		}
	}
	return final, nil
}

func (s *WorkflowService) load(ctx context.Context, span trace.Span, code string) (*domain.Guest, error) {
	g, err := repo.GetGuest(ctx, s.DB, code)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrGuestNotFound
		}
		return nil, s.directoryFailed(span, code, err)
	}
	return g, nil
}

func (s *WorkflowService) directoryFailed(span trace.Span, code string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, "directory failure")
	log.Error().Err(err).Str("invite_code", ratelimit.Redact(code)).Msg("guest directory failure")
	return fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
}
