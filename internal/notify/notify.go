// Package notify tells the couple about finished RSVPs. A Notifier receives
// the final guest record after it has been written; delivery is best effort
// and never affects the stored data or the guest's response.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-wedding-rsvp/internal/domain"
)

// Notifier delivers a finalized guest record to an operator channel.
type Notifier interface {
	Notify(ctx context.Context, g *domain.Guest) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, g *domain.Guest) error

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, g *domain.Guest) error { return f(ctx, g) }

// Message is the human-readable summary of one RSVP.
type Message struct {
	Subject string
	Body    string
}

// Summary composes the operator summary for g.
func Summary(g *domain.Guest) Message {
	verb := "has not answered"
	switch g.Decision {
	case domain.Accepted:
		verb = "has accepted"
	case domain.Declined:
		verb = "has declined"
	}
	headline := fmt.Sprintf("%s %s your invitation.", g.GuestName, verb)

	var b strings.Builder
	b.WriteString(headline)
	b.WriteString("\n")
	fmt.Fprintf(&b, "Dietary restrictions: %s\n", orDefault(g.GuestDietaryRestrictions, "N/A"))
	if g.PlusOneAllowed {
		fmt.Fprintf(&b, "Plus one name: %s\n", orDefault(g.PlusOneName, "NO GUEST"))
		fmt.Fprintf(&b, "Plus one dietary restrictions: %s\n", orDefault(g.PlusOneDietaryRestrictions, "N/A"))
	}
	return Message{Subject: headline, Body: b.String()}
}

func orDefault(p *string, def string) string {
	if p == nil || strings.TrimSpace(*p) == "" {
		return def
	}
	return *p
}

// Log writes the summary to the application log. It is always enabled so
// the operator has a record even when no other channel is configured.
type Log struct{}

// Notify implements Notifier.
func (Log) Notify(_ context.Context, g *domain.Guest) error {
	m := Summary(g)
	log.Info().
		Str("invite_code", redact(g.ID)).
		Str("decision", g.Decision.String()).
		Str("subject", m.Subject).
		Msg("rsvp received")
	return nil
}

// Fanout delivers to every notifier and joins their errors.
type Fanout []Notifier

// Notify implements Notifier.
func (f Fanout) Notify(ctx context.Context, g *domain.Guest) error {
	var errs []error
	for _, n := range f {
		if err := n.Notify(ctx, g); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Async runs Next on a background goroutine so callers never wait on
// delivery. Each delivery gets its own Timeout, detached from the caller's
// cancellation. Failures are logged.
type Async struct {
	Next    Notifier
	Timeout time.Duration

	wg sync.WaitGroup
}

// NewAsync wraps next. A non-positive timeout defaults to 30s.
func NewAsync(next Notifier, timeout time.Duration) *Async {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Async{Next: next, Timeout: timeout}
}

// Notify schedules delivery of a copy of g and returns immediately.
func (a *Async) Notify(ctx context.Context, g *domain.Guest) error {
	if g == nil {
		return nil
	}
	snapshot := *g
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Str("invite_code", redact(snapshot.ID)).Msg("notifier panicked")
			}
		}()
		dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.Timeout)
		defer cancel()
		if err := a.Next.Notify(dctx, &snapshot); err != nil {
			log.Warn().Err(err).Str("invite_code", redact(snapshot.ID)).Msg("rsvp notification failed")
		}
	}()
	return nil
}

// Wait blocks until all scheduled deliveries finish.
func (a *Async) Wait() { a.wg.Wait() }

func redact(code string) string {
	if len(code) <= 4 {
		return code
	}
	return code[:4] + "…"
}
