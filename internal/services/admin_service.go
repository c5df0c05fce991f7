// Package services – AdminService
//
// This file implements the administrator's view of the guest directory:
// listings per decision, the confirmed plus-one head count, editing any
// field of a guest (including resetting the decision to NoReply), creating
// guests with collision-checked invite codes, and bulk CSV import.
package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-wedding-rsvp/internal/domain"
	"github.com/tbourn/go-wedding-rsvp/internal/ratelimit"
	"github.com/tbourn/go-wedding-rsvp/internal/repo"
)

// defaultCodeAttempts bounds the create retry loop. With 36^12 codes a
// second attempt is already vanishingly rare.
const defaultCodeAttempts = 16

// ErrCodeSpaceExhausted is returned when no unused code was found within
// the attempt budget.
var ErrCodeSpaceExhausted = errors.New("could not allocate a unique invite code")

// GuestInput is the raw admin form for creating or editing a guest.
type GuestInput struct {
	GuestName                  string `json:"guest_name"                    form:"guest_name"`
	Accepted                   string `json:"accepted"                      form:"accepted"`
	GuestDietaryRestrictions   string `json:"guest_dietary_restrictions"    form:"guest_dietary_restrictions"`
	PlusOneAllowed             bool   `json:"plus_one_allowed"              form:"plus_one_allowed"`
	PlusOneName                string `json:"plus_one_name"                 form:"plus_one_name"`
	PlusOneDietaryRestrictions string `json:"plus_one_dietary_restrictions" form:"plus_one_dietary_restrictions"`
}

// Overview is everything the admin landing page shows.
type Overview struct {
	Accepted       []domain.Guest       `json:"accepted"`
	Declined       []domain.Guest       `json:"declined"`
	NoReply        []domain.Guest       `json:"no_reply"`
	PlusOnes       int64                `json:"confirmed_plus_ones"`
	Counts         repo.DirectoryCounts `json:"counts"`
	LastModifiedAt *time.Time           `json:"last_modified_at,omitempty"`
}

// ImportError describes one rejected CSV row.
type ImportError struct {
	Line   int    `json:"line"`
	Code   string `json:"code,omitempty"`
	Reason string `json:"reason"`
}

// ImportResult summarizes a CSV import.
type ImportResult struct {
	Imported int           `json:"imported"`
	Rejected []ImportError `json:"rejected,omitempty"`
}

// AdminService implements the administrator use-cases.
type AdminService struct {
	DB           *gorm.DB
	Now          func() time.Time
	NewCode      func() (string, error)
	CodeAttempts int
}

// NewAdminService wires an AdminService with a UTC clock and the crypto
// code generator.
func NewAdminService(db *gorm.DB) *AdminService {
	return &AdminService{
		DB:           db,
		Now:          func() time.Time { return time.Now().UTC() },
		NewCode:      GenerateCode,
		CodeAttempts: defaultCodeAttempts,
	}
}

func (s *AdminService) tracer() trace.Tracer { return otel.Tracer("services/AdminService") }

// ListByDecision returns guests with decision d ordered by name.
func (s *AdminService) ListByDecision(ctx context.Context, d domain.Decision) ([]domain.Guest, error) {
	out, err := repo.ListGuestsByDecision(ctx, s.DB, d)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}
	return out, nil
}

// CountConfirmedPlusOnes counts accepted guests bringing a named plus-one.
func (s *AdminService) CountConfirmedPlusOnes(ctx context.Context) (int64, error) {
	n, err := repo.CountConfirmedPlusOnes(ctx, s.DB)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}
	return n, nil
}

// Overview gathers the three decision lists, the plus-one count and the
// directory stats.
func (s *AdminService) Overview(ctx context.Context) (*Overview, error) {
	ctx, span := s.tracer().Start(ctx, "Overview")
	defer span.End()

	var (
		ov  Overview
		err error
	)
	if ov.Accepted, err = s.ListByDecision(ctx, domain.Accepted); err != nil {
		return nil, err
	}
	if ov.Declined, err = s.ListByDecision(ctx, domain.Declined); err != nil {
		return nil, err
	}
	if ov.NoReply, err = s.ListByDecision(ctx, domain.NoReply); err != nil {
		return nil, err
	}
	if ov.PlusOnes, err = s.CountConfirmedPlusOnes(ctx); err != nil {
		return nil, err
	}
	if ov.Counts, ov.LastModifiedAt, err = s.Stats(ctx); err != nil {
		return nil, err
	}
	return &ov, nil
}

// Stats returns per-decision counts and the latest modification time.
func (s *AdminService) Stats(ctx context.Context) (repo.DirectoryCounts, *time.Time, error) {
	counts, last, err := repo.DirectoryStats(ctx, s.DB)
	if err != nil {
		return repo.DirectoryCounts{}, nil, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}
	return counts, last, nil
}

// LoadForEdit returns a guest by invite code.
func (s *AdminService) LoadForEdit(ctx context.Context, code string) (*domain.Guest, error) {
	g, err := repo.GetGuest(ctx, s.DB, NormalizeCode(code))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrGuestNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}
	return g, nil
}

// ApplyEdit overwrites a guest. The decision maps "yes"/"no"/anything else
// to Accepted/Declined/NoReply. The first-RSVP timestamp is kept if set and
// stamped on the first real answer otherwise.
func (s *AdminService) ApplyEdit(ctx context.Context, code string, in GuestInput) (*domain.Guest, error) {
	code = NormalizeCode(code)
	ctx, span := s.tracer().Start(ctx, "ApplyEdit",
		trace.WithAttributes(attribute.String("invite.code", ratelimit.Redact(code))),
	)
	defer span.End()

	name := cleanText(in.GuestName)
	if name == "" {
		return nil, fmt.Errorf("%w: guest name is required", ErrInvalidGuest)
	}
	upd := repo.AdminUpdate{
		GuestName:                  name,
		Decision:                   domain.ParseAdminDecision(in.Accepted),
		GuestDietaryRestrictions:   optionalText(in.GuestDietaryRestrictions),
		PlusOneAllowed:             in.PlusOneAllowed,
		PlusOneName:                optionalText(in.PlusOneName),
		PlusOneDietaryRestrictions: optionalText(in.PlusOneDietaryRestrictions),
	}
	if err := repo.AdminUpdateGuest(ctx, s.DB, code, upd, s.Now()); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrGuestNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}
	log.Info().
		Str("invite_code", ratelimit.Redact(code)).
		Str("decision", upd.Decision.String()).
		Msg("guest edited by admin")
	return s.LoadForEdit(ctx, code)
}

// CreateGuest inserts a new guest under a freshly generated invite code and
// returns the code. Candidates are checked against the directory and
// retried on collision.
func (s *AdminService) CreateGuest(ctx context.Context, in GuestInput) (string, error) {
	ctx, span := s.tracer().Start(ctx, "CreateGuest")
	defer span.End()

	name := cleanText(in.GuestName)
	if name == "" {
		return "", fmt.Errorf("%w: guest name is required", ErrInvalidGuest)
	}
	now := s.Now()
	g := &domain.Guest{
		GuestName:                name,
		Decision:                 domain.ParseAdminDecision(in.Accepted),
		GuestDietaryRestrictions: optionalText(in.GuestDietaryRestrictions),
		PlusOneAllowed:           in.PlusOneAllowed,
		LastModified:             &now,
	}
	if in.PlusOneAllowed {
		g.PlusOneName = optionalText(in.PlusOneName)
		g.PlusOneDietaryRestrictions = optionalText(in.PlusOneDietaryRestrictions)
	}
	if g.Decision != domain.NoReply {
		g.DateOfFirstRSVP = &now
	}

	code, err := s.insertWithFreshCode(ctx, g)
	if err != nil {
		return "", err
	}
	span.SetAttributes(attribute.String("invite.code", ratelimit.Redact(code)))
	log.Info().Str("invite_code", ratelimit.Redact(code)).Msg("guest created")
	return code, nil
}

func (s *AdminService) insertWithFreshCode(ctx context.Context, g *domain.Guest) (string, error) {
	attempts := s.CodeAttempts
	if attempts <= 0 {
		attempts = defaultCodeAttempts
	}
	for i := 0; i < attempts; i++ {
		code, err := s.NewCode()
		if err != nil {
			return "", err
		}
		exists, err := repo.GuestExists(ctx, s.DB, code)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
		}
		if exists {
			continue
		}
		g.ID = code
		switch err := repo.InsertGuest(ctx, s.DB, g); {
		case err == nil:
			return code, nil
		case errors.Is(err, repo.ErrDuplicate):
			continue
		default:
			return "", fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
		}
	}
	return "", ErrCodeSpaceExhausted
}

// GenerateCodes returns n distinct invite codes that are not in the
// directory (when a DB is configured).
func (s *AdminService) GenerateCodes(ctx context.Context, n int) ([]string, error) {
	seen := make(map[string]struct{}, n)
	out := make([]string, 0, n)
	misses := 0
	for len(out) < n {
		code, err := s.NewCode()
		if err != nil {
			return nil, err
		}
		taken := false
		if _, dup := seen[code]; dup {
			taken = true
		} else if s.DB != nil {
			if taken, err = repo.GuestExists(ctx, s.DB, code); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
			}
		}
		if taken {
			misses++
			if misses > n*defaultCodeAttempts {
				return nil, ErrCodeSpaceExhausted
			}
			continue
		}
		seen[code] = struct{}{}
		out = append(out, code)
	}
	return out, nil
}

// ImportGuests reads guests from CSV rows of
//
//	code,name,plus_one_allowed,plus_one_name
//
// Codes may contain hyphens; an empty code gets a generated one.
// plus_one_allowed is true for "TRUE" (any case), "yes" or "1". A header
// row starting with "code" or "id" is skipped. Bad or duplicate rows are
// reported and skipped; the rest are inserted.
func (s *AdminService) ImportGuests(ctx context.Context, r io.Reader) (*ImportResult, error) {
	ctx, span := s.tracer().Start(ctx, "ImportGuests")
	defer span.End()

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	res := &ImportResult{}
	line := 0
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return res, fmt.Errorf("csv line %d: %w", line, err)
		}
		if line == 1 && len(rec) > 0 {
			if h := strings.ToLower(strings.TrimSpace(rec[0])); h == "code" || h == "id" {
				continue
			}
		}
		if len(rec) < 2 {
			res.Rejected = append(res.Rejected, ImportError{Line: line, Reason: "expected at least code,name"})
			continue
		}

		g, rerr := s.guestFromRow(rec)
		if rerr != "" {
			res.Rejected = append(res.Rejected, ImportError{Line: line, Code: g.ID, Reason: rerr})
			continue
		}

		if g.ID == "" {
			if _, err := s.insertWithFreshCode(ctx, g); err != nil {
				return res, err
			}
			res.Imported++
			continue
		}
		switch err := repo.InsertGuest(ctx, s.DB, g); {
		case err == nil:
			res.Imported++
		case errors.Is(err, repo.ErrDuplicate):
			res.Rejected = append(res.Rejected, ImportError{Line: line, Code: g.ID, Reason: "duplicate code"})
		default:
			return res, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
		}
	}
	span.SetAttributes(
		attribute.Int("import.imported", res.Imported),
		attribute.Int("import.rejected", len(res.Rejected)),
	)
	log.Info().Int("imported", res.Imported).Int("rejected", len(res.Rejected)).Msg("guest import finished")
	return res, nil
}

func (s *AdminService) guestFromRow(rec []string) (*domain.Guest, string) {
	field := func(i int) string {
		if i < len(rec) {
			return rec[i]
		}
		return ""
	}
	now := s.Now()
	g := &domain.Guest{
		ID:           NormalizeCode(field(0)),
		GuestName:    cleanText(field(1)),
		LastModified: &now,
	}
	switch strings.ToLower(strings.TrimSpace(field(2))) {
	case "true", "yes", "1":
		g.PlusOneAllowed = true
	}
	if g.PlusOneAllowed {
		g.PlusOneName = optionalText(field(3))
	}

	if g.ID != "" && !ValidCode(g.ID) {
		return g, "invalid code"
	}
	if g.GuestName == "" {
		return g, "missing name"
	}
	return g, ""
}
