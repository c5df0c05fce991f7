// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the guest directory: existence checks,
// lookups, inserts, the two write paths (guest RSVP and admin edit), and the
// listing/aggregate queries used by the admin view.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
//
// Error semantics:
//   - When a guest is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - Inserting an existing invite code returns ErrDuplicate.
//   - On DB errors (connectivity issues etc.) the raw gorm error is propagated.
//
// The first-RSVP timestamp is never written from application memory: both
// write paths apply it with a conditional "set if NULL" update in the same
// transaction as the decision, so concurrent submissions cannot move it.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-wedding-rsvp/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// ErrDuplicate indicates that a guest with the same invite code already exists.
var ErrDuplicate = errors.New("duplicate")

// RSVPUpdate is the guest-controlled part of a record.
type RSVPUpdate struct {
	Decision                   domain.Decision
	GuestDietaryRestrictions   *string
	PlusOneName                *string
	PlusOneDietaryRestrictions *string
}

// AdminUpdate is the full set of fields an administrator may overwrite.
type AdminUpdate struct {
	GuestName                  string
	Decision                   domain.Decision
	GuestDietaryRestrictions   *string
	PlusOneAllowed             bool
	PlusOneName                *string
	PlusOneDietaryRestrictions *string
}

// GuestExists reports whether a guest with the given invite code exists.
func GuestExists(ctx context.Context, db *gorm.DB, code string) (bool, error) {
	var n int64
	if err := db.WithContext(ctx).
		Model(&domain.Guest{}).
		Where("id = ?", code).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// GetGuest fetches a guest by invite code, or ErrNotFound.
func GetGuest(ctx context.Context, db *gorm.DB, code string) (*domain.Guest, error) {
	var g domain.Guest
	if err := db.WithContext(ctx).Where("id = ?", code).Take(&g).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

// InsertGuest persists a new guest row. A unique violation on the invite
// code is reported as ErrDuplicate.
func InsertGuest(ctx context.Context, db *gorm.DB, g *domain.Guest) error {
	if err := db.WithContext(ctx).Create(g).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// SubmitRSVP stores a guest's answer. Decision, dietary text and
// last_modified are always written; date_of_rsvp only if still NULL; the
// plus-one fields only if the stored row allows a plus-one. Returns
// ErrNotFound if no row matches code.
func SubmitRSVP(ctx context.Context, db *gorm.DB, code string, u RSVPUpdate, now time.Time) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Guest{}).
			Where("id = ?", code).
			Updates(map[string]any{
				"accepted":                   u.Decision,
				"guest_dietary_restrictions": u.GuestDietaryRestrictions,
				"last_modified":              now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := stampFirstRSVP(tx, code, now); err != nil {
			return err
		}
		return tx.Model(&domain.Guest{}).
			Where("id = ? AND plus_one_allowed = ?", code, true).
			Updates(map[string]any{
				"plus_one_name":                 u.PlusOneName,
				"plus_one_dietary_restrictions": u.PlusOneDietaryRestrictions,
			}).Error
	})
}

// AdminUpdateGuest overwrites a guest on behalf of an administrator. The
// decision may be reset to NoReply; date_of_rsvp is still write-once and is
// only stamped when the new decision is a real answer. Plus-one fields are
// written when the resulting PlusOneAllowed is true and cleared otherwise.
func AdminUpdateGuest(ctx context.Context, db *gorm.DB, code string, u AdminUpdate, now time.Time) error {
	fields := map[string]any{
		"guest_name":                    u.GuestName,
		"accepted":                      u.Decision,
		"guest_dietary_restrictions":    u.GuestDietaryRestrictions,
		"plus_one_allowed":              u.PlusOneAllowed,
		"plus_one_name":                 u.PlusOneName,
		"plus_one_dietary_restrictions": u.PlusOneDietaryRestrictions,
		"last_modified":                 now,
	}
	if !u.PlusOneAllowed {
		fields["plus_one_name"] = nil
		fields["plus_one_dietary_restrictions"] = nil
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Guest{}).Where("id = ?", code).Updates(fields)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		if u.Decision == domain.NoReply {
			return nil
		}
		return stampFirstRSVP(tx, code, now)
	})
}

// ListGuestsByDecision returns all guests with the given decision ordered by
// name. NoReply selects rows whose decision column is NULL.
func ListGuestsByDecision(ctx context.Context, db *gorm.DB, d domain.Decision) ([]domain.Guest, error) {
	q := db.WithContext(ctx).Model(&domain.Guest{})
	switch d {
	case domain.Accepted:
		q = q.Where("accepted = ?", true)
	case domain.Declined:
		q = q.Where("accepted = ?", false)
	default:
		q = q.Where("accepted IS NULL")
	}
	var out []domain.Guest
	if err := q.Order("guest_name ASC").Order("id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// CountConfirmedPlusOnes counts accepted guests that may bring, and have
// named, a plus-one.
func CountConfirmedPlusOnes(ctx context.Context, db *gorm.DB) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Guest{}).
		Where("accepted = ? AND plus_one_allowed = ?", true, true).
		Where("plus_one_name IS NOT NULL AND plus_one_name <> ?", "").
		Count(&n).Error
	return n, err
}

func stampFirstRSVP(tx *gorm.DB, code string, now time.Time) error {
	return tx.Model(&domain.Guest{}).
		Where("id = ? AND date_of_rsvp IS NULL", code).
		Update("date_of_rsvp", now).Error
}

// isUniqueViolation recognizes duplicate-key errors across drivers; the pure
// Go sqlite driver often returns plain-text errors for UNIQUE violations.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "unique constraint failed") ||
		strings.Contains(low, "constraint failed: unique") ||
		strings.Contains(low, "duplicate key") ||
		strings.Contains(low, "duplicate entry")
}
