// Package domain defines the persistence models for invited guests and the
// transient abuse-control counters. These types are mapped with GORM and are
// shared across the repository, rate limiting, and service layers.
package domain

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"time"
)

// InviteCodeLength is the fixed length of a normalized invitation code.
const InviteCodeLength = 12

// Decision is the tri-state RSVP answer of a guest.
//
// It is stored as a nullable boolean column (NULL = no reply) so that the
// directory can filter "decision is unset" independently of true/false, but
// application code only ever sees the three explicit variants.
type Decision int

const (
	// NoReply means the guest has never submitted an answer.
	NoReply Decision = iota
	// Accepted means the guest is attending.
	Accepted
	// Declined means the guest is not attending.
	Declined
)

// String returns the lowercase wire name of d.
func (d Decision) String() string {
	switch d {
	case Accepted:
		return "accepted"
	case Declined:
		return "declined"
	default:
		return "no_reply"
	}
}

// MarshalText renders the decision by name in JSON payloads.
func (d Decision) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// UnmarshalText parses a name produced by MarshalText.
func (d *Decision) UnmarshalText(b []byte) error {
	switch string(b) {
	case "accepted":
		*d = Accepted
	case "declined":
		*d = Declined
	case "no_reply", "":
		*d = NoReply
	default:
		return fmt.Errorf("domain: unknown decision %q", b)
	}
	return nil
}

// ParseGuestDecision maps a guest form answer to a Decision. Only "yes"
// accepts; every other value (including empty) declines. NoReply is never
// produced here.
func ParseGuestDecision(s string) Decision {
	if s == "yes" {
		return Accepted
	}
	return Declined
}

// ParseAdminDecision maps an admin form answer to a Decision: "yes" accepts,
// "no" declines, anything else resets to NoReply.
func ParseAdminDecision(s string) Decision {
	switch s {
	case "yes":
		return Accepted
	case "no":
		return Declined
	default:
		return NoReply
	}
}

// Value implements driver.Valuer (NULL / true / false).
func (d Decision) Value() (driver.Value, error) {
	switch d {
	case Accepted:
		return true, nil
	case Declined:
		return false, nil
	default:
		return nil, nil
	}
}

// Scan implements sql.Scanner for the nullable boolean column. Drivers differ
// in what they hand back for booleans (bool, int64, []byte), so all are
// accepted.
func (d *Decision) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = NoReply
	case bool:
		*d = fromBool(v)
	case int64:
		*d = fromBool(v != 0)
	case []byte:
		*d = fromBool(len(v) > 0 && (v[0] == '1' || v[0] == 't' || v[0] == 'T'))
	case string:
		*d = fromBool(v == "1" || v == "t" || v == "true" || v == "TRUE")
	default:
		return errors.New("domain: unsupported decision column type")
	}
	return nil
}

func fromBool(b bool) Decision {
	if b {
		return Accepted
	}
	return Declined
}

// Guest is one invitation: the primary guest, their answer, and the optional
// plus-one. The invite code is the primary key.
//
// Fields:
//   - ID: 12-char uppercase alphanumeric invite code.
//   - Decision: tri-state answer, NULL column when NoReply.
//   - GuestName: required display name.
//   - PlusOneAllowed: set at creation, never guest-editable.
//   - PlusOneName / PlusOneDietaryRestrictions: only meaningful when
//     PlusOneAllowed is true.
//   - DateOfFirstRSVP: written once, on the first answer, then frozen.
//   - LastModified: refreshed on every write.
type Guest struct {
	ID                         string     `json:"invite_code"                             gorm:"column:id;type:varchar(12);primaryKey"`
	Decision                   Decision   `json:"decision"                                gorm:"column:accepted;type:boolean;index"`
	GuestName                  string     `json:"guest_name"                              gorm:"type:varchar(100);not null;index"`
	GuestDietaryRestrictions   *string    `json:"guest_dietary_restrictions,omitempty"    gorm:"type:varchar(100)"`
	PlusOneAllowed             bool       `json:"plus_one_allowed"                        gorm:"not null;default:false"`
	PlusOneName                *string    `json:"plus_one_name,omitempty"                 gorm:"type:varchar(100)"`
	PlusOneDietaryRestrictions *string    `json:"plus_one_dietary_restrictions,omitempty" gorm:"type:varchar(100)"`
	DateOfFirstRSVP            *time.Time `json:"date_of_first_rsvp,omitempty"            gorm:"column:date_of_rsvp"`
	LastModified               *time.Time `json:"last_modified,omitempty"`
}

// TableName returns the database table name for Guest.
func (Guest) TableName() string { return "guests" }

// HasPlusOne reports whether the guest may bring a plus-one and has named one.
func (g *Guest) HasPlusOne() bool {
	return g.PlusOneAllowed && g.PlusOneName != nil && *g.PlusOneName != ""
}
