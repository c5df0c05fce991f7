// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the keyed, expiring integer counters
// behind the SQL counter store. Semantics follow a key/value cache: an
// expired row reads as absent, and incrementing an absent key starts from
// zero with no expiry.
package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-wedding-rsvp/internal/domain"
)

// GetCounter returns the live value for key. ok is false when the key is
// missing or expired.
func GetCounter(ctx context.Context, db *gorm.DB, key string, now time.Time) (value int64, ok bool, err error) {
	var rc domain.RateCounter
	err = db.WithContext(ctx).
		Where("counter_key = ? AND (expires_at IS NULL OR expires_at > ?)", key, now).
		Take(&rc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return rc.Value, true, nil
}

// SetCounter stores value under key, replacing any previous row. A ttl <= 0
// stores the counter without expiry.
func SetCounter(ctx context.Context, db *gorm.DB, key string, value int64, ttl time.Duration, now time.Time) error {
	rc := domain.RateCounter{Key: key, Value: value, ExpiresAt: expiryFor(ttl, now), UpdatedAt: now}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "counter_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "expires_at", "updated_at"}),
		}).
		Create(&rc).Error
}

// IncrCounter adds delta to key and returns the new value. A missing or
// expired key restarts at delta without expiry.
func IncrCounter(ctx context.Context, db *gorm.DB, key string, delta int64, now time.Time) (int64, error) {
	var out int64
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rc domain.RateCounter
		err := tx.Where("counter_key = ?", key).Take(&rc).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			out = delta
			return tx.Create(&domain.RateCounter{Key: key, Value: delta, UpdatedAt: now}).Error
		case err != nil:
			return err
		}

		if rc.ExpiresAt != nil && !rc.ExpiresAt.After(now) {
			out = delta
			return tx.Model(&domain.RateCounter{}).
				Where("counter_key = ?", key).
				Updates(map[string]any{"value": delta, "expires_at": nil, "updated_at": now}).Error
		}

		out = rc.Value + delta
		return tx.Model(&domain.RateCounter{}).
			Where("counter_key = ?", key).
			Updates(map[string]any{"value": gorm.Expr("value + ?", delta), "updated_at": now}).Error
	})
	if err != nil {
		return 0, err
	}
	return out, nil
}

// ExpireCounter sets a new TTL on a live key. It reports false when the key
// is missing or already expired.
func ExpireCounter(ctx context.Context, db *gorm.DB, key string, ttl time.Duration, now time.Time) (bool, error) {
	res := db.WithContext(ctx).
		Model(&domain.RateCounter{}).
		Where("counter_key = ? AND (expires_at IS NULL OR expires_at > ?)", key, now).
		Updates(map[string]any{"expires_at": expiryFor(ttl, now), "updated_at": now})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// PurgeExpiredCounters deletes rows whose expiry has passed.
func PurgeExpiredCounters(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at <= ?", now).
		Delete(&domain.RateCounter{})
	return res.RowsAffected, res.Error
}

func expiryFor(ttl time.Duration, now time.Time) *time.Time {
	if ttl <= 0 {
		return nil
	}
	t := now.Add(ttl)
	return &t
}
