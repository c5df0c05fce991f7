package ratelimit

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-wedding-rsvp/internal/repo"
)

// purgeEvery is the number of writes between opportunistic sweeps of
// expired rows.
const purgeEvery = 1000

// SQLStore keeps counters in the rate_counters table of the guest database.
// It is the default backend when no Redis is configured.
type SQLStore struct {
	DB  *gorm.DB
	Now func() time.Time

	writes atomic.Uint64
}

// NewSQLStore returns a store backed by db. The rate_counters table must
// already be migrated.
func NewSQLStore(db *gorm.DB) *SQLStore {
	return &SQLStore{DB: db, Now: func() time.Time { return time.Now().UTC() }}
}

// GetInt implements Store.
func (s *SQLStore) GetInt(ctx context.Context, key string) (int64, bool, error) {
	return repo.GetCounter(ctx, s.DB, key, s.Now())
}

// SetInt implements Store.
func (s *SQLStore) SetInt(ctx context.Context, key string, value int64, ttl time.Duration) error {
	s.maybePurge(ctx)
	return repo.SetCounter(ctx, s.DB, key, value, ttl, s.Now())
}

// Incr implements Store.
func (s *SQLStore) Incr(ctx context.Context, key string, delta int64) (int64, error) {
	s.maybePurge(ctx)
	return repo.IncrCounter(ctx, s.DB, key, delta, s.Now())
}

// Expire implements Store.
func (s *SQLStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	_, err := repo.ExpireCounter(ctx, s.DB, key, ttl, s.Now())
	return err
}

func (s *SQLStore) maybePurge(ctx context.Context) {
	if s.writes.Add(1)%purgeEvery != 0 {
		return
	}
	n, err := repo.PurgeExpiredCounters(ctx, s.DB, s.Now())
	if err != nil {
		log.Warn().Err(err).Msg("rate counter purge failed")
		return
	}
	log.Debug().Int64("rows", n).Msg("purged expired rate counters")
}
