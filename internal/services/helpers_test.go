package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-wedding-rsvp/internal/domain"
	"github.com/tbourn/go-wedding-rsvp/internal/ratelimit"
)

func newTestDB(t *testing.T, migrate bool) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if migrate {
		if err := db.AutoMigrate(&domain.Guest{}, &domain.RateCounter{}); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	return db
}

func newLimiter(db *gorm.DB, name string) *ratelimit.Limiter {
	return ratelimit.New(ratelimit.NewSQLStore(db), name, "rsvp:"+name+":", 5, 24*time.Hour)
}

func insertGuest(t *testing.T, db *gorm.DB, g domain.Guest) {
	t.Helper()
	if err := db.Create(&g).Error; err != nil {
		t.Fatalf("insert guest %s: %v", g.ID, err)
	}
}

func strp(s string) *string { return &s }

// recordingNotifier collects every record it is handed.
type recordingNotifier struct {
	mu     sync.Mutex
	guests []domain.Guest
	err    error
}

func (r *recordingNotifier) Notify(_ context.Context, g *domain.Guest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.guests = append(r.guests, *g)
	return r.err
}

// fixedClock returns a clock whose time can be moved by the test.
func fixedClock(start time.Time) (func() time.Time, *time.Time) {
	now := start
	return func() time.Time { return now }, &now
}
