package domain

import "time"

// RateCounter is a keyed integer with an optional expiry, used by the SQL
// backed counter store when no Redis is configured. A nil ExpiresAt means the
// counter never expires (mirrors a Redis key without TTL).
type RateCounter struct {
	Key       string     `gorm:"column:counter_key;type:varchar(128);primaryKey"`
	Value     int64      `gorm:"not null;default:0"`
	ExpiresAt *time.Time `gorm:"index"`
	UpdatedAt time.Time
}

// TableName implements the GORM tabler interface.
func (RateCounter) TableName() string { return "rate_counters" }
