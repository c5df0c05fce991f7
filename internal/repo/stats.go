// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate queries over the guest
// directory used by the admin view and for conditional responses (ETag
// generation) in the HTTP layer.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-wedding-rsvp/internal/domain"
)

// DirectoryCounts is the per-decision head count of the guest directory.
type DirectoryCounts struct {
	Total    int64 `json:"total"`
	Accepted int64 `json:"accepted"`
	Declined int64 `json:"declined"`
	NoReply  int64 `json:"no_reply"`
}

// DirectoryStats returns per-decision counts and the greatest last_modified
// across all guests. When the directory is empty, lastModified is nil.
func DirectoryStats(ctx context.Context, db *gorm.DB) (counts DirectoryCounts, lastModified *time.Time, err error) {
	base := func() *gorm.DB { return db.WithContext(ctx).Model(&domain.Guest{}) }

	if err = base().Count(&counts.Total).Error; err != nil {
		return DirectoryCounts{}, nil, err
	}
	if counts.Total == 0 {
		return counts, nil, nil
	}
	if err = base().Where("accepted = ?", true).Count(&counts.Accepted).Error; err != nil {
		return DirectoryCounts{}, nil, err
	}
	if err = base().Where("accepted = ?", false).Count(&counts.Declined).Error; err != nil {
		return DirectoryCounts{}, nil, err
	}
	counts.NoReply = counts.Total - counts.Accepted - counts.Declined

	// Get latest last_modified (avoid MAX() -> TEXT in SQLite)
	var row struct {
		LastModified *time.Time
	}
	if err = base().
		Select("last_modified").
		Where("last_modified IS NOT NULL").
		Order("last_modified DESC").
		Limit(1).
		Scan(&row).Error; err != nil {
		return DirectoryCounts{}, nil, err
	}
	return counts, row.LastModified, nil
}
