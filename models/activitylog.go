package models

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// Directions of an ActivityLogEntry.
const (
	Inbound  = "in"
	Outbound = "out"
)

// An ActivityLogEntry records one federation event for diagnostics.
type ActivityLogEntry struct {
	// ID is a ULID, so entries sort in the order they were appended.
	ID         string `gorm:"primarykey;size:26"`
	Direction  string `gorm:"size:3;not null"`
	Type       string `gorm:"size:32;not null"`
	Actor      string `gorm:"size:255"`
	Target     string `gorm:"size:255"`
	ActivityID string `gorm:"size:255"`
	// Status is the HTTP status of an outbound delivery, zero if the
	// request did not complete.
	Status    int
	Error     string `gorm:"type:text"`
	CreatedAt time.Time
}

// ActivityLog is an append only ring buffer of the last retention entries.
type ActivityLog struct {
	db        *gorm.DB
	retention int

	mu sync.Mutex
}

func NewActivityLog(db *gorm.DB, retention int) *ActivityLog {
	return &ActivityLog{
		db:        db,
		retention: retention,
	}
}

// Append records entry, discarding the oldest entries beyond the
// retention limit.
func (l *ActivityLog) Append(ctx context.Context, entry *ActivityLogEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if entry.ID == "" {
		entry.ID = ulid.Make().String()
	}
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return forEach(tx, entry.create, l.trim)
	})
}

func (e *ActivityLogEntry) create(tx *gorm.DB) error {
	return tx.Create(e).Error
}

// trim deletes every entry older than the newest l.retention.
func (l *ActivityLog) trim(tx *gorm.DB) error {
	if l.retention <= 0 {
		return nil
	}
	var cutoff ActivityLogEntry
	err := tx.Select("id").Order("id desc").Offset(l.retention).Take(&cutoff).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return tx.Where("id <= ?", cutoff.ID).Delete(&ActivityLogEntry{}).Error
}

// Recent returns up to n of the newest entries, newest first.
func (l *ActivityLog) Recent(ctx context.Context, n int) ([]*ActivityLogEntry, error) {
	var entries []*ActivityLogEntry
	err := l.db.WithContext(ctx).Order("id desc").Limit(n).Find(&entries).Error
	return entries, err
}
