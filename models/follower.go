package models

import (
	"context"
	"errors"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// A Follower is a remote actor that follows the local actor.
type Follower struct {
	// ID is the URI of the remote actor.
	ID                string    `gorm:"primarykey;size:255"`
	Inbox             string    `gorm:"size:255;not null"`
	SharedInbox       string    `gorm:"size:255"`
	Name              string    `gorm:"size:255"`
	PreferredUsername string    `gorm:"size:128"`
	FollowedAt        time.Time `gorm:"not null;index"`
}

// EffectiveInbox returns the inbox deliveries to this follower should be
// sent to; its server's shared inbox if it advertises one.
func (f *Follower) EffectiveInbox() string {
	if f.SharedInbox != "" {
		return f.SharedInbox
	}
	return f.Inbox
}

// Followers is the durable set of remote followers. Mutations are
// serialised, reads may proceed concurrently.
type Followers struct {
	db *gorm.DB
	mu sync.RWMutex
}

func NewFollowers(db *gorm.DB) *Followers {
	return &Followers{db: db}
}

// List returns all followers in the order they followed.
func (f *Followers) List(ctx context.Context) ([]*Follower, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	var followers []*Follower
	err := f.db.WithContext(ctx).Order("followed_at asc, id asc").Find(&followers).Error
	return followers, err
}

// Add records follower. If a follower with the same ID already exists Add
// is a no-op and reports false.
func (f *Followers) Add(ctx context.Context, follower *Follower) (bool, error) {
	if follower.ID == "" {
		return false, errors.New("follower: id is required")
	}
	if follower.Inbox == "" {
		return false, errors.New("follower: inbox is required")
	}
	if follower.FollowedAt.IsZero() {
		follower.FollowedAt = time.Now().UTC()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	res := f.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(follower)
	return res.RowsAffected > 0, res.Error
}

// Remove deletes the follower with the given id. Removing an unknown id is
// a no-op and reports false.
func (f *Followers) Remove(ctx context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	res := f.db.WithContext(ctx).Delete(&Follower{}, "id = ?", id)
	return res.RowsAffected > 0, res.Error
}

// Find returns the follower with the given id.
func (f *Followers) Find(ctx context.Context, id string) (*Follower, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	var follower Follower
	if err := f.db.WithContext(ctx).Take(&follower, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &follower, nil
}

// Count returns the number of followers.
func (f *Followers) Count(ctx context.Context) (int, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	var count int64
	err := f.db.WithContext(ctx).Model(&Follower{}).Count(&count).Error
	return int(count), err
}

// Page returns up to limit followers starting at offset, in List order.
func (f *Followers) Page(ctx context.Context, offset, limit int) ([]*Follower, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	var followers []*Follower
	err := f.db.WithContext(ctx).Order("followed_at asc, id asc").Offset(offset).Limit(limit).Find(&followers).Error
	return followers, err
}
