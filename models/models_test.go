package models

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	require := require.New(t)
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	require.NoError(err)

	sqlDB, err := db.DB()
	require.NoError(err)
	// sqlite permits one writer at a time.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	err = db.AutoMigrate(AllTables()...)
	require.NoError(err)
	return db
}

// MockFollower returns a follower on domain.
func MockFollower(name, domain string, opts ...func(*Follower)) *Follower {
	f := &Follower{
		ID:                fmt.Sprintf("https://%s/users/%s", domain, name),
		Inbox:             fmt.Sprintf("https://%s/users/%s/inbox", domain, name),
		Name:              name,
		PreferredUsername: name,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// WithSharedInbox sets the shared inbox of a follower.
func WithSharedInbox(inbox string) func(*Follower) {
	return func(f *Follower) {
		f.SharedInbox = inbox
	}
}
