package models

import (
	"golang.org/x/exp/slog"
	"gorm.io/gorm"
)

// Env holds the stores shared by every request.
type Env struct {
	// DB is the database connection.
	DB     *gorm.DB
	Logger *slog.Logger

	Followers   *Followers
	Keys        *Keys
	ActivityLog *ActivityLog
}

// NewEnv returns an Env with stores bound to db.
func NewEnv(db *gorm.DB, logger *slog.Logger, logRetention int) *Env {
	return &Env{
		DB:          db,
		Logger:      logger,
		Followers:   NewFollowers(db),
		Keys:        NewKeys(db),
		ActivityLog: NewActivityLog(db, logRetention),
	}
}

func (e *Env) Log() *slog.Logger {
	return e.Logger
}
