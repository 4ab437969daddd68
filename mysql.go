//go:build !sqlite

package main

// mysql support

import (
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func newDialector(dsn string) gorm.Dialector {
	return mysql.New(mysql.Config{
		// parseTime is required to scan followed_at into a time.Time.
		DSN: mergeOptions(dsn, "charset=utf8mb4&parseTime=True&loc=UTC"),
	})
}

// mergeOptions appends options to dsn, unless dsn already sets them.
func mergeOptions(dsn, options string) string {
	if options == "" || strings.Contains(dsn, options) {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&" + options
	}
	return dsn + "?" + options
}

func configureDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxIdleConns(4)
	sqlDB.SetMaxOpenConns(16)
	sqlDB.SetConnMaxLifetime(time.Hour)
	return nil
}
