//go:build sqlite

package main

// sqlite support

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newDialector(dsn string) gorm.Dialector {
	return sqlite.Open(dsn)
}

func configureDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	// sqlite permits one writer at a time.
	sqlDB.SetMaxOpenConns(1)
	return db.Exec("PRAGMA journal_mode = WAL").Error
}
