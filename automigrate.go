package main

import (
	"github.com/davecheney/linkpub/models"
)

type AutoMigrateCmd struct{}

func (a *AutoMigrateCmd) Run(ctx *Context) error {
	db, err := ctx.openDB()
	if err != nil {
		return err
	}
	return db.AutoMigrate(models.AllTables()...)
}
