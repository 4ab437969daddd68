package main

import (
	"context"
	"os"

	"github.com/alecthomas/kong"
	"github.com/davecheney/linkpub/activitypub"
	"github.com/davecheney/linkpub/internal/config"
	"github.com/davecheney/linkpub/internal/links"
	"github.com/davecheney/linkpub/models"
	"golang.org/x/exp/slog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Context struct {
	Debug    bool
	Settings *config.Config
	Logger   *slog.Logger

	gorm.Dialector
	gorm.Config
}

var cli struct {
	Debug  bool   `help:"Enable debug mode."`
	Config string `help:"Path to the configuration file." default:"linkpub.yaml" type:"path"`
	DSN    string `help:"Data source name, overrides the configuration file." env:"LINKPUB_DSN"`
	LogSQL bool   `help:"Log SQL queries."`

	AutoMigrate AutoMigrateCmd `cmd:"" help:"Create or update the database tables."`
	Serve       ServeCmd       `cmd:"" help:"Serve the actor, its collections and inboxes."`
	Deliver     DeliverCmd     `cmd:"" help:"Deliver a link to every follower."`
	Keys        KeysCmd        `cmd:"" help:"Show the actor's public key, generating one if needed."`
	Followers   FollowersCmd   `cmd:"" help:"List, or remove, followers."`
	FetchActor  FetchActorCmd  `cmd:"" help:"Fetch a remote actor with a signed request."`
	ActivityLog ActivityLogCmd `cmd:"" help:"Show recent federation activity."`
}

func main() {
	ctx := kong.Parse(&cli)

	cfg, err := config.Load(cli.Config)
	ctx.FatalIfErrorf(err)
	if cli.DSN != "" {
		cfg.DSN = cli.DSN
	}
	cfg.SetDefaults()
	ctx.FatalIfErrorf(cfg.Validate())

	level := slog.LevelInfo
	if cli.Debug {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	logLevel := logger.Warn
	if cli.LogSQL {
		logLevel = logger.Info
	}
	err = ctx.Run(&Context{
		Debug:     cli.Debug,
		Settings:  cfg,
		Logger:    log,
		Dialector: newDialector(cfg.DSN),
		Config: gorm.Config{
			Logger:         logger.Default.LogMode(logLevel),
			TranslateError: true,
		},
	})
	ctx.FatalIfErrorf(err)
}

// openDB opens and configures the database.
func (c *Context) openDB() (*gorm.DB, error) {
	db, err := gorm.Open(c.Dialector, &c.Config)
	if err != nil {
		return nil, err
	}
	if err := configureDB(db); err != nil {
		return nil, err
	}
	return db, nil
}

// env returns the federation environment backed by the configured
// database and link file.
func (c *Context) env(ctx context.Context) (*activitypub.Env, error) {
	db, err := c.openDB()
	if err != nil {
		return nil, err
	}
	return activitypub.NewEnv(ctx, c.Settings, models.NewEnv(db, c.Logger, c.Settings.LogRetention), links.NewFile(c.Settings.Links))
}
