package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dfryer1193/codeleap/internal/config"
	"github.com/dfryer1193/codeleap/network/application"
	"github.com/dfryer1193/codeleap/network/persistence"
	"github.com/dfryer1193/codeleap/shared/codeleap"
	"github.com/dfryer1193/codeleap/shared/db/sqlite"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

// app holds the dependencies shared by every command.
type app struct {
	cfg      *config.Config
	db       *sqlite.SQLiteDB
	session  *persistence.SQLiteSessionRepository
	sessions *application.SessionService
	posts    *application.PostService
}

func (a *app) initialize(c *cli.Context) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	a.cfg = cfg

	zerolog.SetGlobalLevel(cfg.LogLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	a.db = sqlite.NewSQLiteDB(cfg.SQLiteConfig())
	if err := a.db.Connect(); err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}

	client, err := codeleap.NewClient(cfg.ClientConfig())
	if err != nil {
		return err
	}

	a.session = persistence.NewSessionRepository(a.db.DB())
	a.sessions = application.NewSessionService(a.session)
	a.posts = application.NewPostService(client)

	log.Debug().Str("api", client.BaseURL()).Str("db", a.db.Path()).Msg("Initialized")
	return nil
}

func (a *app) close(c *cli.Context) error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

// postList builds a controller for the signed-in user.
func (a *app) postList(ctx context.Context) (*application.PostList, error) {
	username, ok, err := a.sessions.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, cli.Exit("not signed in: run `codeleap signin <username>` first", 1)
	}
	return application.NewPostList(a.posts, username), nil
}

// logToFile sends logs to the configured file so they do not draw over the terminal UI.
func (a *app) logToFile() (func(), error) {
	f, err := os.OpenFile(a.cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	log.Logger = zerolog.New(f).With().Timestamp().Logger()
	return func() { f.Close() }, nil
}
