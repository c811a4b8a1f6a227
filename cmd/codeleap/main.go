package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func main() {
	// a missing .env is fine
	_ = godotenv.Load()

	if err := newCLI(&app{}).Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("Command failed")
	}
}

func newCLI(a *app) *cli.App {
	return &cli.App{
		Name:     "codeleap",
		Usage:    "read and write posts on the CodeLeap network",
		Before:   a.initialize,
		After:    a.close,
		Commands: a.commands(),
	}
}
