package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dfryer1193/codeleap/api"
	"github.com/dfryer1193/codeleap/internal/config"
	"github.com/dfryer1193/codeleap/internal/mockapi"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 5 * time.Second

func main() {
	// a missing .env is fine
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	zerolog.SetGlobalLevel(cfg.LogLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	addr := fmt.Sprintf(":%d", cfg.MockAPIPort)
	mock := mockapi.New()
	mock.SetBaseURL(fmt.Sprintf("http://localhost%s", addr))
	mock.Seed(api.Post{Username: "codeleap", Title: "Welcome", Content: "This is a local copy of the careers API."})

	srv := &http.Server{
		Addr:    addr,
		Handler: mock.Router(),
	}

	go func() {
		log.Info().Str("addr", addr).Msg("Starting mock API")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start mock API")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down mock API...")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to shut down mock API")
	}
	log.Info().Msg("Mock API stopped")
}
